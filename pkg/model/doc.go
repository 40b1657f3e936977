// Package model defines the database models for Portcullis.
//
// This package contains GORM models that map to the Portcullis database schema.
// Table names match the schema in db/migrations.
//
// # Core Models
//
//   - User: a principal with a password hash and an optional group
//   - Group: a named set of users
//   - Permission: the permission catalog
//   - UserPerm: user to permission binding
//   - GroupPerm: group to permission binding
//   - ObjectPerm: object path to permission binding
//   - AuditMessage: persisted audit events
//
// # Database Schema
//
//   - users: username is unique so concurrent provisioning cannot duplicate it
//   - groups, permissions: reference data, unique by name
//   - users_perm, groups_perm, object_perm: bindings; duplicates are harmless
//   - audit_messages: audit trail
package model
