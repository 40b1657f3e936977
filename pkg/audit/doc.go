// Package audit provides audit logging for Portcullis operations.
//
// This package implements structured audit logging for security-relevant
// operations such as authentication attempts, token issuance, user
// provisioning and authorization checks.
//
// # Event Types
//
//   - AuthenticateEvent: authentication success/failure
//   - TokenIssueEvent: token issuance
//   - UserCreateEvent: user provisioning
//   - AuthorizationCheckEvent: permission and object access checks
//
// # Usage
//
//	auditor := audit.New(audit.Options{Enabled: true, Store: audit.NewStore(db)})
//	auditor.Log(ctx, audit.AuthenticateEvent{User: "bob", Success: true})
//
// Events are written as RFC5424 syslog lines and optionally persisted to the
// audit_messages table. Passwords and tokens never appear in an event.
package audit
