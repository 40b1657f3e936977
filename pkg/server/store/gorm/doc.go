// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The same implementations serve PostgreSQL in production and SQLite in
// development and tests, so queries stick to portable SQL.
package gorm
