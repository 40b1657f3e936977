// Package provision validates and creates Portcullis users.
//
// A create request is a JSON object with the fields username, password,
// group and permissions_list. Validation stops at the first violation, in
// this order:
//
//  1. every key belongs to the closed field set
//  2. username and password are present and well formed
//  3. the username is not taken
//  4. the group, if given, exists
//  5. every listed permission exists
//
// Violations are reported as *ValidationError values wrapping one of the
// package sentinels. Passwords are hashed outside the insert transaction, and
// the store re-checks the username inside it so concurrent requests for the
// same name cannot both succeed.
//
// permissions_list is validated in every mode; it is bound to the new user
// only when Options.BindPermissions is set.
package provision
