// Package registry answers permission questions for Portcullis.
//
// A user holds a permission when it is bound directly (users_perm) or when
// the user's group holds it (groups_perm). Object paths carry their own
// bindings (object_perm) and match exactly; there is no prefix matching.
//
// Absence is never an error: an unknown user, group or permission yields
// false or an empty list. Only storage failures are returned as errors.
//
// # Usage
//
//	reg := registry.New(users, perms)
//	ok, err := reg.UserHasPermission(ctx, userID, "read")
package registry
