package model

// All returns every model, in dependency order, for schema auto-migration.
func All() []interface{} {
	return []interface{}{
		&Group{},
		&Permission{},
		&User{},
		&UserPerm{},
		&GroupPerm{},
		&ObjectPerm{},
		&AuditMessage{},
	}
}
