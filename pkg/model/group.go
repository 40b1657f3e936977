package model

// Group is a named collection of users sharing permissions
type Group struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	GroupName string `gorm:"column:group_name;size:32;not null;uniqueIndex"`
}

func (Group) TableName() string {
	return "groups"
}
