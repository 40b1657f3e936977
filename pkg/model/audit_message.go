package model

import "time"

// AuditMessage is a persisted audit event
type AuditMessage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Facility  int       `gorm:"column:facility;not null"`
	Severity  int       `gorm:"column:severity;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Hostname  string    `gorm:"column:hostname"`
	Appname   string    `gorm:"column:appname"`
	Procid    string    `gorm:"column:procid"`
	Msgid     string    `gorm:"column:msgid"`
	Sdata     string    `gorm:"column:sdata"`
	Message   string    `gorm:"column:message"`
}

func (AuditMessage) TableName() string {
	return "audit_messages"
}
