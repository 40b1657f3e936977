package audit

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// Store handles audit message persistence to the audit_messages table
type Store struct {
	db       *gorm.DB
	hostname string
	now      func() time.Time
}

// NewStore creates a store on an existing database connection
func NewStore(db *gorm.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, hostname: hostname, now: time.Now}
}

// Save persists an audit event to the database
func (s *Store) Save(ctx context.Context, event Event) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	msg := &model.AuditMessage{
		Facility:  event.Facility(),
		Severity:  int(event.Severity()),
		Timestamp: s.now().UTC(),
		Hostname:  s.hostname,
		Appname:   AppName,
		Procid:    strconv.Itoa(os.Getpid()),
		Msgid:     event.MessageID(),
		Sdata:     string(sdata),
		Message:   event.Message(),
	}
	return s.db.WithContext(ctx).Create(msg).Error
}

// Recent returns up to limit messages, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]model.AuditMessage, error) {
	var msgs []model.AuditMessage
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}
