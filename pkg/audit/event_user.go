package audit

import (
	"fmt"
	"strconv"
)

// UserCreateEvent records a provisioning attempt
type UserCreateEvent struct {
	User         string
	ClientIP     string
	NewUser      string
	NewUserID    int64
	Success      bool
	ErrorMessage string
}

func (e UserCreateEvent) MessageID() string {
	return "user"
}

func (e UserCreateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s created user %s", e.User, e.NewUser)
	}
	msg := fmt.Sprintf("%s tried to create user %s", e.User, e.NewUser)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e UserCreateEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e UserCreateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e UserCreateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"username": e.NewUser,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "create-user",
		},
	}
	if e.Success {
		sd[SDIDSubject]["user_id"] = strconv.FormatInt(e.NewUserID, 10)
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
