package audit

import "fmt"

// AuthorizationCheckEvent represents a permission check audit event.
// Permission is empty for object path checks.
type AuthorizationCheckEvent struct {
	User       string
	ClientIP   string
	Permission string
	ObjectPath string
	Allowed    bool
}

func (e AuthorizationCheckEvent) MessageID() string {
	return "check"
}

func (e AuthorizationCheckEvent) target() string {
	if e.ObjectPath != "" {
		return "access to " + e.ObjectPath
	}
	return "permission " + e.Permission
}

func (e AuthorizationCheckEvent) Message() string {
	if e.Allowed {
		return fmt.Sprintf("%s checked %s: allowed", e.User, e.target())
	}
	return fmt.Sprintf("%s checked %s: denied", e.User, e.target())
}

func (e AuthorizationCheckEvent) Severity() Severity {
	return SeverityInfo
}

func (e AuthorizationCheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthorizationCheckEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Allowed {
		result = "failure"
	}
	subject := map[string]string{}
	if e.Permission != "" {
		subject["permission"] = e.Permission
	}
	if e.ObjectPath != "" {
		subject["path"] = e.ObjectPath
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: subject,
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "check",
			"result":    result,
		},
	}
}
