package audit

import "fmt"

// AuthenticateEvent represents an authentication audit event. User is the
// resolved username on success, the presented username when a password was
// rejected, and "-" otherwise. Tokens and passwords are never recorded.
type AuthenticateEvent struct {
	User              string
	ClientIP          string
	AuthenticatorName string
	Success           bool
	ErrorMessage      string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) user() string {
	if e.User == "" {
		return "-"
	}
	return e.User
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with authenticator %s", e.user(), e.AuthenticatorName)
	}
	msg := fmt.Sprintf("%s failed to authenticate with authenticator %s", e.user(), e.AuthenticatorName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.AuthenticatorName,
			"user":          e.user(),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result,
		},
	}
}
