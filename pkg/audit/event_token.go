package audit

import (
	"fmt"
	"strconv"
	"time"
)

// TokenIssueEvent records a token issuance. Only the token id is recorded.
type TokenIssueEvent struct {
	User      string
	ClientIP  string
	TokenID   string
	ExpiresAt time.Time
	Duration  time.Duration
}

func (e TokenIssueEvent) MessageID() string {
	return "token"
}

func (e TokenIssueEvent) Message() string {
	return fmt.Sprintf("%s was issued token %s valid for %ds", e.User, e.TokenID, int64(e.Duration.Seconds()))
}

func (e TokenIssueEvent) Severity() Severity {
	return SeverityInfo
}

func (e TokenIssueEvent) Facility() int {
	return FacilityAuthPriv
}

func (e TokenIssueEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"token":      e.TokenID,
			"expires_at": e.ExpiresAt.UTC().Format(time.RFC3339),
			"duration":   strconv.FormatInt(int64(e.Duration.Seconds()), 10),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "issue-token",
			"result":    "success",
		},
	}
}
