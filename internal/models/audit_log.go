package models

import (
	"time"
)

// DefaultAuditCap is the number of most-recent audit entries retained.
const DefaultAuditCap = 10

// Audit cap scopes
const (
	AuditCapScopeGlobal  = "global"
	AuditCapScopePerUser = "per_user"
)

// AuditEntry is an immutable record of an action taken against a user account.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
