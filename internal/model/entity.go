package model

import "time"

// Audit actions.
const (
	AuditLogin            = "login"
	AuditLoginFailed      = "login_failed"
	AuditNafathLogin      = "nafath_login"
	AuditLogout           = "logout"
	AuditDraftSaved       = "draft_saved"
	AuditRequestSubmitted = "request_submitted"
	AuditRequestClosed    = "request_closed"
)

type AuditEvent struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	IdentityID string    `gorm:"index;size:32" json:"identity_id"`
	Action     string    `gorm:"index;size:32" json:"action"`
	Reference  string    `gorm:"size:64" json:"reference"`
	RequestID  string    `gorm:"size:64" json:"request_id"`
	ClientIP   string    `gorm:"size:64" json:"client_ip"`
	Detail     string    `gorm:"size:255" json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditEvent) TableName() string { return "audit_events" }
