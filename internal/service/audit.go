package service

import (
	"context"
	"time"
	"unicode/utf8"

	"eportal/internal/logger"
	"eportal/internal/model"

	"gorm.io/gorm"
)

// Auditor records security-relevant user actions.
type Auditor interface {
	Record(ctx context.Context, ev model.AuditEvent)
	Recent(ctx context.Context, identityID string, limit int) ([]model.AuditEvent, error)
}

// maxDetailRunes matches the detail column size, which counts characters.
const maxDetailRunes = 255

type AuditService struct{ db *gorm.DB }

func NewAuditService(db *gorm.DB) *AuditService { return &AuditService{db: db} }

func (s *AuditService) Migrate() error {
	return s.db.AutoMigrate(&model.AuditEvent{})
}

// Record stores ev. A failure is logged and dropped; it never fails the
// user's action.
func (s *AuditService) Record(ctx context.Context, ev model.AuditEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	ev.Detail = truncateRunes(ev.Detail, maxDetailRunes)
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		logger.Warn("audit.record.failed", "action", ev.Action, "request_id", ev.RequestID, "err", err)
	}
}

func (s *AuditService) Recent(ctx context.Context, identityID string, limit int) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := s.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// NopAuditor is used when no audit database is configured.
type NopAuditor struct{}

func (NopAuditor) Record(context.Context, model.AuditEvent) {}

func (NopAuditor) Recent(context.Context, string, int) ([]model.AuditEvent, error) {
	return []model.AuditEvent{}, nil
}
