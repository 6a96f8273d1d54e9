package usecase

import (
	"context"

	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/logger"
)

// auditRecorder writes audit entries best-effort: a failed write is logged
// and otherwise ignored so the triggering operation still succeeds.
type auditRecorder struct {
	repo domain.ActivityRepository
}

func NewAuditRecorder(repo domain.ActivityRepository) domain.AuditRecorder {
	return &auditRecorder{repo: repo}
}

func (a *auditRecorder) Record(ctx context.Context, userID, action, description string) {
	// Works with both Gin context (c.Set) and standard context.WithValue.
	meta, ok := ctx.Value(string(domain.KeyRequestMeta)).(domain.RequestMeta)
	if !ok {
		meta, _ = ctx.Value(domain.KeyRequestMeta).(domain.RequestMeta)
	}

	entry := &domain.ActivityEntry{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}
	if err := a.repo.Record(ctx, entry); err != nil {
		logger.Log.Error("failed to record activity", "user_id", userID, "action", action, "error", err)
	}
}
