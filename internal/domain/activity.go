package domain

import (
	"context"
	"time"
)

// Activity action tags
const (
	ActionCreateResume  = "create-resume"
	ActionViewResume    = "view-resume"
	ActionUpdateResume  = "update-resume"
	ActionDeleteResume  = "delete-resume"
	ActionGenerateShare = "generate-share-link"
	ActionRevokeShare   = "revoke-share-link"
	ActionPlatformSync  = "platform-sync"
	ActionVerifyItem    = "verify-item"
	ActionExportResume  = "export-resume"
	ActionUpdateAvatar  = "avatar"
	ActionDeleteUser    = "delete-user"
)

// ActivityEntry is one append-only audit record.
type ActivityEntry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RequestMeta carries the caller metadata attached to audit entries. The
// delivery layer stashes it in the request context under KeyRequestMeta.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// KeyRequestMeta is the context key for RequestMeta.
const KeyRequestMeta CtxKey = "RequestMeta"

// ActivityRepository is the append-only audit store.
type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityEntry) error
	ListByUser(ctx context.Context, userID string, page, limit int) ([]ActivityEntry, int64, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// AuditRecorder is the fire-and-forget audit sink used by the usecases.
// Implementations read RequestMeta from the context and must never propagate
// failures to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, userID, action, description string)
}
