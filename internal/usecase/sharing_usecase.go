package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"go-resume-backend/internal/domain"
	"go-resume-backend/internal/repository/postgres"
	"go-resume-backend/pkg/apperror"
	"go-resume-backend/pkg/email"
	"go-resume-backend/pkg/logger"
)

const shareTokenRetries = 3

type sharingUsecase struct {
	resumeRepo  domain.ResumeRepository
	userRepo    domain.UserRepository
	cache       domain.ProjectionCache
	emailSvc    *email.EmailService
	audit       domain.AuditRecorder
	frontendURL string
}

func NewSharingUsecase(resumeRepo domain.ResumeRepository, userRepo domain.UserRepository, cache domain.ProjectionCache, emailSvc *email.EmailService, audit domain.AuditRecorder, frontendURL string) domain.SharingUsecase {
	return &sharingUsecase{
		resumeRepo:  resumeRepo,
		userRepo:    userRepo,
		cache:       cache,
		emailSvc:    emailSvc,
		audit:       audit,
		frontendURL: frontendURL,
	}
}

// Issue mints a fresh share token and stores the requested visibility.
// Re-issuing replaces any previous token, which stops resolving immediately.
func (u *sharingUsecase) Issue(ctx context.Context, userID, visibility string, notify bool) (*domain.ShareGrant, error) {
	if visibility == "" {
		visibility = domain.VisibilityShared
	}
	if !slices.Contains([]string{domain.VisibilityPublic, domain.VisibilityShared}, visibility) {
		return nil, apperror.BadRequest("Invalid visibility: " + visibility)
	}

	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, apperror.NotFound("Resume not found")
	}

	oldToken := resume.ShareToken
	now := time.Now().UTC()

	var token string
	for attempt := 0; attempt < shareTokenRetries; attempt++ {
		token, err = generateShareToken()
		if err != nil {
			return nil, err
		}
		err = u.resumeRepo.SetShareToken(ctx, userID, token, visibility, now)
		if err == nil {
			break
		}
		if !errors.Is(err, postgres.ErrShareTokenConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if u.cache != nil && oldToken != "" {
		_ = u.cache.Invalidate(ctx, oldToken)
	}

	grant := &domain.ShareGrant{
		ShareToken: token,
		ShareURL:   u.frontendURL + "/resume/" + token,
		Visibility: visibility,
	}

	u.audit.Record(ctx, userID, domain.ActionGenerateShare, "Generated share link with "+visibility+" visibility")

	if notify && u.emailSvc != nil && u.emailSvc.IsConfigured() {
		u.sendShareEmail(ctx, userID, grant)
	}
	return grant, nil
}

// sendShareEmail is best effort. A failed notification never fails the grant.
func (u *sharingUsecase) sendShareEmail(ctx context.Context, userID string, grant *domain.ShareGrant) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		logger.Log.Warn("share link email skipped", "user_id", userID, "error", err)
		return
	}
	data := email.ShareLinkData{
		RecipientName: user.FullName,
		ShareURL:      grant.ShareURL,
		Visibility:    grant.Visibility,
	}
	if err := u.emailSvc.SendShareLink(user.Email, data); err != nil {
		logger.Log.Warn("share link email failed", "user_id", userID, "error", err)
	}
}

// Revoke clears the token and returns the resume to private. Revoking when no
// token exists is a no-op success.
func (u *sharingUsecase) Revoke(ctx context.Context, userID string) error {
	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if resume == nil {
		return apperror.NotFound("Resume not found")
	}

	if resume.ShareToken == "" && resume.Visibility == domain.VisibilityPrivate {
		return nil
	}

	if err := u.resumeRepo.ClearShareToken(ctx, userID); err != nil {
		return err
	}
	if u.cache != nil && resume.ShareToken != "" {
		_ = u.cache.Invalidate(ctx, resume.ShareToken)
	}

	u.audit.Record(ctx, userID, domain.ActionRevokeShare, "Revoked share link")
	return nil
}

// Resolve serves the redacted projection for a share token. Unknown tokens
// and tokens pointing at private resumes are indistinguishable to the caller.
func (u *sharingUsecase) Resolve(ctx context.Context, token string) (*domain.PublicResume, error) {
	if token == "" {
		return nil, apperror.NotFound("Resume not found or not shared")
	}

	if u.cache != nil {
		view, err := u.cache.Get(ctx, token)
		if err != nil {
			logger.Log.Warn("projection cache read failed", "error", err)
		} else if view != nil {
			return view, nil
		}
	}

	resume, err := u.resumeRepo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if resume == nil || !resume.Shareable() {
		return nil, apperror.NotFound("Resume not found or not shared")
	}

	view := resume.PublicView()
	if u.cache != nil {
		if err := u.cache.Set(ctx, token, view); err != nil {
			logger.Log.Warn("projection cache write failed", "error", err)
		}
	}

	u.audit.Record(ctx, resume.UserID, domain.ActionViewResume, "Resume viewed via share link")
	return view, nil
}

func generateShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
