package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"
	"go-resume-backend/pkg/logger"

	"github.com/google/uuid"
)

type syncUsecase struct {
	resumeRepo      domain.ResumeRepository
	source          domain.IntegrationSource
	cache           domain.ProjectionCache
	audit           domain.AuditRecorder
	platformTimeout time.Duration
}

func NewSyncUsecase(resumeRepo domain.ResumeRepository, source domain.IntegrationSource, cache domain.ProjectionCache, audit domain.AuditRecorder, platformTimeout time.Duration) domain.SyncUsecase {
	return &syncUsecase{
		resumeRepo:      resumeRepo,
		source:          source,
		cache:           cache,
		audit:           audit,
		platformTimeout: platformTimeout,
	}
}

// SyncPlatforms pulls records from each requested platform and merges them
// into the resume. Platforms are processed independently: a failure is
// recorded in the outcome and the loop moves on. The resume is persisted once
// after the whole batch.
func (u *syncUsecase) SyncPlatforms(ctx context.Context, userID string, platforms []string, accessTokens map[string]string) (*domain.SyncOutcome, *domain.Resume, error) {
	if len(platforms) == 0 {
		return nil, nil, apperror.BadRequest("No platforms specified")
	}

	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if resume == nil {
		return nil, nil, apperror.NotFound("Resume not found")
	}

	outcome := &domain.SyncOutcome{Errors: []string{}}
	now := time.Now().UTC()

	for _, platform := range platforms {
		if err := u.syncOne(ctx, resume, platform, accessTokens[platform], now, outcome); err != nil {
			outcome.Errors = append(outcome.Errors, err.Error())
			logger.Log.Warn("platform sync failed", "user_id", userID, "platform", platform, "error", err)
		}
	}

	if outcome.Added > 0 || outcome.Updated > 0 {
		resume.LastGenerated = &now
		resume.RecalculateStats(now)
		if err := u.resumeRepo.Save(ctx, resume); err != nil {
			return nil, nil, err
		}
		// Synced items arrive verified and feed the public projection.
		if u.cache != nil && resume.ShareToken != "" {
			_ = u.cache.Invalidate(ctx, resume.ShareToken)
		}
	}

	u.audit.Record(ctx, userID, domain.ActionPlatformSync, "Synced with: "+strings.Join(platforms, ", "))
	return outcome, resume, nil
}

func (u *syncUsecase) syncOne(ctx context.Context, resume *domain.Resume, platform, accessToken string, now time.Time, outcome *domain.SyncOutcome) error {
	ctx, cancel := context.WithTimeout(ctx, u.platformTimeout)
	defer cancel()

	switch platform {
	case domain.PlatformGitHub:
		projects, err := u.source.FetchGitHubProjects(ctx, accessToken)
		if err != nil {
			return fmt.Errorf("GitHub: %w", err)
		}
		for _, p := range projects {
			p.ID = uuid.NewString()
			p.Verified = true
			p.VerificationMethod = "github"
			p.VerifiedAt = &now
			resume.Projects = append(resume.Projects, p)
			outcome.Added++
		}
	case domain.PlatformLinkedIn:
		experience, err := u.source.FetchLinkedInExperience(ctx, accessToken)
		if err != nil {
			return fmt.Errorf("LinkedIn: %w", err)
		}
		for _, e := range experience {
			e.ID = uuid.NewString()
			e.Verified = true
			e.VerificationSource = "linkedin"
			e.VerifiedAt = &now
			resume.Experience = append(resume.Experience, e)
			outcome.Added++
		}
	case domain.PlatformCoursera:
		certs, err := u.source.FetchCourseraCertificates(ctx, accessToken)
		if err != nil {
			return fmt.Errorf("Coursera: %w", err)
		}
		for _, c := range certs {
			c.ID = uuid.NewString()
			c.Verified = true
			c.VerificationSource = "coursera"
			c.VerifiedAt = &now
			resume.Certifications = append(resume.Certifications, c)
			outcome.Added++
		}
	default:
		return fmt.Errorf("Unsupported platform: %s", platform)
	}
	return nil
}
