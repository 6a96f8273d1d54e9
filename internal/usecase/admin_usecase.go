package usecase

import (
	"context"

	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"
)

type adminUsecase struct {
	userRepo     domain.UserRepository
	resumeRepo   domain.ResumeRepository
	activityRepo domain.ActivityRepository
	cache        domain.ProjectionCache
	audit        domain.AuditRecorder
}

func NewAdminUsecase(userRepo domain.UserRepository, resumeRepo domain.ResumeRepository, activityRepo domain.ActivityRepository, cache domain.ProjectionCache, audit domain.AuditRecorder) domain.AdminUsecase {
	return &adminUsecase{
		userRepo:     userRepo,
		resumeRepo:   resumeRepo,
		activityRepo: activityRepo,
		cache:        cache,
		audit:        audit,
	}
}

// requireAdmin checks the caller's role. Works with both Gin context (c.Set)
// and standard context.WithValue.
func requireAdmin(ctx context.Context) error {
	role, _ := ctx.Value(string(domain.KeyUserRole)).(string)
	if role == "" {
		role, _ = ctx.Value(domain.KeyUserRole).(string)
	}
	if role != domain.RoleAdmin {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

func (u *adminUsecase) ListUsers(ctx context.Context, page, limit int) ([]domain.UserOverview, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return u.userRepo.List(ctx, page, limit)
}

func (u *adminUsecase) UserActivity(ctx context.Context, userID string, page, limit int) ([]domain.ActivityEntry, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return u.activityRepo.ListByUser(ctx, userID, page, limit)
}

// DeleteUser removes the account, its resume (by FK cascade) and its audit
// trail. Any outstanding share link dies with the resume.
func (u *adminUsecase) DeleteUser(ctx context.Context, userID string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("User not found")
	}

	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := u.activityRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if u.cache != nil && resume != nil && resume.ShareToken != "" {
		_ = u.cache.Invalidate(ctx, resume.ShareToken)
	}

	adminID, _ := ctx.Value(string(domain.KeyUserID)).(string)
	if adminID == "" {
		adminID, _ = ctx.Value(domain.KeyUserID).(string)
	}
	u.audit.Record(ctx, adminID, domain.ActionDeleteUser, "Deleted user "+userID)
	return nil
}
