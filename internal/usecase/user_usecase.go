package usecase

import (
	"context"
	"fmt"
	"path"

	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"
	"go-resume-backend/pkg/storage"
)

// AvatarStore is the slice of object storage the profile surface needs.
type AvatarStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type userUsecase struct {
	userRepo     domain.UserRepository
	activityRepo domain.ActivityRepository
	avatars      AvatarStore
	audit        domain.AuditRecorder
}

func NewUserUsecase(userRepo domain.UserRepository, activityRepo domain.ActivityRepository, avatars AvatarStore, audit domain.AuditRecorder) domain.UserUsecase {
	return &userUsecase{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		avatars:      avatars,
		audit:        audit,
	}
}

func (u *userUsecase) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// UpdateAvatar normalizes the uploaded image and stores it under a stable
// per-user key, so re-uploads overwrite in place.
func (u *userUsecase) UpdateAvatar(ctx context.Context, id, filename string, data []byte) (string, error) {
	if u.avatars == nil {
		return "", apperror.New(503, "Avatar storage is not configured", nil)
	}

	normalized, contentType, err := storage.NormalizeAvatar(data)
	if err != nil {
		return "", apperror.UnprocessableEntity(fmt.Sprintf("Invalid avatar file %q: %v", path.Base(filename), err))
	}

	key := "avatars/" + id + ".jpg"
	url, err := u.avatars.Upload(ctx, key, contentType, normalized)
	if err != nil {
		return "", err
	}

	if err := u.userRepo.UpdateAvatar(ctx, id, url); err != nil {
		return "", err
	}

	u.audit.Record(ctx, id, domain.ActionUpdateAvatar, "Updated profile avatar")
	return url, nil
}

func (u *userUsecase) Activity(ctx context.Context, userID string, page, limit int) ([]domain.ActivityEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return u.activityRepo.ListByUser(ctx, userID, page, limit)
}
