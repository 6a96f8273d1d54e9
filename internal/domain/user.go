package domain

import (
	"context"
	"time"
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SocialLinks mirrors the identity record's link block used to seed
// personalInfo at lazy create.
type SocialLinks struct {
	Github   string `json:"github,omitempty" validate:"omitempty,url"`
	Linkedin string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
}

// User is the identity record. Credential handling (password hashing, token
// issuance) lives outside this service; we only read the profile snapshot.
type User struct {
	ID          string      `json:"id"`
	FullName    string      `json:"fullName" validate:"required,min=4,max=100,valid_name"`
	Email       string      `json:"email" validate:"required,email"`
	Phone       string      `json:"phone" validate:"omitempty,valid_phone"`
	Role        string      `json:"role"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// UserOverview is the admin listing row: identity plus a digest of the
// account's recent audit trail.
type UserOverview struct {
	User
	ActivityCount int      `json:"activityCount"`
	RecentActions []string `json:"recentActions"`
}

// UserRepository reads and maintains identity records.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, page, limit int) ([]UserOverview, int64, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	Delete(ctx context.Context, id string) error
}

// AuthUsecase resolves the authenticated principal for the middleware.
type AuthUsecase interface {
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}

// UserUsecase covers the owner-facing profile surface.
type UserUsecase interface {
	Get(ctx context.Context, id string) (*User, error)
	UpdateAvatar(ctx context.Context, id, filename string, data []byte) (string, error)
	Activity(ctx context.Context, userID string, page, limit int) ([]ActivityEntry, int64, error)
}

// AdminUsecase covers account management and audit review.
type AdminUsecase interface {
	ListUsers(ctx context.Context, page, limit int) ([]UserOverview, int64, error)
	UserActivity(ctx context.Context, userID string, page, limit int) ([]ActivityEntry, int64, error)
	DeleteUser(ctx context.Context, userID string) error
}
