package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go-resume-backend/internal/domain"
	"go-resume-backend/internal/repository/postgres"
	"go-resume-backend/internal/usecase"
	"go-resume-backend/pkg/apperror"
	"go-resume-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock Repositories

type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) GetByUserID(ctx context.Context, userID string) (*domain.Resume, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) GetByShareToken(ctx context.Context, token string) (*domain.Resume, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	return m.Called(ctx, resume).Error(0)
}

func (m *MockResumeRepo) Save(ctx context.Context, resume *domain.Resume) error {
	return m.Called(ctx, resume).Error(0)
}

func (m *MockResumeRepo) ReplaceSection(ctx context.Context, userID, section string, value any, stats domain.Stats) error {
	return m.Called(ctx, userID, section, value, stats).Error(0)
}

func (m *MockResumeRepo) AppendItems(ctx context.Context, userID, section string, items any, stats domain.Stats) error {
	return m.Called(ctx, userID, section, items, stats).Error(0)
}

func (m *MockResumeRepo) RemoveItem(ctx context.Context, userID, section, itemID string, stats domain.Stats) error {
	return m.Called(ctx, userID, section, itemID, stats).Error(0)
}

func (m *MockResumeRepo) SetShareToken(ctx context.Context, userID, token, visibility string, generatedAt time.Time) error {
	return m.Called(ctx, userID, token, visibility, generatedAt).Error(0)
}

func (m *MockResumeRepo) ClearShareToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockResumeRepo) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, page, limit int) ([]domain.UserOverview, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.UserOverview), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return m.Called(ctx, id, avatarURL).Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockActivityRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.ActivityEntry, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ActivityEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityRepo) DeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, token string) (*domain.PublicResume, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublicResume), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, token string, view *domain.PublicResume) error {
	return m.Called(ctx, token, view).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchGitHubProjects(ctx context.Context, accessToken string) ([]domain.Project, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockSource) FetchLinkedInExperience(ctx context.Context, accessToken string) ([]domain.Experience, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Experience), args.Error(1)
}

func (m *MockSource) FetchCourseraCertificates(ctx context.Context, accessToken string) ([]domain.Certification, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Certification), args.Error(1)
}

// stubAudit drops audit records; the audit path has its own test.
type stubAudit struct{}

func (stubAudit) Record(ctx context.Context, userID, action, description string) {}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func testResume() *domain.Resume {
	return &domain.Resume{
		ID:     1,
		UserID: "user1",
		Skills: []domain.Skill{
			{ID: "s1", Name: "Go", Category: "programming", Level: "advanced", VerificationSource: "manual"},
		},
		Projects: []domain.Project{
			{ID: "p1", Title: "CLI tool", StartDate: time.Now().AddDate(-1, 0, 0), Verified: true, VerificationMethod: "github"},
		},
		Preferences: domain.DefaultPreferences(),
		Visibility:  domain.VisibilityPrivate,
	}
}

func TestGetOrCreate(t *testing.T) {
	t.Run("Should return existing resume without creating", func(t *testing.T) {
		resumeRepo := new(MockResumeRepo)
		userRepo := new(MockUserRepo)
		existing := testResume()
		resumeRepo.On("GetByUserID", mock.Anything, "user1").Return(existing, nil)

		uc := usecase.NewResumeUsecase(resumeRepo, userRepo, nil, stubAudit{})
		resume, created, err := uc.GetOrCreate(context.Background(), "user1")

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing, resume)
		resumeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should seed a new resume from the user profile", func(t *testing.T) {
		resumeRepo := new(MockResumeRepo)
		userRepo := new(MockUserRepo)
		resumeRepo.On("GetByUserID", mock.Anything, "user1").Return(nil, nil)
		userRepo.On("GetByID", mock.Anything, "user1").Return(&domain.User{
			ID:       "user1",
			FullName: "Jane Dev",
			Email:    "jane@example.com",
			Phone:    "+6281234567890",
			SocialLinks: domain.SocialLinks{
				Github:   "https://github.com/janedev",
				Linkedin: "https://linkedin.com/in/janedev",
			},
		}, nil)
		resumeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)

		uc := usecase.NewResumeUsecase(resumeRepo, userRepo, nil, stubAudit{})
		resume, created, err := uc.GetOrCreate(context.Background(), "user1")

		assert.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "Jane Dev", resume.PersonalInfo.FullName)
		assert.Equal(t, "https://github.com/janedev", resume.PersonalInfo.GithubURL)
		assert.Equal(t, domain.VisibilityPrivate, resume.Visibility)
		assert.Equal(t, "modern", resume.Preferences.Template)
		assert.Equal(t, 0, resume.Stats.VerificationScore)
	})

	t.Run("Should fail when the user does not exist", func(t *testing.T) {
		resumeRepo := new(MockResumeRepo)
		userRepo := new(MockUserRepo)
		resumeRepo.On("GetByUserID", mock.Anything, "ghost").Return(nil, nil)
		userRepo.On("GetByID", mock.Anything, "ghost").Return(nil, nil)

		uc := usecase.NewResumeUsecase(resumeRepo, userRepo, nil, stubAudit{})
		_, _, err := uc.GetOrCreate(context.Background(), "ghost")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not found")
	})
}

func TestGetResume(t *testing.T) {
	t.Run("Should hint initialization when no resume exists", func(t *testing.T) {
		resumeRepo := new(MockResumeRepo)
		resumeRepo.On("GetByUserID", mock.Anything, "user1").Return(nil, nil)

		uc := usecase.NewResumeUsecase(resumeRepo, new(MockUserRepo), nil, stubAudit{})
		_, err := uc.Get(context.Background(), "user1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Please create a resume first")
	})
}

func TestUpdateSection(t *testing.T) {
	newUC := func(repo *MockResumeRepo) domain.SectionUsecase {
		return usecase.NewSectionUsecase(repo, nil, stubAudit{}, newValidator())
	}

	t.Run("Should reject an unknown section", func(t *testing.T) {
		uc := newUC(new(MockResumeRepo))
		_, err := uc.UpdateSection(context.Background(), "user1", "salary", domain.SectionMutation{Action: domain.ActionUpdate})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
		assert.Contains(t, err.Error(), "Invalid section")
	})

	t.Run("Should reject an unknown action", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{Action: "upsert"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid action")
	})

	t.Run("Should reject add on a scalar section", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		data, _ := json.Marshal("new summary")
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSummary, domain.SectionMutation{
			Action: domain.ActionAdd, Data: data,
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot add to non-array section")
	})

	t.Run("Should reject remove without an item id", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionRemove,
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid remove operation")
	})

	t.Run("Should reject a malformed payload", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionAdd, Data: json.RawMessage(`{"name": `),
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
		assert.Contains(t, err.Error(), "Malformed data payload")
	})

	t.Run("Should add a skill with server-assigned id and defaults", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("AppendItems", mock.Anything, "user1", domain.SectionSkills, mock.Anything, mock.Anything).Return(nil)

		uc := newUC(repo)
		data, _ := json.Marshal(map[string]any{
			"id":       "client-chosen",
			"name":     "PostgreSQL",
			"category": "tool",
		})
		resume, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionAdd, Data: data,
		})

		assert.NoError(t, err)
		assert.Len(t, resume.Skills, 2)
		added := resume.Skills[1]
		assert.NotEqual(t, "client-chosen", added.ID)
		assert.NotEmpty(t, added.ID)
		assert.Equal(t, "intermediate", added.Level)
		assert.Equal(t, "manual", added.VerificationSource)
		assert.False(t, added.Verified)
		repo.AssertCalled(t, "AppendItems", mock.Anything, "user1", domain.SectionSkills, mock.Anything, mock.Anything)
	})

	t.Run("Should reject an out-of-enum provenance tag", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		data, _ := json.Marshal(map[string]any{
			"name":               "PostgreSQL",
			"category":           "tool",
			"verificationSource": "trust-me",
		})
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionAdd, Data: data,
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 422, appErr.Code)
	})

	t.Run("Should reject a summary over 500 characters", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		data, _ := json.Marshal(strings.Repeat("a", 501))
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSummary, domain.SectionMutation{
			Action: domain.ActionUpdate, Data: data,
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 422, appErr.Code)
	})

	t.Run("Removing a missing id is a silent no-op", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("RemoveItem", mock.Anything, "user1", domain.SectionSkills, "nope", mock.Anything).Return(nil)

		uc := newUC(repo)
		resume, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionRemove, ItemID: "nope",
		})

		assert.NoError(t, err)
		assert.Len(t, resume.Skills, 1)
	})

	t.Run("Removing an item refreshes the score", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("RemoveItem", mock.Anything, "user1", domain.SectionProjects, "p1", mock.Anything).Return(nil)

		uc := newUC(repo)
		resume, err := uc.UpdateSection(context.Background(), "user1", domain.SectionProjects, domain.SectionMutation{
			Action: domain.ActionRemove, ItemID: "p1",
		})

		assert.NoError(t, err)
		assert.Len(t, resume.Projects, 0)
		// only the unverified skill remains
		assert.Equal(t, 0, resume.Stats.VerificationScore)
	})

	t.Run("Removing a verified item drops the cached public projection", func(t *testing.T) {
		repo := new(MockResumeRepo)
		cache := new(MockCache)
		shared := testResume()
		shared.ShareToken = "tok123"
		shared.Visibility = domain.VisibilityShared
		repo.On("GetByUserID", mock.Anything, "user1").Return(shared, nil)
		repo.On("RemoveItem", mock.Anything, "user1", domain.SectionProjects, "p1", mock.Anything).Return(nil)
		cache.On("Invalidate", mock.Anything, "tok123").Return(nil)

		uc := usecase.NewSectionUsecase(repo, cache, stubAudit{}, newValidator())
		_, err := uc.UpdateSection(context.Background(), "user1", domain.SectionProjects, domain.SectionMutation{
			Action: domain.ActionRemove, ItemID: "p1",
		})

		assert.NoError(t, err)
		cache.AssertCalled(t, "Invalidate", mock.Anything, "tok123")
	})

	t.Run("Re-adding a removed item gets a fresh identity", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("AppendItems", mock.Anything, "user1", domain.SectionSkills, mock.Anything, mock.Anything).Return(nil)
		repo.On("RemoveItem", mock.Anything, "user1", domain.SectionSkills, mock.Anything, mock.Anything).Return(nil)

		uc := newUC(repo)
		data, _ := json.Marshal(map[string]any{"name": "Kubernetes", "category": "tool"})

		resume, err := uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionAdd, Data: data,
		})
		assert.NoError(t, err)
		firstID := resume.Skills[len(resume.Skills)-1].ID

		_, err = uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionRemove, ItemID: firstID,
		})
		assert.NoError(t, err)

		resume, err = uc.UpdateSection(context.Background(), "user1", domain.SectionSkills, domain.SectionMutation{
			Action: domain.ActionAdd, Data: data,
		})
		assert.NoError(t, err)
		secondID := resume.Skills[len(resume.Skills)-1].ID

		assert.NotEmpty(t, secondID)
		assert.NotEqual(t, firstID, secondID)
	})
}

func TestVerifyItem(t *testing.T) {
	newUC := func(repo *MockResumeRepo) domain.ResumeUsecase {
		return usecase.NewResumeUsecase(repo, new(MockUserRepo), nil, stubAudit{})
	}

	t.Run("Should mark the item verified and recompute the score", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)

		uc := newUC(repo)
		resume, err := uc.VerifyItem(context.Background(), "user1", domain.VerifyItemRequest{
			Section: domain.SectionSkills, ItemID: "s1", Source: "test", VerifiedBy: "admin1",
		})

		assert.NoError(t, err)
		assert.True(t, resume.Skills[0].Verified)
		assert.Equal(t, "test", resume.Skills[0].VerificationSource)
		assert.NotNil(t, resume.Skills[0].VerifiedAt)
		assert.Equal(t, 100, resume.Stats.VerificationScore)
	})

	t.Run("Should reject a source outside the section's enum", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		_, err := uc.VerifyItem(context.Background(), "user1", domain.VerifyItemRequest{
			Section: domain.SectionSkills, ItemID: "s1", Source: "university_api",
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 422, appErr.Code)
	})

	t.Run("Should 404 on an unknown item id", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		_, err := uc.VerifyItem(context.Background(), "user1", domain.VerifyItemRequest{
			Section: domain.SectionSkills, ItemID: "missing", Source: "test",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Item not found in specified section")
	})

	t.Run("Should reject a non-item section", func(t *testing.T) {
		uc := newUC(new(MockResumeRepo))
		_, err := uc.VerifyItem(context.Background(), "user1", domain.VerifyItemRequest{
			Section: domain.SectionLanguages, ItemID: "l1", Source: "manual",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid section")
	})
}

func TestSharing(t *testing.T) {
	t.Run("Issue defaults to shared visibility and a 64-char token", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("SetShareToken", mock.Anything, "user1", mock.Anything, domain.VisibilityShared, mock.Anything).Return(nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), nil, nil, stubAudit{}, "https://resumehub.dev")
		grant, err := uc.Issue(context.Background(), "user1", "", false)

		assert.NoError(t, err)
		assert.Len(t, grant.ShareToken, 64)
		assert.Equal(t, domain.VisibilityShared, grant.Visibility)
		assert.Equal(t, "https://resumehub.dev/resume/"+grant.ShareToken, grant.ShareURL)
	})

	t.Run("Issue rejects private visibility", func(t *testing.T) {
		uc := usecase.NewSharingUsecase(new(MockResumeRepo), new(MockUserRepo), nil, nil, stubAudit{}, "")
		_, err := uc.Issue(context.Background(), "user1", domain.VisibilityPrivate, false)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid visibility")
	})

	t.Run("Issue retries on a token collision", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		repo.On("SetShareToken", mock.Anything, "user1", mock.Anything, domain.VisibilityShared, mock.Anything).
			Return(postgres.ErrShareTokenConflict).Once()
		repo.On("SetShareToken", mock.Anything, "user1", mock.Anything, domain.VisibilityShared, mock.Anything).
			Return(nil).Once()

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), nil, nil, stubAudit{}, "")
		grant, err := uc.Issue(context.Background(), "user1", domain.VisibilityShared, false)

		assert.NoError(t, err)
		assert.NotEmpty(t, grant.ShareToken)
		repo.AssertNumberOfCalls(t, "SetShareToken", 2)
	})

	t.Run("Re-issuing invalidates the previous cached projection", func(t *testing.T) {
		repo := new(MockResumeRepo)
		cache := new(MockCache)
		existing := testResume()
		existing.ShareToken = "oldtoken"
		existing.Visibility = domain.VisibilityShared
		repo.On("GetByUserID", mock.Anything, "user1").Return(existing, nil)
		repo.On("SetShareToken", mock.Anything, "user1", mock.Anything, domain.VisibilityShared, mock.Anything).Return(nil)
		cache.On("Invalidate", mock.Anything, "oldtoken").Return(nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), cache, nil, stubAudit{}, "")
		grant, err := uc.Issue(context.Background(), "user1", "", false)

		assert.NoError(t, err)
		assert.NotEqual(t, "oldtoken", grant.ShareToken)
		cache.AssertCalled(t, "Invalidate", mock.Anything, "oldtoken")
	})

	t.Run("Revoke is idempotent when nothing is shared", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), nil, nil, stubAudit{}, "")
		err := uc.Revoke(context.Background(), "user1")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "ClearShareToken", mock.Anything, mock.Anything)
	})

	t.Run("Revoke clears the token and the cached projection", func(t *testing.T) {
		repo := new(MockResumeRepo)
		cache := new(MockCache)
		shared := testResume()
		shared.ShareToken = "tok123"
		shared.Visibility = domain.VisibilityShared
		repo.On("GetByUserID", mock.Anything, "user1").Return(shared, nil)
		repo.On("ClearShareToken", mock.Anything, "user1").Return(nil)
		cache.On("Invalidate", mock.Anything, "tok123").Return(nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), cache, nil, stubAudit{}, "")
		err := uc.Revoke(context.Background(), "user1")

		assert.NoError(t, err)
		repo.AssertCalled(t, "ClearShareToken", mock.Anything, "user1")
		cache.AssertCalled(t, "Invalidate", mock.Anything, "tok123")
	})

	t.Run("Resolve hides unknown and private resumes identically", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByShareToken", mock.Anything, "unknown").Return(nil, nil)
		private := testResume()
		private.ShareToken = "stale"
		repo.On("GetByShareToken", mock.Anything, "stale").Return(private, nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), nil, nil, stubAudit{}, "")

		_, errUnknown := uc.Resolve(context.Background(), "unknown")
		_, errPrivate := uc.Resolve(context.Background(), "stale")

		assert.Error(t, errUnknown)
		assert.Error(t, errPrivate)
		assert.Equal(t, errUnknown.Error(), errPrivate.Error())
	})

	t.Run("Resolve serves the filtered projection and caches it", func(t *testing.T) {
		repo := new(MockResumeRepo)
		cache := new(MockCache)
		shared := testResume()
		shared.ShareToken = "tok123"
		shared.Visibility = domain.VisibilityShared
		repo.On("GetByShareToken", mock.Anything, "tok123").Return(shared, nil)
		cache.On("Get", mock.Anything, "tok123").Return(nil, nil)
		cache.On("Set", mock.Anything, "tok123", mock.AnythingOfType("*domain.PublicResume")).Return(nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), cache, nil, stubAudit{}, "")
		view, err := uc.Resolve(context.Background(), "tok123")

		assert.NoError(t, err)
		assert.Len(t, view.Projects, 1) // verified project passes
		assert.Len(t, view.Skills, 0)   // unverified skill filtered out
		cache.AssertCalled(t, "Set", mock.Anything, "tok123", mock.Anything)
	})

	t.Run("Resolve serves a cache hit without touching the store", func(t *testing.T) {
		repo := new(MockResumeRepo)
		cache := new(MockCache)
		cached := &domain.PublicResume{Summary: "cached"}
		cache.On("Get", mock.Anything, "tok123").Return(cached, nil)

		uc := usecase.NewSharingUsecase(repo, new(MockUserRepo), cache, nil, stubAudit{}, "")
		view, err := uc.Resolve(context.Background(), "tok123")

		assert.NoError(t, err)
		assert.Equal(t, "cached", view.Summary)
		repo.AssertNotCalled(t, "GetByShareToken", mock.Anything, mock.Anything)
	})
}

func TestSyncPlatforms(t *testing.T) {
	timeout := 5 * time.Second

	t.Run("Isolates a failing platform from a succeeding one", func(t *testing.T) {
		repo := new(MockResumeRepo)
		source := new(MockSource)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		source.On("FetchGitHubProjects", mock.Anything, "gh-token").Return([]domain.Project{
			{Title: "repo-one", StartDate: time.Now()},
			{Title: "repo-two", StartDate: time.Now()},
		}, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)

		uc := usecase.NewSyncUsecase(repo, source, nil, stubAudit{}, timeout)
		outcome, resume, err := uc.SyncPlatforms(context.Background(), "user1",
			[]string{"github", "myspace"}, map[string]string{"github": "gh-token"})

		assert.NoError(t, err)
		assert.Equal(t, 2, outcome.Added)
		assert.Len(t, outcome.Errors, 1)
		assert.Contains(t, outcome.Errors[0], "Unsupported platform: myspace")
		assert.Len(t, resume.Projects, 3)

		synced := resume.Projects[1]
		assert.True(t, synced.Verified)
		assert.Equal(t, "github", synced.VerificationMethod)
		assert.NotEmpty(t, synced.ID)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("Skips persistence when every platform fails", func(t *testing.T) {
		repo := new(MockResumeRepo)
		source := new(MockSource)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)
		source.On("FetchLinkedInExperience", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

		uc := usecase.NewSyncUsecase(repo, source, nil, stubAudit{}, timeout)
		outcome, _, err := uc.SyncPlatforms(context.Background(), "user1",
			[]string{"linkedin"}, map[string]string{"linkedin": "li-token"})

		assert.NoError(t, err)
		assert.Equal(t, 0, outcome.Added)
		assert.Len(t, outcome.Errors, 1)
		assert.Contains(t, outcome.Errors[0], "LinkedIn")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Persisted sync drops the cached public projection", func(t *testing.T) {
		repo := new(MockResumeRepo)
		source := new(MockSource)
		cache := new(MockCache)
		shared := testResume()
		shared.ShareToken = "tok123"
		shared.Visibility = domain.VisibilityShared
		repo.On("GetByUserID", mock.Anything, "user1").Return(shared, nil)
		source.On("FetchGitHubProjects", mock.Anything, "gh-token").Return([]domain.Project{
			{Title: "repo-one", StartDate: time.Now()},
		}, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)
		cache.On("Invalidate", mock.Anything, "tok123").Return(nil)

		uc := usecase.NewSyncUsecase(repo, source, cache, stubAudit{}, timeout)
		outcome, _, err := uc.SyncPlatforms(context.Background(), "user1",
			[]string{"github"}, map[string]string{"github": "gh-token"})

		assert.NoError(t, err)
		assert.Equal(t, 1, outcome.Added)
		cache.AssertCalled(t, "Invalidate", mock.Anything, "tok123")
	})

	t.Run("Rejects an empty platform list", func(t *testing.T) {
		uc := usecase.NewSyncUsecase(new(MockResumeRepo), new(MockSource), nil, stubAudit{}, timeout)
		_, _, err := uc.SyncPlatforms(context.Background(), "user1", nil, nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "No platforms specified")
	})
}

func TestAdminPrivilege(t *testing.T) {
	t.Run("Should fail if role is not admin", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), domain.KeyUserRole, domain.RoleUser)
		uc := usecase.NewAdminUsecase(new(MockUserRepo), new(MockResumeRepo), new(MockActivityRepo), nil, stubAudit{})

		_, _, err := uc.ListUsers(ctx, 1, 20)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Admin access required")
	})

	t.Run("Should fail safe if role is missing", func(t *testing.T) {
		uc := usecase.NewAdminUsecase(new(MockUserRepo), new(MockResumeRepo), new(MockActivityRepo), nil, stubAudit{})

		err := uc.DeleteUser(context.Background(), "user1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Admin access required")
	})

	t.Run("Admin delete removes account and audit trail", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), domain.KeyUserRole, domain.RoleAdmin)
		ctx = context.WithValue(ctx, domain.KeyUserID, "admin1")

		userRepo := new(MockUserRepo)
		resumeRepo := new(MockResumeRepo)
		activityRepo := new(MockActivityRepo)
		userRepo.On("GetByID", mock.Anything, "user1").Return(&domain.User{ID: "user1"}, nil)
		resumeRepo.On("GetByUserID", mock.Anything, "user1").Return(nil, nil)
		userRepo.On("Delete", mock.Anything, "user1").Return(nil)
		activityRepo.On("DeleteByUser", mock.Anything, "user1").Return(nil)

		uc := usecase.NewAdminUsecase(userRepo, resumeRepo, activityRepo, nil, stubAudit{})
		err := uc.DeleteUser(ctx, "user1")

		assert.NoError(t, err)
		userRepo.AssertCalled(t, "Delete", mock.Anything, "user1")
		activityRepo.AssertCalled(t, "DeleteByUser", mock.Anything, "user1")
	})
}

func TestStatsReport(t *testing.T) {
	repo := new(MockResumeRepo)
	repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

	uc := usecase.NewResumeUsecase(repo, new(MockUserRepo), nil, stubAudit{})
	report, err := uc.Stats(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Equal(t, 2, report.TotalItems)
	assert.Equal(t, 1, report.VerifiedItems)
	assert.Equal(t, 1, report.Sections[domain.SectionProjects].Verified)
	assert.Equal(t, 0, report.Sections[domain.SectionSkills].Verified)
	assert.Equal(t, 1, report.Sections[domain.SectionSkills].Total)
}

func TestExport(t *testing.T) {
	newUC := func(repo *MockResumeRepo) domain.ResumeUsecase {
		return usecase.NewResumeUsecase(repo, new(MockUserRepo), nil, stubAudit{})
	}

	t.Run("JSON export round-trips the document", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		result, err := uc.Export(context.Background(), "user1", "json")

		assert.NoError(t, err)
		assert.Equal(t, "application/json", result.ContentType)
		var decoded domain.Resume
		assert.NoError(t, json.Unmarshal(result.Body, &decoded))
		assert.Equal(t, "user1", decoded.UserID)
	})

	t.Run("Unsupported format is rejected", func(t *testing.T) {
		repo := new(MockResumeRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(testResume(), nil)

		uc := newUC(repo)
		_, err := uc.Export(context.Background(), "user1", "pdf")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unsupported export format")
	})
}

func TestAuditRecorder(t *testing.T) {
	t.Run("Attaches request metadata from the context", func(t *testing.T) {
		activityRepo := new(MockActivityRepo)
		ctx := context.WithValue(context.Background(), domain.KeyRequestMeta, domain.RequestMeta{
			IPAddress: "10.0.0.1",
			UserAgent: "curl/8.0",
		})
		activityRepo.On("Record", mock.Anything, mock.AnythingOfType("*domain.ActivityEntry")).Return(nil).Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.ActivityEntry)
			assert.Equal(t, "10.0.0.1", entry.IPAddress)
			assert.Equal(t, "curl/8.0", entry.UserAgent)
			assert.Equal(t, domain.ActionViewResume, entry.Action)
		})

		audit := usecase.NewAuditRecorder(activityRepo)
		audit.Record(ctx, "user1", domain.ActionViewResume, "Viewed their resume")

		activityRepo.AssertNumberOfCalls(t, "Record", 1)
	})

	t.Run("Swallows store failures", func(t *testing.T) {
		activityRepo := new(MockActivityRepo)
		activityRepo.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down"))

		audit := usecase.NewAuditRecorder(activityRepo)
		// must not panic or propagate
		audit.Record(context.Background(), "user1", domain.ActionViewResume, "Viewed their resume")
	})
}
