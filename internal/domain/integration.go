package domain

import "context"

// Platform identifiers recognized by the sync orchestrator.
const (
	PlatformGitHub   = "github"
	PlatformLinkedIn = "linkedin"
	PlatformCoursera = "coursera"
)

// IntegrationSource fetches normalized records from one external platform.
// Implementations are stateless; credentials travel with the call. Returned
// records are plain section items without identities or verification flags
// set; the orchestrator stamps both.
type IntegrationSource interface {
	FetchGitHubProjects(ctx context.Context, accessToken string) ([]Project, error)
	FetchLinkedInExperience(ctx context.Context, accessToken string) ([]Experience, error)
	FetchCourseraCertificates(ctx context.Context, accessToken string) ([]Certification, error)
}

// SyncOutcome is the partial-success result of one platform sync batch.
type SyncOutcome struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// SyncUsecase merges external platform records into the resume, isolating
// per-platform failures so one broken integration never aborts the batch.
type SyncUsecase interface {
	SyncPlatforms(ctx context.Context, userID string, platforms []string, accessTokens map[string]string) (*SyncOutcome, *Resume, error)
}
