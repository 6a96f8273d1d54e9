package domain

import (
	"context"
	"math"
	"time"
)

// Visibility constants
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
	VisibilityShared  = "shared"
)

// ValidVisibilities for validation
var ValidVisibilities = []string{VisibilityPrivate, VisibilityPublic, VisibilityShared}

// Language proficiency constants
const (
	ProficiencyBasic        = "basic"
	ProficiencyIntermediate = "intermediate"
	ProficiencyFluent       = "fluent"
	ProficiencyNative       = "native"
)

var ValidProficiencies = []string{ProficiencyBasic, ProficiencyIntermediate, ProficiencyFluent, ProficiencyNative}

// Employment type constants
const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentFreelance  = "freelance"
)

var ValidEmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentFreelance}

// Skill level and category constants
var (
	ValidSkillLevels     = []string{"beginner", "intermediate", "advanced", "expert"}
	ValidSkillCategories = []string{"programming", "framework", "tool", "language", "soft-skill", "other"}
)

// Hackathon platform constants
var ValidHackathonPlatforms = []string{"devpost", "hackerearth", "codeforces", "leetcode", "other", "custom"}

// Per-section verification source sets. Each repeated section carries its own
// closed set of acceptable provenance tags; anything else is rejected at the
// boundary.
var (
	ValidEducationSources     = []string{"manual", "linkedin", "university_api", "other"}
	ValidExperienceSources    = []string{"manual", "company_email", "offer_letter", "linkedin", "other"}
	ValidProjectSources       = []string{"manual", "github", "deployment", "code_review", "other"}
	ValidCertificationSources = []string{"manual", "platform_api", "certificate_file", "coursera", "other"}
	ValidSkillSources         = []string{"manual", "project", "certification", "work_experience", "test", "other"}
	ValidHackathonSources     = []string{"manual", "platform_api", "certificate", "other"}
)

// Preference enumerations
var (
	ValidTemplates    = []string{"modern", "classic", "creative", "minimal", "technical"}
	ValidFontFamilies = []string{"inter", "roboto", "opensans", "lato", "poppins"}
)

// PersonalInfo is the owner's contact snapshot, seeded from the identity record
// at lazy-create time and freely editable afterwards.
type PersonalInfo struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,valid_phone"`
	Location     string `json:"location"`
	PortfolioURL string `json:"portfolioUrl" validate:"omitempty,url"`
	LinkedinURL  string `json:"linkedinUrl" validate:"omitempty,url"`
	GithubURL    string `json:"githubUrl" validate:"omitempty,url"`
}

type Education struct {
	ID                 string     `json:"id"`
	Institution        string     `json:"institution" validate:"required"`
	Degree             string     `json:"degree" validate:"required"`
	FieldOfStudy       string     `json:"fieldOfStudy" validate:"required"`
	StartDate          time.Time  `json:"startDate" validate:"required"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	Current            bool       `json:"current"`
	Grade              string     `json:"grade,omitempty"`
	Description        string     `json:"description,omitempty"`
	Verified           bool       `json:"verified"`
	VerificationSource string     `json:"verificationSource"`
	VerifiedBy         *string    `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
}

type Experience struct {
	ID                 string     `json:"id"`
	Company            string     `json:"company" validate:"required"`
	Position           string     `json:"position" validate:"required"`
	EmploymentType     string     `json:"employmentType" validate:"required"`
	Location           string     `json:"location,omitempty"`
	StartDate          time.Time  `json:"startDate" validate:"required"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	Current            bool       `json:"current"`
	Description        string     `json:"description,omitempty"`
	Skills             []string   `json:"skills,omitempty"`
	Verified           bool       `json:"verified"`
	VerificationSource string     `json:"verificationSource"`
	VerifiedBy         *string    `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
}

type Project struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title" validate:"required"`
	Description        string     `json:"description,omitempty"`
	StartDate          time.Time  `json:"startDate" validate:"required"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	Current            bool       `json:"current"`
	ProjectURL         string     `json:"projectUrl,omitempty" validate:"omitempty,url"`
	GithubURL          string     `json:"githubUrl,omitempty" validate:"omitempty,url"`
	LiveURL            string     `json:"liveUrl,omitempty" validate:"omitempty,url"`
	Skills             []string   `json:"skills,omitempty"`
	Verified           bool       `json:"verified"`
	VerificationMethod string     `json:"verificationMethod"`
	VerifiedBy         *string    `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
}

type Certification struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name" validate:"required"`
	IssuingOrganization string     `json:"issuingOrganization" validate:"required"`
	IssueDate           time.Time  `json:"issueDate" validate:"required"`
	ExpirationDate      *time.Time `json:"expirationDate,omitempty"`
	CredentialID        string     `json:"credentialId,omitempty"`
	CredentialURL       string     `json:"credentialUrl,omitempty" validate:"omitempty,url"`
	Skills              []string   `json:"skills,omitempty"`
	Verified            bool       `json:"verified"`
	VerificationSource  string     `json:"verificationSource"`
	VerifiedBy          *string    `json:"verifiedBy,omitempty"`
	VerifiedAt          *time.Time `json:"verifiedAt,omitempty"`
}

type Skill struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name" validate:"required"`
	Level              string     `json:"level"`
	Category           string     `json:"category" validate:"required"`
	YearsOfExperience  float64    `json:"yearsOfExperience,omitempty" validate:"gte=0"`
	Verified           bool       `json:"verified"`
	VerificationSource string     `json:"verificationSource"`
	VerifiedBy         *string    `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
	LastUsed           *time.Time `json:"lastUsed,omitempty"`
}

type Hackathon struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name" validate:"required"`
	Platform           string     `json:"platform"`
	Position           string     `json:"position,omitempty"`
	Date               time.Time  `json:"date" validate:"required"`
	Description        string     `json:"description,omitempty"`
	ProjectTitle       string     `json:"projectTitle,omitempty"`
	ProjectURL         string     `json:"projectUrl,omitempty" validate:"omitempty,url"`
	Skills             []string   `json:"skills,omitempty"`
	Verified           bool       `json:"verified"`
	VerificationSource string     `json:"verificationSource"`
	VerifiedBy         *string    `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
}

type Language struct {
	ID          string `json:"id"`
	Language    string `json:"language" validate:"required"`
	Proficiency string `json:"proficiency" validate:"required"`
}

type ColorScheme struct {
	Primary   string `json:"primary" validate:"omitempty,hex_color"`
	Secondary string `json:"secondary" validate:"omitempty,hex_color"`
}

type Preferences struct {
	Template    string      `json:"template"`
	ColorScheme ColorScheme `json:"colorScheme"`
	FontFamily  string      `json:"fontFamily"`
	AutoUpdate  bool        `json:"autoUpdate"`
}

// DefaultPreferences returns the rendering defaults applied at lazy create.
func DefaultPreferences() Preferences {
	return Preferences{
		Template:    "modern",
		ColorScheme: ColorScheme{Primary: "#2563eb", Secondary: "#64748b"},
		FontFamily:  "inter",
		AutoUpdate:  true,
	}
}

// Stats is derived state. Callers never set it directly; every persisting
// write path recomputes it via RecalculateStats.
type Stats struct {
	TotalVerifiedItems int       `json:"totalVerifiedItems"`
	VerificationScore  int       `json:"verificationScore"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// Resume is the aggregate root, one per user.
type Resume struct {
	ID             int64           `json:"id"`
	UserID         string          `json:"userId"`
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary" validate:"max=500"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Skills         []Skill         `json:"skills"`
	Hackathons     []Hackathon     `json:"hackathons"`
	Languages      []Language      `json:"languages"`
	Preferences    Preferences     `json:"preferences"`
	Visibility     string          `json:"visibility"`
	ShareToken     string          `json:"shareToken,omitempty"`
	LastGenerated  *time.Time      `json:"lastGenerated,omitempty"`
	Stats          Stats           `json:"stats"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CountItems returns the total and verified item counts across the six
// repeated sections. Pure; no side effects.
func (r *Resume) CountItems() (total, verified int) {
	for _, e := range r.Education {
		total++
		if e.Verified {
			verified++
		}
	}
	for _, e := range r.Experience {
		total++
		if e.Verified {
			verified++
		}
	}
	for _, p := range r.Projects {
		total++
		if p.Verified {
			verified++
		}
	}
	for _, c := range r.Certifications {
		total++
		if c.Verified {
			verified++
		}
	}
	for _, s := range r.Skills {
		total++
		if s.Verified {
			verified++
		}
	}
	for _, h := range r.Hackathons {
		total++
		if h.Verified {
			verified++
		}
	}
	return total, verified
}

// RecalculateStats refreshes the derived stats block. Every usecase that can
// change section membership or verified flags calls this before persisting;
// there is deliberately no implicit persistence hook.
func (r *Resume) RecalculateStats(now time.Time) {
	total, verified := r.CountItems()
	r.Stats.TotalVerifiedItems = verified
	if total > 0 {
		r.Stats.VerificationScore = int(math.Round(float64(verified) / float64(total) * 100))
	} else {
		r.Stats.VerificationScore = 0
	}
	r.Stats.LastUpdated = now
}

// Shareable reports whether the resume may be served to non-owners.
func (r *Resume) Shareable() bool {
	return r.Visibility == VisibilityPublic || r.Visibility == VisibilityShared
}

// PublicResume is the redacted projection served through a share token.
type PublicResume struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Skills         []Skill         `json:"skills"`
	Hackathons     []Hackathon     `json:"hackathons"`
	Languages      []Language      `json:"languages"`
	Preferences    Preferences     `json:"preferences"`
	Stats          Stats           `json:"stats"`
}

// PublicView builds the share-token projection. Projects, certifications,
// skills and hackathons are reduced to verified items only; education,
// experience, languages and the contact block pass through unfiltered.
func (r *Resume) PublicView() *PublicResume {
	v := &PublicResume{
		PersonalInfo:   r.PersonalInfo,
		Summary:        r.Summary,
		Education:      r.Education,
		Experience:     r.Experience,
		Projects:       make([]Project, 0, len(r.Projects)),
		Certifications: make([]Certification, 0, len(r.Certifications)),
		Skills:         make([]Skill, 0, len(r.Skills)),
		Hackathons:     make([]Hackathon, 0, len(r.Hackathons)),
		Languages:      r.Languages,
		Preferences:    r.Preferences,
		Stats:          r.Stats,
	}
	for _, p := range r.Projects {
		if p.Verified {
			v.Projects = append(v.Projects, p)
		}
	}
	for _, c := range r.Certifications {
		if c.Verified {
			v.Certifications = append(v.Certifications, c)
		}
	}
	for _, s := range r.Skills {
		if s.Verified {
			v.Skills = append(v.Skills, s)
		}
	}
	for _, h := range r.Hackathons {
		if h.Verified {
			v.Hackathons = append(v.Hackathons, h)
		}
	}
	return v
}

// SectionStats is the per-section breakdown returned by the stats endpoint.
type SectionStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
}

// StatsReport aggregates the derived stats with a per-section breakdown.
type StatsReport struct {
	VerificationScore int                     `json:"verificationScore"`
	TotalItems        int                     `json:"totalItems"`
	VerifiedItems     int                     `json:"verifiedItems"`
	Sections          map[string]SectionStats `json:"sections"`
	LastUpdated       time.Time               `json:"lastUpdated"`
}

// ShareGrant is the result of issuing a share token.
type ShareGrant struct {
	ShareToken string `json:"shareToken"`
	ShareURL   string `json:"shareUrl"`
	Visibility string `json:"visibility"`
}

// VerifyItemRequest flips the verified flag on one item located by section and
// item id, stamping provenance and verifier identity.
type VerifyItemRequest struct {
	Section    string     `json:"section"`
	ItemID     string     `json:"itemId"`
	Source     string     `json:"source"`
	VerifiedBy string     `json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// ExportResult carries a rendered resume document.
type ExportResult struct {
	ContentType string
	Filename    string
	Body        []byte
}

// ResumeRepository persists the aggregate. Section-level methods update one
// JSONB column atomically (plus the stats block) to keep the lost-update
// window small; Save replaces the whole document and is reserved for paths
// that already hold the loaded aggregate.
type ResumeRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Resume, error)
	GetByShareToken(ctx context.Context, token string) (*Resume, error)
	Create(ctx context.Context, resume *Resume) error
	Save(ctx context.Context, resume *Resume) error
	ReplaceSection(ctx context.Context, userID, section string, value any, stats Stats) error
	AppendItems(ctx context.Context, userID, section string, items any, stats Stats) error
	RemoveItem(ctx context.Context, userID, section, itemID string, stats Stats) error
	SetShareToken(ctx context.Context, userID, token, visibility string, generatedAt time.Time) error
	ClearShareToken(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

// ProjectionCache caches resolved public projections keyed by share token.
// A nil/unavailable cache is acceptable; resolution falls through to the store.
type ProjectionCache interface {
	Get(ctx context.Context, token string) (*PublicResume, error)
	Set(ctx context.Context, token string, view *PublicResume) error
	Invalidate(ctx context.Context, token string) error
}

// ResumeUsecase is the lifecycle manager: create-on-first-use, fetch, delete,
// item verification, stats and export.
type ResumeUsecase interface {
	GetOrCreate(ctx context.Context, userID string) (*Resume, bool, error)
	Get(ctx context.Context, userID string) (*Resume, error)
	Delete(ctx context.Context, userID string) error
	VerifyItem(ctx context.Context, userID string, req VerifyItemRequest) (*Resume, error)
	Stats(ctx context.Context, userID string) (*StatsReport, error)
	Export(ctx context.Context, userID, format string) (*ExportResult, error)
}

// SharingUsecase owns the share-token lifecycle and the public projection.
type SharingUsecase interface {
	Issue(ctx context.Context, userID, visibility string, notify bool) (*ShareGrant, error)
	Revoke(ctx context.Context, userID string) error
	Resolve(ctx context.Context, token string) (*PublicResume, error)
}
