package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

const defaultSummary = "Experienced professional with strong technical skills and proven track record."

type resumeUsecase struct {
	resumeRepo domain.ResumeRepository
	userRepo   domain.UserRepository
	cache      domain.ProjectionCache
	audit      domain.AuditRecorder
}

func NewResumeUsecase(resumeRepo domain.ResumeRepository, userRepo domain.UserRepository, cache domain.ProjectionCache, audit domain.AuditRecorder) domain.ResumeUsecase {
	return &resumeUsecase{
		resumeRepo: resumeRepo,
		userRepo:   userRepo,
		cache:      cache,
		audit:      audit,
	}
}

// GetOrCreate returns the owner's resume, creating it on first access from
// the identity snapshot. The boolean reports whether a new document was
// created.
func (u *resumeUsecase) GetOrCreate(ctx context.Context, userID string) (*domain.Resume, bool, error) {
	existing, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, apperror.NotFound("User not found")
	}

	now := time.Now().UTC()
	resume := &domain.Resume{
		UserID: userID,
		PersonalInfo: domain.PersonalInfo{
			FullName:     user.FullName,
			Email:        user.Email,
			Phone:        user.Phone,
			GithubURL:    user.SocialLinks.Github,
			LinkedinURL:  user.SocialLinks.Linkedin,
			PortfolioURL: user.SocialLinks.Website,
		},
		Summary:     defaultSummary,
		Preferences: domain.DefaultPreferences(),
		Visibility:  domain.VisibilityPrivate,
	}
	resume.RecalculateStats(now)

	if err := u.resumeRepo.Create(ctx, resume); err != nil {
		return nil, false, err
	}

	u.audit.Record(ctx, userID, domain.ActionCreateResume, "Initialized new resume profile")
	return resume, true, nil
}

func (u *resumeUsecase) Get(ctx context.Context, userID string) (*domain.Resume, error) {
	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, apperror.NotFound("Resume not found. Please create a resume first.")
	}

	u.audit.Record(ctx, userID, domain.ActionViewResume, "Viewed their resume")
	return resume, nil
}

func (u *resumeUsecase) Delete(ctx context.Context, userID string) error {
	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if resume == nil {
		return apperror.NotFound("Resume not found")
	}

	if err := u.resumeRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("Resume not found")
		}
		return err
	}

	// Any outstanding share link dies with the document.
	if u.cache != nil && resume.ShareToken != "" {
		_ = u.cache.Invalidate(ctx, resume.ShareToken)
	}

	u.audit.Record(ctx, userID, domain.ActionDeleteResume, "Deleted resume profile")
	return nil
}

// VerifyItem flips the verified flag on one item located by section and item
// id, stamping provenance and verifier identity.
func (u *resumeUsecase) VerifyItem(ctx context.Context, userID string, req domain.VerifyItemRequest) (*domain.Resume, error) {
	if !slices.Contains(domain.ItemSections, req.Section) {
		return nil, apperror.BadRequest("Invalid section: " + req.Section)
	}
	if req.ItemID == "" {
		return nil, apperror.BadRequest("Missing item id")
	}

	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, apperror.NotFound("Resume not found")
	}

	now := time.Now().UTC()
	verifiedAt := now
	if req.VerifiedAt != nil {
		verifiedAt = *req.VerifiedAt
	}

	if err := stampVerification(resume, req, verifiedAt); err != nil {
		return nil, err
	}

	resume.RecalculateStats(now)
	if err := u.resumeRepo.Save(ctx, resume); err != nil {
		return nil, err
	}

	// The verified flag feeds the public projection; drop any cached copy.
	if u.cache != nil && resume.ShareToken != "" {
		_ = u.cache.Invalidate(ctx, resume.ShareToken)
	}

	u.audit.Record(ctx, userID, domain.ActionVerifyItem, fmt.Sprintf("Verified %s item", req.Section))
	return resume, nil
}

func stampVerification(resume *domain.Resume, req domain.VerifyItemRequest, verifiedAt time.Time) error {
	var verifiedBy *string
	if req.VerifiedBy != "" {
		verifiedBy = &req.VerifiedBy
	}

	checkSource := func(valid []string) error {
		if !slices.Contains(valid, req.Source) {
			return apperror.UnprocessableEntity("invalid verification source: " + req.Source)
		}
		return nil
	}

	switch req.Section {
	case domain.SectionEducation:
		if err := checkSource(domain.ValidEducationSources); err != nil {
			return err
		}
		for i := range resume.Education {
			if resume.Education[i].ID == req.ItemID {
				resume.Education[i].Verified = true
				resume.Education[i].VerificationSource = req.Source
				resume.Education[i].VerifiedBy = verifiedBy
				resume.Education[i].VerifiedAt = &verifiedAt
				return nil
			}
		}
	case domain.SectionExperience:
		if err := checkSource(domain.ValidExperienceSources); err != nil {
			return err
		}
		for i := range resume.Experience {
			if resume.Experience[i].ID == req.ItemID {
				resume.Experience[i].Verified = true
				resume.Experience[i].VerificationSource = req.Source
				resume.Experience[i].VerifiedBy = verifiedBy
				resume.Experience[i].VerifiedAt = &verifiedAt
				return nil
			}
		}
	case domain.SectionProjects:
		if err := checkSource(domain.ValidProjectSources); err != nil {
			return err
		}
		for i := range resume.Projects {
			if resume.Projects[i].ID == req.ItemID {
				resume.Projects[i].Verified = true
				resume.Projects[i].VerificationMethod = req.Source
				resume.Projects[i].VerifiedBy = verifiedBy
				resume.Projects[i].VerifiedAt = &verifiedAt
				return nil
			}
		}
	case domain.SectionCertifications:
		if err := checkSource(domain.ValidCertificationSources); err != nil {
			return err
		}
		for i := range resume.Certifications {
			if resume.Certifications[i].ID == req.ItemID {
				resume.Certifications[i].Verified = true
				resume.Certifications[i].VerificationSource = req.Source
				resume.Certifications[i].VerifiedBy = verifiedBy
				resume.Certifications[i].VerifiedAt = &verifiedAt
				return nil
			}
		}
	case domain.SectionSkills:
		if err := checkSource(domain.ValidSkillSources); err != nil {
			return err
		}
		for i := range resume.Skills {
			if resume.Skills[i].ID == req.ItemID {
				resume.Skills[i].Verified = true
				resume.Skills[i].VerificationSource = req.Source
				resume.Skills[i].VerifiedBy = verifiedBy
				resume.Skills[i].VerifiedAt = &verifiedAt
				return nil
			}
		}
	case domain.SectionHackathons:
		if err := checkSource(domain.ValidHackathonSources); err != nil {
			return err
		}
		for i := range resume.Hackathons {
			if resume.Hackathons[i].ID == req.ItemID {
				resume.Hackathons[i].Verified = true
				resume.Hackathons[i].VerificationSource = req.Source
				resume.Hackathons[i].VerifiedBy = verifiedBy
				resume.Hackathons[i].VerifiedAt = &verifiedAt
				return nil
			}
		}
	}
	return apperror.NotFound("Item not found in specified section")
}

// Stats returns the derived stats plus a per-section breakdown.
func (u *resumeUsecase) Stats(ctx context.Context, userID string) (*domain.StatsReport, error) {
	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, apperror.NotFound("Resume not found")
	}

	total, verified := resume.CountItems()
	report := &domain.StatsReport{
		VerificationScore: resume.Stats.VerificationScore,
		TotalItems:        total,
		VerifiedItems:     verified,
		LastUpdated:       resume.Stats.LastUpdated,
		Sections: map[string]domain.SectionStats{
			domain.SectionEducation:      countSection(resume.Education, func(e domain.Education) bool { return e.Verified }),
			domain.SectionExperience:     countSection(resume.Experience, func(e domain.Experience) bool { return e.Verified }),
			domain.SectionProjects:       countSection(resume.Projects, func(p domain.Project) bool { return p.Verified }),
			domain.SectionCertifications: countSection(resume.Certifications, func(c domain.Certification) bool { return c.Verified }),
			domain.SectionSkills:         countSection(resume.Skills, func(s domain.Skill) bool { return s.Verified }),
			domain.SectionHackathons:     countSection(resume.Hackathons, func(h domain.Hackathon) bool { return h.Verified }),
		},
	}
	return report, nil
}

func countSection[T any](items []T, verified func(T) bool) domain.SectionStats {
	s := domain.SectionStats{Total: len(items)}
	for _, item := range items {
		if verified(item) {
			s.Verified++
		}
	}
	return s
}

// Export renders the resume as a downloadable document. PDF output is out of
// scope; JSON and plain text cover machine and human consumption.
func (u *resumeUsecase) Export(ctx context.Context, userID, format string) (*domain.ExportResult, error) {
	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, apperror.NotFound("Resume not found")
	}

	var result *domain.ExportResult
	switch strings.ToLower(format) {
	case "json":
		body, err := json.MarshalIndent(resume, "", "  ")
		if err != nil {
			return nil, err
		}
		result = &domain.ExportResult{ContentType: "application/json", Filename: "resume.json", Body: body}
	case "text":
		result = &domain.ExportResult{ContentType: "text/plain", Filename: "resume.txt", Body: renderText(resume)}
	default:
		return nil, apperror.BadRequest("Unsupported export format: " + format)
	}

	u.audit.Record(ctx, userID, domain.ActionExportResume, fmt.Sprintf("Exported resume as %s", strings.ToUpper(format)))
	return result, nil
}

func renderText(r *domain.Resume) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.PersonalInfo.FullName)
	fmt.Fprintf(&b, "%s | %s\n\n", r.PersonalInfo.Email, r.PersonalInfo.Phone)
	if r.Summary != "" {
		fmt.Fprintf(&b, "Summary:\n%s\n\n", r.Summary)
	}
	if len(r.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, e := range r.Experience {
			fmt.Fprintf(&b, "  %s at %s (%s)\n", e.Position, e.Company, e.EmploymentType)
		}
		b.WriteString("\n")
	}
	if len(r.Education) > 0 {
		b.WriteString("Education:\n")
		for _, e := range r.Education {
			fmt.Fprintf(&b, "  %s, %s - %s\n", e.Degree, e.FieldOfStudy, e.Institution)
		}
		b.WriteString("\n")
	}
	if len(r.Projects) > 0 {
		b.WriteString("Projects:\n")
		for _, p := range r.Projects {
			fmt.Fprintf(&b, "  %s", p.Title)
			if p.ProjectURL != "" {
				fmt.Fprintf(&b, " (%s)", p.ProjectURL)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(r.Skills) > 0 {
		names := make([]string, 0, len(r.Skills))
		for _, s := range r.Skills {
			names = append(names, s.Name)
		}
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(names, ", "))
	}
	return []byte(b.String())
}
