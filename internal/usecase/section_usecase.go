package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go-resume-backend/internal/domain"
	"go-resume-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// sectionUsecase is the section mutator: it decodes and validates the typed
// payload for one addressable field, applies the requested action, recomputes
// the derived stats and persists with a targeted section update.
type sectionUsecase struct {
	resumeRepo domain.ResumeRepository
	cache      domain.ProjectionCache
	audit      domain.AuditRecorder
	validate   *validator.Validate
}

func NewSectionUsecase(resumeRepo domain.ResumeRepository, cache domain.ProjectionCache, audit domain.AuditRecorder, validate *validator.Validate) domain.SectionUsecase {
	return &sectionUsecase{
		resumeRepo: resumeRepo,
		cache:      cache,
		audit:      audit,
		validate:   validate,
	}
}

func (u *sectionUsecase) UpdateSection(ctx context.Context, userID, section string, m domain.SectionMutation) (*domain.Resume, error) {
	if !slices.Contains(domain.ValidSections, section) {
		return nil, apperror.BadRequest("Invalid section: " + section)
	}

	resume, err := u.resumeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, apperror.NotFound("Resume not found")
	}

	now := time.Now().UTC()
	var description string

	switch m.Action {
	case domain.ActionUpdate:
		if err := u.applyUpdate(resume, section, m.Data); err != nil {
			return nil, err
		}
		resume.RecalculateStats(now)
		if err := u.resumeRepo.ReplaceSection(ctx, userID, section, sectionValue(resume, section), resume.Stats); err != nil {
			return nil, err
		}
		description = fmt.Sprintf("Updated %s section", section)

	case domain.ActionAdd:
		if !slices.Contains(domain.ArraySections, section) {
			return nil, apperror.BadRequest("Cannot add to non-array section: " + section)
		}
		items, err := u.appendItem(resume, section, m.Data)
		if err != nil {
			return nil, err
		}
		resume.RecalculateStats(now)
		if err := u.resumeRepo.AppendItems(ctx, userID, section, items, resume.Stats); err != nil {
			return nil, err
		}
		description = fmt.Sprintf("Added item to %s section", section)

	case domain.ActionRemove:
		if m.ItemID == "" || !slices.Contains(domain.ArraySections, section) {
			return nil, apperror.BadRequest("Invalid remove operation")
		}
		removeItem(resume, section, m.ItemID)
		resume.RecalculateStats(now)
		if err := u.resumeRepo.RemoveItem(ctx, userID, section, m.ItemID, resume.Stats); err != nil {
			return nil, err
		}
		description = fmt.Sprintf("Removed item from %s section", section)

	default:
		return nil, apperror.BadRequest("Invalid action: " + m.Action)
	}

	// Every mutation can change the public projection; drop any cached copy.
	if u.cache != nil && resume.ShareToken != "" {
		_ = u.cache.Invalidate(ctx, resume.ShareToken)
	}

	u.audit.Record(ctx, userID, domain.ActionUpdateResume, description)
	return resume, nil
}

// applyUpdate replaces one field wholesale with the decoded payload.
func (u *sectionUsecase) applyUpdate(resume *domain.Resume, section string, data json.RawMessage) error {
	switch section {
	case domain.SectionPersonalInfo:
		var v domain.PersonalInfo
		if err := decodeJSON(data, &v); err != nil {
			return err
		}
		if err := u.validate.Struct(&v); err != nil {
			return apperror.UnprocessableEntity(err.Error())
		}
		resume.PersonalInfo = v

	case domain.SectionSummary:
		var s string
		if err := decodeJSON(data, &s); err != nil {
			return err
		}
		if err := u.validate.Var(s, "max=500"); err != nil {
			return apperror.UnprocessableEntity("summary must not exceed 500 characters")
		}
		resume.Summary = s

	case domain.SectionPreferences:
		var p domain.Preferences
		if err := decodeJSON(data, &p); err != nil {
			return err
		}
		if err := u.preparePreferences(&p); err != nil {
			return err
		}
		resume.Preferences = p

	case domain.SectionEducation:
		var items []domain.Education
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareEducation(&items[i]); err != nil {
				return err
			}
		}
		resume.Education = items

	case domain.SectionExperience:
		var items []domain.Experience
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareExperience(&items[i]); err != nil {
				return err
			}
		}
		resume.Experience = items

	case domain.SectionProjects:
		var items []domain.Project
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareProject(&items[i]); err != nil {
				return err
			}
		}
		resume.Projects = items

	case domain.SectionCertifications:
		var items []domain.Certification
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareCertification(&items[i]); err != nil {
				return err
			}
		}
		resume.Certifications = items

	case domain.SectionSkills:
		var items []domain.Skill
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareSkill(&items[i]); err != nil {
				return err
			}
		}
		resume.Skills = items

	case domain.SectionHackathons:
		var items []domain.Hackathon
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareHackathon(&items[i]); err != nil {
				return err
			}
		}
		resume.Hackathons = items

	case domain.SectionLanguages:
		var items []domain.Language
		if err := decodeJSON(data, &items); err != nil {
			return err
		}
		for i := range items {
			if err := u.prepareLanguage(&items[i]); err != nil {
				return err
			}
		}
		resume.Languages = items
	}
	return nil
}

// appendItem decodes one item for the named section, applies it to the loaded
// aggregate and returns the single-element slice handed to the targeted
// append.
func (u *sectionUsecase) appendItem(resume *domain.Resume, section string, data json.RawMessage) (any, error) {
	switch section {
	case domain.SectionEducation:
		var item domain.Education
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareEducation(&item); err != nil {
			return nil, err
		}
		resume.Education = append(resume.Education, item)
		return []domain.Education{item}, nil

	case domain.SectionExperience:
		var item domain.Experience
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareExperience(&item); err != nil {
			return nil, err
		}
		resume.Experience = append(resume.Experience, item)
		return []domain.Experience{item}, nil

	case domain.SectionProjects:
		var item domain.Project
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareProject(&item); err != nil {
			return nil, err
		}
		resume.Projects = append(resume.Projects, item)
		return []domain.Project{item}, nil

	case domain.SectionCertifications:
		var item domain.Certification
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareCertification(&item); err != nil {
			return nil, err
		}
		resume.Certifications = append(resume.Certifications, item)
		return []domain.Certification{item}, nil

	case domain.SectionSkills:
		var item domain.Skill
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareSkill(&item); err != nil {
			return nil, err
		}
		resume.Skills = append(resume.Skills, item)
		return []domain.Skill{item}, nil

	case domain.SectionHackathons:
		var item domain.Hackathon
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareHackathon(&item); err != nil {
			return nil, err
		}
		resume.Hackathons = append(resume.Hackathons, item)
		return []domain.Hackathon{item}, nil

	case domain.SectionLanguages:
		var item domain.Language
		if err := decodeJSON(data, &item); err != nil {
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := u.prepareLanguage(&item); err != nil {
			return nil, err
		}
		resume.Languages = append(resume.Languages, item)
		return []domain.Language{item}, nil
	}
	return nil, apperror.BadRequest("Cannot add to non-array section: " + section)
}

// removeItem drops the matching entry from the loaded aggregate. A missing id
// is a no-op, matching the behavior of a targeted pull.
func removeItem(resume *domain.Resume, section, itemID string) {
	switch section {
	case domain.SectionEducation:
		resume.Education = slices.DeleteFunc(resume.Education, func(e domain.Education) bool { return e.ID == itemID })
	case domain.SectionExperience:
		resume.Experience = slices.DeleteFunc(resume.Experience, func(e domain.Experience) bool { return e.ID == itemID })
	case domain.SectionProjects:
		resume.Projects = slices.DeleteFunc(resume.Projects, func(p domain.Project) bool { return p.ID == itemID })
	case domain.SectionCertifications:
		resume.Certifications = slices.DeleteFunc(resume.Certifications, func(c domain.Certification) bool { return c.ID == itemID })
	case domain.SectionSkills:
		resume.Skills = slices.DeleteFunc(resume.Skills, func(s domain.Skill) bool { return s.ID == itemID })
	case domain.SectionHackathons:
		resume.Hackathons = slices.DeleteFunc(resume.Hackathons, func(h domain.Hackathon) bool { return h.ID == itemID })
	case domain.SectionLanguages:
		resume.Languages = slices.DeleteFunc(resume.Languages, func(l domain.Language) bool { return l.ID == itemID })
	}
}

// sectionValue picks the field persisted by a wholesale update.
func sectionValue(resume *domain.Resume, section string) any {
	switch section {
	case domain.SectionPersonalInfo:
		return resume.PersonalInfo
	case domain.SectionSummary:
		return resume.Summary
	case domain.SectionPreferences:
		return resume.Preferences
	case domain.SectionEducation:
		return resume.Education
	case domain.SectionExperience:
		return resume.Experience
	case domain.SectionProjects:
		return resume.Projects
	case domain.SectionCertifications:
		return resume.Certifications
	case domain.SectionSkills:
		return resume.Skills
	case domain.SectionHackathons:
		return resume.Hackathons
	case domain.SectionLanguages:
		return resume.Languages
	}
	return nil
}

func decodeJSON(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return apperror.BadRequest("Missing data payload")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.BadRequest("Malformed data payload: " + err.Error())
	}
	return nil
}

// Per-section preparation: assign identities to entries that lack one,
// default the provenance tag, reject values outside the closed enum sets,
// then run struct validation.

func (u *sectionUsecase) prepareEducation(e *domain.Education) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.VerificationSource == "" {
		e.VerificationSource = "manual"
	}
	if !slices.Contains(domain.ValidEducationSources, e.VerificationSource) {
		return apperror.UnprocessableEntity("invalid verificationSource for education: " + e.VerificationSource)
	}
	if err := u.validate.Struct(e); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) prepareExperience(e *domain.Experience) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.VerificationSource == "" {
		e.VerificationSource = "manual"
	}
	if !slices.Contains(domain.ValidExperienceSources, e.VerificationSource) {
		return apperror.UnprocessableEntity("invalid verificationSource for experience: " + e.VerificationSource)
	}
	if !slices.Contains(domain.ValidEmploymentTypes, e.EmploymentType) {
		return apperror.UnprocessableEntity("invalid employmentType: " + e.EmploymentType)
	}
	if err := u.validate.Struct(e); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) prepareProject(p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.VerificationMethod == "" {
		p.VerificationMethod = "manual"
	}
	if !slices.Contains(domain.ValidProjectSources, p.VerificationMethod) {
		return apperror.UnprocessableEntity("invalid verificationMethod for project: " + p.VerificationMethod)
	}
	if err := u.validate.Struct(p); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) prepareCertification(c *domain.Certification) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.VerificationSource == "" {
		c.VerificationSource = "manual"
	}
	if !slices.Contains(domain.ValidCertificationSources, c.VerificationSource) {
		return apperror.UnprocessableEntity("invalid verificationSource for certification: " + c.VerificationSource)
	}
	if err := u.validate.Struct(c); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) prepareSkill(s *domain.Skill) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Level == "" {
		s.Level = "intermediate"
	}
	if s.VerificationSource == "" {
		s.VerificationSource = "manual"
	}
	if !slices.Contains(domain.ValidSkillLevels, s.Level) {
		return apperror.UnprocessableEntity("invalid skill level: " + s.Level)
	}
	if !slices.Contains(domain.ValidSkillCategories, s.Category) {
		return apperror.UnprocessableEntity("invalid skill category: " + s.Category)
	}
	if !slices.Contains(domain.ValidSkillSources, s.VerificationSource) {
		return apperror.UnprocessableEntity("invalid verificationSource for skill: " + s.VerificationSource)
	}
	if err := u.validate.Struct(s); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) prepareHackathon(h *domain.Hackathon) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Platform == "" {
		h.Platform = "other"
	}
	if h.VerificationSource == "" {
		h.VerificationSource = "manual"
	}
	if !slices.Contains(domain.ValidHackathonPlatforms, h.Platform) {
		return apperror.UnprocessableEntity("invalid hackathon platform: " + h.Platform)
	}
	if !slices.Contains(domain.ValidHackathonSources, h.VerificationSource) {
		return apperror.UnprocessableEntity("invalid verificationSource for hackathon: " + h.VerificationSource)
	}
	if err := u.validate.Struct(h); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) prepareLanguage(l *domain.Language) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if !slices.Contains(domain.ValidProficiencies, l.Proficiency) {
		return apperror.UnprocessableEntity("invalid language proficiency: " + l.Proficiency)
	}
	if err := u.validate.Struct(l); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}

func (u *sectionUsecase) preparePreferences(p *domain.Preferences) error {
	if p.Template == "" {
		p.Template = "modern"
	}
	if p.FontFamily == "" {
		p.FontFamily = "inter"
	}
	if !slices.Contains(domain.ValidTemplates, p.Template) {
		return apperror.UnprocessableEntity("invalid template: " + p.Template)
	}
	if !slices.Contains(domain.ValidFontFamilies, p.FontFamily) {
		return apperror.UnprocessableEntity("invalid fontFamily: " + p.FontFamily)
	}
	if err := u.validate.Struct(p); err != nil {
		return apperror.UnprocessableEntity(err.Error())
	}
	return nil
}
