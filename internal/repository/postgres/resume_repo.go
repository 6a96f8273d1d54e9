package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-resume-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrShareTokenConflict is returned when the unique index on share_token
// rejects a freshly generated token; the caller regenerates and retries.
var ErrShareTokenConflict = errors.New("share token already in use")

const uniqueViolation = "23505"

// sectionColumns whitelists the addressable JSONB columns; anything outside
// this map never reaches SQL.
var sectionColumns = map[string]string{
	domain.SectionPersonalInfo:   "personal_info",
	domain.SectionEducation:      "education",
	domain.SectionExperience:     "experience",
	domain.SectionProjects:       "projects",
	domain.SectionCertifications: "certifications",
	domain.SectionSkills:         "skills",
	domain.SectionHackathons:     "hackathons",
	domain.SectionLanguages:      "languages",
	domain.SectionPreferences:    "preferences",
}

type resumeRepository struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepository{db: db}
}

const resumeColumns = `
	id, user_id, personal_info, summary, education, experience, projects,
	certifications, skills, hackathons, languages, preferences, visibility,
	COALESCE(share_token, ''), last_generated, stats, created_at, updated_at`

func (r *resumeRepository) GetByUserID(ctx context.Context, userID string) (*domain.Resume, error) {
	query := `SELECT` + resumeColumns + ` FROM resumes WHERE user_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

func (r *resumeRepository) GetByShareToken(ctx context.Context, token string) (*domain.Resume, error) {
	query := `SELECT` + resumeColumns + ` FROM resumes WHERE share_token = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, token))
}

func (r *resumeRepository) scanOne(row pgx.Row) (*domain.Resume, error) {
	var (
		res           domain.Resume
		personalInfo  []byte
		education     []byte
		experience    []byte
		projects      []byte
		certification []byte
		skills        []byte
		hackathons    []byte
		languages     []byte
		preferences   []byte
		stats         []byte
	)

	err := row.Scan(
		&res.ID, &res.UserID, &personalInfo, &res.Summary, &education,
		&experience, &projects, &certification, &skills, &hackathons,
		&languages, &preferences, &res.Visibility, &res.ShareToken,
		&res.LastGenerated, &stats, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	for _, field := range []struct {
		raw []byte
		dst any
	}{
		{personalInfo, &res.PersonalInfo},
		{education, &res.Education},
		{experience, &res.Experience},
		{projects, &res.Projects},
		{certification, &res.Certifications},
		{skills, &res.Skills},
		{hackathons, &res.Hackathons},
		{languages, &res.Languages},
		{preferences, &res.Preferences},
		{stats, &res.Stats},
	} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("decode resume column: %w", err)
		}
	}
	return &res, nil
}

func (r *resumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	cols, err := marshalSections(resume)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO resumes (
			user_id, personal_info, summary, education, experience, projects,
			certifications, skills, hackathons, languages, preferences,
			visibility, stats, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		resume.UserID, cols.personalInfo, resume.Summary, cols.education,
		cols.experience, cols.projects, cols.certifications, cols.skills,
		cols.hackathons, cols.languages, cols.preferences, resume.Visibility,
		cols.stats,
	).Scan(&resume.ID, &resume.CreatedAt, &resume.UpdatedAt)
}

func (r *resumeRepository) Save(ctx context.Context, resume *domain.Resume) error {
	cols, err := marshalSections(resume)
	if err != nil {
		return err
	}

	query := `
		UPDATE resumes SET
			personal_info = $2, summary = $3, education = $4, experience = $5,
			projects = $6, certifications = $7, skills = $8, hackathons = $9,
			languages = $10, preferences = $11, visibility = $12,
			share_token = NULLIF($13, ''), last_generated = $14, stats = $15,
			updated_at = now()
		WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query,
		resume.UserID, cols.personalInfo, resume.Summary, cols.education,
		cols.experience, cols.projects, cols.certifications, cols.skills,
		cols.hackathons, cols.languages, cols.preferences, resume.Visibility,
		resume.ShareToken, resume.LastGenerated, cols.stats,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *resumeRepository) ReplaceSection(ctx context.Context, userID, section string, value any, stats domain.Stats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	if section == domain.SectionSummary {
		summary, ok := value.(string)
		if !ok {
			return fmt.Errorf("summary value must be a string")
		}
		query := `UPDATE resumes SET summary = $2, stats = $3::jsonb, updated_at = now() WHERE user_id = $1`
		return r.exec(ctx, query, userID, summary, statsJSON)
	}

	col, ok := sectionColumns[section]
	if !ok {
		return fmt.Errorf("unknown section column: %s", section)
	}
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`UPDATE resumes SET %s = $2::jsonb, stats = $3::jsonb, updated_at = now() WHERE user_id = $1`, col)
	return r.exec(ctx, query, userID, valueJSON, statsJSON)
}

// AppendItems concatenates a JSON array onto one section column in a single
// statement, avoiding a read-modify-write of the whole document.
func (r *resumeRepository) AppendItems(ctx context.Context, userID, section string, items any, stats domain.Stats) error {
	col, ok := sectionColumns[section]
	if !ok {
		return fmt.Errorf("unknown section column: %s", section)
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`UPDATE resumes SET %s = %s || $2::jsonb, stats = $3::jsonb, updated_at = now() WHERE user_id = $1`, col, col)
	return r.exec(ctx, query, userID, itemsJSON, statsJSON)
}

// RemoveItem re-aggregates the section array without the matching element.
// WITH ORDINALITY keeps the surviving elements in their stored order, and
// IS DISTINCT FROM keeps elements that carry no id key at all.
func (r *resumeRepository) RemoveItem(ctx context.Context, userID, section, itemID string, stats domain.Stats) error {
	col, ok := sectionColumns[section]
	if !ok {
		return fmt.Errorf("unknown section column: %s", section)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE resumes SET %s = COALESCE(
			(SELECT jsonb_agg(elem ORDER BY ord)
			 FROM jsonb_array_elements(%s) WITH ORDINALITY AS t(elem, ord)
			 WHERE elem->>'id' IS DISTINCT FROM $2),
			'[]'::jsonb
		), stats = $3::jsonb, updated_at = now()
		WHERE user_id = $1`, col, col)
	return r.exec(ctx, query, userID, itemID, statsJSON)
}

func (r *resumeRepository) SetShareToken(ctx context.Context, userID, token, visibility string, generatedAt time.Time) error {
	query := `
		UPDATE resumes
		SET share_token = $2, visibility = $3, last_generated = $4, updated_at = now()
		WHERE user_id = $1`
	err := r.exec(ctx, query, userID, token, visibility, generatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrShareTokenConflict
	}
	return err
}

func (r *resumeRepository) ClearShareToken(ctx context.Context, userID string) error {
	query := `
		UPDATE resumes
		SET share_token = NULL, visibility = $2, updated_at = now()
		WHERE user_id = $1`
	return r.exec(ctx, query, userID, domain.VisibilityPrivate)
}

func (r *resumeRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM resumes WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *resumeRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type sectionJSON struct {
	personalInfo   []byte
	education      []byte
	experience     []byte
	projects       []byte
	certifications []byte
	skills         []byte
	hackathons     []byte
	languages      []byte
	preferences    []byte
	stats          []byte
}

func marshalSections(resume *domain.Resume) (*sectionJSON, error) {
	var (
		cols sectionJSON
		err  error
	)
	for _, field := range []struct {
		src any
		dst *[]byte
	}{
		{resume.PersonalInfo, &cols.personalInfo},
		{emptyIfNil(resume.Education), &cols.education},
		{emptyIfNil(resume.Experience), &cols.experience},
		{emptyIfNil(resume.Projects), &cols.projects},
		{emptyIfNil(resume.Certifications), &cols.certifications},
		{emptyIfNil(resume.Skills), &cols.skills},
		{emptyIfNil(resume.Hackathons), &cols.hackathons},
		{emptyIfNil(resume.Languages), &cols.languages},
		{resume.Preferences, &cols.preferences},
		{resume.Stats, &cols.stats},
	} {
		if *field.dst, err = json.Marshal(field.src); err != nil {
			return nil, fmt.Errorf("encode resume column: %w", err)
		}
	}
	return &cols, nil
}

// emptyIfNil keeps JSONB columns as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
