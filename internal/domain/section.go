package domain

import (
	"context"
	"encoding/json"
)

// Addressable top-level resume fields for section mutation.
const (
	SectionPersonalInfo   = "personalInfo"
	SectionSummary        = "summary"
	SectionEducation      = "education"
	SectionExperience     = "experience"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionSkills         = "skills"
	SectionHackathons     = "hackathons"
	SectionLanguages      = "languages"
	SectionPreferences    = "preferences"
)

// ValidSections is the full addressable set.
var ValidSections = []string{
	SectionPersonalInfo, SectionSummary, SectionEducation, SectionExperience,
	SectionProjects, SectionCertifications, SectionSkills, SectionHackathons,
	SectionLanguages, SectionPreferences,
}

// ItemSections are the six repeated sections whose entries carry identities
// and verification flags. Languages is array-typed too but its entries have
// neither; it supports add/remove by position only through full replacement.
var ItemSections = []string{
	SectionEducation, SectionExperience, SectionProjects,
	SectionCertifications, SectionSkills, SectionHackathons,
}

// ArraySections are the fields that accept add/remove.
var ArraySections = []string{
	SectionEducation, SectionExperience, SectionProjects,
	SectionCertifications, SectionSkills, SectionHackathons, SectionLanguages,
}

// Mutation actions
const (
	ActionUpdate = "update"
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// SectionMutation is one add/update/remove request against a named section.
// Data is decoded per section and action; ItemID addresses the entry to
// remove.
type SectionMutation struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
	ItemID string          `json:"itemId"`
}

// SectionUsecase applies a mutation to one section of the caller's resume,
// recomputes stats and records an audit entry on success.
type SectionUsecase interface {
	UpdateSection(ctx context.Context, userID, section string, m SectionMutation) (*Resume, error)
}
