package resume

import (
	"encoding/json"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// ValidateProposed filters the AI's raw proposed sections down to the
// candidate pool the merger may draw from. A rejected section never reaches
// the merger, so its slot falls back to the original. Rules are applied in
// order; the first match rejects.
func ValidateProposed(proposed []types.ProposedSection, logger *errors.Logger) []types.ProposedSection {
	candidates := make([]types.ProposedSection, 0, len(proposed))

	for _, section := range proposed {
		if reason := rejectReason(section); reason != "" {
			if logger != nil {
				logger.Warn("Rejected AI-proposed section",
					"section_id", section.ID,
					"section_type", section.Type,
					"reason", reason)
			}
			continue
		}
		candidates = append(candidates, section)
	}
	return candidates
}

func rejectReason(section types.ProposedSection) string {
	// Protected sections must never come from the AI
	if section.Type == types.SectionPersonalInfo || section.Type == types.SectionEducation {
		return "protected section type"
	}
	if section.ID == types.PersonalInfoID {
		return "protected section id"
	}

	if len(section.Content) == 0 || string(section.Content) == "null" {
		return "missing content"
	}

	switch section.Type {
	case types.SectionExperience, types.SectionLeadership, types.SectionProjects:
		if !isNonEmptyArray(section.Content) {
			return "content is not a non-empty array"
		}
	case types.SectionProfessionalSummary, types.SectionCareerObjective:
		if _, ok := decodeSummaryText(section.Content); !ok {
			return "summary text is absent or blank"
		}
	case types.SectionSkills:
		var payload struct {
			Categories json.RawMessage `json:"categories"`
		}
		if err := json.Unmarshal(section.Content, &payload); err != nil || !isNonEmptyArray(payload.Categories) {
			return "categories is not a non-empty array"
		}
	}
	return ""
}

func isNonEmptyArray(raw json.RawMessage) bool {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return false
	}
	return len(elements) > 0
}
