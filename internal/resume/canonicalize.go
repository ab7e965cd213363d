package resume

import (
	"encoding/json"
	"strings"

	"resumeforge/internal/types"
)

// Canonicalize runs freshly structured sections through the same per-type
// normalizers the merger uses, so malformed AI output never reaches the
// client. Sections whose content cannot be repaired are dropped. Every kept
// section ends up with an id and a title.
func Canonicalize(proposed []types.ProposedSection) []types.ResumeSection {
	canonical := make([]types.ResumeSection, 0, len(proposed))

	for _, section := range proposed {
		if len(section.Content) == 0 || string(section.Content) == "null" {
			continue
		}

		content, ok := canonicalContent(section.Type, section.Content)
		if !ok {
			continue
		}

		id := section.ID
		if id == "" {
			id = freshID()
		}
		if section.Type == types.SectionPersonalInfo {
			id = types.PersonalInfoID
		}
		title := section.Title
		if strings.TrimSpace(title) == "" {
			title = defaultTitle(section.Type)
		}

		canonical = append(canonical, types.ResumeSection{
			ID:      id,
			Type:    section.Type,
			Title:   title,
			Content: content,
		})
	}
	return canonical
}

func canonicalContent(sectionType types.SectionType, raw json.RawMessage) (json.RawMessage, bool) {
	switch sectionType {
	case types.SectionExperience:
		entries := NormalizeExperience(raw, nil)
		if len(entries) == 0 {
			return nil, false
		}
		return mustMarshal(entries), true

	case types.SectionProjects:
		entries := NormalizeProjects(raw, nil)
		if len(entries) == 0 {
			return nil, false
		}
		return mustMarshal(entries), true

	case types.SectionProfessionalSummary, types.SectionCareerObjective:
		payload := NormalizeSummary(raw, nil)
		if strings.TrimSpace(payload.Text) == "" {
			return nil, false
		}
		return mustMarshal(payload), true

	case types.SectionSkills:
		payload, ok := NormalizeSkills(raw, nil)
		if !ok || len(payload.Categories) == 0 {
			return nil, false
		}
		return mustMarshal(payload), true

	case types.SectionLeadership, types.SectionCertifications, types.SectionAwards,
		types.SectionResearch, types.SectionPublications:
		bullets, ok := normalizeBullets(raw)
		if !ok || len(bullets) == 0 {
			return nil, false
		}
		return mustMarshal(bullets), true

	default:
		// personal-info, education and unknown types pass through when the
		// content is a JSON object or non-empty array
		if json.Valid(raw) && (isObject(raw) || isNonEmptyArray(raw)) {
			return raw, true
		}
		return nil, false
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

func defaultTitle(sectionType types.SectionType) string {
	switch sectionType {
	case types.SectionPersonalInfo:
		return "Personal Information"
	case types.SectionProfessionalSummary:
		return "Professional Summary"
	case types.SectionCareerObjective:
		return "Career Objective"
	case types.SectionExperience:
		return "Experience"
	case types.SectionLeadership:
		return "Leadership"
	case types.SectionEducation:
		return "Education"
	case types.SectionSkills:
		return "Skills"
	case types.SectionProjects:
		return "Projects"
	case types.SectionCertifications:
		return "Certifications"
	case types.SectionAwards:
		return "Awards"
	case types.SectionResearch:
		return "Research"
	case types.SectionPublications:
		return "Publications"
	default:
		return "Section"
	}
}
