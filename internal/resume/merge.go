package resume

import (
	"encoding/json"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Merge reconciles the AI's proposed sections with the user's originals and
// returns the replacement section list the client adopts wholesale, plus the
// change descriptions for sections that were actually replaced.
//
// The original order is always preserved; the AI cannot reorder sections.
// Protected sections (personal-info, education) pass through byte-for-byte.
// A single malformed proposed section degrades to its original content and
// never fails the rest of the merge.
func Merge(original []types.ResumeSection, proposed []types.ProposedSection, aiChanges []types.Change, logger *errors.Logger) ([]types.ResumeSection, []types.Change) {
	candidates := ValidateProposed(proposed, logger)
	consumed := make([]bool, len(candidates))

	changeByID := make(map[string]types.Change, len(aiChanges))
	for _, change := range aiChanges {
		changeByID[change.SectionID] = change
	}

	merged := make([]types.ResumeSection, 0, len(original))
	var changes []types.Change

	for _, section := range original {
		if section.Protected() {
			merged = append(merged, section)
			continue
		}

		index, found := findCandidate(section, candidates, consumed)
		if !found {
			merged = append(merged, section)
			continue
		}
		consumed[index] = true
		candidate := candidates[index]

		content, changed := normalizeContent(section.Type, candidate.Content, section.Content)
		title := candidate.Title
		if title == "" {
			title = section.Title
		}

		merged = append(merged, types.ResumeSection{
			ID:      section.ID,
			Type:    section.Type,
			Title:   title,
			Content: content,
		})

		if changed {
			changes = append(changes, changeFor(section, candidate, changeByID))
		}
	}

	// Defensive path for unexpected AI output: candidates whose id and type
	// both fail to match any original are appended after the preserved order.
	for i, candidate := range candidates {
		if consumed[i] || matchesAnyOriginal(candidate, original) {
			continue
		}
		merged = append(merged, types.ResumeSection{
			ID:      candidate.ID,
			Type:    candidate.Type,
			Title:   candidate.Title,
			Content: candidate.Content,
		})
	}

	merged = ensurePersonalInfo(original, merged)
	return merged, changes
}

// findCandidate searches the validated pool for the section matching an
// original: exact id first, then type plus an id-prefix heuristic, then
// plain type equality as a last resort.
func findCandidate(original types.ResumeSection, candidates []types.ProposedSection, consumed []bool) (int, bool) {
	for i, candidate := range candidates {
		if !consumed[i] && candidate.ID != "" && candidate.ID == original.ID {
			return i, true
		}
	}
	prefix := idPrefix(original.ID)
	for i, candidate := range candidates {
		if !consumed[i] && candidate.Type == original.Type && idPrefix(candidate.ID) == prefix {
			return i, true
		}
	}
	for i, candidate := range candidates {
		if !consumed[i] && candidate.Type == original.Type {
			return i, true
		}
	}
	return 0, false
}

// idPrefix returns the substring before the first hyphen, the stable part of
// ids like "experience-0"
func idPrefix(id string) string {
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return id[:i]
	}
	return id
}

func matchesAnyOriginal(candidate types.ProposedSection, original []types.ResumeSection) bool {
	for _, section := range original {
		if section.ID == candidate.ID || section.Type == candidate.Type {
			return true
		}
	}
	return false
}

// normalizeContent dispatches to the type-appropriate normalizer. The second
// return value reports whether the AI content was actually adopted; a false
// means the slot fell back to the original wholesale.
func normalizeContent(sectionType types.SectionType, aiRaw, originalRaw json.RawMessage) (json.RawMessage, bool) {
	switch sectionType {
	case types.SectionExperience, types.SectionLeadership:
		if !isNonEmptyArray(aiRaw) {
			return originalRaw, false
		}
		return mustMarshal(NormalizeExperience(aiRaw, originalRaw)), true
	case types.SectionProjects:
		if !isNonEmptyArray(aiRaw) {
			return originalRaw, false
		}
		return mustMarshal(NormalizeProjects(aiRaw, originalRaw)), true
	case types.SectionProfessionalSummary, types.SectionCareerObjective:
		if _, ok := decodeSummaryText(aiRaw); !ok {
			return originalRaw, false
		}
		return mustMarshal(NormalizeSummary(aiRaw, originalRaw)), true
	case types.SectionSkills:
		payload, adopted := NormalizeSkills(aiRaw, originalRaw)
		if !adopted {
			// Keep the stored bytes untouched rather than re-encoding
			return originalRaw, false
		}
		return mustMarshal(payload), true
	default:
		// Certifications, awards, research, publications carry free-form
		// list payloads; the validated AI value is adopted as-is.
		return aiRaw, true
	}
}

func changeFor(original types.ResumeSection, candidate types.ProposedSection, changeByID map[string]types.Change) types.Change {
	title := candidate.Title
	if title == "" {
		title = original.Title
	}
	if change, ok := changeByID[candidate.ID]; ok {
		change.SectionID = original.ID
		change.SectionTitle = title
		return change
	}
	if change, ok := changeByID[original.ID]; ok {
		change.SectionTitle = title
		return change
	}
	return types.Change{
		SectionID:    original.ID,
		SectionTitle: title,
		ChangeType:   "updated",
		Description:  "Section content tailored to the job description",
	}
}

// ensurePersonalInfo is the final safety net: whatever the upstream rules
// did, the merged result contains the pre-merge personal-info section,
// unmodified, at index 0.
func ensurePersonalInfo(original, merged []types.ResumeSection) []types.ResumeSection {
	source, ok := findPersonalInfo(original)
	if !ok {
		return merged
	}

	for i, section := range merged {
		if isPersonalInfo(section) {
			merged[i] = source
			if i != 0 {
				merged = append(merged[:i], merged[i+1:]...)
				merged = append([]types.ResumeSection{source}, merged...)
			}
			return merged
		}
	}
	return append([]types.ResumeSection{source}, merged...)
}

func findPersonalInfo(sections []types.ResumeSection) (types.ResumeSection, bool) {
	for _, section := range sections {
		if isPersonalInfo(section) {
			return section, true
		}
	}
	return types.ResumeSection{}, false
}

func isPersonalInfo(section types.ResumeSection) bool {
	return section.ID == types.PersonalInfoID || section.Type == types.SectionPersonalInfo
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Only reachable for unmarshalable Go types, which the canonical
		// payloads are not
		panic(err)
	}
	return data
}
