package resume

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"resumeforge/internal/types"
)

// The normalizers reconcile one AI-provided content value against the
// corresponding original content. They are the only place loosely-typed AI
// JSON is decoded; everything downstream sees canonical payloads.
//
// Two invariants hold for every list-shaped normalizer:
//   - an original entry's id is never replaced while a match exists
//   - original entries the AI did not claim are appended unmodified, so the
//     merge can add or modify entries but never lose one

// looseExperienceEntry tolerates the shapes the AI actually returns: missing
// ids, absent fields, and bullets as bare strings or objects.
type looseExperienceEntry struct {
	ID             string          `json:"id"`
	Company        string          `json:"company"`
	Role           string          `json:"role"`
	AdditionalRole string          `json:"additionalRole"`
	Location       string          `json:"location"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Bullets        json.RawMessage `json:"bullets"`
}

type looseProjectEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	URL          string `json:"url"`
}

type looseSkillCategory struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Keywords json.RawMessage `json:"keywords"`
}

func freshID() string {
	return uuid.NewString()
}

// decodeCanonicalExperience decodes stored experience content into canonical
// entries. Stored content is trusted for identity but may still carry
// bare-string bullets from older clients; those are promoted here so a
// malformed bullet shape is never persisted back.
func decodeCanonicalExperience(raw json.RawMessage) []types.ExperienceEntry {
	var loose []looseExperienceEntry
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil
	}

	entries := make([]types.ExperienceEntry, 0, len(loose))
	for _, le := range loose {
		entry := types.ExperienceEntry{
			ID:             le.ID,
			Company:        le.Company,
			Role:           le.Role,
			AdditionalRole: le.AdditionalRole,
			Location:       le.Location,
			StartDate:      le.StartDate,
			EndDate:        le.EndDate,
		}
		if entry.ID == "" {
			entry.ID = freshID()
		}
		bullets, ok := normalizeBullets(le.Bullets)
		if !ok {
			bullets = []types.BulletEntry{}
		}
		entry.Bullets = bullets
		entries = append(entries, entry)
	}
	return entries
}

func decodeCanonicalProjects(raw json.RawMessage) []types.ProjectEntry {
	var loose []looseProjectEntry
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil
	}

	entries := make([]types.ProjectEntry, 0, len(loose))
	for _, lp := range loose {
		entry := types.ProjectEntry{
			ID:           lp.ID,
			Name:         lp.Name,
			Description:  lp.Description,
			Technologies: lp.Technologies,
			URL:          lp.URL,
		}
		if entry.ID == "" {
			entry.ID = freshID()
		}
		entries = append(entries, entry)
	}
	return entries
}

// normalizeBullets converts an AI bullets value into canonical {id, text}
// entries. Each element may be a bare string or an object with a text field.
// Returns ok=false when the value is absent or not a usable array, in which
// case the caller falls back to the matched original's bullets.
func normalizeBullets(raw json.RawMessage) ([]types.BulletEntry, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, false
	}

	bullets := make([]types.BulletEntry, 0, len(elements))
	for _, element := range elements {
		var text string
		if err := json.Unmarshal(element, &text); err == nil {
			bullets = append(bullets, types.BulletEntry{ID: freshID(), Text: text})
			continue
		}

		var bullet types.BulletEntry
		if err := json.Unmarshal(element, &bullet); err == nil && bullet.Text != "" {
			if bullet.ID == "" {
				bullet.ID = freshID()
			}
			bullets = append(bullets, bullet)
			continue
		}

		// One malformed bullet poisons the whole list; the caller keeps the
		// original entry's bullets instead.
		return nil, false
	}
	return bullets, true
}

// matchOriginalExperience locates the original entry an AI entry refers to,
// trying array index, company, role, then id, skipping entries already
// claimed by an earlier AI entry.
func matchOriginalExperience(index int, ai looseExperienceEntry, originals []types.ExperienceEntry, claimed map[string]bool) (types.ExperienceEntry, bool) {
	if index < len(originals) && !claimed[originals[index].ID] {
		return originals[index], true
	}
	for _, original := range originals {
		if !claimed[original.ID] && ai.Company != "" && original.Company == ai.Company {
			return original, true
		}
	}
	for _, original := range originals {
		if !claimed[original.ID] && ai.Role != "" && original.Role == ai.Role {
			return original, true
		}
	}
	for _, original := range originals {
		if !claimed[original.ID] && ai.ID != "" && original.ID == ai.ID {
			return original, true
		}
	}
	return types.ExperienceEntry{}, false
}

func matchOriginalProject(index int, ai looseProjectEntry, originals []types.ProjectEntry, claimed map[string]bool) (types.ProjectEntry, bool) {
	if index < len(originals) && !claimed[originals[index].ID] {
		return originals[index], true
	}
	for _, original := range originals {
		if !claimed[original.ID] && ai.Name != "" && original.Name == ai.Name {
			return original, true
		}
	}
	for _, original := range originals {
		if !claimed[original.ID] && ai.ID != "" && original.ID == ai.ID {
			return original, true
		}
	}
	return types.ProjectEntry{}, false
}

func pick(aiValue, originalValue string) string {
	if strings.TrimSpace(aiValue) != "" {
		return aiValue
	}
	return originalValue
}

// NormalizeExperience reconciles AI experience/leadership content against the
// original content, producing canonical entries. Non-array AI content yields
// the originals unchanged.
func NormalizeExperience(aiRaw, originalRaw json.RawMessage) []types.ExperienceEntry {
	originals := decodeCanonicalExperience(originalRaw)
	if originals == nil {
		originals = []types.ExperienceEntry{}
	}

	var aiEntries []looseExperienceEntry
	if err := json.Unmarshal(aiRaw, &aiEntries); err != nil {
		return originals
	}

	claimed := make(map[string]bool, len(originals))
	result := make([]types.ExperienceEntry, 0, len(originals)+len(aiEntries))

	for i, ai := range aiEntries {
		original, matched := matchOriginalExperience(i, ai, originals, claimed)
		if matched {
			claimed[original.ID] = true
		}

		entry := types.ExperienceEntry{
			Company:        pick(ai.Company, original.Company),
			Role:           pick(ai.Role, original.Role),
			AdditionalRole: pick(ai.AdditionalRole, original.AdditionalRole),
			Location:       pick(ai.Location, original.Location),
			StartDate:      pick(ai.StartDate, original.StartDate),
			EndDate:        pick(ai.EndDate, original.EndDate),
		}
		// Identity is never invented for entries that existed before
		if matched {
			entry.ID = original.ID
		} else {
			entry.ID = freshID()
		}

		if bullets, ok := normalizeBullets(ai.Bullets); ok {
			entry.Bullets = bullets
		} else {
			entry.Bullets = original.Bullets
			if entry.Bullets == nil {
				entry.Bullets = []types.BulletEntry{}
			}
		}

		result = append(result, entry)
	}

	// Preservation invariant: unclaimed originals are appended unmodified
	for _, original := range originals {
		if !claimed[original.ID] {
			result = append(result, original)
		}
	}
	return result
}

// NormalizeProjects mirrors NormalizeExperience for project sections
func NormalizeProjects(aiRaw, originalRaw json.RawMessage) []types.ProjectEntry {
	originals := decodeCanonicalProjects(originalRaw)
	if originals == nil {
		originals = []types.ProjectEntry{}
	}

	var aiEntries []looseProjectEntry
	if err := json.Unmarshal(aiRaw, &aiEntries); err != nil {
		return originals
	}

	claimed := make(map[string]bool, len(originals))
	result := make([]types.ProjectEntry, 0, len(originals)+len(aiEntries))

	for i, ai := range aiEntries {
		original, matched := matchOriginalProject(i, ai, originals, claimed)
		if matched {
			claimed[original.ID] = true
		}

		entry := types.ProjectEntry{
			Name:         pick(ai.Name, original.Name),
			Description:  pick(ai.Description, original.Description),
			Technologies: pick(ai.Technologies, original.Technologies),
			URL:          pick(ai.URL, original.URL),
		}
		if matched {
			entry.ID = original.ID
		} else {
			entry.ID = freshID()
		}

		result = append(result, entry)
	}

	for _, original := range originals {
		if !claimed[original.ID] {
			result = append(result, original)
		}
	}
	return result
}

// decodeSummaryText accepts a {text} object or a bare JSON string
func decodeSummaryText(raw json.RawMessage) (string, bool) {
	var payload types.SummaryPayload
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Text) != "" {
		return payload.Text, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
		return text, true
	}
	return "", false
}

// NormalizeSummary produces a canonical {text} payload from AI summary
// content, falling back to the original's text when the AI value is unusable
func NormalizeSummary(aiRaw, originalRaw json.RawMessage) types.SummaryPayload {
	if text, ok := decodeSummaryText(aiRaw); ok {
		return types.SummaryPayload{Text: text}
	}
	if text, ok := decodeSummaryText(originalRaw); ok {
		return types.SummaryPayload{Text: text}
	}
	return types.SummaryPayload{Text: ""}
}

// NormalizeSkills reconciles AI skills content against the original. When the
// AI provides no usable categories array the original content is kept in its
// entirety; skills are add/reorder-only by prompt policy, so there is no
// per-keyword removal safety beyond this wholesale fallback.
func NormalizeSkills(aiRaw, originalRaw json.RawMessage) (types.SkillsPayload, bool) {
	var original types.SkillsPayload
	_ = json.Unmarshal(originalRaw, &original)

	var ai struct {
		Categories []looseSkillCategory `json:"categories"`
	}
	if err := json.Unmarshal(aiRaw, &ai); err != nil || len(ai.Categories) == 0 {
		return original, false
	}

	categories := make([]types.SkillCategory, 0, len(ai.Categories))
	for i, aiCategory := range ai.Categories {
		var matched *types.SkillCategory
		if i < len(original.Categories) {
			matched = &original.Categories[i]
		}

		category := types.SkillCategory{Name: aiCategory.Name}
		if matched != nil {
			category.ID = matched.ID
			if category.Name == "" {
				category.Name = matched.Name
			}
		}
		if category.ID == "" {
			category.ID = freshID()
		}

		var keywords []string
		if err := json.Unmarshal(aiCategory.Keywords, &keywords); err == nil {
			category.Keywords = keywords
		} else if matched != nil {
			category.Keywords = matched.Keywords
		}
		if category.Keywords == nil {
			category.Keywords = []string{}
		}

		categories = append(categories, category)
	}
	return types.SkillsPayload{Categories: categories}, true
}
