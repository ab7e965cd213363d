package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/types"
)

// Serialize flattens an ordered section list into a plain-text document for
// prompting. Field order per section type is fixed so the output is
// deterministic; empty values are omitted rather than rendered as blanks.
// Only a human or an LLM reads the result, so no escaping is performed.
func Serialize(sections []types.ResumeSection) string {
	var b strings.Builder

	for _, section := range sections {
		title := section.Title
		if title == "" {
			title = string(section.Type)
		}
		fmt.Fprintf(&b, "## %s\n", title)

		switch section.Type {
		case types.SectionPersonalInfo:
			serializePersonalInfo(&b, section.Content)
		case types.SectionProfessionalSummary, types.SectionCareerObjective:
			serializeSummary(&b, section.Content)
		case types.SectionExperience, types.SectionLeadership:
			serializeExperience(&b, section.Content)
		case types.SectionProjects:
			serializeProjects(&b, section.Content)
		case types.SectionSkills:
			serializeSkills(&b, section.Content)
		case types.SectionEducation:
			serializeEducation(&b, section.Content)
		default:
			serializeGeneric(&b, section.Content)
		}

		b.WriteString("\n")
	}

	return b.String()
}

func serializePersonalInfo(b *strings.Builder, raw json.RawMessage) {
	var info types.PersonalInfoPayload
	if err := json.Unmarshal(raw, &info); err != nil {
		return
	}
	writeLine(b, info.FullName)
	writeLine(b, info.Email)
	writeLine(b, info.Phone)
	writeLine(b, info.Location)
	writeLine(b, info.LinkedIn)
	writeLine(b, info.Website)
}

func serializeSummary(b *strings.Builder, raw json.RawMessage) {
	text, ok := decodeSummaryText(raw)
	if !ok {
		return
	}
	writeLine(b, text)
}

func serializeExperience(b *strings.Builder, raw json.RawMessage) {
	for _, entry := range decodeCanonicalExperience(raw) {
		role := entry.Role
		if entry.AdditionalRole != "" {
			role = role + " / " + entry.AdditionalRole
		}
		writeLine(b, joinNonEmpty(" | ", entry.Company, role, entry.Location))
		if entry.StartDate != "" || entry.EndDate != "" {
			writeLine(b, joinNonEmpty(" - ", entry.StartDate, entry.EndDate))
		}
		for _, bullet := range entry.Bullets {
			if strings.TrimSpace(bullet.Text) != "" {
				writeLine(b, "- "+bullet.Text)
			}
		}
	}
}

func serializeProjects(b *strings.Builder, raw json.RawMessage) {
	for _, project := range decodeCanonicalProjects(raw) {
		writeLine(b, project.Name)
		writeLine(b, project.Description)
		if project.Technologies != "" {
			writeLine(b, "Technologies: "+project.Technologies)
		}
		writeLine(b, project.URL)
	}
}

func serializeSkills(b *strings.Builder, raw json.RawMessage) {
	var payload types.SkillsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	for _, category := range payload.Categories {
		if len(category.Keywords) == 0 {
			writeLine(b, category.Name)
			continue
		}
		writeLine(b, category.Name+": "+strings.Join(category.Keywords, ", "))
	}
}

func serializeEducation(b *strings.Builder, raw json.RawMessage) {
	var entries []types.EducationEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return
	}
	for _, entry := range entries {
		writeLine(b, joinNonEmpty(" | ", entry.Institution, joinNonEmpty(", ", entry.Degree, entry.Field)))
		if entry.StartDate != "" || entry.EndDate != "" {
			writeLine(b, joinNonEmpty(" - ", entry.StartDate, entry.EndDate))
		}
		if entry.GPA != "" {
			writeLine(b, "GPA: "+entry.GPA)
		}
	}
}

// serializeGeneric handles list-of-text payloads (certifications, awards,
// research, publications) without assuming a richer shape.
func serializeGeneric(b *strings.Builder, raw json.RawMessage) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Fall back to a {text} object
		text, ok := decodeSummaryText(raw)
		if ok {
			writeLine(b, text)
		}
		return
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			writeLine(b, "- "+s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			writeLine(b, "- "+firstNonEmpty(obj.Name, obj.Text))
		}
	}
}

func writeLine(b *strings.Builder, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	b.WriteString(s)
	b.WriteString("\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
