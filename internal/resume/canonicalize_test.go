package resume

import (
	"encoding/json"
	"testing"

	"resumeforge/internal/types"
)

func TestCanonicalizeDropsUnrepairableSections(t *testing.T) {
	input := []types.ProposedSection{
		proposed("", types.SectionProfessionalSummary, "", `{"text": "Engineer with ten years in distributed systems."}`),
		proposed("experience-0", types.SectionExperience, "Experience", `[]`),
		proposed("skills-0", types.SectionSkills, "Skills", `"not an object"`),
		{ID: "empty", Type: types.SectionProjects, Title: "Projects"},
		proposed("projects-0", types.SectionProjects, "Projects", `[{"name": "resumeforge"}]`),
	}

	sections := Canonicalize(input)

	if len(sections) != 2 {
		t.Fatalf("expected 2 canonical sections, got %d", len(sections))
	}
	if sections[0].Type != types.SectionProfessionalSummary {
		t.Errorf("expected summary first, got %s", sections[0].Type)
	}
	if sections[1].Type != types.SectionProjects {
		t.Errorf("expected projects second, got %s", sections[1].Type)
	}
}

func TestCanonicalizeAssignsIDAndTitle(t *testing.T) {
	sections := Canonicalize([]types.ProposedSection{
		proposed("", types.SectionExperience, "  ", `[{"company": "Acme", "role": "Engineer"}]`),
	})

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].ID == "" {
		t.Error("expected a generated id")
	}
	if sections[0].Title != "Experience" {
		t.Errorf("expected default title 'Experience', got %q", sections[0].Title)
	}
}

func TestCanonicalizePersonalInfoID(t *testing.T) {
	sections := Canonicalize([]types.ProposedSection{
		proposed("something-else", types.SectionPersonalInfo, "Contact", `{"fullName": "Ada Lovelace"}`),
	})

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].ID != types.PersonalInfoID {
		t.Errorf("personal info must keep the reserved id, got %q", sections[0].ID)
	}
}

func TestCanonicalizeNormalizesContent(t *testing.T) {
	// Bare string summary and stringified skills both get repaired into
	// their canonical payload shapes.
	sections := Canonicalize([]types.ProposedSection{
		proposed("summary-0", types.SectionProfessionalSummary, "Summary", `"Hands-on engineering leader."`),
		proposed("skills-0", types.SectionSkills, "Skills", `{"categories": [{"name": "Languages", "keywords": ["Go"]}]}`),
	})

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	var summary types.SummaryPayload
	if err := json.Unmarshal(sections[0].Content, &summary); err != nil {
		t.Fatalf("summary content is not a canonical payload: %v", err)
	}
	if summary.Text != "Hands-on engineering leader." {
		t.Errorf("unexpected summary text %q", summary.Text)
	}

	var skills types.SkillsPayload
	if err := json.Unmarshal(sections[1].Content, &skills); err != nil {
		t.Fatalf("skills content is not a canonical payload: %v", err)
	}
	if len(skills.Categories) != 1 || skills.Categories[0].Name != "Languages" {
		t.Errorf("unexpected skills payload: %+v", skills)
	}
}

func TestCanonicalizeEducationPassthrough(t *testing.T) {
	raw := `[{"institution": "MIT", "degree": "BSc"}]`
	sections := Canonicalize([]types.ProposedSection{
		proposed("education-0", types.SectionEducation, "Education", raw),
	})

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if string(sections[0].Content) != raw {
		t.Errorf("education content must pass through untouched, got %s", sections[0].Content)
	}
}
