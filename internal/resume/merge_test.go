package resume

import (
	"bytes"
	"encoding/json"
	"testing"

	"resumeforge/internal/types"
)

func section(id string, sectionType types.SectionType, title, content string) types.ResumeSection {
	return types.ResumeSection{ID: id, Type: sectionType, Title: title, Content: json.RawMessage(content)}
}

func proposed(id string, sectionType types.SectionType, title, content string) types.ProposedSection {
	return types.ProposedSection{ID: id, Type: sectionType, Title: title, Content: json.RawMessage(content)}
}

func baseSections() []types.ResumeSection {
	return []types.ResumeSection{
		section("personal-info", types.SectionPersonalInfo, "Contact", `{"fullName": "Ada Lovelace", "email": "ada@example.com"}`),
		section("summary-0", types.SectionProfessionalSummary, "Summary", `{"text": "old summary"}`),
		section("experience-0", types.SectionExperience, "Experience",
			`[{"id": "exp-1", "company": "Acme", "role": "Eng", "bullets": [{"id": "b1", "text": "Did X"}]}]`),
		section("education-0", types.SectionEducation, "Education",
			`[{"id": "edu-1", "institution": "MIT", "degree": "BSc"}]`),
		section("skills-0", types.SectionSkills, "Skills",
			`{"categories": [{"id": "c1", "name": "Languages", "keywords": ["Go"]}]}`),
	}
}

func TestMergeHappyPath(t *testing.T) {
	original := baseSections()
	aiSections := []types.ProposedSection{
		proposed("summary-0", types.SectionProfessionalSummary, "Summary", `{"text": "Rewritten summary"}`),
		proposed("experience-0", types.SectionExperience, "Experience",
			`[{"company": "Acme", "role": "Eng", "bullets": ["Did X with 30% improvement"]}]`),
	}

	merged, changes := Merge(original, aiSections, nil, nil)
	if len(merged) != len(original) {
		t.Fatalf("expected %d sections, got %d", len(original), len(merged))
	}

	// Personal info is byte-identical and first
	if merged[0].ID != "personal-info" {
		t.Fatalf("personal-info not first: %s", merged[0].ID)
	}
	if !bytes.Equal(merged[0].Content, original[0].Content) {
		t.Error("personal-info content modified")
	}

	var summary types.SummaryPayload
	if err := json.Unmarshal(merged[1].Content, &summary); err != nil {
		t.Fatalf("summary content: %v", err)
	}
	if summary.Text != "Rewritten summary" {
		t.Errorf("summary text = %q", summary.Text)
	}

	var experience []types.ExperienceEntry
	if err := json.Unmarshal(merged[2].Content, &experience); err != nil {
		t.Fatalf("experience content: %v", err)
	}
	if len(experience) != 1 {
		t.Fatalf("expected 1 experience entry, got %d", len(experience))
	}
	entry := experience[0]
	if entry.ID != "exp-1" || entry.Company != "Acme" || entry.Role != "Eng" {
		t.Errorf("entry identity lost: %+v", entry)
	}
	if len(entry.Bullets) != 1 || entry.Bullets[0].ID == "" || entry.Bullets[0].Text != "Did X with 30% improvement" {
		t.Errorf("bullets: %+v", entry.Bullets)
	}

	if len(changes) != 2 {
		t.Errorf("expected 2 changes, got %d", len(changes))
	}
}

func TestMergeIdentityAndOrderPreservation(t *testing.T) {
	original := baseSections()
	// AI tries to reorder, drop sections, and modify protected ones
	aiSections := []types.ProposedSection{
		proposed("experience-0", types.SectionExperience, "Experience",
			`[{"company": "Acme", "role": "Eng", "bullets": ["Improved"]}]`),
		proposed("education-0", types.SectionEducation, "Education", `[{"institution": "Fake U"}]`),
		proposed("personal-info", types.SectionPersonalInfo, "Contact", `{"fullName": "Mallory"}`),
	}

	merged, _ := Merge(original, aiSections, nil, nil)
	if len(merged) != len(original) {
		t.Fatalf("expected %d sections, got %d", len(original), len(merged))
	}
	for i, section := range merged {
		if section.ID != original[i].ID {
			t.Errorf("order broken at %d: got %s, want %s", i, section.ID, original[i].ID)
		}
	}
	if !bytes.Equal(merged[0].Content, original[0].Content) {
		t.Error("personal-info content modified")
	}
	if !bytes.Equal(merged[3].Content, original[3].Content) {
		t.Error("education content modified")
	}
}

func TestMergeMalformedSkillsKeepsOriginalExactly(t *testing.T) {
	original := baseSections()
	aiSections := []types.ProposedSection{
		proposed("skills-0", types.SectionSkills, "Skills", `{}`),
		proposed("summary-0", types.SectionProfessionalSummary, "Summary", `{"text": "still works"}`),
	}

	merged, _ := Merge(original, aiSections, nil, nil)

	if !bytes.Equal(merged[4].Content, original[4].Content) {
		t.Errorf("skills content changed: %s", merged[4].Content)
	}
	// One malformed section does not block the rest
	var summary types.SummaryPayload
	if err := json.Unmarshal(merged[1].Content, &summary); err != nil || summary.Text != "still works" {
		t.Errorf("summary not enhanced despite malformed sibling: %s", merged[1].Content)
	}
}

func TestMergeAIOmitsSections(t *testing.T) {
	original := baseSections()
	aiSections := []types.ProposedSection{
		proposed("summary-0", types.SectionProfessionalSummary, "Summary", `{"text": "new"}`),
		proposed("experience-0", types.SectionExperience, "Experience",
			`[{"company": "Acme", "role": "Eng", "bullets": ["Improved"]}]`),
	}

	merged, _ := Merge(original, aiSections, nil, nil)
	if len(merged) != len(original) {
		t.Fatalf("expected %d sections, got %d", len(original), len(merged))
	}
	for _, i := range []int{3, 4} { // education, skills untouched
		if !bytes.Equal(merged[i].Content, original[i].Content) {
			t.Errorf("untouched section %s changed", original[i].ID)
		}
		if merged[i].Title != original[i].Title {
			t.Errorf("untouched section %s title changed", original[i].ID)
		}
	}
}

func TestMergeReinsertsMissingPersonalInfo(t *testing.T) {
	// Simulate upstream rule failure by starting from originals whose
	// personal-info sits in the middle of the list
	original := []types.ResumeSection{
		section("summary-0", types.SectionProfessionalSummary, "Summary", `{"text": "s"}`),
		section("personal-info", types.SectionPersonalInfo, "Contact", `{"fullName": "Ada"}`),
	}

	merged, _ := Merge(original, nil, nil, nil)
	if merged[0].ID != "personal-info" {
		t.Fatalf("personal-info not first: %s", merged[0].ID)
	}
	if !bytes.Equal(merged[0].Content, original[1].Content) {
		t.Error("personal-info content not the pre-merge original")
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(merged))
	}
}

func TestMergeAppendsUnmatchedCandidates(t *testing.T) {
	original := baseSections()
	aiSections := []types.ProposedSection{
		proposed("certifications-0", types.SectionCertifications, "Certifications", `["AWS SAA"]`),
	}

	merged, _ := Merge(original, aiSections, nil, nil)
	if len(merged) != len(original)+1 {
		t.Fatalf("expected %d sections, got %d", len(original)+1, len(merged))
	}
	last := merged[len(merged)-1]
	if last.ID != "certifications-0" || last.Type != types.SectionCertifications {
		t.Errorf("unexpected appended section: %+v", last)
	}
}

func TestMergeUsesAIChangeDescriptions(t *testing.T) {
	original := baseSections()
	aiSections := []types.ProposedSection{
		proposed("summary-0", types.SectionProfessionalSummary, "Summary", `{"text": "new"}`),
	}
	aiChanges := []types.Change{
		{SectionID: "summary-0", ChangeType: "rewritten", Description: "Emphasized cloud experience"},
	}

	_, changes := Merge(original, aiSections, aiChanges, nil)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Description != "Emphasized cloud experience" || changes[0].SectionTitle != "Summary" {
		t.Errorf("change: %+v", changes[0])
	}
}

func TestMergeMatchesByIDPrefix(t *testing.T) {
	original := []types.ResumeSection{
		section("summary-abc123", types.SectionProfessionalSummary, "Summary", `{"text": "old"}`),
	}
	aiSections := []types.ProposedSection{
		proposed("summary-xyz789", types.SectionProfessionalSummary, "Summary", `{"text": "new"}`),
	}

	merged, _ := Merge(original, aiSections, nil, nil)
	if merged[0].ID != "summary-abc123" {
		t.Fatalf("merged section must keep the original id, got %s", merged[0].ID)
	}
	var summary types.SummaryPayload
	if err := json.Unmarshal(merged[0].Content, &summary); err != nil || summary.Text != "new" {
		t.Errorf("prefix match did not adopt AI content: %s", merged[0].Content)
	}
}
