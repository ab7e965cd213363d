package render

import (
	"encoding/json"
	"strings"
	"testing"

	"resumeforge/internal/types"
)

func section(id string, sectionType types.SectionType, title, content string) types.ResumeSection {
	return types.ResumeSection{
		ID:      id,
		Type:    sectionType,
		Title:   title,
		Content: json.RawMessage(content),
	}
}

func TestBuildHTMLFullResume(t *testing.T) {
	sections := []types.ResumeSection{
		section("personal-info", types.SectionPersonalInfo, "Contact",
			`{"fullName": "Ada Lovelace", "email": "ada@example.com", "location": "London"}`),
		section("summary", types.SectionProfessionalSummary, "Professional Summary",
			`{"text": "Engineer with a decade of distributed systems work."}`),
		section("experience", types.SectionExperience, "Experience",
			`[{"id": "e1", "company": "Analytical Engines", "role": "Lead Engineer", "startDate": "2015", "endDate": "Present", "bullets": [{"id": "b1", "text": "Reduced latency by 40%"}]}]`),
		section("skills", types.SectionSkills, "Skills",
			`{"categories": [{"id": "c1", "name": "Languages", "keywords": ["Go", "Python"]}]}`),
		section("education", types.SectionEducation, "Education",
			`[{"id": "ed1", "institution": "University of London", "degree": "BSc", "field": "Mathematics", "startDate": "2008", "endDate": "2012"}]`),
	}

	html, err := BuildHTML(sections)
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}

	for _, want := range []string{
		"<h1>Ada Lovelace</h1>",
		"ada@example.com",
		"Engineer with a decade",
		"Analytical Engines",
		"Reduced latency by 40%",
		"Languages",
		"Go, Python",
		"University of London",
		"BSc, Mathematics",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestBuildHTMLEscapesContent(t *testing.T) {
	sections := []types.ResumeSection{
		section("personal-info", types.SectionPersonalInfo, "Contact",
			`{"fullName": "<script>alert(1)</script>"}`),
	}

	html, err := BuildHTML(sections)
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("script content was not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag in output")
	}
}

func TestBuildHTMLSkipsMalformedSections(t *testing.T) {
	sections := []types.ResumeSection{
		section("experience", types.SectionExperience, "Experience", `{"not": "an array"}`),
		section("summary", types.SectionProfessionalSummary, "Summary", `{"text": "   "}`),
		section("skills", types.SectionSkills, "Skills", `{"categories": []}`),
	}

	html, err := BuildHTML(sections)
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if strings.Contains(html, "<h2>") {
		t.Error("malformed sections should not produce headings")
	}
}

func TestBuildHTMLBulletSections(t *testing.T) {
	sections := []types.ResumeSection{
		section("awards", types.SectionAwards, "Awards",
			`[{"id": "a1", "text": "Turing Award"}]`),
	}

	html, err := BuildHTML(sections)
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if !strings.Contains(html, "<h2>Awards</h2>") || !strings.Contains(html, "Turing Award") {
		t.Error("bullet section missing from document")
	}
}

func TestBuildHTMLDefaultName(t *testing.T) {
	html, err := BuildHTML(nil)
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if !strings.Contains(html, "<h1>Resume</h1>") {
		t.Error("expected fallback document title")
	}
}
