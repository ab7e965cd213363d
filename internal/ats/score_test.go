package ats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"resumeforge/internal/types"
)

func fullResume() []types.ResumeSection {
	return []types.ResumeSection{
		{
			ID:      types.PersonalInfoID,
			Type:    types.SectionPersonalInfo,
			Title:   "Personal Information",
			Content: json.RawMessage(`{"fullName":"Ada Lovelace","email":"ada@example.com"}`),
		},
		{
			ID:      "summary",
			Type:    types.SectionProfessionalSummary,
			Title:   "Professional Summary",
			Content: json.RawMessage(`{"text":"Backend engineer focused on Go services."}`),
		},
		{
			ID:    "exp",
			Type:  types.SectionExperience,
			Title: "Experience",
			Content: json.RawMessage(`[{"id":"e1","company":"Acme","role":"Engineer","bullets":[
				{"id":"b1","text":"Reduced p99 latency by 40% across the payments API"},
				{"id":"b2","text":"Built a Kubernetes operator managing 200 clusters"}
			]}]`),
		},
		{
			ID:      "edu",
			Type:    types.SectionEducation,
			Title:   "Education",
			Content: json.RawMessage(`[{"school":"MIT","degree":"BSc"}]`),
		},
		{
			ID:      "skills",
			Type:    types.SectionSkills,
			Title:   "Skills",
			Content: json.RawMessage(`{"categories":[{"id":"c1","name":"Languages","keywords":["Go","SQL"]}]}`),
		},
	}
}

func TestScoreFullResumeNoJobDescription(t *testing.T) {
	b := Score(fullResume(), "")

	assert.InDelta(t, 100.0, b.SectionCoverage, 0.001)
	assert.Greater(t, b.BulletQuality, 90.0) // action verbs + numbers in both bullets
	assert.Zero(t, b.KeywordOverlap)
	assert.Greater(t, b.Total, 90.0)
}

func TestScoreEmptyResume(t *testing.T) {
	b := Score(nil, "")
	assert.Zero(t, b.Total)
	assert.Zero(t, b.SectionCoverage)
	assert.Zero(t, b.BulletQuality)
}

func TestScoreKeywordOverlap(t *testing.T) {
	jd := "Looking for Go engineer with Kubernetes and payments knowledge"
	b := Score(fullResume(), jd)

	assert.Greater(t, b.KeywordOverlap, 0.0)
	assert.Greater(t, b.Total, 50.0)
	assert.LessOrEqual(t, b.Total, 100.0)
}

func TestScoreIsDeterministic(t *testing.T) {
	jd := "Senior Go engineer, Kubernetes, PostgreSQL"
	first := Score(fullResume(), jd)
	second := Score(fullResume(), jd)
	assert.Equal(t, first, second)
}

func TestBulletScore(t *testing.T) {
	assert.InDelta(t, 0.4, bulletScore("responsible for things"), 0.001)
	assert.InDelta(t, 0.7, bulletScore("built the deploy pipeline"), 0.001)
	assert.InDelta(t, 1.0, bulletScore("reduced costs by 30%"), 0.001)
}

func TestSectionCoverageIgnoresEmptyContent(t *testing.T) {
	sections := []types.ResumeSection{
		{Type: types.SectionSkills, Content: nil},
		{Type: types.SectionExperience, Content: json.RawMessage(`null`)},
	}
	assert.Zero(t, sectionCoverage(sections))
}
