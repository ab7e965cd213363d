// Package ats computes a deterministic heuristic ATS score for a resume.
// It is not the AI analysis; the generate endpoint uses it to give instant
// feedback without a model call.
package ats

import (
	"encoding/json"
	"regexp"
	"strings"

	"resumeforge/internal/types"
)

// Score components are weighted out of 100.
const (
	coverageWeight = 40.0
	bulletWeight   = 35.0
	keywordWeight  = 25.0
)

// Breakdown carries the component scores alongside the total.
type Breakdown struct {
	Total           float64 `json:"total"`
	SectionCoverage float64 `json:"sectionCoverage"`
	BulletQuality   float64 `json:"bulletQuality"`
	KeywordOverlap  float64 `json:"keywordOverlap"`
}

// coreSections are the sections recruiters and parsers expect to find.
var coreSections = []types.SectionType{
	types.SectionPersonalInfo,
	types.SectionProfessionalSummary,
	types.SectionExperience,
	types.SectionEducation,
	types.SectionSkills,
}

var actionVerbs = map[string]bool{
	"achieved": true, "built": true, "created": true, "delivered": true,
	"designed": true, "developed": true, "drove": true, "implemented": true,
	"improved": true, "launched": true, "led": true, "managed": true,
	"optimized": true, "reduced": true, "scaled": true, "shipped": true,
}

var numberPattern = regexp.MustCompile(`\d`)

// Score computes the heuristic breakdown. An empty job description skips the
// keyword component and redistributes its weight across the other two.
func Score(sections []types.ResumeSection, jobDescription string) Breakdown {
	coverage := sectionCoverage(sections)
	bullets := bulletQuality(sections)

	jd := strings.TrimSpace(jobDescription)
	if jd == "" {
		scale := 100.0 / (coverageWeight + bulletWeight)
		return Breakdown{
			Total:           clamp(coverage*coverageWeight*scale + bullets*bulletWeight*scale),
			SectionCoverage: round1(coverage * 100),
			BulletQuality:   round1(bullets * 100),
		}
	}

	keywords := keywordOverlap(sections, jd)
	return Breakdown{
		Total:           clamp(coverage*coverageWeight + bullets*bulletWeight + keywords*keywordWeight),
		SectionCoverage: round1(coverage * 100),
		BulletQuality:   round1(bullets * 100),
		KeywordOverlap:  round1(keywords * 100),
	}
}

// sectionCoverage is the fraction of core sections present with content.
func sectionCoverage(sections []types.ResumeSection) float64 {
	present := make(map[types.SectionType]bool, len(sections))
	for _, s := range sections {
		if len(s.Content) > 0 && string(s.Content) != "null" {
			present[s.Type] = true
		}
	}

	found := 0
	for _, core := range coreSections {
		if present[core] {
			found++
		}
	}
	return float64(found) / float64(len(coreSections))
}

// bulletQuality scores experience bullets on action verbs and quantified
// results. No bullets at all scores zero.
func bulletQuality(sections []types.ResumeSection) float64 {
	var total, scored float64

	for _, s := range sections {
		if s.Type != types.SectionExperience {
			continue
		}
		var entries []types.ExperienceEntry
		if err := json.Unmarshal(s.Content, &entries); err != nil {
			continue
		}
		for _, entry := range entries {
			for _, bullet := range entry.Bullets {
				total++
				scored += bulletScore(bullet.Text)
			}
		}
	}

	if total == 0 {
		return 0
	}
	return scored / total
}

func bulletScore(text string) float64 {
	score := 0.4 // baseline for having a bullet at all
	words := strings.Fields(strings.ToLower(text))
	if len(words) > 0 && actionVerbs[strings.Trim(words[0], ".,;:")] {
		score += 0.3
	}
	if numberPattern.MatchString(text) {
		score += 0.3
	}
	return score
}

// keywordOverlap is the fraction of significant job-description terms that
// appear anywhere in the resume content.
func keywordOverlap(sections []types.ResumeSection, jobDescription string) float64 {
	terms := significantTerms(jobDescription)
	if len(terms) == 0 {
		return 0
	}

	var resumeText strings.Builder
	for _, s := range sections {
		resumeText.Write(s.Content)
		resumeText.WriteString(" ")
		resumeText.WriteString(s.Title)
		resumeText.WriteString(" ")
	}
	haystack := strings.ToLower(resumeText.String())

	matched := 0
	for term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "our": true, "will": true, "have": true, "this": true,
	"that": true, "from": true, "your": true, "who": true, "what": true,
	"about": true, "into": true, "able": true, "team": true, "work": true,
	"years": true, "experience": true, "strong": true, "skills": true,
}

func significantTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:()[]{}\"'!?")
		if len(word) < 3 || stopWords[word] {
			continue
		}
		terms[word] = true
	}
	return terms
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return round1(v)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
