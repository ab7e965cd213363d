package types

import "encoding/json"

// SectionType identifies the kind of payload a resume section carries
type SectionType string

const (
	SectionPersonalInfo        SectionType = "personal-info"
	SectionProfessionalSummary SectionType = "professional-summary"
	SectionCareerObjective     SectionType = "career-objective"
	SectionExperience          SectionType = "experience"
	SectionLeadership          SectionType = "leadership"
	SectionEducation           SectionType = "education"
	SectionSkills              SectionType = "skills"
	SectionProjects            SectionType = "projects"
	SectionCertifications      SectionType = "certifications"
	SectionAwards              SectionType = "awards"
	SectionResearch            SectionType = "research"
	SectionPublications        SectionType = "publications"
)

// PersonalInfoID is the reserved id of the protected personal-info section
const PersonalInfoID = "personal-info"

// ResumeSection is one named block of a resume. Content stays raw JSON at the
// transport boundary and is decoded into the type-specific payload by the
// reconciliation layer.
type ResumeSection struct {
	ID      string          `json:"id"`
	Type    SectionType     `json:"type"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

// Protected reports whether AI tailoring must never modify this section
func (s ResumeSection) Protected() bool {
	return s.Type == SectionPersonalInfo || s.Type == SectionEducation ||
		s.ID == PersonalInfoID
}

// BulletEntry is a single bullet point with a stable identity
type BulletEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ExperienceEntry is one position within an experience or leadership section
type ExperienceEntry struct {
	ID             string        `json:"id"`
	Company        string        `json:"company"`
	Role           string        `json:"role"`
	AdditionalRole string        `json:"additionalRole,omitempty"`
	Location       string        `json:"location,omitempty"`
	StartDate      string        `json:"startDate,omitempty"`
	EndDate        string        `json:"endDate,omitempty"`
	Bullets        []BulletEntry `json:"bullets"`
}

// ProjectEntry is one project within a projects section
type ProjectEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Technologies string `json:"technologies,omitempty"`
	URL          string `json:"url,omitempty"`
}

// SkillCategory groups related keywords under a named category
type SkillCategory struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// SkillsPayload is the content of a skills section
type SkillsPayload struct {
	Categories []SkillCategory `json:"categories"`
}

// SummaryPayload is the content of a professional-summary or career-objective section
type SummaryPayload struct {
	Text string `json:"text"`
}

// PersonalInfoPayload is the content of the protected personal-info section
type PersonalInfoPayload struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// EducationEntry is one entry within an education section
type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

// ProposedSection is a section as proposed by the AI. It shares the wire shape
// of ResumeSection but is untrusted until it passes validation.
type ProposedSection struct {
	ID      string          `json:"id"`
	Type    SectionType     `json:"type"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

// Change describes one modification the AI made to a section
type Change struct {
	SectionID    string `json:"sectionId"`
	SectionTitle string `json:"sectionTitle"`
	ChangeType   string `json:"changeType"`
	Description  string `json:"description"`
}

// TailorInput is the input for the section tailoring operation
type TailorInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// TailorOutput is the AI's raw proposal for a tailoring request
type TailorOutput struct {
	Sections []ProposedSection `json:"sections"`
	Changes  []Change          `json:"changes"`
}

// AnalyzeInput is the input for the ATS analysis operation
type AnalyzeInput struct {
	ResumeText       string `json:"resumeText"`
	JobDescription   string `json:"jobDescription,omitempty"`
	RetrievalContext string `json:"retrievalContext,omitempty"`
}

// CategoryScore is one scored dimension of the ATS analysis
type CategoryScore struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// KeywordAnalysis compares resume keywords against the job description
type KeywordAnalysis struct {
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
}

// AnalyzeOutput is the structured ATS scoring result
type AnalyzeOutput struct {
	OverallScore    int             `json:"overallScore"`
	Categories      []CategoryScore `json:"categories"`
	Suggestions     []string        `json:"suggestions"`
	KeywordAnalysis KeywordAnalysis `json:"keywordAnalysis"`
}

// ImportInput is the input for structuring extracted resume text
type ImportInput struct {
	ResumeText string `json:"resumeText"`
}

// ImportOutput is the AI's structured rendition of an imported resume
type ImportOutput struct {
	Sections []ProposedSection `json:"sections"`
}

// TailorResult is the reconciled outcome of a tailoring run: canonical
// sections after validation and merge, plus the surviving change log.
type TailorResult struct {
	Sections []ResumeSection `json:"sections"`
	Changes  []Change        `json:"changes"`
}

// ImportResult holds the canonical sections recovered from an imported PDF
type ImportResult struct {
	Sections []ResumeSection `json:"sections"`
}
