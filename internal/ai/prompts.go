package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	TailorSections  string
	AnalyzeATS      string
	StructureResume string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	TailorSections  string
	AnalyzeATS      string
	StructureResume string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	TailorSections: `You are an expert resume writer with a strict commitment to honesty and accuracy. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the source resume
- Rephrase and reorder for relevance; never fabricate
- Never touch personal details or education history

You receive a resume as a list of typed sections and a job description. You return
revised section content plus a change log. Rules you must follow:

- Return sections using the exact same id, type, and title you were given
- Do not return personal-info or education sections at all
- Keep every entry's id field exactly as provided
- Bullets are objects with "id" and "text"; preserve ids for bullets you rewrite
- Omit any section you choose not to change`,

	AnalyzeATS: `You are an ATS (Applicant Tracking System) simulation expert. You score resumes
the way commercial ATS software and the recruiters behind it do:

- Keyword and skills coverage against the job description
- Quantified impact and action verbs in experience bullets
- Formatting and section organization
- Seniority and requirements alignment

Be specific and evidence-based. Every suggestion must reference concrete resume
content. Scores are integers from 0 to 100.`,

	StructureResume: `You are a resume parsing expert. You receive plain text extracted from a resume
document and convert it into structured sections. Rules:

- Output one section per logical resume area, in the order the text presents them
- Use only these type values: personal-info, professional-summary, career-objective,
  experience, leadership, education, skills, projects, certifications, awards,
  research, publications
- Never invent content that is not present in the text
- Split experience entries on employer boundaries; each bullet becomes one item
- When a piece of text fits no known type, attach it to the closest matching section`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	TailorSections: `Rewrite the resume sections below so they emphasize the experience and skills most
relevant to the job description. Only use information already present in the resume.

**Tasks:**

1. **Revise sections**:
   Return the sections worth improving, keeping their ids, types, and titles intact.
   Rephrase summary text and experience bullets toward the job's language wherever
   the underlying fact exists in the resume. Skip personal-info and education.

2. **Change log**:
   For every section you return, add one change entry with the section id, its
   title, a changeType of "updated", and a one-sentence description of what you
   changed and why.

**Resume Sections:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,

	AnalyzeATS: `Score the resume below against the job description as an ATS would.

**Required output:**

1. **Overall score** (0-100).

2. **Category scores**, one entry each for "Keyword Match", "Experience Relevance",
   "Formatting", and "Impact Statements", with a 0-100 score and specific feedback.

3. **Suggestions**: 3-6 concrete, actionable improvements ordered by impact.

4. **Keyword analysis**: keywords from the job description found in the resume, and
   important ones that are missing.

**Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----
%s`,

	StructureResume: `Convert the resume text below into structured sections. Produce a personal-info
section first when contact details are present, then the remaining sections in
document order. Experience and leadership content becomes arrays of entries with
company, role, location, dates, and bullet objects. Skills become categories with
keyword lists.

**Resume Text:**
-----
%s
-----`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}
