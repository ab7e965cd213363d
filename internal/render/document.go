package render

import (
	"encoding/json"
	"html/template"
	"strings"

	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// documentData is the template input assembled from resume sections.
type documentData struct {
	Name     string
	Contact  []string
	Sections []sectionView
}

type sectionView struct {
	Title      string
	Summary    string
	Experience []types.ExperienceEntry
	Projects   []types.ProjectEntry
	Skills     []types.SkillCategory
	Education  []types.EducationEntry
	Bullets    []types.BulletEntry
}

var documentTemplate = template.Must(template.New("resume").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { margin: 1.5cm; }
  body { font-family: Georgia, 'Times New Roman', serif; color: #1a1a1a; font-size: 11pt; line-height: 1.4; }
  h1 { font-size: 20pt; margin: 0 0 2pt 0; }
  .contact { font-size: 9pt; color: #444; margin-bottom: 14pt; }
  h2 { font-size: 12pt; text-transform: uppercase; letter-spacing: 1px; border-bottom: 1px solid #999; margin: 14pt 0 6pt 0; padding-bottom: 2pt; }
  .entry { margin-bottom: 8pt; }
  .entry-head { display: flex; justify-content: space-between; }
  .entry-head .role { font-weight: bold; }
  .entry-head .dates { color: #555; font-size: 9.5pt; }
  .company { font-style: italic; }
  ul { margin: 3pt 0 0 0; padding-left: 16pt; }
  li { margin-bottom: 2pt; }
  .skills-row { margin-bottom: 3pt; }
  .skills-row .cat { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
{{if .Contact}}<div class="contact">{{range $i, $c := .Contact}}{{if $i}} &middot; {{end}}{{$c}}{{end}}</div>{{end}}
{{range .Sections}}
<h2>{{.Title}}</h2>
{{if .Summary}}<p>{{.Summary}}</p>{{end}}
{{range .Experience}}
<div class="entry">
  <div class="entry-head"><span class="role">{{.Role}}{{if .AdditionalRole}} / {{.AdditionalRole}}{{end}}</span><span class="dates">{{.StartDate}}{{if .EndDate}} &ndash; {{.EndDate}}{{end}}</span></div>
  <div class="company">{{.Company}}{{if .Location}}, {{.Location}}{{end}}</div>
  {{if .Bullets}}<ul>{{range .Bullets}}<li>{{.Text}}</li>{{end}}</ul>{{end}}
</div>
{{end}}
{{range .Projects}}
<div class="entry">
  <div class="entry-head"><span class="role">{{.Name}}</span>{{if .Technologies}}<span class="dates">{{.Technologies}}</span>{{end}}</div>
  {{if .Description}}<div>{{.Description}}</div>{{end}}
</div>
{{end}}
{{range .Skills}}
<div class="skills-row"><span class="cat">{{.Name}}:</span> {{range $i, $k := .Keywords}}{{if $i}}, {{end}}{{$k}}{{end}}</div>
{{end}}
{{range .Education}}
<div class="entry">
  <div class="entry-head"><span class="role">{{.Institution}}</span><span class="dates">{{.StartDate}}{{if .EndDate}} &ndash; {{.EndDate}}{{end}}</span></div>
  <div>{{.Degree}}{{if .Field}}, {{.Field}}{{end}}{{if .GPA}} (GPA {{.GPA}}){{end}}</div>
</div>
{{end}}
{{if .Bullets}}<ul>{{range .Bullets}}<li>{{.Text}}</li>{{end}}</ul>{{end}}
{{end}}
</body>
</html>`))

// BuildHTML renders resume sections into the printable HTML document.
func BuildHTML(sections []types.ResumeSection) (string, error) {
	data := documentData{Name: "Resume"}

	for _, section := range sections {
		switch section.Type {
		case types.SectionPersonalInfo:
			var info types.PersonalInfoPayload
			if err := json.Unmarshal(section.Content, &info); err != nil {
				continue
			}
			if info.FullName != "" {
				data.Name = info.FullName
			}
			for _, c := range []string{info.Email, info.Phone, info.Location, info.LinkedIn, info.Website} {
				if c != "" {
					data.Contact = append(data.Contact, c)
				}
			}

		case types.SectionProfessionalSummary, types.SectionCareerObjective:
			var payload types.SummaryPayload
			if err := json.Unmarshal(section.Content, &payload); err != nil || strings.TrimSpace(payload.Text) == "" {
				continue
			}
			data.Sections = append(data.Sections, sectionView{Title: section.Title, Summary: payload.Text})

		case types.SectionExperience, types.SectionLeadership:
			var entries []types.ExperienceEntry
			if err := json.Unmarshal(section.Content, &entries); err != nil || len(entries) == 0 {
				continue
			}
			data.Sections = append(data.Sections, sectionView{Title: section.Title, Experience: entries})

		case types.SectionProjects:
			var entries []types.ProjectEntry
			if err := json.Unmarshal(section.Content, &entries); err != nil || len(entries) == 0 {
				continue
			}
			data.Sections = append(data.Sections, sectionView{Title: section.Title, Projects: entries})

		case types.SectionSkills:
			var payload types.SkillsPayload
			if err := json.Unmarshal(section.Content, &payload); err != nil || len(payload.Categories) == 0 {
				continue
			}
			data.Sections = append(data.Sections, sectionView{Title: section.Title, Skills: payload.Categories})

		case types.SectionEducation:
			var entries []types.EducationEntry
			if err := json.Unmarshal(section.Content, &entries); err != nil || len(entries) == 0 {
				continue
			}
			data.Sections = append(data.Sections, sectionView{Title: section.Title, Education: entries})

		default:
			var bullets []types.BulletEntry
			if err := json.Unmarshal(section.Content, &bullets); err != nil || len(bullets) == 0 {
				continue
			}
			data.Sections = append(data.Sections, sectionView{Title: section.Title, Bullets: bullets})
		}
	}

	var b strings.Builder
	if err := documentTemplate.Execute(&b, data); err != nil {
		return "", forgeErrors.NewInternalError(forgeErrors.ErrCodeRenderFailed,
			"failed to render resume document", err)
	}
	return b.String(), nil
}
