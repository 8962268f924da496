package formatters

import (
	"fmt"
	"strings"
	"time"

	"applytrack/internal/services"
	"applytrack/internal/session"
	"applytrack/internal/types"
)

var renderers = map[string]func(p *page, data any) error{
	TypeJobDescription:  renderJobDescription,
	TypeResume:          renderResume,
	TypeCoverLetter:     renderCoverLetter,
	TypeATSScore:        renderATSScore,
	TypeOptimization:    renderOptimization,
	TypeApplication:     renderApplication,
	TypeApplicationList: renderApplicationList,
	TypeDashboard:       renderDashboard,
	TypeAnalysisResult:  renderAnalysisResult,
}

// as accepts both T and *T
func as[T any](data any) (T, error) {
	var zero T
	switch v := data.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return zero, fmt.Errorf("expected %T, got nil", zero)
		}
		return *v, nil
	}
	return zero, fmt.Errorf("expected %T, got %T", zero, data)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.1f/100", score)
}

func renderJobDescription(p *page, data any) error {
	job, err := as[types.JobDescription](data)
	if err != nil {
		return err
	}

	p.title("Job Description")
	writeJob(p, job)
	return nil
}

func writeJob(p *page, job types.JobDescription) {
	p.field("ID", job.ID)
	p.field("Title", job.Title)
	p.field("Company", job.Company)
	p.field("URL", job.URL)
	p.field("Analyzed", formatDate(job.CreatedAt))
	p.gap()
	p.paragraph(job.Description)

	p.section("Required Skills")
	p.list(job.ExtractedData.RequiredSkills)
	p.section("Technologies")
	p.list(job.ExtractedData.Technologies)
	p.section("Keywords")
	p.list(job.ExtractedData.Keywords)
	p.section("Soft Skills")
	p.list(job.ExtractedData.SoftSkills)
	p.section("Responsibilities")
	p.list(job.ExtractedData.Responsibilities)
}

func renderResume(p *page, data any) error {
	resume, err := as[types.Resume](data)
	if err != nil {
		return err
	}

	p.title("Resume")
	writeResumeHeader(p, resume)
	writeResumeSection(p, resume.OptimizedContent)
	return nil
}

func writeResumeHeader(p *page, resume types.Resume) {
	p.field("ID", resume.ID)
	p.field("Name", resume.Name)
	p.field("Version", resume.Version)
	p.field("Uploaded", formatDate(resume.CreatedAt))
	p.gap()
}

func writeResumeSection(p *page, content types.ResumeSection) {
	p.section("Summary")
	if content.Summary == "" {
		p.none()
	}
	p.paragraph(content.Summary)

	p.section("Experience")
	if len(content.Experience) == 0 {
		p.none()
	}
	for _, exp := range content.Experience {
		heading := exp.Role
		if exp.Company != "" {
			heading += " at " + exp.Company
		}
		if exp.Duration != "" {
			heading += " (" + exp.Duration + ")"
		}
		p.subsection(heading)
		p.list(exp.Bullets)
	}

	p.section("Skills")
	p.list(content.Skills)

	p.section("Projects")
	if len(content.Projects) == 0 {
		p.none()
	}
	for _, project := range content.Projects {
		p.subsection(project.Name)
		p.paragraph(project.Description)
		p.field("Technologies", strings.Join(project.Technologies, ", "))
		p.gap()
	}
}

func renderCoverLetter(p *page, data any) error {
	letter, err := as[types.CoverLetter](data)
	if err != nil {
		return err
	}

	p.title("Cover Letter")
	p.field("ID", letter.ID)
	p.field("Name", letter.Name)
	p.field("Version", letter.Version)
	p.gap()
	p.paragraph(letter.OptimizedContent)
	return nil
}

func renderATSScore(p *page, data any) error {
	score, err := as[types.ATSScore](data)
	if err != nil {
		return err
	}

	p.title("ATS Score")
	writeScore(p, score)
	return nil
}

func writeScore(p *page, score types.ATSScore) {
	p.field("Score", formatScore(score.Score))
	p.gap()
	p.section("Matched Keywords")
	p.list(keywordLabels(score.MatchedKeywords))
	p.section("Missing Keywords")
	p.list(keywordLabels(score.MissingKeywords))
	p.section("Suggested Keywords")
	p.list(keywordLabels(score.SuggestedKeywords))
}

func keywordLabels(matches []types.KeywordMatch) []string {
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		label := m.Keyword
		if m.Category != types.CategoryUnknown && m.Category != "" {
			label += " (" + string(m.Category) + ")"
		}
		labels = append(labels, label)
	}
	return labels
}

func renderOptimization(p *page, data any) error {
	result, err := as[services.OptimizationResult](data)
	if err != nil {
		return err
	}

	p.title("Optimized Resume")
	writeResumeHeader(p, result.Resume)
	writeChanges(p, result.Changes)
	writeResumeSection(p, result.Resume.OptimizedContent)
	return nil
}

func writeChanges(p *page, changes []types.OptimizationChange) {
	p.section("Changes")
	if len(changes) == 0 {
		p.none()
		return
	}
	for i, change := range changes {
		p.subsection(fmt.Sprintf("%d. %s", i+1, change.Section))
		p.field("Original", change.Original)
		p.field("Optimized", change.Optimized)
		p.field("Why", change.Explanation)
		p.field("Keywords added", strings.Join(change.KeywordsAdded, ", "))
		p.gap()
	}
}

func renderApplication(p *page, data any) error {
	app, err := as[types.JobApplication](data)
	if err != nil {
		return err
	}

	p.title(roleAt(app.Role, app.Company))
	p.field("ID", app.ID)
	p.field("Status", app.Status.Label())
	p.field("Job link", app.JobLink)
	p.field("Resume", app.ResumeID)
	if app.CoverLetterID != nil {
		p.field("Cover letter", *app.CoverLetterID)
	}
	if app.ApplicationDate != nil {
		p.field("Applied on", formatDate(*app.ApplicationDate))
	}
	p.field("Created", formatDate(app.CreatedAt))
	p.gap()

	p.section("Notes")
	if len(app.Notes) == 0 {
		p.none()
	}
	for _, note := range app.Notes {
		p.field(formatDate(note.CreatedAt), note.Content)
	}
	if len(app.Notes) > 0 {
		p.gap()
	}

	p.section("Timeline")
	events := make([]string, 0, len(app.Timeline))
	for _, ev := range app.Timeline {
		line := formatDate(ev.Date) + " " + ev.Title
		if ev.Description != "" && ev.Description != ev.Title {
			line += ": " + ev.Description
		}
		events = append(events, strings.TrimSpace(line))
	}
	p.list(events)
	return nil
}

func applicationLine(app types.JobApplication) string {
	return fmt.Sprintf("[%s] %s (%s)", app.ID, roleAt(app.Role, app.Company), app.Status.Label())
}

func roleAt(role, company string) string {
	switch {
	case role == "":
		return company
	case company == "":
		return role
	}
	return role + " at " + company
}

func renderApplicationList(p *page, data any) error {
	apps, ok := data.([]types.JobApplication)
	if !ok {
		return fmt.Errorf("expected []types.JobApplication, got %T", data)
	}

	p.title(fmt.Sprintf("Applications (%d)", len(apps)))
	lines := make([]string, 0, len(apps))
	for _, app := range apps {
		lines = append(lines, applicationLine(app))
	}
	p.list(lines)
	return nil
}

func renderDashboard(p *page, data any) error {
	d, err := as[session.Dashboard](data)
	if err != nil {
		return err
	}

	p.title("Dashboard")
	p.field("Total applications", fmt.Sprint(d.Total))
	p.field("Response rate", fmt.Sprintf("%.1f%%", d.ResponseRate))
	p.gap()

	p.section("By Status")
	p.list([]string{
		fmt.Sprintf("not applied: %d", d.NotApplied),
		fmt.Sprintf("applied: %d", d.Applied),
		fmt.Sprintf("interview: %d", d.Interview),
		fmt.Sprintf("offer: %d", d.Offer),
		fmt.Sprintf("rejected: %d", d.Rejected),
	})

	p.section("Recent Applications")
	lines := make([]string, 0, len(d.Recent))
	for _, app := range d.Recent {
		lines = append(lines, applicationLine(app))
	}
	p.list(lines)
	return nil
}

func renderAnalysisResult(p *page, data any) error {
	result, err := as[session.AnalysisResult](data)
	if err != nil {
		return err
	}

	p.title("Analysis")
	p.field("Job", roleAt(result.JobDescription.Title, result.JobDescription.Company))
	p.field("Optimized resume", result.Resume.ID)
	p.field("Application", result.Application.ID)
	p.gap()

	writeScore(p, result.Score)
	writeChanges(p, result.Changes)
	return nil
}
