package narrative

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/repodocai/repodoc/internal/analyzer"
	"github.com/repodocai/repodoc/internal/report"
)

const docsSystemPrompt = "You are an expert software documentation generator. " +
	"You analyze codebases and produce comprehensive, well-structured Markdown documentation. " +
	"Be thorough but concise. Include code examples where relevant. " +
	"Always structure your output with clear headings and sections."

const reviewSystemPrompt = "You are an expert Senior Software Engineer performing a code review. " +
	"Analyze the codebase and provide actionable feedback across: " +
	"security, performance, code quality, best practices, and architecture. " +
	"Be specific and reference file names and patterns. " +
	"Rate each area 1-10 and give concrete improvement suggestions."

var docsTemplate = template.Must(template.New("docs").Parse(`Analyze this repository and generate comprehensive documentation.

## Repository Information
- **Name**: {{.Name}}
- **Description**: {{.Description}}
- **Languages**: {{.Languages}}
- **Frameworks**: {{.Frameworks}}
- **Dependencies**: {{.Dependencies}}
- **Total Files**: {{.TotalFiles}}
- **Total Lines**: {{.TotalLines}}
- **Has Tests**: {{.HasTests}}
- **Has CI/CD**: {{.HasCI}}
- **Has Container**: {{.HasContainer}}
- **License**: {{.License}}
- **Entry Points**: {{.EntryPoints}}

## Key Files Content
{{.KeyFiles}}

## Generate the following documentation sections:

1. **Project Overview** - clear description of purpose, features, and value proposition (3-5 paragraphs).
2. **Architecture Overview** - high-level architecture, component interaction, design patterns.
3. **Technology Stack** - detailed breakdown of every technology, framework, and tool.
4. **Getting Started / Setup Guide** - step-by-step: prerequisites, install, configure, run.
5. **API Documentation** - endpoints with methods, paths, request/response. If none, state so.
6. **Project Structure** - directory layout explanation.
7. **Key Features** - list the main features.
8. **Configuration** - env vars, config files, settings.

Format each section with ## headings. Separate sections with "` + sectionDelimiter + `".
Be specific and reference actual files from the analysis.`))

var reviewTemplate = template.Must(template.New("review").Parse(`Perform a thorough code review for this project:

**Project**: {{.Name}}
**Languages**: {{.Languages}}
**Frameworks**: {{.Frameworks}}
**Dependencies**: {{.Dependencies}}
**Has Tests**: {{.HasTests}}
**Has CI/CD**: {{.HasCI}}
**Health Grade**: {{.HealthGrade}} ({{.HealthScore}}/100)

## Source Code Samples:
{{.Sources}}

## Provide review in these sections:

1. **Security** (1-10): Authentication, input validation, secrets management, SQL injection, XSS
2. **Performance** (1-10): Caching, query optimization, memory management, async patterns
3. **Code Quality** (1-10): Readability, DRY, naming, error handling, SOLID principles
4. **Architecture** (1-10): Separation of concerns, scalability, design patterns
5. **Best Practices** (1-10): Testing, CI/CD, Docker, env management, documentation

For each section give:
- Score (1-10)
- Key findings (bullet points)
- Specific suggestions with file references

End with **Overall Score** (average) and **Top 3 Priority Actions**.

Separate sections with "` + reviewDelimiter + `".`))

type docsPromptData struct {
	Name         string
	Description  string
	Languages    string
	Frameworks   string
	Dependencies string
	TotalFiles   int
	TotalLines   int
	HasTests     bool
	HasCI        bool
	HasContainer bool
	License      string
	EntryPoints  string
	KeyFiles     string
}

type reviewPromptData struct {
	Name         string
	Languages    string
	Frameworks   string
	Dependencies string
	HasTests     bool
	HasCI        bool
	HealthGrade  string
	HealthScore  int
	Sources      string
}

const (
	maxPromptKeyFiles  = 10
	maxKeyFileExcerpt  = 3000
	maxPromptDeps      = 30
	maxReviewSources   = 8
	maxSourceExcerpt   = 2500
	maxPromptLanguages = 10
)

func buildDocsPrompt(p *analyzer.Profile) (string, error) {
	data := docsPromptData{
		Name:         p.RepoName,
		Description:  orDefault(p.Description, "Not provided"),
		Languages:    languageSummary(p),
		Frameworks:   frameworkSummary(p),
		Dependencies: dependencySummary(p, maxPromptDeps),
		TotalFiles:   p.TotalFiles,
		TotalLines:   p.TotalLines,
		HasTests:     p.HasTests,
		HasCI:        p.HasCI,
		HasContainer: p.HasContainer,
		License:      orDefault(p.License, "Not specified"),
		EntryPoints:  orDefault(strings.Join(p.EntryPoints, ", "), "Not detected"),
		KeyFiles:     keyFileSummary(p, maxPromptKeyFiles, maxKeyFileExcerpt, nil),
	}

	var b strings.Builder
	if err := docsTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering docs prompt: %w", err)
	}
	return b.String(), nil
}

// sourceExtensions limits review samples to actual source files.
var sourceExtensions = []string{".py", ".js", ".ts", ".tsx", ".jsx", ".go", ".rs", ".java"}

func buildReviewPrompt(p *analyzer.Profile, health *report.HealthReport) (string, error) {
	data := reviewPromptData{
		Name:         p.RepoName,
		Languages:    languageSummary(p),
		Frameworks:   frameworkSummary(p),
		Dependencies: dependencySummary(p, 20),
		HasTests:     p.HasTests,
		HasCI:        p.HasCI,
		HealthGrade:  health.Grade,
		HealthScore:  health.Score,
		Sources:      keyFileSummary(p, maxReviewSources, maxSourceExcerpt, sourceExtensions),
	}

	var b strings.Builder
	if err := reviewTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering review prompt: %w", err)
	}
	return b.String(), nil
}

func languageSummary(p *analyzer.Profile) string {
	var parts []string
	for i, l := range p.Languages {
		if i == maxPromptLanguages {
			break
		}
		parts = append(parts, fmt.Sprintf("%s: %d lines", l.Name, l.Lines))
	}
	return orDefault(strings.Join(parts, ", "), "None detected")
}

func frameworkSummary(p *analyzer.Profile) string {
	var parts []string
	for _, cat := range []string{"frontend", "backend", "database", "ml", "ai", "devops", "testing"} {
		for _, name := range p.Frameworks[cat] {
			parts = append(parts, fmt.Sprintf("%s (%s)", name, cat))
		}
	}
	return orDefault(strings.Join(parts, ", "), "None detected")
}

func dependencySummary(p *analyzer.Profile, limit int) string {
	var parts []string
	for i, d := range p.Dependencies {
		if i == limit {
			break
		}
		parts = append(parts, d.Name)
	}
	return orDefault(strings.Join(parts, ", "), "None detected")
}

// keyFileSummary renders fenced excerpts of key files in sorted name
// order. When exts is non-nil only matching files are included.
func keyFileSummary(p *analyzer.Profile, limit, excerpt int, exts []string) string {
	names := make([]string, 0, len(p.KeyFiles))
	for name := range p.KeyFiles {
		if exts != nil && !hasAnySuffix(name, exts) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i == limit {
			break
		}
		content := p.KeyFiles[name]
		if len(content) > excerpt {
			content = content[:excerpt]
		}
		fmt.Fprintf(&b, "\n### %s\n```\n%s\n```\n", name, content)
	}
	return b.String()
}

func hasAnySuffix(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
