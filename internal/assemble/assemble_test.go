package assemble

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodocai/repodoc/internal/advisory"
	"github.com/repodocai/repodoc/internal/analyzer"
	"github.com/repodocai/repodoc/internal/diagram"
	"github.com/repodocai/repodoc/internal/narrative"
	"github.com/repodocai/repodoc/internal/report"
)

func sampleProfile() *analyzer.Profile {
	return &analyzer.Profile{
		RepoName: "widget",
		Languages: []analyzer.Language{
			{Name: "Go", Lines: 900, Percent: 90},
			{Name: "Markdown", Lines: 100, Percent: 10},
		},
		Frameworks:   map[string][]string{"backend": {"Gin"}},
		Dependencies: []analyzer.Dependency{{Name: "lodash", Version: "4.17.1"}},
		TopModules:   []string{"cmd", "internal"},
		HasTests:     true,
		HasCI:        true,
		HasContainer: true,
		License:      "MIT",
		TotalFiles:   10,
		TotalLines:   1000,
		KeyFiles:     map[string]string{"README.md": "# widget", "go.mod": "module widget"},
	}
}

func sampleNarrative() *narrative.Narrative {
	return &narrative.Narrative{
		Overview:   "## Overview\nA widget service.",
		TechStack:  "## Technology Stack\nGo with Gin.",
		SetupGuide: "## Getting Started\nRun it.",
		APIDocs:    "## API Documentation\nGET /widgets",
		Sections: []narrative.Section{
			{Title: "API Documentation", Content: "## API Documentation\nGET /widgets", Kind: narrative.KindAPI, Order: 3},
			{Title: "Key Features", Content: "## Key Features\nWidgets.", Kind: narrative.KindOther, Order: 4},
		},
		DocsMetrics: &narrative.Metrics{TotalTokens: 500, TokensPerSecond: 42.5, Accelerated: true, Attempts: 1},
	}
}

func sampleBundle() *Bundle {
	p := sampleProfile()
	health := report.ScoreHealth(p)
	return Assemble(
		"task-1",
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		p,
		sampleNarrative(),
		health,
		report.ScanVulnerabilities(p, advisory.DefaultTable()),
		report.MeasureComplexity(p),
		report.BuildBadges(p, health),
		diagram.Synthesize(p),
	)
}

func TestAssembleContributingPrecedence(t *testing.T) {
	p := sampleProfile()

	b := Assemble("t", time.Now(), p, &narrative.Narrative{}, nil, nil, nil, nil, nil)
	assert.Contains(t, b.Contributing, "# Contributing to widget")

	b = Assemble("t", time.Now(), p, &narrative.Narrative{Contributing: "## Contributing\nmodel written"}, nil, nil, nil, nil, nil)
	assert.Equal(t, "## Contributing\nmodel written", b.Contributing)
}

func TestContributingGuideSetupSteps(t *testing.T) {
	p := sampleProfile()
	guide := ContributingGuide(p)
	assert.Contains(t, guide, "go mod download")
	assert.Contains(t, guide, "**Write tests**")
	assert.Contains(t, guide, "CI/CD will automatically run")

	py := &analyzer.Profile{
		RepoName:  "pyproj",
		Languages: []analyzer.Language{{Name: "Python", Lines: 100}},
		KeyFiles:  map[string]string{"requirements.txt": "flask"},
	}
	guide = ContributingGuide(py)
	assert.Contains(t, guide, "python -m venv")
	assert.Contains(t, guide, "pip install -r requirements.txt")
}

func TestFlattenSectionOrder(t *testing.T) {
	md := Flatten(sampleBundle())

	want := []string{
		"# widget",
		"img.shields.io",
		"## Overview",
		"## Technology Stack",
		"```mermaid",
		"## Getting Started",
		"## API Documentation",
		"## Contributing",
		"## Key Features",
		"## Code Health",
		"## Security Scan",
		"## Codebase Metrics",
		"*Generated by",
	}
	last := -1
	for _, marker := range want {
		idx := strings.Index(md, marker)
		require.GreaterOrEqual(t, idx, 0, "missing %q", marker)
		assert.Greater(t, idx, last, "%q out of order", marker)
		last = idx
	}
}

func TestFlattenIdempotent(t *testing.T) {
	b := sampleBundle()

	first := Flatten(b)
	second := Flatten(b)

	assert.Equal(t, first, second)
}

func TestFlattenRendersFindings(t *testing.T) {
	md := Flatten(sampleBundle())

	assert.Contains(t, md, "| lodash | 4.17.1 | 4.17.21 | high |")
	assert.Contains(t, md, "Risk level: **high**")
	assert.Contains(t, md, "curated advisory set")
}

func TestFlattenPlaceholdersForMissingSections(t *testing.T) {
	p := sampleProfile()
	b := Assemble("t", time.Now(), p, &narrative.Narrative{DocsDegraded: true}, report.ScoreHealth(p), nil, nil, nil, nil)

	md := Flatten(b)

	assert.Contains(t, md, notGenerated)
	assert.Equal(t, 4, strings.Count(md, notGenerated), "overview, tech stack, setup and api placeholders")
	assert.Contains(t, md, "## Code Health")
}

func TestFlattenNoNarrative(t *testing.T) {
	p := sampleProfile()
	b := Assemble("t", time.Now(), p, nil, nil, nil, nil, nil, nil)

	md := Flatten(b)

	assert.Contains(t, md, "# widget")
	assert.Contains(t, md, notGenerated)
	assert.NotContains(t, md, "*Generation:")
}

func TestFlattenMetricsFooter(t *testing.T) {
	md := Flatten(sampleBundle())
	assert.Contains(t, md, "*Generation: 500 tokens at 42.50 tok/s, GPU accelerated*")
}
