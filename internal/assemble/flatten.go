package assemble

import (
	"fmt"
	"strings"

	"github.com/repodocai/repodoc/internal/advisory"
	"github.com/repodocai/repodoc/internal/narrative"
)

const notGenerated = "_This section was not generated. The model backend was unavailable._"

// Flatten renders the bundle as a single markdown document. Section
// order is fixed and the output is byte-identical for the same bundle.
func Flatten(b *Bundle) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", b.RepoName)

	if len(b.Badges) > 0 {
		line := make([]string, 0, len(b.Badges))
		for _, badge := range b.Badges {
			line = append(line, badge.Markdown())
		}
		md.WriteString(strings.Join(line, " "))
		md.WriteString("\n\n")
	}

	writeNarrativeSection(&md, "Overview", narrativeField(b, func() string { return b.Narrative.Overview }))
	writeNarrativeSection(&md, "Technology Stack", narrativeField(b, func() string { return b.Narrative.TechStack }))

	for _, d := range b.Diagrams {
		fmt.Fprintf(&md, "## %s\n\n%s\n\n```mermaid\n%s\n```\n\n", d.Title, d.Description, d.Markup)
	}

	writeNarrativeSection(&md, "Getting Started", narrativeField(b, func() string { return b.Narrative.SetupGuide }))
	writeNarrativeSection(&md, "API Documentation", narrativeField(b, func() string { return b.Narrative.APIDocs }))

	if b.Contributing != "" {
		fmt.Fprintf(&md, "## Contributing\n\n%s\n\n", strings.TrimSpace(b.Contributing))
	}

	if b.Narrative != nil {
		for _, sec := range b.Narrative.Sections {
			if sec.Kind == narrative.KindAPI {
				continue // already rendered standalone
			}
			fmt.Fprintf(&md, "%s\n\n", strings.TrimSpace(sec.Content))
		}
	}

	writeHealth(&md, b)
	writeVulnerabilities(&md, b)
	writeComplexity(&md, b)
	writeFooter(&md, b)

	return md.String()
}

// narrativeField returns the field value, or "" when no narrative exists.
func narrativeField(b *Bundle, get func() string) string {
	if b.Narrative == nil {
		return ""
	}
	return get()
}

func writeNarrativeSection(md *strings.Builder, title, content string) {
	fmt.Fprintf(md, "## %s\n\n", title)
	if strings.TrimSpace(content) == "" {
		md.WriteString(notGenerated)
	} else {
		md.WriteString(strings.TrimSpace(content))
	}
	md.WriteString("\n\n")
}

func writeHealth(md *strings.Builder, b *Bundle) {
	if b.Health == nil {
		return
	}
	md.WriteString("## Code Health\n\n")
	fmt.Fprintf(md, "**Score**: %d/%d (%s)\n\n%s\n\n", b.Health.Score, b.Health.MaxScore, b.Health.Grade, b.Health.Summary)
	md.WriteString("| Check | Status | Notes |\n|-------|--------|-------|\n")
	for _, c := range b.Health.Checks {
		status := "✗"
		if c.Passed {
			status = "✓"
		}
		fmt.Fprintf(md, "| %s | %s | %s |\n", c.Label, status, c.Detail)
	}
	md.WriteString("\n")
}

var severityOrder = []advisory.Severity{
	advisory.SeverityCritical,
	advisory.SeverityHigh,
	advisory.SeverityMedium,
	advisory.SeverityLow,
}

func writeVulnerabilities(md *strings.Builder, b *Bundle) {
	v := b.Vulnerabilities
	if v == nil {
		return
	}
	md.WriteString("## Security Scan\n\n")
	fmt.Fprintf(md, "Scanned %d dependencies. Risk level: **%s**.\n\n", v.Scanned, v.RiskLevel)

	if len(v.Findings) == 0 {
		md.WriteString("No known vulnerabilities found.\n\n")
	} else {
		counts := make([]string, 0, len(severityOrder))
		for _, sev := range severityOrder {
			counts = append(counts, fmt.Sprintf("%s: %d", sev, v.SeverityBreakdown[sev]))
		}
		md.WriteString(strings.Join(counts, ", "))
		md.WriteString("\n\n| Package | Installed | Fixed In | Severity | Advisory |\n")
		md.WriteString("|---------|-----------|----------|----------|----------|\n")
		for _, f := range v.Findings {
			fmt.Fprintf(md, "| %s | %s | %s | %s | %s |\n", f.Package, f.Installed, f.FixedIn, f.Severity, f.AdvisoryID)
		}
		md.WriteString("\n")
	}

	fmt.Fprintf(md, "*%s*\n\n", v.Limitation)
}

func writeComplexity(md *strings.Builder, b *Bundle) {
	c := b.Complexity
	if c == nil {
		return
	}
	md.WriteString("## Codebase Metrics\n\n")
	fmt.Fprintf(md, "- **Size**: %s (%d files, %d lines)\n", c.SizeLabel, c.TotalFiles, c.TotalLines)
	fmt.Fprintf(md, "- **Average lines per file**: %.1f\n", c.AvgLinesPerFile)
	fmt.Fprintf(md, "- **Dependencies**: %d total (%d runtime, %d dev)\n", c.Dependencies.Total, c.Dependencies.Runtime, c.Dependencies.Dev)
	if len(c.TopModules) > 0 {
		fmt.Fprintf(md, "- **Top modules**: %s\n", strings.Join(c.TopModules, ", "))
	}
	md.WriteString("\n")
}

func writeFooter(md *strings.Builder, b *Bundle) {
	md.WriteString("---\n\n")
	md.WriteString("*Generated by [repodoc](https://github.com/repodocai/repodoc)*\n")
	if b.Narrative != nil && b.Narrative.DocsMetrics != nil {
		m := b.Narrative.DocsMetrics
		accel := ""
		if m.Accelerated {
			accel = ", GPU accelerated"
		}
		fmt.Fprintf(md, "\n*Generation: %d tokens at %.2f tok/s%s*\n", m.TotalTokens, m.TokensPerSecond, accel)
	}
}
