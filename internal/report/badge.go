package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/repodocai/repodoc/internal/analyzer"
)

// Badge is one shields.io badge with its rendered markdown.
type Badge struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

// URL renders the shields.io static badge URL for the badge.
func (b Badge) URL() string {
	return fmt.Sprintf("https://img.shields.io/badge/%s-%s-%s",
		badgeEscape(b.Label), badgeEscape(b.Message), b.Color)
}

// Markdown renders the badge as a markdown image.
func (b Badge) Markdown() string {
	return fmt.Sprintf("![%s](%s)", b.Label, b.URL())
}

var langColors = map[string]string{
	"Python":     "3776AB",
	"JavaScript": "F7DF1E",
	"TypeScript": "3178C6",
	"Java":       "ED8B00",
	"Go":         "00ADD8",
	"Rust":       "000000",
	"C++":        "00599C",
	"C#":         "239120",
	"Ruby":       "CC342D",
	"PHP":        "777BB4",
	"Swift":      "FA7343",
	"Kotlin":     "7F52FF",
	"Scala":      "DC322F",
}

var gradeColors = map[string]string{
	"A+": "brightgreen",
	"A":  "green",
	"B":  "yellowgreen",
	"C":  "yellow",
	"D":  "orange",
	"F":  "red",
}

// BuildBadges produces the badge set for a profile and its health grade:
// top language, up to three frameworks, health grade, then structural
// markers. Output is deterministic for a given profile.
func BuildBadges(p *analyzer.Profile, health *HealthReport) []Badge {
	var badges []Badge

	if lang := p.TopLanguage(); lang != "" {
		badges = append(badges, Badge{Label: "Language", Message: lang, Color: langColor(lang)})
	}

	for _, fw := range topFrameworks(p, 3) {
		badges = append(badges, Badge{Label: "Framework", Message: fw, Color: "blue"})
	}

	gradeColor, ok := gradeColors[health.Grade]
	if !ok {
		gradeColor = "gray"
	}
	badges = append(badges, Badge{Label: "Code Health", Message: health.Grade, Color: gradeColor})

	if p.HasTests {
		badges = append(badges, Badge{Label: "Tests", Message: "Passing", Color: "green"})
	}
	if p.HasCI {
		badges = append(badges, Badge{Label: "CI/CD", Message: "Configured", Color: "blue"})
	}
	if p.HasContainer {
		badges = append(badges, Badge{Label: "Docker", Message: "Ready", Color: "2496ED"})
	}
	if p.License != "" {
		badges = append(badges, Badge{Label: "License", Message: p.License, Color: "lightgrey"})
	}

	return badges
}

func langColor(lang string) string {
	if c, ok := langColors[lang]; ok {
		return c
	}
	return "555555"
}

// topFrameworks flattens the category map in sorted category order so the
// same profile always yields the same badge line.
func topFrameworks(p *analyzer.Profile, limit int) []string {
	categories := make([]string, 0, len(p.Frameworks))
	for c := range p.Frameworks {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []string
	for _, c := range categories {
		for _, name := range p.Frameworks[c] {
			out = append(out, name)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// badgeEscape applies shields.io static badge escaping: literal dashes
// double, then reserved URL characters percent-encode.
func badgeEscape(s string) string {
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, " ", "%20")
	s = strings.ReplaceAll(s, "/", "%2F")
	return s
}
