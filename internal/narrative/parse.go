package narrative

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	sectionDelimiter = "---SECTION_BREAK---"
	reviewDelimiter  = "---REVIEW_BREAK---"
)

// SectionKind classifies a parsed documentation section.
type SectionKind string

const (
	KindOverview     SectionKind = "overview"
	KindTechStack    SectionKind = "tech_stack"
	KindSetup        SectionKind = "setup"
	KindAPI          SectionKind = "api"
	KindContributing SectionKind = "contributing"
	KindOther        SectionKind = "other"
)

// Section is one parsed documentation section.
type Section struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Kind    SectionKind `json:"kind"`
	Order   int         `json:"order"`
}

// ReviewArea is one scored area of the model's code review. Score is nil
// when no rating could be extracted; a missing score is not zero.
type ReviewArea struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Score   *int   `json:"score,omitempty"`
}

// splitParts divides raw model output on the delimiter when present,
// otherwise on "## " heading boundaries.
func splitParts(raw, delimiter string) []string {
	if strings.Contains(raw, delimiter) {
		return strings.Split(raw, delimiter)
	}

	var parts []string
	var buf strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "## ") && buf.Len() > 0 {
			parts = append(parts, buf.String())
			buf.Reset()
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}
	return parts
}

// partTitle extracts the first heading line, stripped of markers.
func partTitle(part string, order int) string {
	for _, line := range strings.Split(part, "\n") {
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return fmt.Sprintf("Section %d", order+1)
}

// parseSections converts raw documentation output into classified
// sections. Empty parts are dropped; order reflects input position.
func parseSections(raw string) []Section {
	var sections []Section
	for i, part := range splitParts(raw, sectionDelimiter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		title := partTitle(part, i)
		sections = append(sections, Section{
			Title:   title,
			Content: part,
			Kind:    classifyTitle(title),
			Order:   i,
		})
	}
	return sections
}

func classifyTitle(title string) SectionKind {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "overview") || strings.Contains(t, "description"):
		return KindOverview
	case strings.Contains(t, "technology") || strings.Contains(t, "tech stack"):
		return KindTechStack
	case strings.Contains(t, "setup") || strings.Contains(t, "getting started") || strings.Contains(t, "installation"):
		return KindSetup
	case strings.Contains(t, "api"):
		return KindAPI
	case strings.Contains(t, "contributing"):
		return KindContributing
	default:
		return KindOther
	}
}

var scoreRe = regexp.MustCompile(`(\d{1,2})\s*/\s*10`)

// parseReview converts raw review output into scored areas.
func parseReview(raw string) []ReviewArea {
	var areas []ReviewArea
	for i, part := range splitParts(raw, reviewDelimiter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		areas = append(areas, ReviewArea{
			Title:   partTitle(part, i),
			Content: part,
			Score:   extractScore(part),
		})
	}
	return areas
}

// extractScore finds the first N/10 rating in the text. Values above 10
// are rejected rather than clamped.
func extractScore(part string) *int {
	m := scoreRe.FindStringSubmatch(part)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 10 {
		return nil
	}
	return &n
}
