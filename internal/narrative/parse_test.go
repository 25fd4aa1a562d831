package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSectionsDelimited(t *testing.T) {
	raw := "## Overview\nthe overview\n---SECTION_BREAK---\n## Key Features\nfeatures"
	sections := parseSections(raw)

	require.Len(t, sections, 2)
	assert.Equal(t, "Overview", sections[0].Title)
	assert.Equal(t, KindOverview, sections[0].Kind)
	assert.Equal(t, 0, sections[0].Order)
	assert.Equal(t, KindOther, sections[1].Kind)
	assert.Equal(t, 1, sections[1].Order)
}

func TestParseSectionsHeadingFallback(t *testing.T) {
	raw := "## Project Overview\nintro text\n## Getting Started\nsetup text\n## Configuration\nenv vars"
	sections := parseSections(raw)

	require.Len(t, sections, 3)
	assert.Equal(t, "Project Overview", sections[0].Title)
	assert.Equal(t, "Getting Started", sections[1].Title)
	assert.Equal(t, KindSetup, sections[1].Kind)
	assert.Equal(t, "Configuration", sections[2].Title)
}

func TestParseSectionsUntitledPart(t *testing.T) {
	raw := "just some prose without headings\n---SECTION_BREAK---\nmore prose"
	sections := parseSections(raw)

	require.Len(t, sections, 2)
	assert.Equal(t, "Section 1", sections[0].Title)
	assert.Equal(t, "Section 2", sections[1].Title)
}

func TestParseSectionsDropsEmptyParts(t *testing.T) {
	raw := "---SECTION_BREAK---\n## Overview\ntext\n---SECTION_BREAK---\n   \n"
	sections := parseSections(raw)

	require.Len(t, sections, 1)
	assert.Equal(t, "Overview", sections[0].Title)
}

func TestClassifyTitle(t *testing.T) {
	tests := []struct {
		title string
		want  SectionKind
	}{
		{"Project Overview", KindOverview},
		{"Description", KindOverview},
		{"Technology Stack", KindTechStack},
		{"Tech Stack Breakdown", KindTechStack},
		{"Setup Guide", KindSetup},
		{"Getting Started", KindSetup},
		{"Installation", KindSetup},
		{"API Documentation", KindAPI},
		{"Contributing", KindContributing},
		{"Key Features", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTitle(tt.title))
		})
	}
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"score prefix", "## Security\nScore: 7/10\nfindings", intPtr(7)},
		{"bold heading", "**Security** 8/10\nnotes", intPtr(8)},
		{"spaced fraction", "rated 9 / 10 overall", intPtr(9)},
		{"ten", "Score: 10/10", intPtr(10)},
		{"zero", "Score: 0/10", intPtr(0)},
		{"no score", "looks fine to me", nil},
		{"out of range", "15/10 effort", nil},
		{"different denominator", "scored 4/5", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractScore(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestParseReview(t *testing.T) {
	raw := "## Security\nScore: 8/10\n---REVIEW_BREAK---\n## Performance\nno rating here"
	areas := parseReview(raw)

	require.Len(t, areas, 2)
	assert.Equal(t, "Security", areas[0].Title)
	require.NotNil(t, areas[0].Score)
	assert.Equal(t, 8, *areas[0].Score)
	assert.Nil(t, areas[1].Score)
}

func intPtr(n int) *int { return &n }
