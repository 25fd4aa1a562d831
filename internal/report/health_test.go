package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodocai/repodoc/internal/analyzer"
)

// fullHealthProfile passes every rubric check.
func fullHealthProfile() *analyzer.Profile {
	return &analyzer.Profile{
		RepoName: "exemplar",
		Languages: []analyzer.Language{
			{Name: "Go", Lines: 900, Percent: 90},
			{Name: "Markdown", Lines: 100, Percent: 10},
		},
		Frameworks:   map[string][]string{"Backend": {"Gin"}},
		Dependencies: []analyzer.Dependency{{Name: "gin", Version: "1.9.0"}},
		TopModules:   []string{"cmd", "internal"},
		HasTests:     true,
		HasCI:        true,
		HasContainer: true,
		License:      "MIT",
		TotalFiles:   20,
		TotalLines:   1000,
		KeyFiles: map[string]string{
			"README.md":    "# exemplar",
			".gitignore":   "bin/",
			".env.example": "PORT=8080",
			"go.mod":       "module exemplar",
		},
	}
}

func TestScoreHealthPerfect(t *testing.T) {
	rep := ScoreHealth(fullHealthProfile())

	assert.Equal(t, 100, rep.Score)
	assert.Equal(t, "A+", rep.Grade)
	assert.Equal(t, 100, rep.MaxScore)
	require.Len(t, rep.Checks, 10)
	for _, c := range rep.Checks {
		assert.True(t, c.Passed, c.Label)
	}
}

func TestScoreHealthEmptyProfile(t *testing.T) {
	rep := ScoreHealth(&analyzer.Profile{})

	assert.Equal(t, 0, rep.Score)
	assert.Equal(t, "F", rep.Grade)
	for _, c := range rep.Checks {
		assert.False(t, c.Passed, c.Label)
	}
}

func TestScoreHealthWeights(t *testing.T) {
	total := 0
	for _, c := range ScoreHealth(&analyzer.Profile{}).Checks {
		total += c.Weight
	}
	assert.Equal(t, 100, total)
}

func TestScoreHealthDocDensity(t *testing.T) {
	p := fullHealthProfile()

	// 100 markdown lines over 900 code lines is above the 5% threshold.
	rep := ScoreHealth(p)
	assert.True(t, findCheck(t, rep, "Documentation density").Passed)

	// 10 over 9990 drops below it.
	p.Languages = []analyzer.Language{
		{Name: "Go", Lines: 9990},
		{Name: "Markdown", Lines: 10},
	}
	p.TotalLines = 10000
	rep = ScoreHealth(p)
	assert.False(t, findCheck(t, rep, "Documentation density").Passed)
}

func TestScoreHealthPartialScores(t *testing.T) {
	p := fullHealthProfile()
	p.HasTests = false // -15
	rep := ScoreHealth(p)
	assert.Equal(t, 85, rep.Score)
	assert.Equal(t, "A", rep.Grade)

	p.HasCI = false // -12
	rep = ScoreHealth(p)
	assert.Equal(t, 73, rep.Score)
	assert.Equal(t, "B", rep.Grade)
}

func TestGradeThresholdsMonotonic(t *testing.T) {
	order := map[string]int{"F": 0, "D": 1, "C": 2, "B": 3, "A": 4, "A+": 5}
	prev := scoreToGrade(0)
	for score := 1; score <= 100; score++ {
		grade := scoreToGrade(score)
		assert.GreaterOrEqual(t, order[grade], order[prev],
			"grade regressed at score %d", score)
		prev = grade
	}
	assert.Equal(t, "A+", scoreToGrade(90))
	assert.Equal(t, "A", scoreToGrade(89))
	assert.Equal(t, "D", scoreToGrade(50))
	assert.Equal(t, "F", scoreToGrade(49))
}

func findCheck(t *testing.T, rep *HealthReport, label string) HealthCheck {
	t.Helper()
	for _, c := range rep.Checks {
		if c.Label == label {
			return c
		}
	}
	t.Fatalf("check %q not found", label)
	return HealthCheck{}
}
