package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repodocai/repodoc/internal/analyzer"
)

func TestMeasureComplexity(t *testing.T) {
	p := fullHealthProfile()
	p.Dependencies = []analyzer.Dependency{
		{Name: "gin", Version: "1.9.0"},
		{Name: "testify", Version: "1.11.0", Dev: true},
	}

	rep := MeasureComplexity(p)

	assert.Equal(t, 20, rep.TotalFiles)
	assert.Equal(t, 1000, rep.TotalLines)
	assert.Equal(t, 50.0, rep.AvgLinesPerFile)
	assert.Equal(t, "Small", rep.SizeLabel)
	assert.Equal(t, DependencyStats{Total: 2, Runtime: 1, Dev: 1}, rep.Dependencies)
	assert.Equal(t, []string{"cmd", "internal"}, rep.TopModules)
}

func TestMeasureComplexityEmptyProfile(t *testing.T) {
	rep := MeasureComplexity(&analyzer.Profile{})

	assert.Equal(t, 0.0, rep.AvgLinesPerFile)
	assert.Equal(t, "Micro", rep.SizeLabel)
	assert.Empty(t, rep.Languages)
}

func TestMeasureComplexityAvgRounding(t *testing.T) {
	p := &analyzer.Profile{TotalFiles: 3, TotalLines: 100}
	rep := MeasureComplexity(p)
	assert.Equal(t, 33.3, rep.AvgLinesPerFile)
}

func TestMeasureComplexityCapsLists(t *testing.T) {
	p := &analyzer.Profile{}
	for i := 0; i < 15; i++ {
		p.Languages = append(p.Languages, analyzer.Language{Name: fmt.Sprintf("L%d", i)})
		p.TopModules = append(p.TopModules, fmt.Sprintf("mod%d", i))
	}

	rep := MeasureComplexity(p)

	assert.Len(t, rep.Languages, 10)
	assert.Len(t, rep.TopModules, 10)
}

func TestSizeLabels(t *testing.T) {
	tests := []struct {
		lines int
		want  string
	}{
		{0, "Micro"},
		{499, "Micro"},
		{500, "Small"},
		{1999, "Small"},
		{2000, "Medium"},
		{9999, "Medium"},
		{10000, "Large"},
		{49999, "Large"},
		{50000, "Enterprise"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sizeLabel(tt.lines), "lines=%d", tt.lines)
	}
}
