package report

import (
	"math"

	"github.com/repodocai/repodoc/internal/analyzer"
)

// DependencyStats counts manifest dependencies by kind.
type DependencyStats struct {
	Total   int `json:"total"`
	Runtime int `json:"runtime"`
	Dev     int `json:"dev"`
}

// ComplexityReport captures structural size and shape metrics.
type ComplexityReport struct {
	TotalFiles          int                 `json:"totalFiles"`
	TotalLines          int                 `json:"totalLines"`
	AvgLinesPerFile     float64             `json:"avgLinesPerFile"`
	Languages           []analyzer.Language `json:"languageDistribution"`
	TopModules          []string            `json:"topModules"`
	FrameworkCategories map[string][]string `json:"frameworkCategories"`
	Dependencies        DependencyStats     `json:"dependencyStats"`
	SizeLabel           string              `json:"codebaseSize"`
}

// MeasureComplexity derives structural metrics from the profile. Language
// distribution and top modules are capped at ten entries each.
func MeasureComplexity(p *analyzer.Profile) *ComplexityReport {
	files := p.TotalFiles
	if files < 1 {
		files = 1
	}
	avg := math.Round(float64(p.TotalLines)/float64(files)*10) / 10

	langs := p.Languages
	if len(langs) > 10 {
		langs = langs[:10]
	}
	modules := p.TopModules
	if len(modules) > 10 {
		modules = modules[:10]
	}

	runtime := p.RuntimeDependencies()
	return &ComplexityReport{
		TotalFiles:          p.TotalFiles,
		TotalLines:          p.TotalLines,
		AvgLinesPerFile:     avg,
		Languages:           langs,
		TopModules:          modules,
		FrameworkCategories: p.Frameworks,
		Dependencies: DependencyStats{
			Total:   len(p.Dependencies),
			Runtime: runtime,
			Dev:     len(p.Dependencies) - runtime,
		},
		SizeLabel: sizeLabel(p.TotalLines),
	}
}

func sizeLabel(lines int) string {
	switch {
	case lines < 500:
		return "Micro"
	case lines < 2000:
		return "Small"
	case lines < 10000:
		return "Medium"
	case lines < 50000:
		return "Large"
	default:
		return "Enterprise"
	}
}
