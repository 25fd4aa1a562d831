// Package report contains the deterministic heuristic engines that turn a
// repository profile into health, vulnerability, complexity and badge
// reports. Every engine is a pure function of its inputs.
package report

import (
	"fmt"
	"strings"

	"github.com/repodocai/repodoc/internal/analyzer"
)

// HealthCheck is one rubric entry with its pass/fail outcome.
type HealthCheck struct {
	Label  string `json:"check"`
	Passed bool   `json:"passed"`
	Detail string `json:"message"`
	Weight int    `json:"weight"`
}

// HealthReport scores a repository against a fixed engineering rubric.
type HealthReport struct {
	Score    int           `json:"score"`
	MaxScore int           `json:"maxScore"`
	Grade    string        `json:"grade"`
	Checks   []HealthCheck `json:"checks"`
	Summary  string        `json:"summary"`
}

// organizedDirs are top-level directory names that indicate a deliberate
// project layout rather than a flat file dump.
var organizedDirs = map[string]bool{
	"src": true, "lib": true, "app": true, "pkg": true, "cmd": true,
	"internal": true, "components": true, "services": true,
	"utils": true, "models": true,
}

// ScoreHealth evaluates the fixed rubric against the profile. The rubric
// weights sum to 100, so the score is directly a percentage; grades are
// exhaustive and monotonic in the score.
func ScoreHealth(p *analyzer.Profile) *HealthReport {
	checks := []HealthCheck{
		check("README present", 15, hasReadme(p),
			"README.md found", "No README found"),
		check("Tests present", 15, p.HasTests,
			"Tests detected", "No tests found"),
		check("CI/CD configured", 12, p.HasCI,
			"CI/CD found", "No CI/CD"),
		check("Containerized", 8, p.HasContainer,
			"Container setup found", "No container setup"),
		licenseCheck(p),
		check(".env example", 5, hasEnvExample(p),
			".env.example found", "No .env.example"),
		check(".gitignore", 5, hasKeyFile(p, ".gitignore"),
			".gitignore present", "Missing .gitignore"),
		check("Code organization", 12, hasOrganizedLayout(p),
			"Organized directory structure", "Flat file structure"),
		docDensityCheck(p),
		depManagementCheck(p),
	}

	score := 0
	for _, c := range checks {
		if c.Passed {
			score += c.Weight
		}
	}
	if score > 100 {
		score = 100
	}

	grade := scoreToGrade(score)
	return &HealthReport{
		Score:    score,
		MaxScore: 100,
		Grade:    grade,
		Checks:   checks,
		Summary:  gradeSummary(grade),
	}
}

func check(label string, weight int, passed bool, yes, no string) HealthCheck {
	detail := no
	if passed {
		detail = yes
	}
	return HealthCheck{Label: label, Passed: passed, Detail: detail, Weight: weight}
}

func licenseCheck(p *analyzer.Profile) HealthCheck {
	if p.License != "" {
		return HealthCheck{Label: "License file", Passed: true,
			Detail: "License: " + p.License, Weight: 8}
	}
	return HealthCheck{Label: "License file", Passed: false,
		Detail: "No license", Weight: 8}
}

func docDensityCheck(p *analyzer.Profile) HealthCheck {
	mdLines := 0
	for _, l := range p.Languages {
		if l.Name == "Markdown" {
			mdLines = l.Lines
			break
		}
	}
	codeLines := p.TotalLines - mdLines
	if codeLines < 1 {
		codeLines = 1
	}
	ratio := float64(mdLines) / float64(codeLines)
	passed := ratio >= 0.05
	detail := fmt.Sprintf("%.1f%% doc-to-code ratio", ratio*100)
	if !passed {
		detail = fmt.Sprintf("Low docs (%.1f%%)", ratio*100)
	}
	return HealthCheck{Label: "Documentation density", Passed: passed, Detail: detail, Weight: 10}
}

func depManagementCheck(p *analyzer.Profile) HealthCheck {
	if n := len(p.Dependencies); n > 0 {
		return HealthCheck{Label: "Dependency management", Passed: true,
			Detail: fmt.Sprintf("%d deps managed", n), Weight: 10}
	}
	return HealthCheck{Label: "Dependency management", Passed: false,
		Detail: "No package manager detected", Weight: 10}
}

func hasReadme(p *analyzer.Profile) bool {
	for name := range p.KeyFiles {
		if strings.HasPrefix(strings.ToLower(name), "readme") {
			return true
		}
	}
	return false
}

func hasEnvExample(p *analyzer.Profile) bool {
	for name := range p.KeyFiles {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "env") && strings.Contains(lower, "example") {
			return true
		}
	}
	return false
}

func hasKeyFile(p *analyzer.Profile, name string) bool {
	_, ok := p.KeyFiles[name]
	return ok
}

func hasOrganizedLayout(p *analyzer.Profile) bool {
	for _, dir := range p.TopModules {
		if organizedDirs[strings.ToLower(dir)] {
			return true
		}
	}
	return false
}

func scoreToGrade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

func gradeSummary(grade string) string {
	switch grade {
	case "A+":
		return "Exceptional! This repo follows nearly all best practices."
	case "A":
		return "Excellent engineering quality. Well-maintained and documented."
	case "B":
		return "Good quality. A few improvements would make it great."
	case "C":
		return "Average. Several important areas need attention."
	case "D":
		return "Below average. Significant improvements needed."
	default:
		return "Needs work. Missing most software engineering best practices."
	}
}
