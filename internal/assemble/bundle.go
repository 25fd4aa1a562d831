// Package assemble collects every pipeline artifact into a Bundle and
// renders the flattened markdown export.
package assemble

import (
	"time"

	"github.com/repodocai/repodoc/internal/analyzer"
	"github.com/repodocai/repodoc/internal/diagram"
	"github.com/repodocai/repodoc/internal/narrative"
	"github.com/repodocai/repodoc/internal/report"
)

// Bundle is the complete documentation result for one repository.
type Bundle struct {
	TaskID    string    `json:"taskId"`
	RepoName  string    `json:"repoName"`
	CreatedAt time.Time `json:"createdAt"`

	Profile         *analyzer.Profile        `json:"profile"`
	Narrative       *narrative.Narrative     `json:"narrative"`
	Health          *report.HealthReport     `json:"healthScore"`
	Vulnerabilities *report.VulnReport       `json:"vulnerabilityScan"`
	Complexity      *report.ComplexityReport `json:"complexityMetrics"`
	Badges          []report.Badge           `json:"badges"`
	Diagrams        []diagram.Diagram        `json:"diagrams"`

	// Contributing is the deterministic guide; a model-written
	// contributing section replaces it when present.
	Contributing string `json:"contributingGuide"`
}

// Assemble builds the bundle from pipeline outputs.
func Assemble(taskID string, createdAt time.Time, p *analyzer.Profile, n *narrative.Narrative,
	health *report.HealthReport, vulns *report.VulnReport, complexity *report.ComplexityReport,
	badges []report.Badge, diagrams []diagram.Diagram) *Bundle {

	contributing := ContributingGuide(p)
	if n != nil && n.Contributing != "" {
		contributing = n.Contributing
	}

	return &Bundle{
		TaskID:          taskID,
		RepoName:        p.RepoName,
		CreatedAt:       createdAt,
		Profile:         p,
		Narrative:       n,
		Health:          health,
		Vulnerabilities: vulns,
		Complexity:      complexity,
		Badges:          badges,
		Diagrams:        diagrams,
		Contributing:    contributing,
	}
}
