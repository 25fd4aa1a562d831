package report

import (
	"github.com/repodocai/repodoc/internal/advisory"
	"github.com/repodocai/repodoc/internal/analyzer"
)

// Finding is one dependency matched against a known advisory.
type Finding struct {
	Package     string            `json:"package"`
	Installed   string            `json:"installedVersion"`
	FixedIn     string            `json:"fixVersion"`
	Severity    advisory.Severity `json:"severity"`
	AdvisoryID  string            `json:"advisoryId"`
	Description string            `json:"description"`
}

// VulnReport summarizes advisory matches across all profile dependencies.
type VulnReport struct {
	TotalDependencies int                       `json:"totalDependencies"`
	Scanned           int                       `json:"scanned"`
	Findings          []Finding                 `json:"findings"`
	RiskLevel         advisory.Severity         `json:"riskLevel"`
	SeverityBreakdown map[advisory.Severity]int `json:"severityBreakdown"`
	Limitation        string                    `json:"limitation"`
}

const vulnLimitation = "Heuristic scan against a small curated advisory set. " +
	"Absence of findings does not mean the dependency tree is free of vulnerabilities; " +
	"use a dedicated scanner for security-critical audits."

// ScanVulnerabilities checks every dependency against the advisory table.
// Dependencies without a parseable version produce no findings. The
// breakdown map always carries all four severity keys.
func ScanVulnerabilities(p *analyzer.Profile, table *advisory.Table) *VulnReport {
	breakdown := map[advisory.Severity]int{
		advisory.SeverityCritical: 0,
		advisory.SeverityHigh:     0,
		advisory.SeverityMedium:   0,
		advisory.SeverityLow:      0,
	}

	var findings []Finding
	for _, dep := range p.Dependencies {
		if dep.Version == "" {
			continue
		}
		for _, a := range table.Match(dep.Name, dep.Version) {
			findings = append(findings, Finding{
				Package:     dep.Name,
				Installed:   dep.Version,
				FixedIn:     a.FixedIn,
				Severity:    a.Severity,
				AdvisoryID:  a.ID,
				Description: a.Summary,
			})
			breakdown[a.Severity]++
		}
	}

	risk := advisory.SeverityLow
	for _, f := range findings {
		if f.Severity.Rank() > risk.Rank() {
			risk = f.Severity
		}
	}

	return &VulnReport{
		TotalDependencies: len(p.Dependencies),
		Scanned:           len(p.Dependencies),
		Findings:          findings,
		RiskLevel:         risk,
		SeverityBreakdown: breakdown,
		Limitation:        vulnLimitation,
	}
}
