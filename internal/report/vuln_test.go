package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodocai/repodoc/internal/advisory"
	"github.com/repodocai/repodoc/internal/analyzer"
)

func TestScanVulnerabilitiesFindings(t *testing.T) {
	p := &analyzer.Profile{
		Dependencies: []analyzer.Dependency{
			{Name: "lodash", Version: "^4.17.1"},
			{Name: "minimist", Version: "1.2.0"},
			{Name: "left-pad", Version: "1.3.0"},
			{Name: "express", Version: "4.18.0"},
		},
	}

	rep := ScanVulnerabilities(p, advisory.DefaultTable())

	assert.Equal(t, 4, rep.TotalDependencies)
	assert.Equal(t, 4, rep.Scanned)
	require.Len(t, rep.Findings, 2)
	assert.Equal(t, advisory.SeverityCritical, rep.RiskLevel)
	assert.Equal(t, 1, rep.SeverityBreakdown[advisory.SeverityCritical])
	assert.Equal(t, 1, rep.SeverityBreakdown[advisory.SeverityHigh])
	assert.NotEmpty(t, rep.Limitation)
}

func TestScanVulnerabilitiesRiskLevels(t *testing.T) {
	tests := []struct {
		name string
		deps []analyzer.Dependency
		want advisory.Severity
	}{
		{"clean", []analyzer.Dependency{{Name: "react", Version: "18.2.0"}}, advisory.SeverityLow},
		{"medium only", []analyzer.Dependency{{Name: "flask", Version: "2.0.0"}}, advisory.SeverityMedium},
		{"high wins", []analyzer.Dependency{
			{Name: "flask", Version: "2.0.0"},
			{Name: "django", Version: "3.2.0"},
		}, advisory.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &analyzer.Profile{Dependencies: tt.deps}
			rep := ScanVulnerabilities(p, advisory.DefaultTable())
			assert.Equal(t, tt.want, rep.RiskLevel)
		})
	}
}

func TestScanVulnerabilitiesBreakdownAlwaysComplete(t *testing.T) {
	rep := ScanVulnerabilities(&analyzer.Profile{}, advisory.DefaultTable())

	assert.Empty(t, rep.Findings)
	require.Len(t, rep.SeverityBreakdown, 4)
	for _, sev := range []advisory.Severity{
		advisory.SeverityCritical, advisory.SeverityHigh,
		advisory.SeverityMedium, advisory.SeverityLow,
	} {
		assert.Contains(t, rep.SeverityBreakdown, sev)
	}
}

func TestScanVulnerabilitiesSkipsVersionlessDeps(t *testing.T) {
	p := &analyzer.Profile{
		Dependencies: []analyzer.Dependency{{Name: "lodash", Version: ""}},
	}
	rep := ScanVulnerabilities(p, advisory.DefaultTable())

	assert.Empty(t, rep.Findings)
	assert.Equal(t, 1, rep.Scanned)
}
