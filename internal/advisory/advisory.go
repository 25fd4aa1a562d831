// Package advisory provides a versioned lookup table of known-vulnerable
// package releases. The data is best-effort seed data, not a security-grade
// feed; absence of a match never implies a package is safe.
package advisory

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// Severity classifies how serious an advisory is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for comparison; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Advisory describes one known-vulnerable package range: every release
// below FixedIn is affected.
type Advisory struct {
	Package  string   `toml:"package"`
	FixedIn  string   `toml:"fixed_in"`
	Severity Severity `toml:"severity"`
	ID       string   `toml:"id"`
	Summary  string   `toml:"summary"`
}

// Table is an immutable advisory lookup keyed by lowercased package name.
type Table struct {
	byPackage map[string][]Advisory
}

// NewTable builds a Table from a list of advisories.
func NewTable(advisories []Advisory) *Table {
	t := &Table{byPackage: make(map[string][]Advisory, len(advisories))}
	for _, a := range advisories {
		key := strings.ToLower(a.Package)
		t.byPackage[key] = append(t.byPackage[key], a)
	}
	return t
}

// LoadTable reads advisories from a TOML file of [[advisory]] blocks.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading advisory file: %w", err)
	}
	var doc struct {
		Advisories []Advisory `toml:"advisory"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing advisory file %s: %w", path, err)
	}
	return NewTable(doc.Advisories), nil
}

// Match returns the advisories affecting the given package at the given
// version spec. A package matches when its coerced version parses as
// semver and is strictly below the advisory's fixed-in version. Versions
// that cannot be coerced produce no match.
func (t *Table) Match(name, version string) []Advisory {
	candidates := t.byPackage[strings.ToLower(name)]
	if len(candidates) == 0 {
		return nil
	}

	installed, err := semver.NewVersion(coerceVersion(version))
	if err != nil {
		return nil
	}

	var matched []Advisory
	for _, a := range candidates {
		fixedIn, err := semver.NewVersion(coerceVersion(a.FixedIn))
		if err != nil {
			continue
		}
		if installed.LessThan(fixedIn) {
			matched = append(matched, a)
		}
	}
	return matched
}

var versionDigitsRe = regexp.MustCompile(`\d+(\.\d+)*`)

// coerceVersion strips range operators and prefixes from a manifest
// version spec ("^4.17.1", "~> 2.3", "v1.2") down to a bare version.
// Partial versions are padded to three components.
func coerceVersion(spec string) string {
	m := versionDigitsRe.FindString(spec)
	if m == "" {
		return spec
	}
	for strings.Count(m, ".") < 2 {
		m += ".0"
	}
	return m
}

// DefaultTable returns the compiled-in seed advisories for packages with
// well-known vulnerability history across the npm and PyPI ecosystems.
func DefaultTable() *Table {
	return NewTable([]Advisory{
		{Package: "lodash", FixedIn: "4.17.21", Severity: SeverityHigh, ID: "GHSA-35jh-r3h4-6jhm", Summary: "Prototype pollution"},
		{Package: "minimist", FixedIn: "1.2.6", Severity: SeverityCritical, ID: "CVE-2021-44906", Summary: "Prototype pollution"},
		{Package: "node-fetch", FixedIn: "2.6.7", Severity: SeverityMedium, ID: "CVE-2022-0235", Summary: "Exposure of sensitive information"},
		{Package: "express", FixedIn: "4.17.3", Severity: SeverityMedium, ID: "CVE-2022-24999", Summary: "Open redirect"},
		{Package: "axios", FixedIn: "0.21.2", Severity: SeverityHigh, ID: "CVE-2021-3749", Summary: "Server-side request forgery"},
		{Package: "jsonwebtoken", FixedIn: "9.0.0", Severity: SeverityHigh, ID: "CVE-2022-23529", Summary: "Insecure defaults"},
		{Package: "tar", FixedIn: "6.1.9", Severity: SeverityHigh, ID: "CVE-2021-37713", Summary: "Arbitrary file creation"},
		{Package: "django", FixedIn: "4.2.8", Severity: SeverityHigh, ID: "CVE-2023-46695", Summary: "Multiple vulnerabilities"},
		{Package: "flask", FixedIn: "2.3.2", Severity: SeverityMedium, ID: "CVE-2023-30861", Summary: "Cookie disclosure"},
		{Package: "requests", FixedIn: "2.31.0", Severity: SeverityMedium, ID: "CVE-2023-32681", Summary: "Proxy-Authorization header leak"},
		{Package: "pillow", FixedIn: "10.0.1", Severity: SeverityHigh, ID: "CVE-2023-44271", Summary: "Image processing vulnerabilities"},
		{Package: "numpy", FixedIn: "1.22.0", Severity: SeverityLow, ID: "CVE-2021-41496", Summary: "Buffer overflow on complex arrays"},
		{Package: "urllib3", FixedIn: "2.0.7", Severity: SeverityMedium, ID: "CVE-2023-45803", Summary: "Cookie leak on cross-origin redirects"},
		{Package: "cryptography", FixedIn: "41.0.4", Severity: SeverityHigh, ID: "CVE-2023-38325", Summary: "Multiple OpenSSL vulnerabilities"},
	})
}
