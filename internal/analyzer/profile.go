// Package analyzer derives a structured RepositoryProfile from a local
// repository tree in a single deterministic traversal.
package analyzer

// Language holds the line-count share of one detected language.
type Language struct {
	Name    string
	Lines   int
	Percent float64 // share of total counted lines, sums to ~100
}

// Dependency is a single entry parsed from a package manifest.
type Dependency struct {
	Name    string
	Version string // version spec as written in the manifest, may be empty
	Dev     bool   // true for dev/test-only dependencies
}

// Profile is the immutable structured summary of a repository. It is
// produced once per task and consumed by every downstream engine.
type Profile struct {
	RepoName    string
	Description string

	Languages    []Language
	Frameworks   map[string][]string // category -> detected framework names, sorted
	Dependencies []Dependency
	EntryPoints  []string
	TopModules   []string // top-level directories ranked by contained lines

	HasTests        bool
	HasCI           bool
	HasContainer    bool
	License         string // "MIT", "Apache", "GPL", "BSD", "Custom", or ""
	TotalFiles      int
	TotalLines      int

	// KeyFiles maps well-known file names to their (truncated) contents.
	// Used by the health scorer and the narrative prompt builder.
	KeyFiles map[string]string
}

// TopLanguage returns the name of the dominant language, or "" when none
// was detected.
func (p *Profile) TopLanguage() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0].Name
}

// RuntimeDependencies returns the count of non-dev dependencies.
func (p *Profile) RuntimeDependencies() int {
	n := 0
	for _, d := range p.Dependencies {
		if !d.Dev {
			n++
		}
	}
	return n
}
