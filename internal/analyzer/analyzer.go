package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrEmptyRepository is returned when the tree contains no readable files.
var ErrEmptyRepository = errors.New("repository contains no files")

const (
	maxCountedFileSize = 1 << 20 // files above 1 MiB are excluded from line counts
	maxKeyFileBytes    = 50_000  // key file contents are truncated for prompts
	binarySniffBytes   = 8192
)

// langExtensions maps file extensions to display language names.
var langExtensions = map[string]string{
	".py":         "Python",
	".js":         "JavaScript",
	".ts":         "TypeScript",
	".jsx":        "JavaScript (JSX)",
	".tsx":        "TypeScript (TSX)",
	".java":       "Java",
	".cpp":        "C++",
	".cc":         "C++",
	".c":          "C",
	".h":          "C/C++ Header",
	".cs":         "C#",
	".go":         "Go",
	".rs":         "Rust",
	".rb":         "Ruby",
	".php":        "PHP",
	".swift":      "Swift",
	".kt":         "Kotlin",
	".scala":      "Scala",
	".r":          "R",
	".ex":         "Elixir",
	".exs":        "Elixir",
	".dart":       "Dart",
	".html":       "HTML",
	".css":        "CSS",
	".scss":       "SCSS",
	".sass":       "SASS",
	".vue":        "Vue",
	".svelte":     "Svelte",
	".sql":        "SQL",
	".sh":         "Shell",
	".bash":       "Shell",
	".yml":        "YAML",
	".yaml":       "YAML",
	".json":       "JSON",
	".xml":        "XML",
	".md":         "Markdown",
	".dockerfile": "Dockerfile",
	".proto":      "Protocol Buffers",
	".graphql":    "GraphQL",
	".gql":        "GraphQL",
}

// skipDirs contains directory names excluded from traversal: VCS metadata,
// vendored dependencies, caches, and build output.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	".venv": true, "venv": true, "env": true,
	".next": true, ".nuxt": true, "dist": true, "build": true,
	".cache": true, "coverage": true,
	".idea": true, ".vscode": true, ".vs": true,
	"vendor": true, "target": true, "bin": true, "obj": true,
	".tox": true, ".mypy_cache": true, ".pytest_cache": true, "eggs": true,
}

// skipFiles contains generated or noise files excluded from counting.
var skipFiles = map[string]bool{
	".DS_Store": true, "Thumbs.db": true, ".gitattributes": true,
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"poetry.lock": true, "Pipfile.lock": true, "composer.lock": true,
}

// keyFileNames are root-level files captured into Profile.KeyFiles.
var keyFileNames = []string{
	"README.md", "README.rst", "README.txt", "README",
	"package.json", "requirements.txt", "Pipfile", "pyproject.toml",
	"pom.xml", "build.gradle", "Cargo.toml", "go.mod",
	"Gemfile", "pubspec.yaml", "composer.json", "mix.exs",
	"Package.swift", "build.sbt", "project.clj", "cpanfile",
	"Podfile", "conanfile.txt", "DESCRIPTION", "packages.config",
	"Dockerfile", "docker-compose.yml", "docker-compose.yaml",
	".env.example", "example.env", ".gitignore",
	"Makefile", "Procfile",
	"app.py", "main.py", "index.js", "index.ts",
	"server.js", "server.ts", "app.js", "app.ts",
}

// entrySourceFiles are common nested entry-point paths also captured into
// KeyFiles when present.
var entrySourceFiles = []string{
	"src/index.ts", "src/index.js", "src/main.ts", "src/main.js",
	"src/app.ts", "src/app.js", "src/App.tsx", "src/App.jsx",
	"src/main.py", "app/__init__.py", "cmd/main.go",
	"src/lib.rs", "src/main.rs",
}

// entryBasenames are file stems treated as program entry points.
var entryBasenames = map[string]bool{
	"main": true, "index": true, "app": true,
	"server": true, "manage": true, "cli": true, "run": true,
}

// ciMarkers are paths whose existence indicates a CI pipeline.
var ciMarkers = []string{
	".github/workflows", ".gitlab-ci.yml", ".travis.yml",
	"Jenkinsfile", ".circleci", "azure-pipelines.yml",
}

// containerMarkers are files whose existence indicates containerization.
var containerMarkers = []string{
	"Dockerfile", "docker-compose.yml", "docker-compose.yaml", "Containerfile",
}

type scannedFile struct {
	path     string // slash-separated, relative to root
	language string
	lines    int
}

// Analyze walks the repository tree rooted at root and builds a Profile.
// The traversal is deterministic: identical trees produce identical profiles.
func Analyze(root string) (*Profile, error) {
	files, err := walk(root)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	if len(files) == 0 {
		return nil, ErrEmptyRepository
	}

	p := &Profile{
		RepoName: filepath.Base(root),
		KeyFiles: readKeyFiles(root),
	}

	p.TotalFiles = len(files)
	for _, f := range files {
		p.TotalLines += f.lines
	}

	p.Languages = countLanguages(files)
	p.Dependencies = detectDependencies(p.KeyFiles)
	p.Frameworks = detectFrameworks(root, p.Dependencies)
	p.EntryPoints = detectEntryPoints(files)
	p.TopModules = rankTopModules(files)
	p.HasTests = detectTests(files)
	p.HasCI = anyPathExists(root, ciMarkers)
	p.HasContainer = anyPathExists(root, containerMarkers)
	p.License = detectLicense(root)
	p.Description = extractDescription(p.KeyFiles)

	return p, nil
}

// walk lists countable files under root, skipping vendored directories,
// noise files, binaries, and oversized files (their lines count as zero
// but the file itself is still tallied).
func walk(root string) ([]scannedFile, error) {
	var files []scannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("WARNING: analyzer skipping %q: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFiles[d.Name()] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		sf := scannedFile{path: rel, language: classifyLanguage(d.Name())}

		info, err := d.Info()
		if err == nil && info.Size() <= maxCountedFileSize {
			sf.lines = countFileLines(path)
		}

		files = append(files, sf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir is lexical, but sort anyway so the contract does not depend
	// on traversal internals.
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

// classifyLanguage maps a file name to a language, special-casing Dockerfile.
func classifyLanguage(name string) string {
	if name == "Dockerfile" || name == "Containerfile" {
		return "Dockerfile"
	}
	ext := strings.ToLower(filepath.Ext(name))
	if lang, ok := langExtensions[ext]; ok {
		return lang
	}
	return "Other"
}

// countFileLines counts newline-delimited lines. Binary files count as zero.
func countFileLines(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	sniff := data
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return 0
	}
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// countLanguages aggregates line counts per language and computes
// percentages. Results are sorted by lines descending, name ascending.
func countLanguages(files []scannedFile) []Language {
	counts := map[string]int{}
	for _, f := range files {
		if f.language != "Other" && f.lines > 0 {
			counts[f.language] += f.lines
		}
	}
	if len(counts) == 0 {
		return nil
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	langs := make([]Language, 0, len(counts))
	for name, lines := range counts {
		langs = append(langs, Language{
			Name:    name,
			Lines:   lines,
			Percent: math.Round(float64(lines)/float64(total)*1000) / 10,
		})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Lines != langs[j].Lines {
			return langs[i].Lines > langs[j].Lines
		}
		return langs[i].Name < langs[j].Name
	})
	return langs
}

// readKeyFiles reads well-known files from the repository root, truncated
// to maxKeyFileBytes each.
func readKeyFiles(root string) map[string]string {
	out := map[string]string{}
	paths := append(append([]string{}, keyFileNames...), entrySourceFiles...)
	for _, rel := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		if len(data) > maxKeyFileBytes {
			data = data[:maxKeyFileBytes]
		}
		out[rel] = string(data)
	}
	return out
}

// detectEntryPoints returns source files whose stem matches a well-known
// entry-point name.
func detectEntryPoints(files []scannedFile) []string {
	var entries []string
	for _, f := range files {
		if f.language == "Other" || f.language == "Markdown" ||
			f.language == "JSON" || f.language == "YAML" {
			continue
		}
		base := filepath.Base(f.path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if entryBasenames[strings.ToLower(stem)] {
			entries = append(entries, f.path)
		}
	}
	sort.Strings(entries)
	return entries
}

// rankTopModules orders top-level directories by total contained lines.
func rankTopModules(files []scannedFile) []string {
	lines := map[string]int{}
	for _, f := range files {
		dir, _, found := strings.Cut(f.path, "/")
		if !found {
			continue // root-level file
		}
		lines[dir] += f.lines
	}

	mods := make([]string, 0, len(lines))
	for dir := range lines {
		mods = append(mods, dir)
	}
	sort.Slice(mods, func(i, j int) bool {
		if lines[mods[i]] != lines[mods[j]] {
			return lines[mods[i]] > lines[mods[j]]
		}
		return mods[i] < mods[j]
	})
	return mods
}

// detectTests reports whether any path looks like a test file or directory.
func detectTests(files []scannedFile) bool {
	for _, f := range files {
		lower := strings.ToLower(f.path)
		if strings.Contains(lower, "test") || strings.Contains(lower, "spec") ||
			strings.Contains(lower, "__tests__") {
			return true
		}
	}
	return false
}

func anyPathExists(root string, rels []string) bool {
	for _, rel := range rels {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			return true
		}
	}
	return false
}

// detectLicense classifies the root license file by its head content.
func detectLicense(root string) string {
	for _, name := range []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "LICENCE"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		head := string(data)
		if len(head) > 2000 {
			head = head[:2000]
		}
		for _, kind := range []string{"MIT", "Apache", "GPL", "BSD"} {
			if strings.Contains(head, kind) {
				return kind
			}
		}
		return "Custom"
	}
	return ""
}

// extractDescription pulls a short project description from package.json or
// the first prose line of a README.
func extractDescription(keyFiles map[string]string) string {
	if pkg, ok := keyFiles["package.json"]; ok {
		if desc := packageJSONDescription(pkg); desc != "" {
			return desc
		}
	}
	for _, readme := range []string{"README.md", "README.rst", "README.txt", "README"} {
		content, ok := keyFiles[readme]
		if !ok {
			continue
		}
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || len(line) <= 20 {
				continue
			}
			if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "=") ||
				strings.HasPrefix(line, "[") || strings.HasPrefix(line, "!") {
				continue
			}
			if len(line) > 500 {
				line = line[:500]
			}
			return line
		}
	}
	return ""
}
