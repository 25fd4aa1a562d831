package analyzer

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// manifestParser defines how to parse one package-manifest format.
type manifestParser struct {
	filename string
	parse    func(content string) []Dependency
}

// manifestParsers covers the package manifests of the recognized language
// ecosystems: npm, pip, pipenv, poetry/PEP 621, Go modules, Cargo, RubyGems,
// pub, Composer, Maven, Gradle, Hex, SwiftPM, sbt, Leiningen, CPAN,
// CocoaPods, Conan, CRAN, and NuGet.
var manifestParsers = []manifestParser{
	{"package.json", parsePackageJSON},
	{"requirements.txt", parseRequirementsTxt},
	{"Pipfile", parsePipfile},
	{"pyproject.toml", parsePyprojectToml},
	{"go.mod", parseGoMod},
	{"Cargo.toml", parseCargoToml},
	{"Gemfile", parseGemfile},
	{"pubspec.yaml", parsePubspecYaml},
	{"composer.json", parseComposerJSON},
	{"pom.xml", parsePomXML},
	{"build.gradle", parseBuildGradle},
	{"mix.exs", parseMixExs},
	{"Package.swift", parsePackageSwift},
	{"build.sbt", parseBuildSbt},
	{"project.clj", parseProjectClj},
	{"cpanfile", parseCpanfile},
	{"Podfile", parsePodfile},
	{"conanfile.txt", parseConanfile},
	{"DESCRIPTION", parseCranDescription},
	{"packages.config", parsePackagesConfig},
}

// detectDependencies parses every recognized manifest found in keyFiles.
// Results are sorted by name for determinism; duplicates across manifests
// are kept (they describe different ecosystems).
func detectDependencies(keyFiles map[string]string) []Dependency {
	var deps []Dependency
	for _, mp := range manifestParsers {
		content, ok := keyFiles[mp.filename]
		if !ok {
			continue
		}
		deps = append(deps, mp.parse(content)...)
	}
	sort.SliceStable(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

// ─── npm ────────────────────────────────────────────────────────────────────

func parsePackageJSON(content string) []Dependency {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil
	}
	var deps []Dependency
	for name, ver := range pkg.Dependencies {
		deps = append(deps, Dependency{Name: name, Version: ver})
	}
	for name, ver := range pkg.DevDependencies {
		deps = append(deps, Dependency{Name: name, Version: ver, Dev: true})
	}
	return deps
}

// packageJSONDescription extracts the description field, if any.
func packageJSONDescription(content string) string {
	var pkg struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return ""
	}
	return pkg.Description
}

// ─── Python ─────────────────────────────────────────────────────────────────

func parseRequirementsTxt(content string) []Dependency {
	var deps []Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		name, version := splitRequirement(line)
		if name != "" {
			deps = append(deps, Dependency{Name: name, Version: version})
		}
	}
	return deps
}

// splitRequirement splits "name==1.2" style pins into name and version.
func splitRequirement(line string) (name, version string) {
	for _, op := range []string{"==", ">=", "<=", "~=", "!=", ">", "<"} {
		if idx := strings.Index(line, op); idx >= 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(op):])
		}
	}
	return strings.TrimSpace(line), ""
}

func parsePipfile(content string) []Dependency {
	var pf struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if err := toml.Unmarshal([]byte(content), &pf); err != nil {
		return nil
	}
	var deps []Dependency
	for name, v := range pf.Packages {
		deps = append(deps, Dependency{Name: name, Version: tomlVersionString(v)})
	}
	for name, v := range pf.DevPackages {
		deps = append(deps, Dependency{Name: name, Version: tomlVersionString(v), Dev: true})
	}
	return deps
}

func parsePyprojectToml(content string) []Dependency {
	var py struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal([]byte(content), &py); err != nil {
		return nil
	}
	var deps []Dependency
	for _, req := range py.Project.Dependencies {
		name, version := splitRequirement(req)
		if name != "" {
			deps = append(deps, Dependency{Name: name, Version: version})
		}
	}
	for name, v := range py.Tool.Poetry.Dependencies {
		if name == "python" {
			continue
		}
		deps = append(deps, Dependency{Name: name, Version: tomlVersionString(v)})
	}
	for name, v := range py.Tool.Poetry.DevDependencies {
		deps = append(deps, Dependency{Name: name, Version: tomlVersionString(v), Dev: true})
	}
	return deps
}

// tomlVersionString renders a TOML dependency value ("1.2" or a table with
// a version key) as a plain version spec.
func tomlVersionString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if ver, ok := t["version"].(string); ok {
			return ver
		}
	}
	return ""
}

// ─── Go ─────────────────────────────────────────────────────────────────────

func parseGoMod(content string) []Dependency {
	var deps []Dependency
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if inBlock {
			if line == ")" {
				inBlock = false
				continue
			}
		} else {
			if line == "require (" {
				inBlock = true
				continue
			}
			if !strings.HasPrefix(line, "require ") {
				continue
			}
			line = strings.TrimPrefix(line, "require ")
		}
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], ".") {
			continue
		}
		deps = append(deps, Dependency{
			Name:    fields[0],
			Version: fields[1],
			Dev:     strings.Contains(line, "// indirect"),
		})
	}
	return deps
}

// ─── Rust ───────────────────────────────────────────────────────────────────

func parseCargoToml(content string) []Dependency {
	var cargo struct {
		Dependencies    map[string]any `toml:"dependencies"`
		DevDependencies map[string]any `toml:"dev-dependencies"`
	}
	if err := toml.Unmarshal([]byte(content), &cargo); err != nil {
		return nil
	}
	var deps []Dependency
	for name, v := range cargo.Dependencies {
		deps = append(deps, Dependency{Name: name, Version: tomlVersionString(v)})
	}
	for name, v := range cargo.DevDependencies {
		deps = append(deps, Dependency{Name: name, Version: tomlVersionString(v), Dev: true})
	}
	return deps
}

// ─── Ruby ───────────────────────────────────────────────────────────────────

var gemfileRe = regexp.MustCompile(`(?m)^\s*gem\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)

func parseGemfile(content string) []Dependency {
	var deps []Dependency
	for _, m := range gemfileRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}
	return deps
}

// ─── Dart ───────────────────────────────────────────────────────────────────

func parsePubspecYaml(content string) []Dependency {
	var spec struct {
		Dependencies    map[string]any `yaml:"dependencies"`
		DevDependencies map[string]any `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal([]byte(content), &spec); err != nil {
		return nil
	}
	var deps []Dependency
	for name, v := range spec.Dependencies {
		if name == "flutter" {
			continue
		}
		deps = append(deps, Dependency{Name: name, Version: yamlVersionString(v)})
	}
	for name, v := range spec.DevDependencies {
		deps = append(deps, Dependency{Name: name, Version: yamlVersionString(v), Dev: true})
	}
	return deps
}

func yamlVersionString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ─── PHP ────────────────────────────────────────────────────────────────────

func parseComposerJSON(content string) []Dependency {
	var composer struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal([]byte(content), &composer); err != nil {
		return nil
	}
	var deps []Dependency
	for name, ver := range composer.Require {
		if name == "php" || strings.HasPrefix(name, "ext-") {
			continue
		}
		deps = append(deps, Dependency{Name: name, Version: ver})
	}
	for name, ver := range composer.RequireDev {
		deps = append(deps, Dependency{Name: name, Version: ver, Dev: true})
	}
	return deps
}

// ─── JVM ────────────────────────────────────────────────────────────────────

var pomArtifactRe = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)

// parsePomXML is a coarse extraction of artifact IDs; Maven version
// resolution (properties, BOMs) is out of reach for a text scan.
func parsePomXML(content string) []Dependency {
	var deps []Dependency
	seen := map[string]bool{}
	for _, m := range pomArtifactRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			deps = append(deps, Dependency{Name: m[1]})
		}
	}
	return deps
}

var gradleDepRe = regexp.MustCompile(`(?m)^\s*(implementation|api|compile|testImplementation|testCompile)\s*[('"]+([^'")]+)['")]`)

func parseBuildGradle(content string) []Dependency {
	var deps []Dependency
	for _, m := range gradleDepRe.FindAllStringSubmatch(content, -1) {
		coord := m[2]
		parts := strings.Split(coord, ":")
		dep := Dependency{Name: coord, Dev: strings.HasPrefix(m[1], "test")}
		if len(parts) == 3 {
			dep.Name = parts[0] + ":" + parts[1]
			dep.Version = parts[2]
		}
		deps = append(deps, dep)
	}
	return deps
}

var sbtDepRe = regexp.MustCompile(`"([^"]+)"\s*%%?\s*"([^"]+)"\s*%\s*"([^"]+)"`)

func parseBuildSbt(content string) []Dependency {
	var deps []Dependency
	for _, m := range sbtDepRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1] + ":" + m[2], Version: m[3]})
	}
	return deps
}

var leinDepRe = regexp.MustCompile(`\[([\w./-]+)\s+"([^"]+)"\]`)

func parseProjectClj(content string) []Dependency {
	var deps []Dependency
	for _, m := range leinDepRe.FindAllStringSubmatch(content, -1) {
		if m[1] == "org.clojure/clojure" {
			continue
		}
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}
	return deps
}

// ─── Elixir ─────────────────────────────────────────────────────────────────

var mixDepRe = regexp.MustCompile(`\{:(\w+),\s*"([^"]+)"`)

func parseMixExs(content string) []Dependency {
	var deps []Dependency
	for _, m := range mixDepRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}
	return deps
}

// ─── Swift ──────────────────────────────────────────────────────────────────

var swiftPkgRe = regexp.MustCompile(`\.package\(url:\s*"([^"]+)"(?:,\s*from:\s*"([^"]+)")?`)

func parsePackageSwift(content string) []Dependency {
	var deps []Dependency
	for _, m := range swiftPkgRe.FindAllStringSubmatch(content, -1) {
		name := strings.TrimSuffix(m[1][strings.LastIndex(m[1], "/")+1:], ".git")
		deps = append(deps, Dependency{Name: name, Version: m[2]})
	}
	return deps
}

// ─── Perl ───────────────────────────────────────────────────────────────────

var cpanRe = regexp.MustCompile(`(?m)^\s*requires\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)

func parseCpanfile(content string) []Dependency {
	var deps []Dependency
	for _, m := range cpanRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}
	return deps
}

// ─── CocoaPods ──────────────────────────────────────────────────────────────

var podRe = regexp.MustCompile(`(?m)^\s*pod\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)

func parsePodfile(content string) []Dependency {
	var deps []Dependency
	for _, m := range podRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}
	return deps
}

// ─── Conan ──────────────────────────────────────────────────────────────────

func parseConanfile(content string) []Dependency {
	var deps []Dependency
	inRequires := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "[requires]":
			inRequires = true
			continue
		case strings.HasPrefix(line, "["):
			inRequires = false
			continue
		}
		if !inRequires || line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, version, _ := strings.Cut(line, "/")
		deps = append(deps, Dependency{Name: name, Version: version})
	}
	return deps
}

// ─── R ──────────────────────────────────────────────────────────────────────

func parseCranDescription(content string) []Dependency {
	var deps []Dependency
	for _, field := range []string{"Imports:", "Depends:"} {
		idx := strings.Index(content, field)
		if idx < 0 {
			continue
		}
		rest := content[idx+len(field):]
		if end := strings.Index(rest, "\n\n"); end >= 0 {
			rest = rest[:end]
		}
		// Field values continue on indented lines; collapse then split on commas.
		for _, item := range strings.Split(rest, ",") {
			item = strings.TrimSpace(strings.ReplaceAll(item, "\n", " "))
			if item == "" || strings.HasPrefix(item, "R ") || strings.HasPrefix(item, "R(") {
				continue
			}
			name, _, _ := strings.Cut(item, " ")
			name = strings.TrimSpace(name)
			if name != "" && !strings.Contains(name, ":") {
				deps = append(deps, Dependency{Name: name})
			}
		}
		break
	}
	return deps
}

// ─── NuGet ──────────────────────────────────────────────────────────────────

var nugetRe = regexp.MustCompile(`<package\s+id="([^"]+)"\s+version="([^"]+)"`)

func parsePackagesConfig(content string) []Dependency {
	var deps []Dependency
	for _, m := range nugetRe.FindAllStringSubmatch(content, -1) {
		deps = append(deps, Dependency{Name: m[1], Version: m[2]})
	}
	return deps
}
