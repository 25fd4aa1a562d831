package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePackageJSONSplitsDevAndRuntime(t *testing.T) {
	content := `{
		"dependencies": {"express": "^4.17.1", "lodash": "4.17.20"},
		"devDependencies": {"jest": "^29.0.0"}
	}`

	deps := parsePackageJSON(content)
	require.Len(t, deps, 3)

	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	assert.Equal(t, "^4.17.1", byName["express"].Version)
	assert.False(t, byName["express"].Dev)
	assert.True(t, byName["jest"].Dev)
}

func TestParseRequirementsTxt(t *testing.T) {
	content := `
# comment
django==4.2.0
requests>=2.28
flask
-r other.txt
`
	deps := parseRequirementsTxt(content)
	require.Len(t, deps, 3)
	assert.Equal(t, Dependency{Name: "django", Version: "4.2.0"}, deps[0])
	assert.Equal(t, Dependency{Name: "requests", Version: "2.28"}, deps[1])
	assert.Equal(t, Dependency{Name: "flask"}, deps[2])
}

func TestParseGoMod(t *testing.T) {
	content := `module example.com/demo

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	github.com/stretchr/testify v1.9.0
	golang.org/x/sys v0.20.0 // indirect
)
`
	deps := parseGoMod(content)
	require.Len(t, deps, 3)
	assert.Equal(t, "github.com/spf13/cobra", deps[0].Name)
	assert.Equal(t, "v1.8.0", deps[0].Version)
	assert.True(t, deps[2].Dev) // indirect counts as non-primary
}

func TestParseCargoToml(t *testing.T) {
	content := `
[package]
name = "demo"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
tokio = "1.35"

[dev-dependencies]
criterion = "0.5"
`
	deps := parseCargoToml(content)
	require.Len(t, deps, 3)

	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	assert.Equal(t, "1.0", byName["serde"].Version)
	assert.Equal(t, "1.35", byName["tokio"].Version)
	assert.True(t, byName["criterion"].Dev)
}

func TestParsePubspecYaml(t *testing.T) {
	content := `
name: demo
dependencies:
  flutter:
    sdk: flutter
  http: ^1.1.0
dev_dependencies:
  test: ^1.24.0
`
	deps := parsePubspecYaml(content)
	require.Len(t, deps, 2)

	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	assert.Equal(t, "^1.1.0", byName["http"].Version)
	assert.True(t, byName["test"].Dev)
}

func TestParseGemfile(t *testing.T) {
	content := `
source "https://rubygems.org"

gem "rails", "7.1.2"
gem "puma"
`
	deps := parseGemfile(content)
	require.Len(t, deps, 2)
	assert.Equal(t, Dependency{Name: "rails", Version: "7.1.2"}, deps[0])
	assert.Equal(t, Dependency{Name: "puma"}, deps[1])
}

func TestParseBuildGradle(t *testing.T) {
	content := `
dependencies {
    implementation 'org.springframework.boot:spring-boot-starter-web:3.2.0'
    testImplementation 'junit:junit:4.13.2'
}
`
	deps := parseBuildGradle(content)
	require.Len(t, deps, 2)
	assert.Equal(t, "org.springframework.boot:spring-boot-starter-web", deps[0].Name)
	assert.Equal(t, "3.2.0", deps[0].Version)
	assert.True(t, deps[1].Dev)
}

func TestParseMixExs(t *testing.T) {
	content := `
defp deps do
  [
    {:phoenix, "~> 1.7"},
    {:ecto, "~> 3.11"}
  ]
end
`
	deps := parseMixExs(content)
	require.Len(t, deps, 2)
	assert.Equal(t, "phoenix", deps[0].Name)
}

func TestDetectDependenciesMergesManifestsSorted(t *testing.T) {
	keyFiles := map[string]string{
		"package.json":     `{"dependencies": {"zod": "3.0.0"}}`,
		"requirements.txt": "aiohttp==3.9\n",
	}
	deps := detectDependencies(keyFiles)
	require.Len(t, deps, 2)
	assert.Equal(t, "aiohttp", deps[0].Name)
	assert.Equal(t, "zod", deps[1].Name)
}

func TestDetectFrameworksFromDepsAndMarkers(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"Dockerfile": "FROM node\n"})

	deps := []Dependency{
		{Name: "react", Version: "18.2.0"},
		{Name: "express", Version: "4.18.0"},
		{Name: "mongoose", Version: "8.0.0"},
	}

	fw := detectFrameworks(dir, deps)
	assert.Equal(t, []string{"react"}, fw["frontend"])
	assert.Equal(t, []string{"express"}, fw["backend"])
	assert.Equal(t, []string{"mongodb"}, fw["database"])
	assert.Equal(t, []string{"docker"}, fw["devops"])
}
