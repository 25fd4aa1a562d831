package analyzer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// frameworkRule pairs a framework name with the signals that indicate it:
// marker files at the repository root and/or dependency name keywords.
type frameworkRule struct {
	name     string
	category string
	files    []string
	keywords []string
}

// frameworkRules is the curated detection table. Order is irrelevant;
// results are sorted per category.
var frameworkRules = []frameworkRule{
	{"react", "frontend", []string{}, []string{"react", "react-dom"}},
	{"next.js", "frontend", []string{"next.config.js", "next.config.mjs", "next.config.ts"}, []string{"next"}},
	{"vue", "frontend", []string{"vue.config.js"}, []string{"vue"}},
	{"angular", "frontend", []string{"angular.json"}, []string{"@angular/core"}},
	{"svelte", "frontend", []string{"svelte.config.js"}, []string{"svelte"}},
	{"tailwindcss", "frontend", []string{"tailwind.config.js", "tailwind.config.ts"}, []string{"tailwindcss"}},
	{"express", "backend", nil, []string{"express"}},
	{"fastapi", "backend", nil, []string{"fastapi"}},
	{"django", "backend", []string{"manage.py"}, []string{"django"}},
	{"flask", "backend", nil, []string{"flask"}},
	{"spring", "backend", []string{"pom.xml", "build.gradle"}, []string{"spring-boot", "springframework", "spring-boot-starter-web"}},
	{"nestjs", "backend", []string{"nest-cli.json"}, []string{"@nestjs/core"}},
	{"gin", "backend", nil, []string{"github.com/gin-gonic/gin"}},
	{"chi", "backend", nil, []string{"github.com/go-chi/chi"}},
	{"rails", "backend", []string{"config.ru"}, []string{"rails"}},
	{"mongodb", "database", nil, []string{"mongoose", "mongodb", "pymongo"}},
	{"postgresql", "database", nil, []string{"pg", "psycopg2", "postgres", "github.com/jackc/pgx"}},
	{"mysql", "database", nil, []string{"mysql", "mysql2"}},
	{"redis", "database", nil, []string{"redis", "ioredis"}},
	{"sqlite", "database", nil, []string{"sqlite3", "better-sqlite3", "modernc.org/sqlite"}},
	{"prisma", "database", []string{"prisma/schema.prisma"}, []string{"prisma", "@prisma/client"}},
	{"jest", "testing", []string{"jest.config.js", "jest.config.ts"}, []string{"jest"}},
	{"pytest", "testing", []string{"pytest.ini"}, []string{"pytest"}},
	{"mocha", "testing", []string{".mocharc.yml"}, []string{"mocha"}},
	{"docker", "devops", []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"}, nil},
	{"kubernetes", "devops", nil, []string{"kubernetes"}},
	{"terraform", "devops", []string{"main.tf"}, nil},
	{"pytorch", "ml", nil, []string{"torch", "pytorch"}},
	{"tensorflow", "ml", nil, []string{"tensorflow"}},
	{"langchain", "ai", nil, []string{"langchain"}},
	{"transformers", "ai", nil, []string{"transformers"}},
}

// detectFrameworks matches the rule table against root marker files and
// the parsed dependency list, returning category -> sorted framework names.
func detectFrameworks(root string, deps []Dependency) map[string][]string {
	depNames := make(map[string]bool, len(deps))
	for _, d := range deps {
		depNames[strings.ToLower(d.Name)] = true
	}

	found := map[string][]string{}
	for _, rule := range frameworkRules {
		if !ruleMatches(rule, root, depNames) {
			continue
		}
		found[rule.category] = append(found[rule.category], rule.name)
	}
	for _, names := range found {
		sort.Strings(names)
	}
	return found
}

func ruleMatches(rule frameworkRule, root string, depNames map[string]bool) bool {
	for _, f := range rule.files {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(f))); err == nil {
			return true
		}
	}
	for _, kw := range rule.keywords {
		if depNames[kw] {
			return true
		}
	}
	return false
}
