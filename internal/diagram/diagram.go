// Package diagram renders deterministic mermaid diagrams from a
// repository profile. Markup is treated as an opaque string by callers;
// only the renderer downstream interprets it.
package diagram

import (
	"fmt"
	"strings"

	"github.com/repodocai/repodoc/internal/analyzer"
)

// Diagram is one mermaid diagram with presentation metadata.
type Diagram struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Markup      string `json:"mermaid"`
}

// Synthesize builds the full diagram set for a profile. Output order and
// content are fixed for a given profile.
func Synthesize(p *analyzer.Profile) []Diagram {
	return []Diagram{
		architectureDiagram(p),
		layoutDiagram(p),
		techStackDiagram(p),
		dataFlowDiagram(p),
	}
}

// layer groups framework categories into architecture nodes. ml and ai
// share a node.
type layer struct {
	id         string
	label      string
	categories []string
}

var archLayers = []layer{
	{"UI", "Frontend", []string{"frontend"}},
	{"API", "Backend API", []string{"backend"}},
	{"DB", "Database", []string{"database"}},
	{"ML", "AI / ML", []string{"ml", "ai"}},
	{"DEVOPS", "DevOps", []string{"devops"}},
}

func architectureDiagram(p *analyzer.Profile) Diagram {
	var b strings.Builder
	b.WriteString("graph TB\n")
	b.WriteString("    subgraph \"Application Architecture\"\n")

	present := map[string]bool{}
	for _, l := range archLayers {
		var names []string
		for _, cat := range l.categories {
			names = append(names, p.Frameworks[cat]...)
		}
		if len(names) == 0 {
			continue
		}
		present[l.id] = true
		fmt.Fprintf(&b, "        %s[\"%s<br/>%s\"]\n", l.id, l.label, strings.Join(names, ", "))
	}

	if len(present) == 0 {
		langs := make([]string, 0, 3)
		for i, l := range p.Languages {
			if i == 3 {
				break
			}
			langs = append(langs, l.Name)
		}
		label := strings.Join(langs, ", ")
		if label == "" {
			label = "Code"
		}
		fmt.Fprintf(&b, "        APP[\"Application<br/>%s\"]\n", label)
		present["APP"] = true
	}
	b.WriteString("    end\n")

	edges := []struct{ src, dst, label string }{
		{"UI", "API", "HTTP/REST"},
		{"API", "DB", "Query"},
		{"API", "ML", "Inference"},
	}
	for _, e := range edges {
		if present[e.src] && present[e.dst] {
			fmt.Fprintf(&b, "    %s -->|%s| %s\n", e.src, e.label, e.dst)
		}
	}
	if present["DEVOPS"] {
		for _, l := range archLayers {
			if l.id != "DEVOPS" && present[l.id] {
				fmt.Fprintf(&b, "    DEVOPS -.->|Deploy| %s\n", l.id)
			}
		}
	}

	return Diagram{
		Title:       "Architecture Overview",
		Description: "High-level architecture showing major components and interactions.",
		Markup:      b.String(),
	}
}

func layoutDiagram(p *analyzer.Profile) Diagram {
	var b strings.Builder
	b.WriteString("graph LR\n")
	fmt.Fprintf(&b, "    ROOT[\"%s\"]\n", p.RepoName)

	modules := p.TopModules
	if len(modules) > 12 {
		modules = modules[:12]
	}
	for i, dir := range modules {
		fmt.Fprintf(&b, "    N%d[\"%s/\"]\n    ROOT --> N%d\n", i, dir, i)
	}
	for i, entry := range p.EntryPoints {
		if i == 4 {
			break
		}
		if strings.Contains(entry, "/") {
			continue // nested entry points already appear under a module
		}
		fmt.Fprintf(&b, "    E%d[\"%s\"]\n    ROOT --> E%d\n", i, entry, i)
	}

	return Diagram{
		Title:       "Project Structure",
		Description: "Visual map of the project's directory layout.",
		Markup:      b.String(),
	}
}

func techStackDiagram(p *analyzer.Profile) Diagram {
	var b strings.Builder
	b.WriteString("graph TD\n")
	b.WriteString("    subgraph \"Technology Stack\"\n")

	b.WriteString("        subgraph \"Languages\"\n")
	for i, l := range p.Languages {
		if i == 6 {
			break
		}
		fmt.Fprintf(&b, "            L%d[\"%s<br/>%d lines\"]\n", i, l.Name, l.Lines)
	}
	b.WriteString("        end\n")

	if frameworks := orderedFrameworks(p, 8); len(frameworks) > 0 {
		b.WriteString("        subgraph \"Frameworks & Libraries\"\n")
		for i, fw := range frameworks {
			fmt.Fprintf(&b, "            F%d[\"%s\"]\n", i, fw)
		}
		b.WriteString("        end\n")
	}

	var infra []string
	if p.HasContainer {
		infra = append(infra, "Docker")
	}
	if p.HasCI {
		infra = append(infra, "CI/CD")
	}
	if p.HasTests {
		infra = append(infra, "Tests")
	}
	if len(infra) > 0 {
		b.WriteString("        subgraph \"Infrastructure\"\n")
		for i, item := range infra {
			fmt.Fprintf(&b, "            I%d[\"%s\"]\n", i, item)
		}
		b.WriteString("        end\n")
	}

	b.WriteString("    end\n")
	return Diagram{
		Title:       "Technology Stack",
		Description: "Complete technology stack.",
		Markup:      b.String(),
	}
}

func dataFlowDiagram(p *analyzer.Profile) Diagram {
	frontend := firstIn(p.Frameworks, "frontend")
	backend := firstIn(p.Frameworks, "backend")
	database := firstIn(p.Frameworks, "database")

	var b strings.Builder
	b.WriteString("sequenceDiagram\n")
	b.WriteString("    participant U as User\n")
	if frontend != "" {
		fmt.Fprintf(&b, "    participant F as %s\n", frontend)
	}
	if backend != "" {
		fmt.Fprintf(&b, "    participant B as %s\n", backend)
	}
	if database != "" {
		fmt.Fprintf(&b, "    participant D as %s\n", database)
	}

	switch {
	case frontend != "" && backend != "":
		b.WriteString("    U->>F: User Action\n    F->>B: API Request\n")
		if database != "" {
			b.WriteString("    B->>D: Query Data\n    D-->>B: Return Results\n")
		}
		b.WriteString("    B-->>F: API Response\n    F-->>U: Update UI\n")
	case backend != "":
		b.WriteString("    U->>B: Request\n")
		if database != "" {
			b.WriteString("    B->>D: Query\n    D-->>B: Results\n")
		}
		b.WriteString("    B-->>U: Response\n")
	default:
		b.WriteString("    participant APP as Application\n")
		b.WriteString("    U->>APP: Interact\n    APP-->>U: Response\n")
	}

	return Diagram{
		Title:       "Data Flow",
		Description: "Typical request/response flow.",
		Markup:      b.String(),
	}
}

// orderedFrameworks flattens the category map in a fixed layer order so
// diagram output never depends on map iteration.
func orderedFrameworks(p *analyzer.Profile, limit int) []string {
	var out []string
	for _, cat := range []string{"frontend", "backend", "database", "ml", "ai", "devops", "testing"} {
		for _, name := range p.Frameworks[cat] {
			out = append(out, name)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func firstIn(frameworks map[string][]string, category string) string {
	if names := frameworks[category]; len(names) > 0 {
		return names[0]
	}
	return ""
}
