package assemble

import (
	"fmt"
	"strings"

	"github.com/repodocai/repodoc/internal/analyzer"
)

// ContributingGuide renders a CONTRIBUTING.md for the repository without
// any model involvement. Output depends only on the profile.
func ContributingGuide(p *analyzer.Profile) string {
	repo := p.RepoName
	topLang := p.TopLanguage()
	if topLang == "" {
		topLang = "code"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Contributing to %s\n\n", repo)
	fmt.Fprintf(&b, "Thank you for your interest in contributing to **%s**! ", repo)
	b.WriteString("We welcome contributions from the community.\n\n")

	b.WriteString("## Getting Started\n\n")
	b.WriteString("1. Fork the repository\n")
	fmt.Fprintf(&b, "2. Clone your fork: `git clone https://github.com/YOUR_USERNAME/%s.git`\n", repo)
	b.WriteString("3. Create a feature branch: `git checkout -b feature/your-feature`\n")
	writeSetupSteps(&b, p)

	b.WriteString("\n## Development Guidelines\n\n")
	fmt.Fprintf(&b, "- Write clean, readable %s code\n", topLang)
	b.WriteString("- Follow existing code style and conventions\n")
	b.WriteString("- Add comments for complex logic\n")
	if p.HasTests {
		b.WriteString("- **Write tests** for new features or bug fixes\n")
		b.WriteString("- Ensure all existing tests pass before submitting\n")
	}
	if p.HasCI {
		b.WriteString("- CI/CD will automatically run on your pull request\n")
	}

	b.WriteString("\n## Pull Request Process\n\n")
	b.WriteString("1. Update documentation if needed\n")
	b.WriteString("2. Ensure your code passes all tests and linting\n")
	b.WriteString("3. Write a clear PR description explaining your changes\n")
	b.WriteString("4. Link any related issues\n")
	b.WriteString("5. Request review from maintainers\n")

	b.WriteString("\n## Code of Conduct\n\n")
	b.WriteString("Please be respectful and constructive in all interactions. ")
	b.WriteString("We are committed to providing a welcoming and inclusive experience for everyone.\n")

	fmt.Fprintf(&b, "\n---\n\n*Thank you for contributing to %s!*\n", repo)
	return b.String()
}

func writeSetupSteps(b *strings.Builder, p *analyzer.Profile) {
	switch {
	case hasLanguage(p, "Python"):
		b.WriteString("4. Create a virtual environment: `python -m venv venv && source venv/bin/activate`\n")
		if _, ok := p.KeyFiles["requirements.txt"]; ok {
			b.WriteString("5. Install dependencies: `pip install -r requirements.txt`\n")
		} else if _, ok := p.KeyFiles["pyproject.toml"]; ok {
			b.WriteString("5. Install dependencies: `pip install -e .`\n")
		}
	case hasLanguage(p, "JavaScript") || hasLanguage(p, "TypeScript"):
		if _, ok := p.KeyFiles["package.json"]; ok {
			b.WriteString("4. Install dependencies: `npm install`\n")
		}
	case hasLanguage(p, "Go"):
		b.WriteString("4. Install dependencies: `go mod download`\n")
	case hasLanguage(p, "Rust"):
		b.WriteString("4. Build: `cargo build`\n")
	}
}

func hasLanguage(p *analyzer.Profile, name string) bool {
	for _, l := range p.Languages {
		if l.Name == name {
			return true
		}
	}
	return false
}
