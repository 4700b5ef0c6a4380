package catalog

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/acco/internal/directory"
)

// splitFrontmatter separates a leading "---" YAML block from the body.
func splitFrontmatter(content string) (string, string) {
	s := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(s, "---") {
		return "", content
	}

	parts := strings.SplitN(s, "---", 3)
	if len(parts) < 3 {
		return "", content
	}
	return strings.TrimSpace(parts[1]), strings.TrimPrefix(parts[2], "\n")
}

// parseProfileDoc reads a PROFILE.md document: a YAML frontmatter block
// holding the profile fields, then free text.
func parseProfileDoc(content string) (directory.Profile, error) {
	var p directory.Profile
	fm, body := splitFrontmatter(content)
	if fm != "" {
		if err := yaml.Unmarshal([]byte(fm), &p); err != nil {
			return p, err
		}
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = inferNameFromBody(body)
	}
	return p, nil
}

// inferNameFromBody returns the text of the first heading.
func inferNameFromBody(body string) string {
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "#") {
			return strings.TrimSpace(strings.TrimLeft(ln, "#"))
		}
	}
	return ""
}
