package todo

import (
	"bufio"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the source document metadata taskroll understands.
// All fields are best-effort: missing or malformed frontmatter produces zero values.
type Frontmatter struct {
	// Created overrides the store's creation time when ordering documents.
	Created time.Time `yaml:"created"`
	// ExcludeTodos removes the document from the aggregate, like the inline marker.
	ExcludeTodos bool `yaml:"exclude_todos"`
}

// ParseFrontmatter extracts YAML front matter from document content.
// Front matter must be delimited by "---" on its own line at the start of the file.
// Returns zero-value Frontmatter if no valid front matter is found.
func ParseFrontmatter(content string) Frontmatter {
	scanner := bufio.NewScanner(strings.NewReader(content))

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return Frontmatter{}
	}

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			break
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return Frontmatter{}
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &fm); err != nil {
		return Frontmatter{}
	}

	return fm
}
