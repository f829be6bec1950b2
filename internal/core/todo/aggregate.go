package todo

import (
	"net/url"
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^- \[(.*)\]\((.*)\)$`)

// Section is one heading of a parsed aggregate document and the todos listed
// under it.
type Section struct {
	Label string
	Path  string // decoded source document path
	Todos []Todo
}

// ParseAggregate reads an aggregate document back into per-document sections.
// Headings with the same path are merged. Task lines before the first heading
// are ignored.
func ParseAggregate(content string) []Section {
	var (
		sections []Section
		index    = map[string]int{}
		current  = -1
	)

	for i, line := range SplitLines(content) {
		if h := headingRe.FindStringSubmatch(line); h != nil {
			path, err := url.PathUnescape(h[2])
			if err != nil {
				path = h[2]
			}

			idx, ok := index[path]
			if !ok {
				idx = len(sections)
				index[path] = idx
				sections = append(sections, Section{Label: h[1], Path: path})
			}
			current = idx
			continue
		}

		if current < 0 {
			continue
		}

		m, ok := MatchLine(line)
		if !ok {
			continue
		}

		sections[current].Todos = append(sections[current].Todos, Todo{
			Task:        m.Task,
			Text:        m.Text,
			Line:        i,
			Indentation: strings.TrimPrefix(m.Indent, "\t"),
		})
	}

	return sections
}

// Pending returns the todos whose task type is no longer included. These are
// the edits that must be written back to the source document.
func (s Section) Pending(include Include) []Todo {
	var out []Todo
	for _, t := range s.Todos {
		if !include.Has(t.Task) {
			out = append(out, t)
		}
	}
	return out
}

// PatchMarkers sets the marker of the first task line whose text matches each
// todo. Everything else in content, line endings included, is preserved. It
// returns the patched content and the number of lines whose marker changed.
func PatchMarkers(content string, todos []Todo) (string, int) {
	if len(todos) == 0 {
		return content, 0
	}

	lines := splitLinesAfter(content)
	patched := 0

	for _, t := range todos {
		for i, raw := range lines {
			body, ending := splitEnding(raw)
			m, ok := MatchLine(body)
			if !ok || m.Text != t.Text {
				continue
			}

			if m.Task != t.Task {
				body = body[:m.MarkerOffset] + t.Task.Marker() + body[m.MarkerOffset+m.markerLen:]
				lines[i] = body + ending
				patched++
			}
			break
		}
	}

	return strings.Join(lines, ""), patched
}

// splitLinesAfter splits content after every CRLF, LF, or lone CR, keeping
// the terminators so joining the pieces restores content exactly.
func splitLinesAfter(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			lines = append(lines, content[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			lines = append(lines, content[start:i+1])
			start = i + 1
		}
	}
	return append(lines, content[start:])
}

func splitEnding(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"), strings.HasSuffix(line, "\r"):
		return line[:len(line)-1], line[len(line)-1:]
	default:
		return line, ""
	}
}
