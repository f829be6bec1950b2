package todo

import (
	"regexp"
	"strings"
)

var taskLineRe = regexp.MustCompile(`^(\s*)-\s?\[(.)\]\s+(.*)$`)

// LineMatch is a recognized task line.
type LineMatch struct {
	Indent string // raw leading whitespace
	Task   TaskType
	Text   string

	// MarkerOffset is the byte offset of the marker within the line.
	MarkerOffset int
	markerLen    int
}

// MatchLine recognizes a checkbox task line. The marker is not constrained to
// the known task types.
func MatchLine(line string) (LineMatch, bool) {
	idx := taskLineRe.FindStringSubmatchIndex(line)
	if idx == nil {
		return LineMatch{}, false
	}

	marker := []rune(line[idx[4]:idx[5]])
	return LineMatch{
		Indent:       line[idx[2]:idx[3]],
		Task:         TaskType(marker[0]),
		Text:         line[idx[6]:idx[7]],
		MarkerOffset: idx[4],
		markerLen:    idx[5] - idx[4],
	}, true
}

// SplitLines splits text on CRLF, LF, or a lone CR.
func SplitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// Parse extracts task lines from a document in source order.
//
// Nesting is inferred from physical line adjacency only: a task nests under
// the task on the immediately preceding line when its raw indentation is
// strictly longer. Any other task is top level, including tasks separated from
// the previous task by a non-task line.
func Parse(content string) []Todo {
	var (
		todos     []Todo
		prevRaw   string
		prevCanon string
		prevLine  = -2
	)

	for i, line := range SplitLines(content) {
		m, ok := MatchLine(line)
		if !ok {
			continue
		}

		t := Todo{Task: m.Task, Text: m.Text, Line: i}
		if prevLine == i-1 && len(m.Indent) > len(prevRaw) {
			t.Indentation = prevCanon + IndentUnit
		}

		todos = append(todos, t)
		prevRaw, prevCanon, prevLine = m.Indent, t.Indentation, i
	}

	return todos
}
