package todo

import (
	"slices"
	"strings"
	"time"

	"github.com/colonyops/taskroll/internal/core/docstore"
)

// Group is the set of todos rendered under one source document heading.
type Group struct {
	Source *docstore.Ref
	Todos  []Todo
}

// FormatOptions controls rendering of the aggregate document.
type FormatOptions struct {
	Include      Include
	UseFullPaths bool // label headings with the full path instead of the basename
}

// GroupTodos orders todos oldest document first, drops task types that are
// not included, and groups the rest by source document. Todos without a
// source are dropped.
func GroupTodos(todos []Todo, include Include) []Group {
	sorted := slices.Clone(todos)
	slices.SortStableFunc(sorted, func(a, b Todo) int {
		return createdOf(a).Compare(createdOf(b))
	})

	var (
		groups []Group
		index  = map[string]int{}
	)

	for _, t := range sorted {
		if t.Source == nil || !include.Has(t.Task) {
			continue
		}

		i, ok := index[t.Source.Path]
		if !ok {
			i = len(groups)
			index[t.Source.Path] = i
			groups = append(groups, Group{Source: t.Source})
		}
		groups[i].Todos = append(groups[i].Todos, t)
	}

	return groups
}

// Render writes groups in the aggregate document format.
func Render(groups []Group, useFullPaths bool) string {
	var sb strings.Builder
	for _, g := range groups {
		label := g.Source.Basename
		if useFullPaths {
			label = g.Source.Path
		}

		sb.WriteString("- [")
		sb.WriteString(label)
		sb.WriteString("](")
		sb.WriteString(EncodePath(g.Source.Path))
		sb.WriteString(")\n")

		for _, t := range g.Todos {
			sb.WriteString("\t")
			sb.WriteString(t.Indentation)
			sb.WriteString("- [")
			sb.WriteString(t.Task.Marker())
			sb.WriteString("] ")
			sb.WriteString(t.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Format groups and renders todos into the full aggregate document text.
func Format(todos []Todo, opts FormatOptions) string {
	return Render(GroupTodos(todos, opts.Include), opts.UseFullPaths)
}

func createdOf(t Todo) time.Time {
	if t.Source == nil {
		return time.Time{}
	}
	return t.Source.Created
}

const upperhex = "0123456789ABCDEF"

// EncodePath percent-encodes a document path for use as a link target. Reserved
// URI characters, including '/', are kept so links stay readable.
func EncodePath(p string) string {
	var sb strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		if keepUnescaped(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func keepUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}
