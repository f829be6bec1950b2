// Package todo defines checkbox task lines and the text formats they travel in:
// source documents, and the generated aggregate document.
package todo

import "github.com/colonyops/taskroll/internal/core/docstore"

// TaskType is the status of a task, represented on the wire by its marker rune.
type TaskType rune

const (
	NotStarted TaskType = ' '
	InProgress TaskType = '.'
	WontDo     TaskType = '~'
	Done       TaskType = 'x'
)

// IndentUnit is one level of canonical nesting.
const IndentUnit = "    "

// Marker returns the marker character written between the brackets.
func (t TaskType) Marker() string {
	return string(rune(t))
}

// Known reports whether t is one of the four recognized task types.
func (t TaskType) Known() bool {
	switch t {
	case NotStarted, InProgress, WontDo, Done:
		return true
	default:
		return false
	}
}

// String returns a human readable name for the task type.
func (t TaskType) String() string {
	switch t {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case WontDo:
		return "wont_do"
	case Done:
		return "done"
	default:
		return "unknown(" + t.Marker() + ")"
	}
}

// Todo is a single task line occurrence.
type Todo struct {
	Task        TaskType
	Text        string
	Line        int    // 0-based line within the source, extraction only
	Indentation string // canonical nesting prefix, a multiple of IndentUnit

	// Source is the owning document. It is assigned after extraction and
	// never owned by the Todo.
	Source *docstore.Ref
}

// Include selects which task types appear in the aggregate document.
type Include struct {
	NotStarted bool `yaml:"not_started" json:"not_started"`
	InProgress bool `yaml:"in_progress" json:"in_progress"`
	WontDo     bool `yaml:"wont_do"     json:"wont_do"`
	Done       bool `yaml:"done"        json:"done"`
}

// Has reports whether t is enabled. Unknown markers are never included.
func (i Include) Has(t TaskType) bool {
	switch t {
	case NotStarted:
		return i.NotStarted
	case InProgress:
		return i.InProgress
	case WontDo:
		return i.WontDo
	case Done:
		return i.Done
	default:
		return false
	}
}
