package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskType(t *testing.T) {
	tests := []struct {
		task   TaskType
		marker string
		name   string
		known  bool
	}{
		{NotStarted, " ", "not_started", true},
		{InProgress, ".", "in_progress", true},
		{WontDo, "~", "wont_do", true},
		{Done, "x", "done", true},
		{TaskType('X'), "X", "unknown(X)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.marker, tt.task.Marker())
			assert.Equal(t, tt.name, tt.task.String())
			assert.Equal(t, tt.known, tt.task.Known())
		})
	}
}

func TestInclude_Has(t *testing.T) {
	inc := Include{NotStarted: true, Done: true}

	assert.True(t, inc.Has(NotStarted))
	assert.False(t, inc.Has(InProgress))
	assert.False(t, inc.Has(WontDo))
	assert.True(t, inc.Has(Done))
	assert.False(t, Include{NotStarted: true, InProgress: true, WontDo: true, Done: true}.Has(TaskType('?')))
}
