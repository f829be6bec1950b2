package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", RootPath},
		{"/", RootPath},
		{".", RootPath},
		{"/Folder/a.md", "Folder/a.md"},
		{"Folder//b/../a.md", "Folder/a.md"},
		{"../escape.md", "escape.md"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestSplit(t *testing.T) {
	name, basename := Split("Folder/Plan.v2.md")
	assert.Equal(t, "Plan.v2.md", name)
	assert.Equal(t, "Plan.v2", basename)

	name, basename = Split(".exclude_todos")
	assert.Equal(t, ".exclude_todos", name)
	assert.Equal(t, "", basename)
}

func TestParentPath(t *testing.T) {
	assert.Equal(t, RootPath, ParentPath("a.md"))
	assert.Equal(t, "Folder", ParentPath("Folder/a.md"))
	assert.Equal(t, "Folder/Nested", ParentPath("/Folder/Nested/a.md"))
	assert.Equal(t, RootPath, ParentPath(RootPath))
}
