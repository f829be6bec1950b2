package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAggregate(t *testing.T) {
	content := "stray line\n" +
		"- [ ] not under a heading\n" +
		"- [Tasks](Tasks.md)\n" +
		"\t- [ ] Pending\n" +
		"\t    - [x] Finished\n" +
		"- [Tasks & Porpoises 🐬](Folder/Tasks%20&%20Porpoises%20%F0%9F%90%AC.md)\n" +
		"\t- [~] Dropped\n" +
		"- [Tasks](Tasks.md)\n" +
		"\t- [.] Merged\n"

	sections := ParseAggregate(content)
	require.Len(t, sections, 2)

	assert.Equal(t, "Tasks", sections[0].Label)
	assert.Equal(t, "Tasks.md", sections[0].Path)
	require.Len(t, sections[0].Todos, 3)
	assert.Equal(t, "", sections[0].Todos[0].Indentation)
	assert.Equal(t, "    ", sections[0].Todos[1].Indentation)
	assert.Equal(t, Done, sections[0].Todos[1].Task)
	assert.Equal(t, "Merged", sections[0].Todos[2].Text)

	assert.Equal(t, "Folder/Tasks & Porpoises 🐬.md", sections[1].Path)
	require.Len(t, sections[1].Todos, 1)
	assert.Equal(t, WontDo, sections[1].Todos[0].Task)
}

func TestParseAggregate_RoundTrip(t *testing.T) {
	a := doc("Notes/Plan A.md", epoch)
	b := doc("b.md", epoch)
	todos := []Todo{
		{Task: NotStarted, Text: "one", Source: a},
		{Task: InProgress, Text: "two", Indentation: "    ", Source: a},
		{Task: NotStarted, Text: "three", Indentation: "        ", Source: a},
		{Task: NotStarted, Text: "four", Source: b},
	}

	rendered := Format(todos, FormatOptions{Include: defaultInclude})
	sections := ParseAggregate(rendered)
	require.Len(t, sections, 2)

	assert.Equal(t, "Notes/Plan A.md", sections[0].Path)
	assert.Equal(t, []Todo{
		{Task: NotStarted, Text: "one"},
		{Task: InProgress, Text: "two", Indentation: "    "},
		{Task: NotStarted, Text: "three", Indentation: "        "},
	}, strip(sections[0].Todos))
	assert.Equal(t, "b.md", sections[1].Path)
}

func TestParseAggregate_UndecodablePathKeptRaw(t *testing.T) {
	sections := ParseAggregate("- [bad](bad%zz.md)\n\t- [x] a\n")
	require.Len(t, sections, 1)
	assert.Equal(t, "bad%zz.md", sections[0].Path)
}

func TestSection_Pending(t *testing.T) {
	s := Section{Todos: []Todo{
		{Task: NotStarted, Text: "keep"},
		{Task: Done, Text: "done"},
		{Task: InProgress, Text: "working"},
		{Task: WontDo, Text: "dropped"},
	}}

	assert.Equal(t, []string{"done", "dropped"}, texts(s.Pending(defaultInclude)))
	assert.Empty(t, s.Pending(Include{NotStarted: true, InProgress: true, WontDo: true, Done: true}))
}

func TestPatchMarkers(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		todos       []Todo
		want        string
		wantPatched int
	}{
		{
			name:        "replaces only the marker",
			content:     "# Plan\n- [ ] write tests\n    -[ ]  indented one\n",
			todos:       []Todo{{Task: Done, Text: "write tests"}, {Task: WontDo, Text: "indented one"}},
			want:        "# Plan\n- [x] write tests\n    -[~]  indented one\n",
			wantPatched: 2,
		},
		{
			name:        "first matching line only",
			content:     "- [ ] dup\n- [ ] dup\n",
			todos:       []Todo{{Task: Done, Text: "dup"}},
			want:        "- [x] dup\n- [ ] dup\n",
			wantPatched: 1,
		},
		{
			name:        "crlf preserved",
			content:     "- [ ] a\r\n- [ ] b\r\n",
			todos:       []Todo{{Task: Done, Text: "b"}},
			want:        "- [ ] a\r\n- [x] b\r\n",
			wantPatched: 1,
		},
		{
			name:        "cr preserved",
			content:     "- [ ] one\r- [ ] two\r",
			todos:       []Todo{{Task: Done, Text: "two"}},
			want:        "- [ ] one\r- [x] two\r",
			wantPatched: 1,
		},
		{
			name:        "mixed endings preserved",
			content:     "- [ ] a\r\n- [ ] b\r- [ ] c\n",
			todos:       []Todo{{Task: Done, Text: "b"}, {Task: WontDo, Text: "c"}},
			want:        "- [ ] a\r\n- [x] b\r- [~] c\n",
			wantPatched: 2,
		},
		{
			name:        "no trailing newline",
			content:     "text\n- [.] last",
			todos:       []Todo{{Task: Done, Text: "last"}},
			want:        "text\n- [x] last",
			wantPatched: 1,
		},
		{
			name:        "already matching marker",
			content:     "- [x] a\n",
			todos:       []Todo{{Task: Done, Text: "a"}},
			want:        "- [x] a\n",
			wantPatched: 0,
		},
		{
			name:        "missing text is skipped",
			content:     "- [ ] a\n",
			todos:       []Todo{{Task: Done, Text: "gone"}},
			want:        "- [ ] a\n",
			wantPatched: 0,
		},
		{
			name:        "no todos",
			content:     "- [ ] a\n",
			want:        "- [ ] a\n",
			wantPatched: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, patched := PatchMarkers(tt.content, tt.todos)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPatched, patched)
		})
	}
}
