package plantext_test

import (
	"testing"

	"github.com/erauner/Software-planning-mcp/internal/plantext"
)

func Test_Parse_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []plantext.Todo
	}{
		{
			name: "empty input",
			text: "",
			want: []plantext.Todo{},
		},
		{
			name: "blank lines only",
			text: "\n\n   \n",
			want: []plantext.Todo{},
		},
		{
			name: "plain lines",
			text: "first task\nsecond task",
			want: []plantext.Todo{
				{Title: "first task", Complexity: plantext.DefaultComplexity},
				{Title: "second task", Complexity: plantext.DefaultComplexity},
			},
		},
		{
			name: "bullet prefixes stripped",
			text: "- dash item\n* star item\n+ plus item\n1. numbered\n2) paren numbered",
			want: []plantext.Todo{
				{Title: "dash item", Complexity: 3},
				{Title: "star item", Complexity: 3},
				{Title: "plus item", Complexity: 3},
				{Title: "numbered", Complexity: 3},
				{Title: "paren numbered", Complexity: 3},
			},
		},
		{
			name: "checkbox prefixes stripped",
			text: "- [ ] open item\n- [x] done item\n- [X] shouting done",
			want: []plantext.Todo{
				{Title: "open item", Complexity: 3},
				{Title: "done item", Complexity: 3},
				{Title: "shouting done", Complexity: 3},
			},
		},
		{
			name: "headings skipped",
			text: "# Plan\n## Phase one\ndo the thing\n###### deep heading",
			want: []plantext.Todo{
				{Title: "do the thing", Complexity: 3},
			},
		},
		{
			name: "complexity suffix",
			text: "- easy thing [complexity: 1]\n- hard thing [complexity: 9]\n- default thing",
			want: []plantext.Todo{
				{Title: "easy thing", Complexity: 1},
				{Title: "hard thing", Complexity: 9},
				{Title: "default thing", Complexity: 3},
			},
		},
		{
			name: "complexity without space after colon",
			text: "- tight [complexity:5]",
			want: []plantext.Todo{
				{Title: "tight", Complexity: 5},
			},
		},
		{
			name: "bare complexity tag yields no todo",
			text: "[complexity: 4]",
			want: []plantext.Todo{},
		},
		{
			name: "fenced block attaches to previous todo",
			text: "- write the handler\n```\nfunc handler() {}\n```\n- deploy it",
			want: []plantext.Todo{
				{Title: "write the handler", Complexity: 3, CodeExample: "func handler() {}"},
				{Title: "deploy it", Complexity: 3},
			},
		},
		{
			name: "multi-line fence preserved verbatim",
			text: "- add config\n```\nkey: value\n  indented: true\n```",
			want: []plantext.Todo{
				{Title: "add config", Complexity: 3, CodeExample: "key: value\n  indented: true"},
			},
		},
		{
			name: "fence with no preceding todo dropped",
			text: "```\norphan code\n```\n- real task",
			want: []plantext.Todo{
				{Title: "real task", Complexity: 3},
			},
		},
		{
			name: "unterminated fence still attaches",
			text: "- trailing task\n```\ndangling code",
			want: []plantext.Todo{
				{Title: "trailing task", Complexity: 3, CodeExample: "dangling code"},
			},
		},
		{
			name: "bullet marker alone yields no todo",
			text: "- ",
			want: []plantext.Todo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := plantext.Parse(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Parse returned %d todos, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("todo %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func Test_Parse_PreservesOrder(t *testing.T) {
	t.Parallel()

	text := "- alpha\n- beta\n- gamma\n- delta"
	got := plantext.Parse(text)
	want := []string{"alpha", "beta", "gamma", "delta"}
	if len(got) != len(want) {
		t.Fatalf("Parse returned %d todos, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("todo %d title = %q, want %q", i, got[i].Title, title)
		}
	}
}
