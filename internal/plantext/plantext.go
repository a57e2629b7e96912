// Package plantext converts free-form plan text into simplified todo items.
//
// The parser is a pure, stateless collaborator of the storage layer: it
// never touches persistence and is deterministic for a given input. One todo
// is produced per non-empty content line; markdown headings are skipped,
// bullet and numbering prefixes are stripped, fenced code blocks attach to
// the preceding todo, and an optional "[complexity: N]" suffix overrides the
// default score.
package plantext

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultComplexity is the score assigned to todos parsed from plain lines.
const DefaultComplexity = 3

// Todo is one parsed plan item. It mirrors the caller-supplied fields of a
// stored todo without depending on the storage package.
type Todo struct {
	Title       string
	Description string
	Complexity  int
	CodeExample string
}

var (
	bulletPrefix     = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	checkboxPrefix   = regexp.MustCompile(`^\[[ xX]\]\s*`)
	complexitySuffix = regexp.MustCompile(`\s*\[complexity:\s*(\d+)\]\s*$`)
	headingLine      = regexp.MustCompile(`^\s*#{1,6}\s`)
)

// Parse converts plan text into an ordered sequence of todos.
//
// Lines inside a fenced code block (``` delimiters) are collected verbatim
// and attached to the most recently parsed todo as its code example; a fence
// with no preceding todo is dropped. Empty lines and headings produce no
// todos.
func Parse(text string) []Todo {
	todos := make([]Todo, 0)

	var (
		inFence    bool
		fenceLines []string
	)

	flushFence := func() {
		if len(fenceLines) > 0 && len(todos) > 0 {
			todos[len(todos)-1].CodeExample = strings.Join(fenceLines, "\n")
		}
		fenceLines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				flushFence()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fenceLines = append(fenceLines, line)
			continue
		}

		if trimmed == "" || headingLine.MatchString(line) {
			continue
		}

		title := bulletPrefix.ReplaceAllString(line, "")
		title = checkboxPrefix.ReplaceAllString(title, "")
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		complexity := DefaultComplexity
		if m := complexitySuffix.FindStringSubmatch(title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				complexity = n
			}
			title = strings.TrimSpace(complexitySuffix.ReplaceAllString(title, ""))
		}
		if title == "" {
			continue
		}

		todos = append(todos, Todo{
			Title:      title,
			Complexity: complexity,
		})
	}

	// Unterminated fence: still attach what was collected.
	flushFence()

	return todos
}
