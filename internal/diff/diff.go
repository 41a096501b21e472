// Package diff computes and prints line diffs between a dump and its
// rewritten form.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/buger/goterm"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind tells whether a diff line was removed or added.
type Kind int

const (
	LineRemoved Kind = iota
	LineAdded
)

// Line is one changed line. OldLine is set for removed lines and NewLine
// for added ones, both 1-based.
type Line struct {
	Kind    Kind
	Text    string
	OldLine int
	NewLine int
}

// Hunk is a run of consecutive changed lines.
type Hunk struct {
	Lines []Line
}

// MaxDiffLines is the default cap on input plus output lines for
// TextDiffWithLimit.
const MaxDiffLines = 200000

// TextDiff compares before and after line by line and groups the changes
// into hunks. Unchanged lines only separate hunks.
func TextDiff(before, after string) []Hunk {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lineArray)

	var hunks []Hunk
	var current []Line
	flush := func() {
		if len(current) > 0 {
			hunks = append(hunks, Hunk{Lines: current})
			current = nil
		}
	}

	oldLine, newLine := 1, 1
	for _, d := range diffs {
		for _, text := range splitChunk(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				flush()
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				current = append(current, Line{Kind: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				current = append(current, Line{Kind: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	flush()
	return hunks
}

// TextDiffWithLimit is TextDiff that gives up when before and after together
// exceed maxLines lines. The bool reports whether it gave up. A maxLines of
// zero or less means MaxDiffLines.
func TextDiffWithLimit(before, after string, maxLines int) ([]Hunk, bool) {
	if maxLines <= 0 {
		maxLines = MaxDiffLines
	}
	if lineCount(before)+lineCount(after) > maxLines {
		return nil, true
	}
	return TextDiff(before, after), false
}

// Changed reports the number of removed and added lines in hunks.
func Changed(hunks []Hunk) (removed, added int) {
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case LineRemoved:
				removed++
			case LineAdded:
				added++
			}
		}
	}
	return removed, added
}

// Render writes the lines of hunks to w, each prefixed with - or + and its
// line number. With colour set, removed lines are red and added lines green.
func Render(w io.Writer, hunks []Hunk, colour bool) error {
	for _, h := range hunks {
		for _, l := range h.Lines {
			prefix, num, c := "-", l.OldLine, goterm.RED
			if l.Kind == LineAdded {
				prefix, num, c = "+", l.NewLine, goterm.GREEN
			}
			text := fmt.Sprintf("%s%6d  %s", prefix, num, strings.TrimRight(l.Text, "\r"))
			if colour {
				text = goterm.Color(text, c)
			}
			if _, err := fmt.Fprintln(w, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitChunk splits a diff chunk into lines without terminators.
func splitChunk(text string) []string {
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
