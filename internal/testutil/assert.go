package testutil

import (
	"reflect"
	"strings"
	"testing"
)

// AssertEqual checks if two values are equal.
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertNoError checks that error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertTrue checks that condition is true
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse checks that condition is false
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// AssertOnlyTargetsChanged checks that output has as many lines as input,
// every line keeps its terminator and only lines starting with prefix
// differ.
func AssertOnlyTargetsChanged(t *testing.T, input, output, prefix string) {
	t.Helper()
	in := strings.SplitAfter(input, "\n")
	out := strings.SplitAfter(output, "\n")
	if len(in) != len(out) {
		t.Fatalf("line count changed: %d in, %d out", len(in), len(out))
	}
	for i := range in {
		if terminator(in[i]) != terminator(out[i]) {
			t.Errorf("line %d: terminator changed from %q to %q", i+1, terminator(in[i]), terminator(out[i]))
		}
		if !strings.HasPrefix(in[i], prefix) && in[i] != out[i] {
			t.Errorf("line %d: non-target line changed\n  in:  %q\n  out: %q", i+1, in[i], out[i])
		}
	}
}

func terminator(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	default:
		return ""
	}
}
