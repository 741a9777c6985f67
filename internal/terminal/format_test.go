package terminal

import (
	"strings"
	"testing"
)

func TestFormat_Text(t *testing.T) {
	r := Format(Text("You typed: test input"))
	if r.Stream != StreamOutput {
		t.Errorf("expected output stream, got %s", r.Stream)
	}
	if len(r.Lines) != 1 || r.Lines[0] != "You typed: test input" {
		t.Errorf("expected verbatim text line, got %q", r.Lines)
	}
}

func TestFormat_Failure(t *testing.T) {
	r := Format(Failure("This is an error message."))
	if r.Stream != StreamError {
		t.Errorf("expected error stream, got %s", r.Stream)
	}
	if len(r.Lines) != 1 || r.Lines[0] != "This is an error message." {
		t.Errorf("expected verbatim message, got %q", r.Lines)
	}
}

func TestFormat_Empty(t *testing.T) {
	r := Format(Empty())
	if r.Stream != StreamNone {
		t.Errorf("expected no stream, got %s", r.Stream)
	}
	if len(r.Lines) != 0 {
		t.Errorf("expected no lines, got %q", r.Lines)
	}
}

func TestFormat_NilStructuredIsEmpty(t *testing.T) {
	r := Format(Structured(nil))
	if r.Stream != StreamNone {
		t.Errorf("expected no stream for nil map, got %s", r.Stream)
	}
}

func TestFormat_Structured(t *testing.T) {
	r := Format(Structured(map[string]any{"name": "guest"}))
	if r.Stream != StreamOutput {
		t.Fatalf("expected output stream, got %s", r.Stream)
	}
	want := []string{"{", `  "name": "guest"`, "}"}
	if len(r.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(r.Lines), r.Lines)
	}
	for i := range want {
		if r.Lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], r.Lines[i])
		}
	}
}

func TestFormat_StructuredWrapsLongValues(t *testing.T) {
	long := strings.Repeat("x", 104)
	r := Format(Structured(map[string]any{
		"first":  "short",
		"second": long,
		"third":  42,
	}))

	if r.Stream != StreamOutput {
		t.Fatalf("expected output stream, got %s", r.Stream)
	}

	longLines := 0
	for i, line := range r.Lines {
		if len([]rune(line)) > 80 {
			t.Errorf("line %d exceeds 80 columns: %q", i, line)
		}
		if strings.Contains(line, "xxx") {
			longLines++
		}
	}
	if longLines < 2 {
		t.Errorf("expected long value split across at least 2 lines, got %d", longLines)
	}
}

func TestFormat_FailurePrecedesStructured(t *testing.T) {
	// A failure is always rendered to the error channel, even when its
	// message would parse as a keyed mapping.
	r := Format(Failure(`{"error": "nope"}`))
	if r.Stream != StreamError {
		t.Errorf("expected error stream, got %s", r.Stream)
	}
	if len(r.Lines) != 1 || r.Lines[0] != `{"error": "nope"}` {
		t.Errorf("expected verbatim message, got %q", r.Lines)
	}
}

func TestFormat_UnserializableStructured(t *testing.T) {
	r := Format(Structured(map[string]any{"ch": make(chan int)}))
	if r.Stream != StreamError {
		t.Fatalf("expected error stream, got %s", r.Stream)
	}
	if len(r.Lines) != 1 || !strings.HasPrefix(r.Lines[0], "Error formatting result:") {
		t.Errorf("expected formatting error line, got %q", r.Lines)
	}
}

func TestResult_KindDefaults(t *testing.T) {
	var zero Result
	if zero.Kind() != KindEmpty {
		t.Errorf("zero value should be empty, got %s", zero.Kind())
	}
	if Text("x").Kind() != KindText {
		t.Error("expected text kind")
	}
	if Structured(map[string]any{}).Kind() != KindStructured {
		t.Error("expected structured kind")
	}
	if Failure("x").Kind() != KindFailure {
		t.Error("expected failure kind")
	}
}
