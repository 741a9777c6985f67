package terminal

// ResultKind tags the variant of a handler result.
type ResultKind string

const (
	KindEmpty      ResultKind = "empty"
	KindText       ResultKind = "text"
	KindStructured ResultKind = "structured"
	KindFailure    ResultKind = "failure"
)

// Result is the value an input handler returns for a received line.
// It is constructed fresh per invocation and consumed immediately by
// the formatter.
type Result struct {
	kind    ResultKind
	text    string
	fields  map[string]any
	failure string
}

// Handler produces a Result for a raw input line.
type Handler func(line string) Result

// Empty reports that the handler produced no output.
func Empty() Result {
	return Result{kind: KindEmpty}
}

// Text wraps plain text output.
func Text(s string) Result {
	return Result{kind: KindText, text: s}
}

// Structured wraps a key/value mapping rendered as indented JSON.
// A nil map is treated as empty output.
func Structured(fields map[string]any) Result {
	if fields == nil {
		return Empty()
	}
	return Result{kind: KindStructured, fields: fields}
}

// Failure wraps an error message destined for the error channel.
func Failure(message string) Result {
	return Result{kind: KindFailure, failure: message}
}

// Kind returns the variant tag of the result.
func (r Result) Kind() ResultKind {
	if r.kind == "" {
		return KindEmpty
	}
	return r.kind
}
