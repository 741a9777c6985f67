package terminal

import (
	"encoding/json"
	"fmt"
)

// wrapWidth is the fixed column width structured output is wrapped to.
const wrapWidth = 80

// Stream identifies which channel rendered lines are written to.
type Stream string

const (
	StreamNone   Stream = "none"
	StreamOutput Stream = "output"
	StreamError  Stream = "error"
)

// Rendered is the formatter's verdict for one handler result: the lines
// to write and the channel to write them to.
type Rendered struct {
	Stream Stream
	Lines  []string
}

// Format classifies a handler result and renders it. Classification
// order matters: the failure check precedes the structured check so an
// error can never be miscategorized as data.
func Format(res Result) Rendered {
	switch res.Kind() {
	case KindFailure:
		return Rendered{Stream: StreamError, Lines: []string{res.failure}}

	case KindStructured:
		data, err := json.MarshalIndent(res.fields, "", "  ")
		if err != nil {
			// An unserializable value is reported as a recoverable
			// failure; the session keeps running.
			return Rendered{
				Stream: StreamError,
				Lines:  []string{fmt.Sprintf("Error formatting result: %v", err)},
			}
		}
		return Rendered{Stream: StreamOutput, Lines: Wrap(string(data), wrapWidth)}

	case KindText:
		return Rendered{Stream: StreamOutput, Lines: []string{res.text}}

	default:
		return Rendered{Stream: StreamNone}
	}
}
