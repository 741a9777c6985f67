package terminal

import (
	"io"
	"sync"
)

// SinkSet routes rendered text to the correct destination. Each channel
// (output-class, error-class) has an optional bound sink; when no sink
// is bound, writes fall back to the process-level stream. The fallback
// decision is made on every write, so a sink bound after construction
// takes effect for the very next write.
type SinkSet struct {
	mu          sync.Mutex
	out         io.Writer
	err         io.Writer
	fallbackOut io.Writer
	fallbackErr io.Writer
}

// NewSinkSet creates a sink set falling back to the given streams.
func NewSinkSet(fallbackOut, fallbackErr io.Writer) *SinkSet {
	return &SinkSet{
		fallbackOut: fallbackOut,
		fallbackErr: fallbackErr,
	}
}

// SubscribeOutput binds the output-class sink, replacing any previous
// binding. There is no unbind: a session has at most one logical
// consumer per channel at a time.
func (s *SinkSet) SubscribeOutput(w io.Writer) {
	s.mu.Lock()
	s.out = w
	s.mu.Unlock()
}

// SubscribeError binds the error-class sink, replacing any previous
// binding.
func (s *SinkSet) SubscribeError(w io.Writer) {
	s.mu.Lock()
	s.err = w
	s.mu.Unlock()
}

// WriteOutput writes text plus a newline to the output-class destination.
func (s *SinkSet) WriteOutput(text string) {
	io.WriteString(s.outputWriter(), text+"\n")
}

// WriteError writes text plus a newline to the error-class destination.
func (s *SinkSet) WriteError(text string) {
	io.WriteString(s.errorWriter(), text+"\n")
}

// WriteRaw writes text to the output-class destination without a
// trailing newline. Used for prompt drawing.
func (s *SinkSet) WriteRaw(text string) {
	io.WriteString(s.outputWriter(), text)
}

func (s *SinkSet) outputWriter() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out != nil {
		return s.out
	}
	return s.fallbackOut
}

func (s *SinkSet) errorWriter() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return s.fallbackErr
}
