package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a session.
type State string

const (
	StateIdle        State = "idle"
	StateRunning     State = "running"
	StateInterrupted State = "interrupted"
	StateClosed      State = "closed"
)

const (
	defaultUser             = "guest"
	defaultWorkingDirectory = "/"

	exitMessage     = "Exiting terminal emulator..."
	interruptNotice = "(Press Ctrl+D to exit)"
)

// ErrSessionClosed is returned by operations invoked after the session
// reached the Closed state.
var ErrSessionClosed = errors.New("session closed")

// LineSource is the host-side line reader the session consumes. The
// session registers its callbacks on Start and asks the source to close
// on exit. Close must be safe to call more than once.
type LineSource interface {
	OnLine(fn func(line string))
	OnClose(fn func())
	Close() error
}

// Options configures a new session. All fields are optional.
type Options struct {
	User             string       // defaults to "guest"
	WorkingDirectory string       // defaults to "/"
	Handler          Handler      // nil: lines are recorded but produce no output
	Source           LineSource   // nil: lines must be fed via HandleLine directly
	ClearScreen      func() error // nil: DefaultClearScreen
	Stdout           io.Writer    // fallback output stream, defaults to os.Stdout
	Stderr           io.Writer    // fallback error stream, defaults to os.Stderr
}

// Session owns the interactive loop and all session-lifetime side
// effects: prompt drawing, history, handler dispatch, and output
// routing. Line events, interrupts, and mutators run through an
// internal event queue: one event runs to completion, including all
// its writes and the prompt redraw, before the next starts. An event
// scheduled while another is in flight runs immediately after it,
// never interleaved with it, so a handler may call controller
// operations on its own session without deadlocking.
type Session struct {
	id        string
	createdAt time.Time

	mu          sync.Mutex
	state       State
	user        string
	workDir     string
	history     []string
	handler     Handler
	source      LineSource
	clearScreen func() error
	closeFns    []func()

	queue       []func()
	dispatching bool

	sinks *SinkSet
}

// Info is a point-in-time snapshot of session metadata.
type Info struct {
	ID               string    `json:"id"`
	State            State     `json:"state"`
	User             string    `json:"user"`
	WorkingDirectory string    `json:"workingDirectory"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewSession creates a session in the Idle state. No prompt is drawn
// and no callbacks are registered until Start.
func NewSession(opts Options) *Session {
	if opts.User == "" {
		opts.User = defaultUser
	}
	if opts.WorkingDirectory == "" {
		opts.WorkingDirectory = defaultWorkingDirectory
	}
	if opts.ClearScreen == nil {
		opts.ClearScreen = DefaultClearScreen
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &Session{
		id:          uuid.New().String(),
		createdAt:   time.Now().UTC(),
		state:       StateIdle,
		user:        opts.User,
		workDir:     opts.WorkingDirectory,
		handler:     opts.Handler,
		source:      opts.Source,
		clearScreen: opts.ClearScreen,
		sinks:       NewSinkSet(opts.Stdout, opts.Stderr),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the session metadata.
func (s *Session) Snapshot() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:               s.id,
		State:            s.state,
		User:             s.user,
		WorkingDirectory: s.workDir,
		CreatedAt:        s.createdAt,
	}
}

// History returns a copy of the raw input lines received so far.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// dispatch runs fn with exclusive event rights. If no event is in
// flight, fn runs synchronously on the calling goroutine, followed by
// any events scheduled while it ran. If an event is already in flight
// (a concurrent caller, or a handler invoking an operation on its own
// session), fn is queued and runs after the current event completes.
func (s *Session) dispatch(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		next()
		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}

// Start transitions Idle → Running, draws the initial prompt, and
// registers the line and close callbacks with the line source. Calling
// Start again redraws the prompt but also re-registers the callbacks;
// callers are expected to start a session once.
func (s *Session) Start() {
	s.dispatch(s.processStart)
}

func (s *Session) processStart() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	if s.state == StateIdle {
		s.state = StateRunning
	}
	src := s.source
	s.mu.Unlock()

	s.redrawPrompt()

	if src != nil {
		src.OnLine(s.HandleLine)
		src.OnClose(s.handleSourceClose)
	}
}

// HandleLine processes one received input line: record it, invoke the
// handler, render the result, redraw the prompt. With no handler
// configured the line is recorded but produces no output. Concurrent
// calls are serialized; a second line never starts until the first has
// written all of its output and redrawn the prompt.
func (s *Session) HandleLine(line string) {
	s.dispatch(func() { s.processLine(line) })
}

func (s *Session) processLine(line string) {
	s.mu.Lock()
	if s.state != StateRunning && s.state != StateInterrupted {
		s.mu.Unlock()
		return
	}
	s.history = append(s.history, line)
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		rendered := Format(invokeHandler(handler, line))
		switch rendered.Stream {
		case StreamOutput:
			for _, l := range rendered.Lines {
				s.sinks.WriteOutput(l)
			}
		case StreamError:
			for _, l := range rendered.Lines {
				s.sinks.WriteError(l)
			}
		}
	}

	s.redrawPrompt()
}

// invokeHandler calls the handler, converting a panic into a Failure
// result so a misbehaving handler cannot take the session down.
func invokeHandler(h Handler, line string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(fmt.Sprintf("handler panic: %v", r))
		}
	}()
	return h(line)
}

// HandleInterrupt reacts to the host's interrupt signal: newline, exit
// hint on the output channel, prompt redrawn with the hint appended.
// Line input keeps working afterwards; a second interrupt redraws the
// same notice.
func (s *Session) HandleInterrupt() {
	s.dispatch(s.processInterrupt)
}

func (s *Session) processInterrupt() {
	s.mu.Lock()
	if s.state != StateRunning && s.state != StateInterrupted {
		s.mu.Unlock()
		return
	}
	s.state = StateInterrupted
	s.mu.Unlock()

	s.sinks.WriteRaw("\n")
	s.sinks.WriteOutput(interruptNotice)
	s.redrawPrompt()
}

// Exit gracefully shuts the session down: the exit message is written
// exactly once, the line source receives one close instruction, the
// state becomes Closed, and close callbacks fire. The host-driven
// close event funnels into the same path.
func (s *Session) Exit() {
	s.dispatch(s.processExit)
}

func (s *Session) processExit() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	src := s.source
	fns := make([]func(), len(s.closeFns))
	copy(fns, s.closeFns)
	s.mu.Unlock()

	s.sinks.WriteOutput(exitMessage)
	if src != nil {
		src.Close()
	}
	for _, fn := range fns {
		fn()
	}
}

func (s *Session) handleSourceClose() {
	s.Exit()
}

// OnClose registers fn to run when the session reaches Closed,
// whichever path closed it. Each registered fn runs exactly once,
// after the exit message has been written. Registering on an already
// closed session is a no-op.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeFns = append(s.closeFns, fn)
}

// ClearTerminal clears the visible screen, empties the input history,
// and redraws the prompt. A screen-clear failure is reported on the
// error channel and is never fatal. Sink bindings are untouched.
func (s *Session) ClearTerminal() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	s.dispatch(s.processClear)
	return nil
}

func (s *Session) processClear() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	clearFn := s.clearScreen
	s.history = nil
	s.mu.Unlock()

	if clearFn != nil {
		if err := clearFn(); err != nil {
			s.sinks.WriteError(fmt.Sprintf("Error clearing screen: %v", err))
		}
	}
	s.redrawPrompt()
}

// SetUser changes the display name and redraws the prompt. Any string
// is accepted, including empty.
func (s *Session) SetUser(name string) {
	s.dispatch(func() {
		s.mu.Lock()
		s.user = name
		s.mu.Unlock()
		s.redrawPrompt()
	})
}

// SetCurrentDirectory changes the working-directory label and redraws
// the prompt. Any string is accepted, including empty.
func (s *Session) SetCurrentDirectory(path string) {
	s.dispatch(func() {
		s.mu.Lock()
		s.workDir = path
		s.mu.Unlock()
		s.redrawPrompt()
	})
}

// SubscribeOutput binds the output-class sink, replacing any previous
// binding.
func (s *Session) SubscribeOutput(w io.Writer) {
	s.sinks.SubscribeOutput(w)
}

// SubscribeError binds the error-class sink, replacing any previous
// binding.
func (s *Session) SubscribeError(w io.Writer) {
	s.sinks.SubscribeError(w)
}

// Prompt returns the prompt string as it would be drawn right now.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptLocked()
}

func (s *Session) promptLocked() string {
	if s.state == StateInterrupted {
		return fmt.Sprintf("%s@server:%s %s$ ", s.user, s.workDir, interruptNotice)
	}
	return fmt.Sprintf("%s@server:%s$ ", s.user, s.workDir)
}

// redrawPrompt draws the prompt reflecting the current user and
// working directory. No prompt is drawn after close.
func (s *Session) redrawPrompt() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	prompt := s.promptLocked()
	s.mu.Unlock()

	s.sinks.WriteRaw(prompt)
}
