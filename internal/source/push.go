// Package source provides LineSource implementations for driving a
// terminal session: an in-process push source, an interactive reader
// source, and an fsnotify-tailed script file source.
package source

import "sync"

// Push is an in-process line source. Lines handed to Push are delivered
// synchronously to the registered callback, which makes it the natural
// source for tests and for the realtime bridge.
type Push struct {
	mu      sync.Mutex
	onLine  func(string)
	onClose func()
	closed  bool
}

// NewPush creates an open push source.
func NewPush() *Push {
	return &Push{}
}

// OnLine registers the line callback.
func (p *Push) OnLine(fn func(line string)) {
	p.mu.Lock()
	p.onLine = fn
	p.mu.Unlock()
}

// OnClose registers the close callback.
func (p *Push) OnClose(fn func()) {
	p.mu.Lock()
	p.onClose = fn
	p.mu.Unlock()
}

// Push delivers one line to the registered callback. Lines pushed
// before OnLine or after Close are dropped.
func (p *Push) Push(line string) {
	p.mu.Lock()
	fn := p.onLine
	closed := p.closed
	p.mu.Unlock()

	if closed || fn == nil {
		return
	}
	fn(line)
}

// Close marks the source closed and fires the close callback once.
func (p *Push) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	fn := p.onClose
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}
