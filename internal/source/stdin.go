package source

import (
	"bufio"
	"io"
	"sync"
)

const defaultScanBufSize = 1024 * 1024 // 1 MB

// Reader is a line source backed by an io.Reader, typically os.Stdin.
// Run blocks scanning lines until EOF, a read error, or Close.
type Reader struct {
	r io.Reader

	mu      sync.Mutex
	onLine  func(string)
	onClose func()
	closed  bool
}

// NewReader creates a line source reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// OnLine registers the line callback.
func (s *Reader) OnLine(fn func(line string)) {
	s.mu.Lock()
	s.onLine = fn
	s.mu.Unlock()
}

// OnClose registers the close callback.
func (s *Reader) OnClose(fn func()) {
	s.mu.Lock()
	s.onClose = fn
	s.mu.Unlock()
}

// Run scans lines and delivers them until the reader is exhausted or
// the source is closed. EOF (Ctrl+D on a terminal) closes the source.
func (s *Reader) Run() error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, defaultScanBufSize), defaultScanBufSize)

	for scanner.Scan() {
		s.mu.Lock()
		fn := s.onLine
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return nil
		}
		if fn != nil {
			fn(scanner.Text())
		}
	}

	err := scanner.Err()
	s.Close()
	return err
}

// Close marks the source closed and fires the close callback once. A
// read blocked inside Run is not interrupted; the loop stops delivering
// on its next line.
func (s *Reader) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	fn := s.onClose
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}
