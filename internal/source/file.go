package source

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File is a line source that tails a script file. Existing lines are
// delivered when Run starts; lines appended afterwards are delivered as
// the file grows. Removing or renaming the file closes the source.
type File struct {
	path string
	fsW  *fsnotify.Watcher

	mu      sync.Mutex
	onLine  func(string)
	onClose func()
	closed  bool
	cancel  chan struct{}

	offset  int64
	pending []byte
}

// NewFile creates a file source for path. The containing directory is
// watched so file recreation is picked up too.
func NewFile(path string) (*File, error) {
	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsW.Add(filepath.Dir(path)); err != nil {
		fsW.Close()
		return nil, err
	}
	return &File{
		path:   path,
		fsW:    fsW,
		cancel: make(chan struct{}),
	}, nil
}

// OnLine registers the line callback.
func (f *File) OnLine(fn func(line string)) {
	f.mu.Lock()
	f.onLine = fn
	f.mu.Unlock()
}

// OnClose registers the close callback.
func (f *File) OnClose(fn func()) {
	f.mu.Lock()
	f.onClose = fn
	f.mu.Unlock()
}

// Run drains the file and then follows appends until the file is
// removed or the source is closed.
func (f *File) Run() error {
	f.drain()

	for {
		select {
		case <-f.cancel:
			return nil

		case event, ok := <-f.fsW.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				f.Close()
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				f.drain()
			}

		case err, ok := <-f.fsW.Errors:
			if !ok {
				return nil
			}
			log.Printf("file source %s: watch error: %v", f.path, err)
		}
	}
}

// drain reads newly appended bytes and emits each complete line.
func (f *File) drain() {
	fh, err := os.Open(f.path)
	if err != nil {
		return
	}
	defer fh.Close()

	// A shrunk file was truncated; start over.
	if info, err := fh.Stat(); err == nil && info.Size() < f.offset {
		f.offset = 0
		f.pending = nil
	}

	if _, err := fh.Seek(f.offset, io.SeekStart); err != nil {
		return
	}
	data, err := io.ReadAll(fh)
	if err != nil && len(data) == 0 {
		return
	}
	f.offset += int64(len(data))
	f.pending = append(f.pending, data...)

	for {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			return
		}
		line := string(f.pending[:i])
		f.pending = f.pending[i+1:]
		f.emit(line)
	}
}

func (f *File) emit(line string) {
	f.mu.Lock()
	fn := f.onLine
	closed := f.closed
	f.mu.Unlock()

	if closed || fn == nil {
		return
	}
	fn(line)
}

// Close stops the watcher and fires the close callback once.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	fn := f.onClose
	close(f.cancel)
	f.mu.Unlock()

	f.fsW.Close()
	if fn != nil {
		fn()
	}
	return nil
}
