package session

import (
	"errors"
	"io"
	"sync"
)

// DefaultPendingLimit caps the bytes waiting for one slow client.
const DefaultPendingLimit = 1 << 20

// ErrSinkClosed is returned by Write after Close.
var ErrSinkClosed = errors.New("sink closed")

// Sink is the output side of one session. Write stages bytes without
// blocking; Flush hands the staged bytes to a writer goroutine that performs
// the transport write. Callers may hold their own locks around Write and
// Flush since neither waits on the network.
type Sink struct {
	out     io.WriteCloser
	limit   int
	onError func(error)
	onWrite func(int)

	mu      sync.Mutex
	staged  []byte
	pending []byte
	closing bool
	failed  bool

	wake chan struct{}
	done chan struct{}
}

// SinkOptions configures a Sink. Zero values pick defaults.
type SinkOptions struct {
	// Limit caps pending bytes. DefaultPendingLimit when zero.
	Limit int
	// OnError runs on the writer goroutine after the first failed write.
	OnError func(error)
	// OnWrite runs on the writer goroutine after each successful write.
	OnWrite func(n int)
}

// NewSink starts the writer goroutine for out.
func NewSink(out io.WriteCloser, opts SinkOptions) *Sink {
	if opts.Limit <= 0 {
		opts.Limit = DefaultPendingLimit
	}
	s := &Sink{
		out:     out,
		limit:   opts.Limit,
		onError: opts.OnError,
		onWrite: opts.OnWrite,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Write stages p. Nothing reaches the transport until Flush.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return 0, ErrSinkClosed
	}
	s.staged = append(s.staged, p...)
	return len(p), nil
}

// Flush queues staged bytes for the writer. When the queue would exceed the
// limit every queued byte is dropped and Flush reports the overflow; the
// caller must then repaint from scratch.
func (s *Sink) Flush() (overflow bool) {
	s.mu.Lock()
	if len(s.staged) == 0 || s.closing {
		s.mu.Unlock()
		return false
	}
	if len(s.pending)+len(s.staged) > s.limit {
		s.pending = nil
		s.staged = s.staged[:0]
		s.mu.Unlock()
		return true
	}
	s.pending = append(s.pending, s.staged...)
	s.staged = s.staged[:0]
	s.mu.Unlock()
	s.signal()
	return false
}

// Pending reports the bytes queued but not yet written.
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close stops accepting bytes. Queued bytes are still written, then the
// transport is closed. Close does not wait; use Done for that.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.mu.Unlock()
	s.signal()
}

// Done is closed once the writer goroutine has closed the transport.
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

func (s *Sink) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for range s.wake {
		s.mu.Lock()
		buf := s.pending
		s.pending = nil
		closing := s.closing
		failed := s.failed
		s.mu.Unlock()

		if len(buf) > 0 && !failed {
			n, err := s.out.Write(buf)
			if err != nil {
				s.mu.Lock()
				s.failed = true
				s.mu.Unlock()
				if s.onError != nil {
					s.onError(err)
				}
			} else if s.onWrite != nil {
				s.onWrite(n)
			}
		}
		if closing {
			_ = s.out.Close()
			return
		}
	}
}
