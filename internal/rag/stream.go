package rag

import (
	"context"
	"strings"
	"sync"
)

// TextStream carries answer text from one producer to one consumer.
//
// The consumer ranges over Deltas until it is closed, then checks Err. A
// consumer that stops early calls Close, which unblocks the producer and
// cancels the generation behind it.
type TextStream struct {
	deltas chan string
	done   chan struct{}
	cancel context.CancelFunc

	closeOnce  sync.Once
	finishOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewTextStream creates a stream with the given channel buffer that is not
// tied to any generation.
func NewTextStream(buffer int) *TextStream {
	return newTextStream(buffer, nil)
}

func newTextStream(buffer int, cancel context.CancelFunc) *TextStream {
	if buffer < 0 {
		buffer = 0
	}
	return &TextStream{
		deltas: make(chan string, buffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Deltas returns the channel of text fragments. It is closed when the
// producer finishes.
func (s *TextStream) Deltas() <-chan string {
	return s.deltas
}

// Err returns the error that ended the stream, or nil after a clean finish.
// It is meaningful once Deltas has been closed.
func (s *TextStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops consumption and cancels the generation feeding the stream.
// It is safe to call more than once.
func (s *TextStream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Send delivers delta to the consumer. It blocks until the delta is taken or
// buffered, and returns false once the consumer has closed the stream.
// Send must not be called after Finish.
func (s *TextStream) Send(delta string) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.deltas <- delta:
		return true
	case <-s.done:
		return false
	}
}

// Finish records err and closes Deltas. Only the first call has effect.
func (s *TextStream) Finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.deltas)
	})
}

// Closed reports whether the consumer has closed the stream.
func (s *TextStream) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Collect drains the stream into a single string and closes it.
func (s *TextStream) Collect(ctx context.Context) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		select {
		case delta, ok := <-s.deltas:
			if !ok {
				return sb.String(), s.Err()
			}
			sb.WriteString(delta)
		case <-ctx.Done():
			return sb.String(), ctx.Err()
		}
	}
}
