package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

type lineResult struct {
	text string
	err  error
}

// lineSource reads lines in a background goroutine so reads can honor
// context cancellation. The pump reads one line per request, so the underlying
// reader is idle between prompts. A pump blocked in Read on a terminal only
// exits after the next line or EOF.
type lineSource struct {
	reader   *bufio.Reader
	requests chan struct{}
	lines    chan lineResult
	done     chan struct{}
	pending  atomic.Bool

	startOnce sync.Once
	closeOnce sync.Once
}

func newLineSource(r io.Reader) *lineSource {
	return &lineSource{
		reader:   bufio.NewReader(r),
		requests: make(chan struct{}, 1),
		lines:    make(chan lineResult, 1),
		done:     make(chan struct{}),
	}
}

func (s *lineSource) pump() {
	defer close(s.lines)
	for {
		select {
		case <-s.done:
			return
		case <-s.requests:
		}
		text, err := s.reader.ReadString('\n')
		if text != "" {
			if !s.send(lineResult{text: text}) {
				return
			}
			if err == nil {
				continue
			}
		}
		if err != io.EOF {
			s.send(lineResult{err: err})
		}
		return
	}
}

func (s *lineSource) send(res lineResult) bool {
	select {
	case s.lines <- res:
		return true
	case <-s.done:
		return false
	}
}

// ReadLine returns the next line without its trailing newline.
func (s *lineSource) ReadLine(ctx context.Context) (string, error) {
	s.startOnce.Do(func() { go s.pump() })
	if s.pending.CompareAndSwap(false, true) {
		s.requests <- struct{}{}
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.done:
		return "", io.EOF
	case res, ok := <-s.lines:
		s.pending.Store(false)
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

func (s *lineSource) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
