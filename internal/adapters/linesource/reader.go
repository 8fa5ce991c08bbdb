package linesource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ReaderSource adapts any io.Reader (stdin, a pipe, a recorded capture)
// into a line source.
type ReaderSource struct {
	reader io.Reader
	lines  chan string
}

// NewReaderSource wraps r. The source is exhausted when r returns EOF.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{
		reader: r,
		lines:  make(chan string, 64),
	}
}

// Lines returns the channel of read lines. It is closed when Start
// returns.
func (s *ReaderSource) Lines() <-chan string {
	return s.lines
}

// Start scans r line by line until EOF or context cancellation. EOF is
// a clean end of input, not an error.
func (s *ReaderSource) Start(ctx context.Context) error {
	defer close(s.lines)

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		select {
		case s.lines <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read line source: %w", err)
	}
	return nil
}
