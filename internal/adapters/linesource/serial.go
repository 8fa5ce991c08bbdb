// Package linesource provides line-oriented transports for the ingest
// loop: a serial port for live hardware and an io.Reader wrapper for
// pipes and replays.
package linesource

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.bug.st/serial"
)

const (
	readTimeout = 500 * time.Millisecond
	readBufSize = 1024
)

// SerialSource reads newline-delimited text from a serial port.
type SerialSource struct {
	portName string
	baudRate int
	lines    chan string
}

// NewSerialSource creates a source for the given port and baud rate.
func NewSerialSource(portName string, baudRate int) *SerialSource {
	return &SerialSource{
		portName: portName,
		baudRate: baudRate,
		lines:    make(chan string, 64),
	}
}

// Lines returns the channel of received lines. It is closed when Start
// returns.
func (s *SerialSource) Lines() <-chan string {
	return s.lines
}

// Start opens the port and pumps lines until the context is cancelled
// or the port fails. Reads use a short timeout so cancellation is
// noticed within readTimeout even on a silent port.
func (s *SerialSource) Start(ctx context.Context) error {
	defer close(s.lines)

	port, err := serial.Open(s.portName, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.portName, err)
	}
	defer port.Close()

	if err := port.SetReadTimeout(readTimeout); err != nil {
		return fmt.Errorf("set read timeout: %w", err)
	}

	slog.Info("serial port opened", "port", s.portName, "baud", s.baudRate)

	buf := make([]byte, readBufSize)
	var pending []byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			return fmt.Errorf("read serial port %s: %w", s.portName, err)
		}
		if n == 0 {
			// Timeout, poll the context again.
			continue
		}

		pending = append(pending, buf[:n]...)
		for {
			idx := bytes.IndexByte(pending, '\n')
			if idx < 0 {
				break
			}
			line := string(bytes.TrimRight(pending[:idx], "\r"))
			pending = pending[idx+1:]
			if line == "" {
				continue
			}
			select {
			case s.lines <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
