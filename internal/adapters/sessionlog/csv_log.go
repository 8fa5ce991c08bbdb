// Package sessionlog persists stats samples as a CSV session log and
// reads them back for offline analysis.
package sessionlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// ErrClosed is returned by Append once the log has been closed.
var ErrClosed = errors.New("session log: already closed")

// Header is the fixed column set of a session log file.
var Header = []string{
	"Timestamp",
	"Connected",
	"Nearby",
	"Total_Probes",
	"Total_Connections",
	"Connection_Rate%",
	"Unique_Devices",
}

const timestampLayout = "2006-01-02 15:04:05"

// CSVLog appends stats samples to a CSV file. Every row is flushed to
// the OS before Append returns, so a crash loses at most the row being
// written, never a previously acknowledged one. Append and Close
// serialize on an internal mutex: a row is written whole or not at all,
// and appends racing a shutdown are rejected instead of torn.
type CSVLog struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	path   string
	closed bool
}

// NewCSVLog creates the log file at path and writes the header row.
func NewCSVLog(path string) (*CSVLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create session log: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(Header); err != nil {
		file.Close()
		return nil, fmt.Errorf("write session log header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("flush session log header: %w", err)
	}

	return &CSVLog{file: file, writer: writer, path: path}, nil
}

// Path returns the location of the log file.
func (l *CSVLog) Path() string {
	return l.path
}

// Append writes one sample row and flushes it.
func (l *CSVLog) Append(sample domain.StatsSample, connectionRate float64, uniqueDevices int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	row := []string{
		sample.Timestamp.Format(timestampLayout),
		strconv.Itoa(sample.Connected),
		strconv.Itoa(sample.Nearby),
		strconv.Itoa(sample.TotalProbes),
		strconv.Itoa(sample.TotalConnections),
		strconv.FormatFloat(connectionRate, 'f', 1, 64),
		strconv.Itoa(uniqueDevices),
	}
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("write session log row: %w", err)
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("flush session log row: %w", err)
	}
	return nil
}

// Close flushes pending data and closes the file. Close is idempotent.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("flush session log: %w", err)
	}
	return l.file.Close()
}
