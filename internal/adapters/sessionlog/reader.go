package sessionlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Row is one decoded session log entry.
type Row struct {
	Timestamp        time.Time
	Connected        int
	Nearby           int
	TotalProbes      int
	TotalConnections int
	ConnectionRate   float64
	UniqueDevices    int
}

// TotalDevices returns the device count present at row time.
func (r Row) TotalDevices() int {
	return r.Connected + r.Nearby
}

// ReadFile loads a complete session log for offline analysis. The header
// row is validated by column count only, so logs from older builds with
// renamed headers still load.
func ReadFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer file.Close()

	return readAll(file)
}

func readAll(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("session log is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read session log header: %w", err)
	}
	if len(header) != len(Header) {
		return nil, fmt.Errorf("unexpected session log header: %v", header)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read session log line %d: %w", line, err)
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("session log line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (Row, error) {
	ts, err := time.Parse(timestampLayout, record[0])
	if err != nil {
		return Row{}, fmt.Errorf("timestamp: %w", err)
	}

	ints := make([]int, 0, 5)
	for _, idx := range []int{1, 2, 3, 4, 6} {
		v, err := strconv.Atoi(record[idx])
		if err != nil {
			return Row{}, fmt.Errorf("column %q: %w", Header[idx], err)
		}
		ints = append(ints, v)
	}

	rate, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return Row{}, fmt.Errorf("column %q: %w", Header[5], err)
	}

	return Row{
		Timestamp:        ts,
		Connected:        ints[0],
		Nearby:           ints[1],
		TotalProbes:      ints[2],
		TotalConnections: ints[3],
		ConnectionRate:   rate,
		UniqueDevices:    ints[4],
	}, nil
}
