package sessionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

func TestCSVLog_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	log, err := NewCSVLog(path)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 24, 14, 30, 5, 0, time.UTC)
	require.NoError(t, log.Append(domain.StatsSample{
		Timestamp:        ts,
		Connected:        3,
		Nearby:           7,
		TotalProbes:      50,
		TotalConnections: 10,
	}, 20.0, 12))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Timestamp,Connected,Nearby,Total_Probes,Total_Connections,Connection_Rate%,Unique_Devices", lines[0])
	assert.Equal(t, "2026-08-24 14:30:05,3,7,50,10,20.0,12", lines[1])
}

func TestCSVLog_RowVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	log, err := NewCSVLog(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append(domain.StatsSample{Timestamp: time.Now()}, 0, 0))

	// Rows are flushed per append, not buffered until Close.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestCSVLog_AppendAfterCloseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	log, err := NewCSVLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Close())
	require.NoError(t, log.Close(), "close is idempotent")

	err = log.Append(domain.StatsSample{Timestamp: time.Now()}, 0, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCSVLog_CloseRacingAppendsNeverTearsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	log, err := NewCSVLog(path)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
	done := make(chan int)
	go func() {
		written := 0
		for i := 0; i < 2000; i++ {
			err := log.Append(domain.StatsSample{
				Timestamp:        ts,
				Connected:        i,
				Nearby:           i,
				TotalProbes:      i * 10,
				TotalConnections: i,
			}, 10.0, i)
			if err != nil {
				break
			}
			written++
		}
		done <- written
	}()

	// Close mid-stream, as a shutdown does.
	time.Sleep(time.Millisecond)
	require.NoError(t, log.Close())
	written := <-done

	// Every acknowledged row is on disk, whole.
	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, written)
	for i, row := range rows {
		assert.Equal(t, i, row.Connected)
		assert.Equal(t, i*10, row.TotalProbes)
	}
}

func TestReadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	log, err := NewCSVLog(path)
	require.NoError(t, err)

	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, log.Append(domain.StatsSample{
			Timestamp:        base.Add(time.Duration(i) * time.Minute),
			Connected:        i,
			Nearby:           i * 2,
			TotalProbes:      10 * (i + 1),
			TotalConnections: 2 * (i + 1),
		}, 20.0, i+1))
	}
	require.NoError(t, log.Close())

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, base, rows[0].Timestamp)
	assert.Equal(t, 2, rows[2].Connected)
	assert.Equal(t, 4, rows[2].Nearby)
	assert.Equal(t, 6, rows[2].TotalDevices())
	assert.Equal(t, 30, rows[2].TotalProbes)
	assert.Equal(t, 20.0, rows[2].ConnectionRate)
	assert.Equal(t, 3, rows[2].UniqueDevices)
}

func TestReadFile_RejectsMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	content := strings.Join(Header, ",") + "\n" +
		"not-a-timestamp,1,2,3,4,5.0,6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ReadFile(path)
	assert.Error(t, err)
}
