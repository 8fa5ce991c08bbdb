package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/forecast"
	"github.com/lcalzada-xor/crowdwatch/internal/core/services/reporting"
)

const defaultForecastHorizon = 12

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.Provider.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		domain.SessionSnapshot
		UniqueDevices int  `json:"unique_devices"`
		Stale         bool `json:"stale"`
	}{
		SessionSnapshot: snap,
		UniqueDevices:   snap.UniqueDevices(),
		Stale:           snap.IsStale(StaleTTL),
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	snap := s.Provider.Snapshot()

	devices := make([]domain.DeviceRecord, 0, len(snap.Devices))
	for _, rec := range snap.Devices {
		devices = append(devices, rec)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].LastSeen.After(devices[j].LastSeen)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(devices),
		"devices": devices,
	})
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	mac := strings.ToUpper(mux.Vars(r)["mac"])

	snap := s.Provider.Snapshot()
	rec, ok := snap.Devices[mac]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("device %s not seen this session", mac))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.Builder.Build(s.Provider.Snapshot())

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, report)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, reporting.RenderText(report))
	case "pdf":
		data, err := s.PDF.Export(report)
		if err != nil {
			slog.Error("pdf export", "error", err)
			writeError(w, http.StatusInternalServerError, "pdf generation failed")
			return
		}
		filename := fmt.Sprintf("crowdwatch_report_%s.pdf", time.Now().Format("20060102_150405"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "unknown format, expected json, text or pdf")
	}
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	horizon := defaultForecastHorizon
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "horizon must be a positive integer")
			return
		}
		horizon = v
	}

	snap := s.Provider.Snapshot()
	series := make([]float64, len(snap.History))
	for i, sample := range snap.History {
		series[i] = float64(sample.TotalDevices())
	}

	preds, err := s.Forecaster.FitPredict(series, horizon)
	if errors.Is(err, forecast.ErrInsufficientData) {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("need at least %d samples, have %d", forecast.MinSamples, len(series)))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "forecast failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples":   len(series),
		"horizon":   horizon,
		"predicted": preds,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
