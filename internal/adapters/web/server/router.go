package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices/{mac}", s.handleDevice).Methods(http.MethodGet)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
