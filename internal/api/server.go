package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/pipeline"
	"github.com/venuepulse/sentiment-engine/internal/quality"
	"github.com/venuepulse/sentiment-engine/internal/store"
)

// Server exposes the analytics read paths and job control over HTTP.
type Server struct {
	config       *config.Config
	mentions     store.MentionStore
	history      *quality.History
	orchestrator *pipeline.Orchestrator
	started      time.Time
}

func NewServer(cfg *config.Config, mentions store.MentionStore,
	history *quality.History, orchestrator *pipeline.Orchestrator) *Server {
	return &Server{
		config:       cfg,
		mentions:     mentions,
		history:      history,
		orchestrator: orchestrator,
		started:      time.Now().UTC(),
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/summary", s.handleSummary).Methods("GET")
	apiRouter.HandleFunc("/trends", s.handleTrends).Methods("GET")
	apiRouter.HandleFunc("/compare", s.handleCompare).Methods("POST")
	apiRouter.HandleFunc("/quality", s.handleQuality).Methods("GET")
	apiRouter.HandleFunc("/jobs", s.handleSubmitJob).Methods("POST")
	apiRouter.HandleFunc("/jobs", s.handleListJobs).Methods("GET")
	apiRouter.HandleFunc("/jobs/{id}", s.handleJobStatus).Methods("GET")
	apiRouter.HandleFunc("/jobs/{id}", s.handleCancelJob).Methods("DELETE")

	return router
}

// HTTPServer wraps the router with the standard timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	count, err := s.mentions.Count(r.Context())
	if err != nil {
		logrus.Errorf("Counting mentions for metrics: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read metrics")
		return
	}

	metrics := map[string]interface{}{
		"mentions_stored": count,
		"jobs_known":      len(s.orchestrator.List()),
		"uptime":          time.Since(s.started).Round(time.Second).String(),
	}
	if snap, ok := s.history.Latest(); ok {
		metrics["last_quality_score"] = snap.QualityScore
		metrics["last_run_at"] = snap.ProcessedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, metrics)
}
