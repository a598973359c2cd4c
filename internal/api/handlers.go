package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/venuepulse/sentiment-engine/internal/analytics"
	"github.com/venuepulse/sentiment-engine/internal/pipeline"
	"github.com/venuepulse/sentiment-engine/internal/store"
)

const defaultPeriodDays = 30

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	mentions, err := s.mentions.Query(r.Context(), store.Filter{})
	if err != nil {
		logrus.Errorf("Querying mentions for summary: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load mentions")
		return
	}

	var dataQuality *float64
	if snap, ok := s.history.Latest(); ok {
		dataQuality = &snap.QualityScore
	}

	writeJSON(w, http.StatusOK, analytics.Summary(mentions, dataQuality, time.Now().UTC()))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	entities := splitParam(r.URL.Query().Get("bars"))
	granularity := r.URL.Query().Get("granularity")
	if granularity == "" {
		granularity = analytics.GranularityDaily
	}

	periodDays, err := intParam(r, "period", defaultPeriodDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mentions, err := s.mentions.Query(r.Context(), store.Filter{Entities: entities})
	if err != nil {
		logrus.Errorf("Querying mentions for trends: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load mentions")
		return
	}

	report, err := analytics.TrendReport(mentions, entities, periodDays, granularity, time.Now().UTC())
	if err != nil {
		writeAnalyticsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type compareRequest struct {
	Entities   []string `json:"bars"`
	Metrics    []string `json:"metrics"`
	WindowDays int      `json:"analysis_period"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WindowDays == 0 {
		req.WindowDays = defaultPeriodDays
	}

	mentions, err := s.mentions.Query(r.Context(), store.Filter{Entities: req.Entities})
	if err != nil {
		logrus.Errorf("Querying mentions for comparison: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load mentions")
		return
	}

	result, err := analytics.Compare(mentions, req.Entities, req.Metrics, req.WindowDays, time.Now().UTC())
	if err != nil {
		writeAnalyticsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": s.history.Recent(limit),
	})
}

type submitJobRequest struct {
	BatchSelector string `json:"batch_selector"`
	Mode          string `json:"mode"`
	Priority      string `json:"priority"`
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mode != "" && req.Mode != pipeline.ModeBasic && req.Mode != pipeline.ModeFull {
		writeError(w, http.StatusBadRequest, "mode must be \"basic\" or \"full\"")
		return
	}

	job, err := s.orchestrator.Submit(req.BatchSelector, req.Mode, req.Priority)
	if err != nil {
		if errors.Is(err, pipeline.ErrBatchBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		logrus.Errorf("Submitting job: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit job")
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": s.orchestrator.List(),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.orchestrator.Status(mux.Vars(r)["id"])
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.orchestrator.Cancel(mux.Vars(r)["id"])
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeAnalyticsError(w http.ResponseWriter, err error) {
	if errors.Is(err, analytics.ErrInvalidParameters) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logrus.Errorf("Analytics request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "analytics request failed")
}

func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, pipeline.ErrJobTerminal):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logrus.Errorf("Job request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "job request failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return value, nil
}
