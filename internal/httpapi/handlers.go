package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramyatawia/docflow-orchestrator/internal/job"
	"github.com/ramyatawia/docflow-orchestrator/internal/metrics"
)

type handlers struct {
	store   *job.Store
	metrics *metrics.Metrics
}

type submitRequest struct {
	Message         string            `json:"message"`
	DocumentContent string            `json:"document_content,omitempty"`
	ChatHistory     []job.HistoryTurn `json:"chat_history,omitempty"`
	JobType         string            `json:"job_type,omitempty"`
	SessionID       string            `json:"session_id,omitempty"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed submission body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}
	jobType := req.JobType
	if jobType == "" {
		jobType = "general_chat"
	}

	id, err := h.store.Submit(jobType, job.Request{
		Message:             req.Message,
		DocumentContent:     req.DocumentContent,
		ConversationHistory: req.ChatHistory,
		JobType:             jobType,
	}, req.SessionID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.RecordJobSubmitted(jobType)
	}
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: id})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	view, ok := h.store.Snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) result(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	result, ok := h.store.Result(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not completed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type cancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

func (h *handlers) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	writeJSON(w, http.StatusOK, cancelResponse{Cancelled: h.store.Cancel(id)})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	writeJSON(w, http.StatusOK, h.store.Stats(sessionID))
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	statusFilter := job.Status(r.URL.Query().Get("status"))
	sessionID := r.URL.Query().Get("session_id")
	writeJSON(w, http.StatusOK, h.store.List(limit, statusFilter, sessionID))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
