package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/claude/ironprogress/internal/journal"
	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/transfer"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.journal.Sessions()
	switch order := r.URL.Query().Get("order"); order {
	case "":
	case "asc":
		models.SortByDate(sessions, true)
	case "desc":
		models.SortByDate(sessions, false)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order must be asc or desc"})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.journal.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// logRequest is the body of POST /sessions. The id is always assigned by the server.
type logRequest struct {
	Title     string               `json:"title"`
	Date      models.Timestamp     `json:"date"`
	Exercises []models.ExerciseLog `json:"exercises"`
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	draft := journal.NewDraft(req.Title, req.Date.Time)
	draft.Exercises = req.Exercises
	session, err := s.journal.Log(r.Context(), draft, s.now())
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.journal.Remove(r.Context(), id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)

	switch format := r.URL.Query().Get("format"); format {
	case "alpha":
		if s.alpha == nil {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "alpha import not configured"})
			return
		}
		result, err := s.alpha.Ingest(r.Context(), body)
		if err != nil {
			s.log.Error("alpha import error", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	case "", "json":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown import format %q", format)})
		return
	}

	incoming, err := transfer.ReadSessions(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	added, err := s.journal.Import(r.Context(), incoming)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"received": len(incoming),
		"added":    added,
		"message":  fmt.Sprintf("Imported %d new workouts.", added),
	})
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := transfer.WriteJSON(&buf, s.journal.Sessions()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeAttachment(w, "application/json", transfer.ExportFileName("json", s.now().In(s.opts.Location)), buf.Bytes())
}

func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	ledger := transfer.Ledger(s.journal.Sessions(), s.opts.Location)
	writeAttachment(w, "text/plain; charset=utf-8", transfer.ExportFileName("text", s.now().In(s.opts.Location)), []byte(ledger))
}

// writeMutationError maps journal and validation errors to HTTP statuses.
func (s *Server) writeMutationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, journal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, journal.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInvalid), errors.Is(err, transfer.ErrMalformed):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("mutation failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, bytes.NewReader(body)) //nolint:errcheck
}
