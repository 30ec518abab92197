package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/focusforge/internal/analysis"
	gormstore "github.com/thebtf/focusforge/internal/db/gorm"
	"github.com/thebtf/focusforge/internal/journal"
	"github.com/thebtf/focusforge/internal/planner"
	"github.com/thebtf/focusforge/internal/worker/sdk"
	"github.com/thebtf/focusforge/internal/worker/sse"
	"github.com/thebtf/focusforge/pkg/models"
)

const (
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes = 4 << 20

	// MaxEventsPerRequest caps a single append batch.
	MaxEventsPerRequest = 5000
)

type createSessionRequest struct {
	IntentRaw  string   `json:"intent_raw"`
	IntentTags []string `json:"intent_tags"`
}

type appendEventsRequest struct {
	Events []models.Event `json:"events"`
}

type endSessionRequest struct {
	EndedAt int64                `json:"ended_at"`
	Status  models.SessionStatus `json:"status"`
}

// computeRequest is a stateless summary request. It mirrors the CLI's
// compute input.
type computeRequest struct {
	Analysis *models.AnalysisResult `json:"analysis"`
	Session  models.Session         `json:"session"`
	Events   []models.Event         `json:"events"`
}

// handleHealth reports liveness and a few gauges.
func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "starting"
	if s.ready.Load() {
		status = "ready"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"version":        s.version,
		"uptime":         time.Since(s.startTime).Round(time.Second).String(),
		"activeSessions": s.sessionManager.GetActiveSessionCount(),
		"sseClients":     s.sseBroadcaster.ClientCount(),
	})
}

// handleReady returns 503 until the worker has finished starting.
func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, "service not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Service) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// requireReady rejects API calls until the worker is ready.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeError(w, http.StatusServiceUnavailable, "service not ready")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.sessionStore.CreateSession(r.Context(), strings.TrimSpace(req.IntentRaw), req.IntentTags)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.sessionManager.Touch(sess.ID, sess.StartedAt)
	s.sseBroadcaster.Publish(sse.Event{Type: sse.EventSessionCreated, SessionID: sess.ID, Data: sess})

	log.Info().
		Str("session", sess.ID).
		Strs("tags", sess.IntentTags).
		Msg("Session started")

	writeJSON(w, http.StatusCreated, sess)
}

func (s *Service) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := gormstore.ParseLimitParam(r, gormstore.DefaultListLimit)
	sessions, err := s.sessionStore.ListSessions(r.Context(), limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Service) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionStore.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Service) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessionStore.DeleteSession(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	s.sessionManager.Forget(id)
	s.sseBroadcaster.Publish(sse.Event{Type: sse.EventSessionDeleted, SessionID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAppendEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req appendEventsRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Events) > MaxEventsPerRequest {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("at most %d events per request", MaxEventsPerRequest))
		return
	}

	var latest int64
	for i, ev := range req.Events {
		if err := ev.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("event %d: %v", i, err))
			return
		}
		if ev.TS > latest {
			latest = ev.TS
		}
	}

	n, err := s.sessionStore.AppendEvents(r.Context(), id, req.Events)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if n > 0 {
		s.sessionManager.Touch(id, latest)
		s.sseBroadcaster.Publish(sse.Event{
			Type:      sse.EventEventsAppended,
			SessionID: id,
			Data:      map[string]int{"count": n},
		})
	}

	writeJSON(w, http.StatusOK, map[string]int{"appended": n})
}

func (s *Service) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req endSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = models.SessionStatusEnded
	}

	sess, err := s.sessionStore.EndSession(r.Context(), id, req.EndedAt, req.Status)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.sessionManager.Forget(id)
	s.sseBroadcaster.Publish(sse.Event{Type: sse.EventSessionEnded, SessionID: id, Data: sess})

	log.Info().Str("session", id).Str("status", string(sess.Status)).Msg("Session ended")
	writeJSON(w, http.StatusOK, sess)
}

// handlePutAnalysis stores an analyzer payload. The body is the analyzer's
// raw output; markdown code fences around the JSON are tolerated.
func (s *Service) handlePutAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	res, err := analysis.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	sess, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if err := s.sessionStore.SaveAnalysis(ctx, id, res); err != nil {
		s.storeError(w, err)
		return
	}
	if sess.Status == models.SessionStatusEnded || sess.Status == models.SessionStatusAutoEnded {
		if err := s.sessionStore.MarkAnalyzed(ctx, id); err != nil {
			s.storeError(w, err)
			return
		}
	}
	s.sseBroadcaster.Publish(sse.Event{Type: sse.EventSessionAnalyzed, SessionID: id})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.computeSummary(r.Context(), s.sessionStore, chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Service) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	sum, err := s.computeSummary(r.Context(), s.sessionStore, chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, journal.Render(sum))
}

// handleGetPrompt returns the prompt an external analyzer should answer.
func (s *Service) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	sum, err := s.computeSummary(r.Context(), s.sessionStore, chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	prompt, err := sdk.BuildAnalysisPrompt(sum)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, prompt)
}

// handleGetPlan returns the deterministic task plan for a session.
func (s *Service) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	sum, err := s.computeSummary(r.Context(), s.sessionStore, chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, planner.BasicPlan(&sum.Narrative))
}

// handleCompute summarizes a session supplied in the request body without
// touching the store.
func (s *Service) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i, ev := range req.Events {
		if err := ev.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("event %d: %v", i, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Engine().Compute(req.Session, req.Events, req.Analysis))
}

func (s *Service) handleTaxonomy(w http.ResponseWriter, _ *http.Request) {
	data, err := s.Engine().Taxonomy().Marshal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

// computeSummary loads a session and runs it through the current engine.
func (s *Service) computeSummary(ctx context.Context, src SessionSource, id string) (*models.ComputedSummary, error) {
	sess, err := src.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := src.GetEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := src.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Engine().Compute(*sess, events, res), nil
}

// storeError maps store errors to HTTP responses.
func (s *Service) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gormstore.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gormstore.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("Store operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON request body. With allowEmpty, a missing body
// leaves dst untouched.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		if allowEmpty {
			return nil
		}
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
