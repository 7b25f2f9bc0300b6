package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/snapshot"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

var okBody = struct {
	OK bool `json:"ok"`
}{OK: true}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var sig models.PageSignal
	if err := decode(w, r, &sig); err != nil {
		s.writeError(w, r, err)
		return
	}
	sig.TabID = tabID

	snap, err := s.svc.HandlePageSignal(r.Context(), sig)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.svc.Snapshot(r.Context(), tabID)
	if err == nil && snap == nil {
		err = snapshot.ErrNoSnapshot
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	res, err := s.svc.RequestEnrichment(r.Context(), tabID, force)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleApplyAI(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var result models.AIResult
	if err := decode(w, r, &result); err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, analytics, err := s.svc.ApplyAIEnrichment(r.Context(), tabID, result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Snapshot  *models.PageSnapshot     `json:"snapshot"`
		Analytics models.CategoryAnalytics `json:"analytics"`
	}{snap, analytics})
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Visible == nil {
		s.writeError(w, r, fmt.Errorf("%w: visible is required", errBadRequest))
		return
	}

	if err := s.svc.VisibilityChanged(r.Context(), tabID, *body.Visible); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Compare(r.Context(), tabID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTabClosed(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.TabClosed(r.Context(), tabID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	coach, _ := strconv.ParseBool(r.URL.Query().Get("coach"))
	d, err := s.svc.Dashboard(r.Context(), coach)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleEvents streams every snapshot update as an SSE "snapshot" event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, errors.New("streaming unsupported"))
		return
	}
	updates, cancel := s.svc.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				s.logger.Error("failed to encode update", "tab_id", u.TabID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func tabIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "tabID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: invalid tab id %q", errBadRequest, raw)
	}
	return id, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps NO_SNAPSHOT to 404, bad input to 400 and the rest to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		writeJSON(w, http.StatusNotFound, errorBody{Error: snapshot.ErrNoSnapshot.Error()})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
