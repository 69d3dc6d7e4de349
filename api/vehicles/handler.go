// Package vehicles exposes compliance status and evaluation over HTTP.
package vehicles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
	coremqtt "github.com/kilianp07/tacho/core/mqtt"
	"github.com/kilianp07/tacho/core/shift"
	"github.com/kilianp07/tacho/core/status"
	"github.com/kilianp07/tacho/core/timeline"
)

// Service is the part of the recorder service used by the handlers.
type Service interface {
	Evaluate(ctx context.Context, vehicleID string, slot model.Slot, at time.Time, crew bool) (compliance.Report, error)
	ApplyBoundary(vehicleID string, msg coremqtt.BoundaryMessage) (shift.Event, error)
	Reset(vehicleID string, slots ...model.Slot) error
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter mounts the vehicle routes under /api/vehicles. Requests must carry
// "Authorization: Bearer <token>" when token is non-empty.
func NewRouter(svc Service, store status.Store, token string) http.Handler {
	h := &handler{svc: svc, store: store}
	r := chi.NewRouter()
	r.Use(bearer(token))
	r.Route("/api/vehicles", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}/compliance", h.compliance)
		r.Post("/{id}/boundary", h.boundary)
		r.Post("/{id}/reset", h.reset)
	})
	return r
}

type handler struct {
	svc   Service
	store status.Store
}

func bearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// list serves GET /api/vehicles?state=&crew=.
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	f := status.Filter{State: status.State(r.URL.Query().Get("state"))}
	if c := r.URL.Query().Get("crew"); c != "" {
		v, err := strconv.ParseBool(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "crew must be a boolean")
			return
		}
		f.Crew = &v
	}
	writeJSON(w, http.StatusOK, h.store.List(f))
}

// compliance serves GET /api/vehicles/{id}/compliance?slot=&at=&crew=.
func (h *handler) compliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	slot := model.Driver1
	if s := q.Get("slot"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "slot must be 1 or 2")
			return
		}
		slot = model.Slot(n)
	}
	at := time.Now().UTC()
	if s := q.Get("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "at must be RFC3339")
			return
		}
		at = t
	}
	crew := false
	if s := q.Get("crew"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "crew must be a boolean")
			return
		}
		crew = v
	}
	rep, err := h.svc.Evaluate(r.Context(), id, slot, at, crew)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// boundary serves POST /api/vehicles/{id}/boundary.
func (h *handler) boundary(w http.ResponseWriter, r *http.Request) {
	var msg coremqtt.BoundaryMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	ev, err := h.svc.ApplyBoundary(chi.URLParam(r, "id"), msg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ev)
}

// reset serves POST /api/vehicles/{id}/reset?slot=.
func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	var slots []model.Slot
	if s := r.URL.Query().Get("slot"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "slot must be 1 or 2")
			return
		}
		slots = append(slots, model.Slot(n))
	}
	if err := h.svc.Reset(chi.URLParam(r, "id"), slots...); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "invalid_slot", err.Error())
	case errors.Is(err, model.ErrUnsupportedBoundary):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, timeline.ErrUnknownVehicle):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, struct {
		Error errorBody `json:"error"`
	}{errorBody{Code: kind, Message: msg}})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
