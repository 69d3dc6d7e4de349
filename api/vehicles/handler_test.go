package vehicles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
	coremqtt "github.com/kilianp07/tacho/core/mqtt"
	"github.com/kilianp07/tacho/core/shift"
	"github.com/kilianp07/tacho/core/status"
	"github.com/kilianp07/tacho/core/timeline"
)

type fakeService struct {
	slot     model.Slot
	at       time.Time
	crew     bool
	boundary coremqtt.BoundaryMessage
	reset    []model.Slot
}

func (f *fakeService) Evaluate(_ context.Context, id string, slot model.Slot, at time.Time, crew bool) (compliance.Report, error) {
	if id == "ghost" {
		return compliance.Report{}, fmt.Errorf("evaluate %s: %w", id, timeline.ErrUnknownVehicle)
	}
	if err := slot.Validate(); err != nil {
		return compliance.Report{}, err
	}
	f.slot, f.at, f.crew = slot, at, crew
	return compliance.Report{VehicleID: id, Slot: slot, At: at, Crew: crew, RemainingDriving: time.Hour}, nil
}

func (f *fakeService) ApplyBoundary(id string, msg coremqtt.BoundaryMessage) (shift.Event, error) {
	if err := msg.Slot.Validate(); err != nil {
		return shift.Event{}, err
	}
	if msg.Activity == model.BoundaryOther {
		return shift.Event{}, fmt.Errorf("%w: %s", model.ErrUnsupportedBoundary, msg.Activity)
	}
	f.boundary = msg
	return shift.Event{ID: "e1", VehicleID: id, Slot: msg.Slot, Activity: msg.Activity, At: msg.At, Logged: true}, nil
}

func (f *fakeService) Reset(_ string, slots ...model.Slot) error {
	f.reset = slots
	return nil
}

func serve(t *testing.T, h http.Handler, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListVehicles(t *testing.T) {
	store := status.NewMemoryStore()
	store.RecordReport(compliance.Report{VehicleID: "v1", Slot: model.Driver1, BlockRemaining: time.Hour})
	store.RecordReport(compliance.Report{VehicleID: "v2", Slot: model.Driver1, WeekExceeded: true, BlockRemaining: time.Hour})
	h := NewRouter(&fakeService{}, store, "")

	rr := serve(t, h, http.MethodGet, "/api/vehicles", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []status.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Len(t, out, 2)

	rr = serve(t, h, http.MethodGet, "/api/vehicles?state=exceeded", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	if len(out) != 1 || out[0].VehicleID != "v2" {
		t.Fatalf("unexpected filter result %#v", out)
	}
}

func TestListVehiclesEmpty(t *testing.T) {
	h := NewRouter(&fakeService{}, status.NewMemoryStore(), "")
	rr := serve(t, h, http.MethodGet, "/api/vehicles", "")
	require.Equal(t, http.StatusOK, rr.Code)
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
}

func TestComplianceQuery(t *testing.T) {
	svc := &fakeService{}
	h := NewRouter(svc, status.NewMemoryStore(), "")
	rr := serve(t, h, http.MethodGet, "/api/vehicles/truck-1/compliance?slot=2&at=2024-03-04T10:00:00Z&crew=true", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.Driver2, svc.slot)
	assert.True(t, svc.crew)
	assert.True(t, svc.at.Equal(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)))

	var rep compliance.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, "truck-1", rep.VehicleID)
	assert.Equal(t, time.Hour, rep.RemainingDriving)
}

func TestComplianceErrors(t *testing.T) {
	h := NewRouter(&fakeService{}, status.NewMemoryStore(), "")
	cases := map[string]int{
		"/api/vehicles/truck-1/compliance?slot=3":       http.StatusBadRequest,
		"/api/vehicles/truck-1/compliance?slot=x":       http.StatusBadRequest,
		"/api/vehicles/truck-1/compliance?at=yesterday": http.StatusBadRequest,
		"/api/vehicles/truck-1/compliance?crew=maybe":   http.StatusBadRequest,
		"/api/vehicles/ghost/compliance":                http.StatusNotFound,
	}
	for target, code := range cases {
		rr := serve(t, h, http.MethodGet, target, "")
		if rr.Code != code {
			t.Errorf("%s: status %d want %d", target, rr.Code, code)
		}
	}
}

func TestPostBoundary(t *testing.T) {
	svc := &fakeService{}
	h := NewRouter(svc, status.NewMemoryStore(), "")
	rr := serve(t, h, http.MethodPost, "/api/vehicles/truck-1/boundary", `{"slot":1,"activity":"START_COUNTRY","at":"2024-03-04T06:00:00Z"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, model.BoundaryStartCountry, svc.boundary.Activity)

	rr = serve(t, h, http.MethodPost, "/api/vehicles/truck-1/boundary", `{"slot":1,"activity":"SIDEWAYS"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, h, http.MethodPost, "/api/vehicles/truck-1/boundary", `{"slot":0,"activity":"END_COUNTRY"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, h, http.MethodPost, "/api/vehicles/truck-1/boundary", `{"slot":1,"activity":"OTHER","at":"2024-03-04T06:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"bad_request"`)
}

func TestPostReset(t *testing.T) {
	svc := &fakeService{}
	h := NewRouter(svc, status.NewMemoryStore(), "")
	rr := serve(t, h, http.MethodPost, "/api/vehicles/truck-1/reset?slot=2", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []model.Slot{model.Driver2}, svc.reset)
}

func TestBearerToken(t *testing.T) {
	h := NewRouter(&fakeService{}, status.NewMemoryStore(), "secret")
	rr := serve(t, h, http.MethodGet, "/api/vehicles", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = serve(t, h, http.MethodGet, "/api/vehicles", "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rr.Code)
}
