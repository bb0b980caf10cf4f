package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"climate-gateway/internal/modules/climate/service"
	"climate-gateway/internal/modules/climate/types"
	"climate-gateway/internal/modules/climate/views"
)

func f(v float64) *float64 { return &v }

type mockService struct {
	precipitation []types.Precipitation
	stations      []string
	observations  []types.Observation
	summary       []types.Summary
	err           error

	gotStart, gotEnd string
}

func (m *mockService) Precipitation(context.Context) ([]types.Precipitation, error) {
	return m.precipitation, m.err
}

func (m *mockService) Stations(context.Context) ([]string, error) {
	return m.stations, m.err
}

func (m *mockService) Temperatures(context.Context) ([]types.Observation, error) {
	return m.observations, m.err
}

func (m *mockService) SummaryFrom(_ context.Context, start string) ([]types.Summary, error) {
	m.gotStart = start
	return m.summary, m.err
}

func (m *mockService) SummaryRange(_ context.Context, start, end string) ([]types.Summary, error) {
	m.gotStart, m.gotEnd = start, end
	return m.summary, m.err
}

func serve(t *testing.T, svc service.ClimateService, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewClimateController(svc).RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func Test_handleWelcome(t *testing.T) {
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	rec := serve(t, &mockService{}, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, path := range []string{
		"/api/v1.0/precipitation",
		"/api/v1.0/stations",
		"/api/v1.0/temperatures",
		"/api/v1.0/start/{start}",
		"/api/v1.0/start_end/{start}/{end}",
	} {
		if !strings.Contains(body, path) {
			t.Errorf("welcome page missing %q", path)
		}
	}
	if strings.Contains(body, "{$}") {
		t.Error("welcome page lists itself")
	}
}

func Test_handleWelcome_onlyExactRoot(t *testing.T) {
	rec := serve(t, &mockService{}, http.MethodGet, "/api")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func Test_handlePrecipitation(t *testing.T) {
	svc := &mockService{precipitation: []types.Precipitation{
		{Date: "2016-08-23", Prcp: f(0.08)},
		{Date: "2016-08-24", Prcp: nil},
	}}
	rec := serve(t, svc, http.MethodGet, "/api/v1.0/precipitation")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	got := decode[[]map[string]any](t, rec)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0]["date"] != "2016-08-23" || got[0]["prcp"] != 0.08 {
		t.Errorf("record[0] = %v", got[0])
	}
	if v, ok := got[1]["prcp"]; !ok || v != nil {
		t.Errorf("record[1].prcp = %v (present=%v), want explicit null", v, ok)
	}
}

func Test_handleStations(t *testing.T) {
	svc := &mockService{stations: []string{"USC00519397", "USC00513117"}}
	rec := serve(t, svc, http.MethodGet, "/api/v1.0/stations")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	got := decode[[]string](t, rec)
	if len(got) != 2 || got[0] != "USC00519397" {
		t.Errorf("stations = %v", got)
	}
}

func Test_handleStations_empty(t *testing.T) {
	rec := serve(t, &mockService{stations: []string{}}, http.MethodGet, "/api/v1.0/stations")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q; want []", rec.Body.String())
	}
}

func Test_handleTemperatures(t *testing.T) {
	svc := &mockService{observations: []types.Observation{
		{Date: "2016-08-23", Tobs: 77, Station: "USC00519281"},
	}}
	rec := serve(t, svc, http.MethodGet, "/api/v1.0/temperatures")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	got := decode[[]map[string]any](t, rec)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	want := map[string]any{"date": "2016-08-23", "tobs": 77.0, "station": "USC00519281"}
	for k, v := range want {
		if got[0][k] != v {
			t.Errorf("%s = %v; want %v", k, got[0][k], v)
		}
	}
}

func Test_handleSummary(t *testing.T) {
	summary := []types.Summary{{Min: f(58), Average: f(74.59), Max: f(87)}}

	tests := []struct {
		name      string
		target    string
		svc       *mockService
		wantCode  int
		wantStart string
		wantEnd   string
		wantError string
	}{
		{
			name:      "start ok",
			target:    "/api/v1.0/start/2016-08-23",
			svc:       &mockService{summary: summary},
			wantCode:  http.StatusOK,
			wantStart: "2016-08-23",
		},
		{
			name:      "start_end ok",
			target:    "/api/v1.0/start_end/2016-08-23/2017-08-23",
			svc:       &mockService{summary: summary},
			wantCode:  http.StatusOK,
			wantStart: "2016-08-23",
			wantEnd:   "2017-08-23",
		},
		{
			name:   "range error is 404 with message",
			target: "/api/v1.0/start/2009-01-01",
			svc: &mockService{err: &service.RangeError{
				Reason:  service.ReasonTooEarly,
				Message: "Date 2009-01-01 is too early, our records begin 2010-01-01.",
			}},
			wantCode:  http.StatusNotFound,
			wantStart: "2009-01-01",
			wantError: "Date 2009-01-01 is too early, our records begin 2010-01-01.",
		},
		{
			name:   "wrapped range error still 404",
			target: "/api/v1.0/start_end/2016-08-23/2020-01-01",
			svc: &mockService{err: errors.Join(errors.New("ctx"), &service.RangeError{
				Reason:  service.ReasonTooRecent,
				Message: "Date 2020-01-01 is too recent, our records end 2017-08-23.",
			})},
			wantCode:  http.StatusNotFound,
			wantStart: "2016-08-23",
			wantEnd:   "2020-01-01",
			wantError: "Date 2020-01-01 is too recent, our records end 2017-08-23.",
		},
		{
			name:      "store failure is 500",
			target:    "/api/v1.0/start/2016-08-23",
			svc:       &mockService{err: errors.New("database is locked")},
			wantCode:  http.StatusInternalServerError,
			wantStart: "2016-08-23",
			wantError: http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.svc, http.MethodGet, tt.target)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d (body %q)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.svc.gotStart != tt.wantStart || tt.svc.gotEnd != tt.wantEnd {
				t.Errorf("service got (%q, %q); want (%q, %q)", tt.svc.gotStart, tt.svc.gotEnd, tt.wantStart, tt.wantEnd)
			}
			if tt.wantError != "" {
				got := decode[map[string]any](t, rec)
				if got["error"] != tt.wantError {
					t.Errorf("error = %v; want %q", got["error"], tt.wantError)
				}
				return
			}
			got := decode[[]map[string]*float64](t, rec)
			if len(got) != 1 {
				t.Fatalf("got %d summaries, want 1", len(got))
			}
			for _, k := range []string{"min", "average", "max"} {
				if got[0][k] == nil {
					t.Errorf("%s missing", k)
				}
			}
		})
	}
}

func Test_handleStations_storeFailure(t *testing.T) {
	rec := serve(t, &mockService{err: errors.New("no such table: station")}, http.MethodGet, "/api/v1.0/stations")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "no such table") {
		t.Errorf("internal error leaked to client: %q", rec.Body.String())
	}
}

func TestRoutes_methodsAndUnknownPaths(t *testing.T) {
	tests := []struct {
		method, target string
		want           int
	}{
		{http.MethodPost, "/api/v1.0/stations", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/v1.0/start/2016-08-23", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1.0/start_end/2016-08-23", http.StatusNotFound},
		{http.MethodGet, "/api/v2.0/stations", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(t, &mockService{}, tt.method, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d; want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRoutes_tableIsComplete(t *testing.T) {
	ctrl := NewClimateController(&mockService{}).(*climateControllerImpl)
	seen := map[string]bool{}
	for _, rt := range ctrl.routes() {
		if rt.method != http.MethodGet {
			t.Errorf("%s: method %s; want GET", rt.path, rt.method)
		}
		if rt.handler == nil {
			t.Errorf("%s: nil handler", rt.path)
		}
		if seen[rt.pattern()] {
			t.Errorf("duplicate pattern %q", rt.pattern())
		}
		seen[rt.pattern()] = true
	}
	if len(seen) != 6 {
		t.Errorf("routes = %d; want 6", len(seen))
	}
}
