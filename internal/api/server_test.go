package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lox/astrometer/internal/calibration"
	"github.com/lox/astrometer/internal/chart"
	"github.com/lox/astrometer/internal/meters"
	"github.com/lox/astrometer/internal/narrative"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	r, err := meters.NewRegistry(meters.DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	labels, err := meters.LoadLabels(r)
	if err != nil {
		t.Fatal(err)
	}
	engine := meters.NewEngine(r, labels, nil)
	return NewServer(engine, nil, &calibration.Set{}, "0")
}

func testNatal() *chart.NatalChart {
	positions := []chart.Position{
		{Planet: chart.Sun, Longitude: 5, House: 1},
		{Planet: chart.Moon, Longitude: 95, House: 4},
		{Planet: chart.Mercury, Longitude: 20, House: 1},
		{Planet: chart.Venus, Longitude: 40, House: 2},
		{Planet: chart.Mars, Longitude: 125, House: 5},
		{Planet: chart.Jupiter, Longitude: 185, House: 7},
		{Planet: chart.Saturn, Longitude: 275, House: 10},
	}
	for i := range positions {
		positions[i].Sign = chart.SignFromLongitude(positions[i].Longitude)
	}
	return &chart.NatalChart{Positions: positions, AscendantSign: chart.Aries, AscendantKnown: true}
}

func testTransit() *chart.TransitChart {
	positions := []chart.Position{
		{Planet: chart.Sun, Longitude: 95},
		{Planet: chart.Moon, Longitude: 185},
		{Planet: chart.Mercury, Longitude: 110, Retrograde: true},
		{Planet: chart.Mars, Longitude: 5},
		{Planet: chart.Saturn, Longitude: 155},
	}
	for i := range positions {
		positions[i].Sign = chart.SignFromLongitude(positions[i].Longitude)
	}
	return &chart.TransitChart{
		Date:      time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		Positions: positions,
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	handler := testServer(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["registry_version"] != "v2" {
		t.Errorf("registry_version = %v", body["registry_version"])
	}
}

func TestMetersEndpoint(t *testing.T) {
	handler := testServer(t).Handler()

	w := postJSON(t, handler, "/api/meters", MetersRequest{
		Natal:   testNatal(),
		Transit: testTransit(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var day meters.DayReading
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatal(err)
	}
	if len(day.Meters) != 16 {
		t.Errorf("got %d meters, want 16", len(day.Meters))
	}
	if len(day.Groups) != 5 {
		t.Errorf("got %d groups, want 5", len(day.Groups))
	}
}

func TestMetersEndpointErrors(t *testing.T) {
	handler := testServer(t).Handler()

	tests := []struct {
		name       string
		method     string
		body       interface{}
		wantStatus int
	}{
		{name: "get not allowed", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "missing natal", method: http.MethodPost,
			body: MetersRequest{Transit: testTransit()}, wantStatus: http.StatusBadRequest},
		{name: "no transit and no chart service", method: http.MethodPost,
			body: MetersRequest{Natal: testNatal(), Date: "2026-08-25"}, wantStatus: http.StatusBadRequest},
		{name: "invalid chart", method: http.MethodPost,
			body: MetersRequest{
				Natal: &chart.NatalChart{Positions: []chart.Position{
					{Planet: chart.Sun, Longitude: 400},
				}},
				Transit: testTransit(),
			}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.method == http.MethodGet {
				req := httptest.NewRequest(http.MethodGet, "/api/meters", nil)
				w = httptest.NewRecorder()
				handler.ServeHTTP(w, req)
			} else {
				w = postJSON(t, handler, "/api/meters", tt.body)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/meters", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", w.Code)
		}
	})
}

func TestFeaturedEndpoint(t *testing.T) {
	handler := testServer(t).Handler()

	req := FeaturedRequest{
		UserID: "user_42",
		Date:   "2026-08-25",
		Meters: []MeterScoreInput{
			{MeterID: "focus", Score: 82},
			{MeterID: "energy", Score: 77},
			{MeterID: "finances", Score: 18},
		},
	}
	w := postJSON(t, handler, "/api/featured", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var sel narrative.Selection
	if err := json.Unmarshal(w.Body.Bytes(), &sel); err != nil {
		t.Fatal(err)
	}
	if len(sel.Featured) < 1 || len(sel.Featured) > 2 {
		t.Errorf("featured %d meters", len(sel.Featured))
	}

	// Same request, same selection.
	second := postJSON(t, handler, "/api/featured", req)
	if w.Body.String() != second.Body.String() {
		t.Error("identical requests produced different selections")
	}
}

func TestFeaturedEndpointErrors(t *testing.T) {
	handler := testServer(t).Handler()

	tests := []struct {
		name string
		body FeaturedRequest
	}{
		{name: "missing user", body: FeaturedRequest{Date: "2026-08-25",
			Meters: []MeterScoreInput{{MeterID: "focus", Score: 50}}}},
		{name: "missing date", body: FeaturedRequest{UserID: "u",
			Meters: []MeterScoreInput{{MeterID: "focus", Score: 50}}}},
		{name: "no meters", body: FeaturedRequest{UserID: "u", Date: "2026-08-25"}},
		{name: "unknown meter", body: FeaturedRequest{UserID: "u", Date: "2026-08-25",
			Meters: []MeterScoreInput{{MeterID: "vibes", Score: 50}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postJSON(t, handler, "/api/featured", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", w.Code)
			}
		})
	}
}
