package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lox/astrometer/internal/chart"
	"github.com/lox/astrometer/internal/meters"
	"github.com/lox/astrometer/internal/metrics"
	"github.com/lox/astrometer/internal/narrative"
)

// MetersRequest computes the full meter bundle for one person and date.
// Transit may be omitted when a chart service is configured; it is then
// fetched for the requested date. Yesterday's readings, when supplied, enable
// trend derivation.
type MetersRequest struct {
	Natal     *chart.NatalChart   `json:"natal"`
	Transit   *chart.TransitChart `json:"transit,omitempty"`
	Date      string              `json:"date,omitempty"`
	Yesterday []meters.Reading    `json:"yesterday,omitempty"`
}

func (s *Server) handleMeters(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodPost {
		return writeError(w, http.StatusMethodNotAllowed, "POST required")
	}

	var req MetersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Natal == nil {
		return writeError(w, http.StatusBadRequest, "natal chart required")
	}

	transit := req.Transit
	if transit == nil {
		if s.charts == nil {
			return writeError(w, http.StatusBadRequest, "transit chart required (no chart service configured)")
		}
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD when transit is omitted")
		}
		transit, err = s.charts.FetchTransit(date)
		if err != nil {
			return writeError(w, http.StatusBadGateway, "chart service: "+err.Error())
		}
	}

	day, err := s.engine.ComputeDay(req.Natal, transit, req.Yesterday)
	if err != nil {
		// The engine only errors on structurally invalid charts.
		return writeError(w, http.StatusBadRequest, err.Error())
	}

	metrics.MeterComputations.Inc()
	metrics.AspectsDetected.Observe(float64(day.AspectCount))
	for _, m := range day.Meters {
		if !m.Calibrated {
			metrics.CalibrationFallbacks.WithLabelValues(m.MeterID).Inc()
		}
	}

	return writeJSON(w, http.StatusOK, day)
}

// FeaturedRequest selects the narrative shape for a user and date from
// already-computed meter scores.
type FeaturedRequest struct {
	UserID    string               `json:"user_id"`
	Date      string               `json:"date"`
	Meters    []MeterScoreInput    `json:"meters"`
	Yesterday *narrative.Selection `json:"yesterday,omitempty"`
}

type MeterScoreInput struct {
	MeterID string  `json:"meter_id"`
	Score   float64 `json:"score"`
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodPost {
		return writeError(w, http.StatusMethodNotAllowed, "POST required")
	}

	var req FeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.UserID == "" || req.Date == "" {
		return writeError(w, http.StatusBadRequest, "user_id and date required")
	}
	if len(req.Meters) == 0 {
		return writeError(w, http.StatusBadRequest, "meters required")
	}

	scores := make([]narrative.MeterScore, 0, len(req.Meters))
	for _, m := range req.Meters {
		if _, ok := s.engine.Registry().Get(m.MeterID); !ok {
			return writeError(w, http.StatusBadRequest, "unknown meter "+m.MeterID)
		}
		scores = append(scores, narrative.MeterScore{MeterID: m.MeterID, Value: m.Score})
	}

	sel := narrative.SelectFeatured(scores, req.UserID, req.Date, req.Yesterday)
	return writeJSON(w, http.StatusOK, sel)
}
