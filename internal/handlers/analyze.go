package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/advisor"
	"garmin-fitness-assistant/internal/analysis"
	"garmin-fitness-assistant/internal/store"
)

// AnalyzeHandler handles the race time and training status analysis
// endpoints.
type AnalyzeHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAnalyzeHandler creates a new analysis handler
func NewAnalyzeHandler(st *store.Store) *AnalyzeHandler {
	return &AnalyzeHandler{
		store:  st,
		logger: slog.Default(),
	}
}

// parseWindow reads the optional days query parameter. Zero means
// unbounded.
func parseWindow(r *http.Request) (store.Window, bool) {
	daysStr := r.URL.Query().Get("days")
	if daysStr == "" {
		return store.Window{}, true
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil || days < 0 {
		return store.Window{}, false
	}
	return store.Window{Days: days}, true
}

type raceTimesResponse struct {
	LatestPredictions map[store.Distance]string   `json:"latest_predictions"`
	Trend             analysis.TrendSeries        `json:"trend"`
	Improvement       *analysis.ImprovementResult `json:"improvement,omitempty"`
	InsufficientData  bool                        `json:"insufficient_data,omitempty"`
}

// HandleRaceTimes handles GET /analyze/race-times.
// Query parameters:
//   - user_id:  Owner of the data (required)
//   - distance: Race distance to analyze (default: 5K, accepts "Half")
//   - days:     Lookback window in days (default: all data)
func (h *AnalyzeHandler) HandleRaceTimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	distance := store.Distance5K
	if s := r.URL.Query().Get("distance"); s != "" {
		d, err := store.ParseDistance(s)
		if err != nil {
			http.Error(w, "Invalid distance parameter", http.StatusBadRequest)
			return
		}
		distance = d
	}

	window, ok := parseWindow(r)
	if !ok {
		http.Error(w, "Invalid days parameter", http.StatusBadRequest)
		return
	}

	predictions, err := h.store.QueryPredictions(r.Context(), userID, window)
	if err != nil {
		h.logger.Error("Failed to query predictions", "user_id", userID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(predictions) == 0 {
		http.Error(w, "No race prediction data for user", http.StatusNotFound)
		return
	}

	resp := raceTimesResponse{
		LatestPredictions: analysis.LatestPredictions(predictions),
		Trend:             analysis.Trend(predictions, distance),
	}
	if imp, ok := analysis.Improvement(predictions, distance); ok {
		resp.Improvement = &imp
	} else {
		resp.InsufficientData = true
	}

	writeJSON(w, h.logger, resp)
}

type trainingStatusResponse struct {
	StatusCounts  map[store.Status]int `json:"status_counts"`
	CurrentStatus store.Status         `json:"current_status"`
	StatusLabel   string               `json:"status_label"`
	StatusColor   string               `json:"status_color"`
	DailyStatus   []dailyStatus        `json:"daily_status"`
}

type dailyStatus struct {
	Date   string       `json:"date"`
	Status store.Status `json:"status"`
}

// HandleTrainingStatus handles GET /analyze/training-status.
// Query parameters:
//   - user_id: Owner of the data (required)
//   - days:    Lookback window in days (default: all data)
func (h *AnalyzeHandler) HandleTrainingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	window, ok := parseWindow(r)
	if !ok {
		http.Error(w, "Invalid days parameter", http.StatusBadRequest)
		return
	}

	statuses, err := h.store.QueryStatuses(r.Context(), userID, window)
	if err != nil {
		h.logger.Error("Failed to query statuses", "user_id", userID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(statuses) == 0 {
		http.Error(w, "No training status data for user", http.StatusNotFound)
		return
	}

	summary := analysis.StatusDistribution(statuses)
	_, label, color := advisor.PolicyFor(summary.Current)
	resp := trainingStatusResponse{
		StatusCounts:  summary.Counts,
		CurrentStatus: summary.Current,
		StatusLabel:   label,
		StatusColor:   color,
		DailyStatus:   make([]dailyStatus, 0, len(statuses)),
	}
	for i := range statuses {
		resp.DailyStatus = append(resp.DailyStatus, dailyStatus{
			Date:   statuses[i].Date.Format("2006-01-02"),
			Status: statuses[i].Status,
		})
	}

	writeJSON(w, h.logger, resp)
}

// writeJSON encodes a response body, logging encode failures. Headers
// are already committed by the time encoding can fail.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
