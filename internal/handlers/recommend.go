package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/advisor"
	"garmin-fitness-assistant/internal/analysis"
	"garmin-fitness-assistant/internal/metrics"
	"garmin-fitness-assistant/internal/store"
)

// RecommendHandler handles recommendation and training plan endpoints.
type RecommendHandler struct {
	advisor *advisor.Advisor
	logger  *slog.Logger
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(adv *advisor.Advisor) *RecommendHandler {
	return &RecommendHandler{
		advisor: adv,
		logger:  slog.Default(),
	}
}

type recommendationsResponse struct {
	WorkoutSuggestions []advisor.WorkoutSuggestion `json:"workout_suggestions"`
	Recovery           *advisor.RecoveryAdvice     `json:"recovery,omitempty"`
	Progress           *advisor.ProgressReport     `json:"progress,omitempty"`
}

// HandleRecommendations handles GET /recommendations.
// Query parameters:
//   - user_id: Owner of the data (required)
//   - augment: Include LLM augmentation, progress, and recovery
//     (default: false)
//
// The rule-based suggestions are always present; augmentation failures
// degrade to the rule-based set rather than erroring.
func (h *RecommendHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	augment := r.URL.Query().Get("augment") == "true"

	var (
		set *advisor.RecommendationSet
		err error
	)
	if augment {
		set, err = h.advisor.AugmentedRecommendation(r.Context(), userID)
	} else {
		set, err = h.advisor.QuickRecommendations(r.Context(), userID)
	}
	if err != nil {
		h.logger.Error("Failed to build recommendations", "user_id", userID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := recommendationsResponse{WorkoutSuggestions: set.Suggestions}
	if augment {
		if recovery, err := h.advisor.RecoveryAssessment(r.Context(), userID); err == nil {
			resp.Recovery = recovery
		} else {
			h.logger.Warn("Recovery assessment skipped", "user_id", userID, "error", err)
		}
		if progress, err := h.advisor.AnalyzeProgress(r.Context(), userID); err == nil {
			resp.Progress = progress
		} else {
			h.logger.Warn("Progress report skipped", "user_id", userID, "error", err)
		}
	}

	writeJSON(w, h.logger, resp)
}

type trainingPlanRequest struct {
	GoalDistance    string `json:"goal_distance"`
	TargetTime      string `json:"target_time"`
	Weeks           int    `json:"weeks"`
	SessionsPerWeek int    `json:"sessions_per_week"`
}

// HandleTrainingPlan handles POST /training-plan.
// Body: {"goal_distance": "10K", "target_time": "50:00", "weeks": 8,
// "sessions_per_week": 4}. target_time is a "MM:SS" or "HH:MM:SS"
// clock string.
func (h *RecommendHandler) HandleTrainingPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req trainingPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	distance, err := store.ParseDistance(req.GoalDistance)
	if err != nil {
		http.Error(w, "Invalid goal_distance", http.StatusBadRequest)
		return
	}

	targetSeconds, err := analysis.ParseDuration(req.TargetTime)
	if err != nil {
		http.Error(w, "Invalid target_time", http.StatusBadRequest)
		return
	}

	plan, err := advisor.BuildTrainingPlan(distance, targetSeconds, req.Weeks, req.SessionsPerWeek)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidPlanParameters) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to build training plan", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	metrics.TrainingPlansTotal.Inc()
	h.logger.Info("Generated training plan",
		"goal_distance", distance,
		"weeks", req.Weeks,
		"sessions_per_week", req.SessionsPerWeek)
	writeJSON(w, h.logger, plan)
}
