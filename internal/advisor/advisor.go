// Package advisor synthesizes workout recommendations and training
// plans from analyzer signals, with a deterministic rule table and
// optional LLM augmentation.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"garmin-fitness-assistant/internal/analysis"
	"garmin-fitness-assistant/internal/metrics"
	"garmin-fitness-assistant/internal/store"
)

// ErrLLMUnavailable is the single fault kind of the text-generation
// capability: network failure, timeout, or unusable output. It is
// always recoverable by falling back to rule-based recommendations.
var ErrLLMUnavailable = errors.New("llm unavailable")

// TextGenerator is the external text-generation capability. Faults wrap
// ErrLLMUnavailable.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// WorkoutSuggestion is one recommended session.
type WorkoutSuggestion struct {
	Type          string `json:"type"`
	RawSuggestion string `json:"raw_suggestion"`
}

// RecommendationSet is the full response for one recommendation
// request. Recomputed from current repository state on every call.
type RecommendationSet struct {
	Suggestions []WorkoutSuggestion `json:"workout_suggestions"`
}

// Advisor derives signals via the analyzer and maps them to structured
// suggestions and plans.
type Advisor struct {
	store     *store.Store
	generator TextGenerator
	logger    *slog.Logger

	statusWindowDays int
	trendWindowDays  int
}

// New creates an advisor. generator may be nil, in which case only the
// rule-based path is used.
func New(st *store.Store, generator TextGenerator) *Advisor {
	return &Advisor{
		store:            st,
		generator:        generator,
		logger:           slog.Default(),
		statusWindowDays: 30,
		trendWindowDays:  90,
	}
}

// signals are the analyzer-derived inputs shared by the rule table and
// the LLM prompt.
type signals struct {
	status      analysis.StatusSummary
	latest      map[store.Distance]string
	improvement *analysis.ImprovementResult
}

// deriveSignals reads the user's recent data and runs the analyzer over
// it.
func (a *Advisor) deriveSignals(ctx context.Context, userID string) (*signals, error) {
	statuses, err := a.store.QueryStatuses(ctx, userID, store.Window{Days: a.statusWindowDays})
	if err != nil {
		return nil, fmt.Errorf("failed to load training statuses: %w", err)
	}

	predictions, err := a.store.QueryPredictions(ctx, userID, store.Window{Days: a.trendWindowDays})
	if err != nil {
		return nil, fmt.Errorf("failed to load race predictions: %w", err)
	}

	sig := &signals{
		status: analysis.StatusDistribution(statuses),
		latest: analysis.LatestPredictions(predictions),
	}

	// First distance with enough snapshots to measure a delta
	for _, d := range []store.Distance{store.Distance5K, store.Distance10K, store.DistanceHalf, store.DistanceMarathon} {
		if imp, ok := analysis.Improvement(predictions, d); ok {
			sig.improvement = &imp
			break
		}
	}
	return sig, nil
}

// QuickRecommendations maps the current training status and recent
// improvement trend onto the rule table. The result is non-empty
// whenever a current status is known.
func (a *Advisor) QuickRecommendations(ctx context.Context, userID string) (*RecommendationSet, error) {
	sig, err := a.deriveSignals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.ruleBased(sig), nil
}

func (a *Advisor) ruleBased(sig *signals) *RecommendationSet {
	set := &RecommendationSet{}

	policy := statusPolicies[store.StatusUnknown]
	if p, ok := statusPolicies[sig.status.Current]; ok {
		policy = p
	}
	set.Suggestions = append(set.Suggestions, WorkoutSuggestion{
		Type:          policy.SessionType,
		RawSuggestion: policy.Suggestion,
	})

	if imp := sig.improvement; imp != nil {
		if imp.Improved {
			set.Suggestions = append(set.Suggestions, WorkoutSuggestion{
				Type: SessionInterval,
				RawSuggestion: fmt.Sprintf(
					"Your predicted %s time improved %.1f%% (from %s to %s). An interval session will keep the momentum.",
					imp.Distance, imp.PercentImprovement,
					analysis.FormatDuration(imp.StartTimeSeconds), analysis.FormatDuration(imp.EndTimeSeconds)),
			})
		} else {
			set.Suggestions = append(set.Suggestions, WorkoutSuggestion{
				Type: SessionLong,
				RawSuggestion: fmt.Sprintf(
					"Your predicted %s time slipped %.1f%%. Consistent easy mileage and a weekly long run will rebuild it.",
					imp.Distance, -imp.PercentImprovement),
			})
		}
	}

	metrics.RecommendationsTotal.WithLabelValues(metrics.SourceRules).Inc()
	return set
}

// AugmentedRecommendation returns the rule-based set with one
// LLM-generated suggestion appended. Capability faults and empty output
// skip the augmentation silently; the rule-based set is still returned.
func (a *Advisor) AugmentedRecommendation(ctx context.Context, userID string) (*RecommendationSet, error) {
	sig, err := a.deriveSignals(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := a.ruleBased(sig)

	if a.generator == nil {
		return set, nil
	}

	text, err := a.generator.Generate(ctx, recommendationPrompt(sig))
	if err != nil {
		a.logger.Warn("llm augmentation skipped", "user_id", userID, "error", err)
		metrics.LLMRequestsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return set, nil
	}

	metrics.LLMRequestsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.RecommendationsTotal.WithLabelValues(metrics.SourceLLM).Inc()
	set.Suggestions = append(set.Suggestions, WorkoutSuggestion{
		Type:          SessionLLM,
		RawSuggestion: text,
	})
	return set, nil
}

// ProgressReport summarizes race-time deltas and training status over a
// recent window.
type ProgressReport struct {
	WindowDays   int                          `json:"window_days"`
	Improvements []analysis.ImprovementResult `json:"improvements"`
	Status       analysis.StatusSummary       `json:"status"`
	Narrative    string                       `json:"narrative,omitempty"`
}

// AnalyzeProgress reports per-distance improvement over the last four
// weeks plus the status distribution, optionally narrated by the LLM.
func (a *Advisor) AnalyzeProgress(ctx context.Context, userID string) (*ProgressReport, error) {
	const windowDays = 28

	predictions, err := a.store.QueryPredictions(ctx, userID, store.Window{Days: windowDays})
	if err != nil {
		return nil, fmt.Errorf("failed to load race predictions: %w", err)
	}
	statuses, err := a.store.QueryStatuses(ctx, userID, store.Window{Days: windowDays})
	if err != nil {
		return nil, fmt.Errorf("failed to load training statuses: %w", err)
	}

	report := &ProgressReport{
		WindowDays:   windowDays,
		Improvements: []analysis.ImprovementResult{},
		Status:       analysis.StatusDistribution(statuses),
	}
	for _, d := range []store.Distance{store.Distance5K, store.Distance10K, store.DistanceHalf, store.DistanceMarathon} {
		if imp, ok := analysis.Improvement(predictions, d); ok {
			report.Improvements = append(report.Improvements, imp)
		}
	}

	if a.generator != nil {
		if text, err := a.generator.Generate(ctx, progressPrompt(report)); err == nil {
			report.Narrative = text
			metrics.LLMRequestsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		} else {
			a.logger.Warn("progress narrative skipped", "user_id", userID, "error", err)
			metrics.LLMRequestsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		}
	}
	return report, nil
}

// RecoveryAdvice is rule-based recovery guidance from the recent status
// distribution.
type RecoveryAdvice struct {
	RestDaysSuggested int    `json:"rest_days_suggested"`
	Guidance          string `json:"guidance"`
}

// RecoveryAssessment evaluates recovery needs from the last two weeks
// of training statuses.
func (a *Advisor) RecoveryAssessment(ctx context.Context, userID string) (*RecoveryAdvice, error) {
	statuses, err := a.store.QueryStatuses(ctx, userID, store.Window{Days: 14})
	if err != nil {
		return nil, fmt.Errorf("failed to load training statuses: %w", err)
	}
	summary := analysis.StatusDistribution(statuses)

	strained := summary.Counts[store.StatusUnproductive] + summary.Counts[store.StatusRecovery]
	switch {
	case strained >= 7:
		return &RecoveryAdvice{
			RestDaysSuggested: 3,
			Guidance:          "Half of the last two weeks shows strain. Take several full rest days before resuming quality work.",
		}, nil
	case strained >= 3:
		return &RecoveryAdvice{
			RestDaysSuggested: 1,
			Guidance:          "Some strain is accumulating. Schedule a rest day and keep the next runs easy.",
		}, nil
	default:
		return &RecoveryAdvice{
			RestDaysSuggested: 0,
			Guidance:          "Recovery looks adequate. Continue the current rhythm.",
		}, nil
	}
}
