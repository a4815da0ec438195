package advisor

import (
	"errors"
	"fmt"

	"garmin-fitness-assistant/internal/analysis"
	"garmin-fitness-assistant/internal/store"
)

// ErrInvalidPlanParameters indicates caller-supplied plan parameters
// that violate the plan invariants.
var ErrInvalidPlanParameters = errors.New("invalid plan parameters")

// PlannedSession is one scheduled session in a training plan.
type PlannedSession struct {
	Week           int     `json:"week"`
	Day            int     `json:"day"`
	SessionType    string  `json:"session_type"`
	TargetEffort   string  `json:"target_effort"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// TrainingPlan is a deterministic periodized schedule toward a goal
// race.
type TrainingPlan struct {
	GoalDistance      store.Distance   `json:"goal_distance"`
	TargetTimeSeconds int              `json:"target_time_seconds"`
	Weeks             int              `json:"weeks"`
	SessionsPerWeek   int              `json:"sessions_per_week"`
	Sessions          []PlannedSession `json:"sessions"`
}

// Weekly session cycle for the slots before the closing long run.
var sessionCycle = []string{SessionEasy, SessionTempo, SessionInterval, SessionRest}

// BuildTrainingPlan generates a periodized schedule: each week closes
// with a long run whose distance scales linearly toward the goal
// distance, the other slots cycle through easy/tempo/interval/rest, and
// the final week tapers intensity. The final week's long run is 90% of
// the goal distance.
func BuildTrainingPlan(goalDistance store.Distance, targetTimeSeconds, weeks, sessionsPerWeek int) (*TrainingPlan, error) {
	if weeks < 1 || sessionsPerWeek < 1 {
		return nil, fmt.Errorf("%w: weeks and sessions_per_week must be at least 1", ErrInvalidPlanParameters)
	}
	if targetTimeSeconds <= 0 {
		return nil, fmt.Errorf("%w: target time must be positive", ErrInvalidPlanParameters)
	}
	goalMeters := goalDistance.Meters()
	if goalMeters <= 0 {
		return nil, fmt.Errorf("%w: unknown goal distance %q", ErrInvalidPlanParameters, goalDistance)
	}

	goalPace := float64(targetTimeSeconds) / (goalMeters / 1000) // seconds per km

	plan := &TrainingPlan{
		GoalDistance:      goalDistance,
		TargetTimeSeconds: targetTimeSeconds,
		Weeks:             weeks,
		SessionsPerWeek:   sessionsPerWeek,
		Sessions:          make([]PlannedSession, 0, weeks*sessionsPerWeek),
	}

	for week := 1; week <= weeks; week++ {
		progress := 1.0
		if weeks > 1 {
			progress = float64(week-1) / float64(weeks-1)
		}
		longRunMeters := goalMeters * (0.4 + 0.5*progress)
		taper := week == weeks

		for day := 1; day <= sessionsPerWeek; day++ {
			session := PlannedSession{Week: week, Day: day}

			if day == sessionsPerWeek {
				session.SessionType = SessionLong
				session.DistanceMeters = longRunMeters
				session.TargetEffort = fmt.Sprintf("steady aerobic, around %s/km", paceString(goalPace*1.20))
			} else {
				session.SessionType = sessionCycle[(day-1)%len(sessionCycle)]
				if taper && (session.SessionType == SessionTempo || session.SessionType == SessionInterval) {
					session.SessionType = SessionEasy
				}
				switch session.SessionType {
				case SessionEasy:
					session.DistanceMeters = goalMeters * 0.3
					session.TargetEffort = fmt.Sprintf("conversational, around %s/km", paceString(goalPace*1.25))
				case SessionTempo:
					session.DistanceMeters = goalMeters * 0.4
					session.TargetEffort = fmt.Sprintf("comfortably hard, around %s/km", paceString(goalPace*1.08))
				case SessionInterval:
					session.DistanceMeters = goalMeters * 0.25
					session.TargetEffort = fmt.Sprintf("repeats at %s/km with jog recoveries", paceString(goalPace*0.95))
				case SessionRest:
					session.TargetEffort = "full rest or light cross-training"
				}
				if taper {
					session.DistanceMeters *= 0.6
					if session.SessionType == SessionEasy {
						session.TargetEffort = fmt.Sprintf("race-week taper, relaxed, around %s/km", paceString(goalPace*1.25))
					}
				}
			}
			plan.Sessions = append(plan.Sessions, session)
		}
	}
	return plan, nil
}

// paceString formats a seconds-per-km pace as M:SS.
func paceString(secondsPerKm float64) string {
	return analysis.FormatDuration(int(secondsPerKm + 0.5))
}
