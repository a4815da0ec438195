package advisor

import "garmin-fitness-assistant/internal/store"

// Session type labels shared by the rule table and the plan builder.
const (
	SessionEasy     = "Easy Run"
	SessionTempo    = "Tempo"
	SessionInterval = "Interval"
	SessionLong     = "Long Run"
	SessionRest     = "Rest"
	SessionLLM      = "LLM"
)

// statusPolicy maps one training status to its suggested session type,
// the rule-based suggestion text, and the display label/color the
// presentation layer uses. Keeping the mapping in one table guarantees
// the fallback rules and any UI stay consistent.
type statusPolicy struct {
	SessionType string
	Suggestion  string
	Label       string
	Color       string
}

var statusPolicies = map[store.Status]statusPolicy{
	store.StatusProductive: {
		SessionType: SessionTempo,
		Suggestion:  "Training is productive. Keep building with a tempo run or interval session this week.",
		Label:       "Productive",
		Color:       "green",
	},
	store.StatusPeaking: {
		SessionType: SessionInterval,
		Suggestion:  "You are peaking. Sharpen with race-specific speed work and keep volume moderate.",
		Label:       "Peaking",
		Color:       "blue",
	},
	store.StatusRecovery: {
		SessionType: SessionEasy,
		Suggestion:  "Your body is recovering. Stick to easy runs or a full rest day.",
		Label:       "Recovery",
		Color:       "teal",
	},
	store.StatusDetraining: {
		SessionType: SessionEasy,
		Suggestion:  "Fitness is trending down. Rebuild the aerobic base with frequent easy runs.",
		Label:       "Detraining",
		Color:       "orange",
	},
	store.StatusMaintaining: {
		SessionType: SessionTempo,
		Suggestion:  "Fitness is holding steady. Add a tempo run to nudge the trend upward.",
		Label:       "Maintaining",
		Color:       "gray",
	},
	store.StatusUnproductive: {
		SessionType: SessionEasy,
		Suggestion:  "Training load is not paying off. Cut intensity for a few days and prioritize sleep.",
		Label:       "Unproductive",
		Color:       "red",
	},
	store.StatusUnknown: {
		SessionType: SessionEasy,
		Suggestion:  "Not enough recent data to classify your training. Start with a relaxed easy run.",
		Label:       "Unknown",
		Color:       "gray",
	},
}

// PolicyFor returns the policy row for a status, falling back to the
// Unknown row.
func PolicyFor(status store.Status) (string, string, string) {
	p, ok := statusPolicies[status]
	if !ok {
		p = statusPolicies[store.StatusUnknown]
	}
	return p.SessionType, p.Label, p.Color
}
