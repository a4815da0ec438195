package advisor

import (
	"fmt"
	"sort"
	"strings"

	"garmin-fitness-assistant/internal/store"
)

// recommendationPrompt builds the LLM prompt from the same derived
// signals the rule table uses.
func recommendationPrompt(sig *signals) string {
	var b strings.Builder
	b.WriteString("You are a running coach. Based on the athlete's data below, suggest one specific workout for the coming days. Be concrete about duration, pace, and purpose.\n\n")

	if len(sig.latest) > 0 {
		b.WriteString("Current race predictions:\n")
		for _, d := range []store.Distance{store.Distance5K, store.Distance10K, store.DistanceHalf, store.DistanceMarathon} {
			if t, ok := sig.latest[d]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", d, t)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current training status: %s\n", sig.status.Current)
	if len(sig.status.Counts) > 0 {
		b.WriteString("Training status over the last 30 days:\n")
		for _, status := range sortedStatuses(sig.status.Counts) {
			fmt.Fprintf(&b, "- %s: %d days\n", status, sig.status.Counts[status])
		}
	}

	if imp := sig.improvement; imp != nil {
		fmt.Fprintf(&b, "\nPredicted %s time moved from %d s (%s) to %d s (%s), %.1f%% change.\n",
			imp.Distance, imp.StartTimeSeconds, imp.StartDate, imp.EndTimeSeconds, imp.EndDate, imp.PercentImprovement)
	}
	return b.String()
}

// progressPrompt asks for a short narrative over a progress report.
func progressPrompt(report *ProgressReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize this runner's progress over the last %d days in three sentences. Mention whether training is effective and one risk to watch.\n\n", report.WindowDays)

	fmt.Fprintf(&b, "Dominant training status: %s\n", report.Status.Current)
	for _, imp := range report.Improvements {
		fmt.Fprintf(&b, "%s prediction: %d s -> %d s (%.1f%% change)\n",
			imp.Distance, imp.StartTimeSeconds, imp.EndTimeSeconds, imp.PercentImprovement)
	}
	return b.String()
}

// sortedStatuses returns status keys in a stable order so prompts are
// deterministic.
func sortedStatuses(counts map[store.Status]int) []store.Status {
	statuses := make([]store.Status, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	return statuses
}
