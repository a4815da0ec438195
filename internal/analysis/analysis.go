// Package analysis computes trend, status, and improvement analytics
// over repository query results. Every function is pure: it operates on
// an already-retrieved snapshot sequence, never mutates its input, and
// is deterministic for identical input ordering.
package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"garmin-fitness-assistant/internal/store"
)

// TrendSeries is a chronological series of predicted race times for one
// distance.
type TrendSeries struct {
	Dates []string `json:"dates"`
	Times []int    `json:"times"`
}

// Trend extracts the predicted time for a distance from each snapshot
// that contains it, preserving chronological order. Snapshots missing
// the distance are skipped, not zero-filled.
func Trend(snapshots []store.RacePrediction, distance store.Distance) TrendSeries {
	series := TrendSeries{Dates: []string{}, Times: []int{}}
	for i := range snapshots {
		secs, ok := snapshots[i].TimeFor(distance)
		if !ok {
			continue
		}
		series.Dates = append(series.Dates, snapshots[i].Date.Format("2006-01-02"))
		series.Times = append(series.Times, secs)
	}
	return series
}

// StatusSummary is the frequency table of training statuses in a
// window, plus the current status for display: the most frequent label,
// ties broken by most recent occurrence.
type StatusSummary struct {
	Counts  map[store.Status]int `json:"status_counts"`
	Current store.Status         `json:"current_status"`
}

// StatusDistribution builds a StatusSummary from status records. With no
// records the current status is Unknown.
func StatusDistribution(records []store.StatusRecord) StatusSummary {
	summary := StatusSummary{
		Counts:  make(map[store.Status]int),
		Current: store.StatusUnknown,
	}

	lastSeen := make(map[store.Status]time.Time)
	for i := range records {
		s := records[i].Status
		summary.Counts[s]++
		if records[i].Date.After(lastSeen[s]) {
			lastSeen[s] = records[i].Date
		}
	}

	best := 0
	for status, count := range summary.Counts {
		switch {
		case count > best:
			summary.Current = status
			best = count
		case count == best && lastSeen[status].After(lastSeen[summary.Current]):
			summary.Current = status
		}
	}
	return summary
}

// ImprovementResult compares the first and last qualifying snapshots in
// a window. Positive percent improvement means the predicted time got
// faster.
type ImprovementResult struct {
	Distance           store.Distance `json:"distance"`
	StartDate          string         `json:"start_date"`
	StartTimeSeconds   int            `json:"start_time_seconds"`
	EndDate            string         `json:"end_date"`
	EndTimeSeconds     int            `json:"end_time_seconds"`
	PercentImprovement float64        `json:"percent_improvement"`
	Improved           bool           `json:"improved"`
}

// Improvement compares the first and last snapshot in the window that
// contain the distance. The second return is false when fewer than two
// qualifying snapshots exist; callers render an insufficient-data state
// instead of failing.
func Improvement(snapshots []store.RacePrediction, distance store.Distance) (ImprovementResult, bool) {
	type point struct {
		date time.Time
		secs int
	}
	var first, last *point
	for i := range snapshots {
		secs, ok := snapshots[i].TimeFor(distance)
		if !ok {
			continue
		}
		p := &point{date: snapshots[i].Date, secs: secs}
		if first == nil {
			first = p
			continue
		}
		last = p
	}
	if first == nil || last == nil {
		return ImprovementResult{}, false
	}

	diff := first.secs - last.secs
	return ImprovementResult{
		Distance:           distance,
		StartDate:          first.date.Format("2006-01-02"),
		StartTimeSeconds:   first.secs,
		EndDate:            last.date.Format("2006-01-02"),
		EndTimeSeconds:     last.secs,
		PercentImprovement: float64(diff) / float64(first.secs) * 100,
		Improved:           last.secs < first.secs,
	}, true
}

// LatestPredictions returns the newest snapshot's predicted times per
// distance, formatted for display. Empty input yields an empty map.
func LatestPredictions(snapshots []store.RacePrediction) map[store.Distance]string {
	latest := map[store.Distance]string{}
	if len(snapshots) == 0 {
		return latest
	}

	newest := &snapshots[0]
	for i := range snapshots {
		if snapshots[i].Date.After(newest.Date) {
			newest = &snapshots[i]
		}
	}

	for _, d := range []store.Distance{store.Distance5K, store.Distance10K, store.DistanceHalf, store.DistanceMarathon} {
		if secs, ok := newest.TimeFor(d); ok {
			latest[d] = FormatDuration(secs)
		}
	}
	return latest
}

// ParseDuration converts a "MM:SS" or "HH:MM:SS" clock string to whole
// seconds.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("unparsable time string %q", s)
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("unparsable time string %q", s)
		}
		total = total*60 + n
	}
	if total <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return total, nil
}

// FormatDuration renders seconds as M:SS under an hour and H:MM:SS
// above.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
