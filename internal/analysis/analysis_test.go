package analysis

import (
	"testing"
	"time"

	"garmin-fitness-assistant/internal/store"
)

func intPtr(v int) *int { return &v }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTrendSkipsMissingDistances(t *testing.T) {
	snapshots := []store.RacePrediction{
		{Date: date("2026-01-10"), Time5K: intPtr(1500)},
		{Date: date("2026-01-11"), Time10K: intPtr(3120)},
		{Date: date("2026-01-12"), Time5K: intPtr(1480)},
	}

	series := Trend(snapshots, store.Distance5K)
	if len(series.Dates) != 2 || len(series.Times) != 2 {
		t.Fatalf("Expected 2 points, got %d dates and %d times", len(series.Dates), len(series.Times))
	}
	if series.Dates[0] != "2026-01-10" || series.Dates[1] != "2026-01-12" {
		t.Errorf("Unexpected dates: %v", series.Dates)
	}
	if series.Times[0] != 1500 || series.Times[1] != 1480 {
		t.Errorf("Unexpected times: %v", series.Times)
	}
}

func TestStatusDistribution(t *testing.T) {
	t.Run("MostFrequentWins", func(t *testing.T) {
		records := []store.StatusRecord{
			{Date: date("2026-01-10"), Status: store.StatusProductive},
			{Date: date("2026-01-11"), Status: store.StatusProductive},
			{Date: date("2026-01-12"), Status: store.StatusRecovery},
		}

		summary := StatusDistribution(records)
		if summary.Current != store.StatusProductive {
			t.Errorf("Expected Productive, got %s", summary.Current)
		}
		if summary.Counts[store.StatusProductive] != 2 {
			t.Errorf("Expected count 2, got %d", summary.Counts[store.StatusProductive])
		}
	})

	t.Run("TieBrokenByRecency", func(t *testing.T) {
		records := []store.StatusRecord{
			{Date: date("2026-01-10"), Status: store.StatusProductive},
			{Date: date("2026-01-11"), Status: store.StatusRecovery},
		}

		summary := StatusDistribution(records)
		if summary.Current != store.StatusRecovery {
			t.Errorf("Expected tie broken by most recent, got %s", summary.Current)
		}
	})

	t.Run("EmptyIsUnknown", func(t *testing.T) {
		summary := StatusDistribution(nil)
		if summary.Current != store.StatusUnknown {
			t.Errorf("Expected Unknown for no records, got %s", summary.Current)
		}
	})
}

func TestImprovement(t *testing.T) {
	t.Run("Improved", func(t *testing.T) {
		snapshots := []store.RacePrediction{
			{Date: date("2026-01-10"), Time5K: intPtr(1500)},
			{Date: date("2026-01-17"), Time5K: intPtr(1450)},
			{Date: date("2026-01-24"), Time5K: intPtr(1400)},
		}

		result, ok := Improvement(snapshots, store.Distance5K)
		if !ok {
			t.Fatal("Expected improvement result")
		}
		if !result.Improved {
			t.Error("Expected Improved to be true")
		}
		if result.StartTimeSeconds != 1500 || result.EndTimeSeconds != 1400 {
			t.Errorf("Expected 1500 -> 1400, got %d -> %d", result.StartTimeSeconds, result.EndTimeSeconds)
		}
		want := (1500.0 - 1400.0) / 1500.0 * 100
		if diff := result.PercentImprovement - want; diff > 0.001 || diff < -0.001 {
			t.Errorf("Expected %.2f%% improvement, got %.2f%%", want, result.PercentImprovement)
		}
	})

	t.Run("Regressed", func(t *testing.T) {
		snapshots := []store.RacePrediction{
			{Date: date("2026-01-10"), Time5K: intPtr(1400)},
			{Date: date("2026-01-17"), Time5K: intPtr(1450)},
		}

		result, ok := Improvement(snapshots, store.Distance5K)
		if !ok {
			t.Fatal("Expected improvement result")
		}
		if result.Improved {
			t.Error("Expected Improved to be false")
		}
		if result.PercentImprovement >= 0 {
			t.Errorf("Expected negative percent, got %.2f", result.PercentImprovement)
		}
	})

	t.Run("InsufficientData", func(t *testing.T) {
		snapshots := []store.RacePrediction{
			{Date: date("2026-01-10"), Time5K: intPtr(1500)},
		}
		if _, ok := Improvement(snapshots, store.Distance5K); ok {
			t.Error("Expected no result for a single snapshot")
		}
		if _, ok := Improvement(snapshots, store.DistanceMarathon); ok {
			t.Error("Expected no result for a distance with no data")
		}
	})
}

func TestLatestPredictions(t *testing.T) {
	snapshots := []store.RacePrediction{
		{Date: date("2026-01-17"), Time5K: intPtr(1450), Time10K: intPtr(3050)},
		{Date: date("2026-01-10"), Time5K: intPtr(1500)},
	}

	latest := LatestPredictions(snapshots)
	if latest[store.Distance5K] != "24:10" {
		t.Errorf("Expected 24:10, got %s", latest[store.Distance5K])
	}
	if latest[store.Distance10K] != "50:50" {
		t.Errorf("Expected 50:50, got %s", latest[store.Distance10K])
	}
	if _, ok := latest[store.DistanceMarathon]; ok {
		t.Error("Expected no marathon entry")
	}

	if got := LatestPredictions(nil); len(got) != 0 {
		t.Errorf("Expected empty map for no snapshots, got %v", got)
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]int{
		"24:10":   1450,
		"50:00":   3000,
		"1:45:30": 6330,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("ParseDuration(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseDuration(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"", "abc", "10", "1:2:3:4", "-5:00", "0:00"} {
		if _, err := ParseDuration(in); err == nil {
			t.Errorf("Expected error for %q", in)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		1450: "24:10",
		3000: "50:00",
		6330: "1:45:30",
		59:   "0:59",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %s, want %s", in, got, want)
		}
	}
}
