package export

import (
	"errors"
	"time"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/store"
)

// Normalize parses a bundle's raw payload into typed records. The
// payload must be shaped as the declared kind expects, otherwise a
// *MalformedExportError is returned. Entries with unparsable dates or
// times are skipped and counted, never fatal to the batch.
func Normalize(bundle *Bundle) (*Result, error) {
	switch bundle.Kind {
	case store.KindRacePredictions:
		return normalizePredictions(bundle)
	case store.KindTrainingHistory:
		return normalizeTrainingHistory(bundle)
	case store.KindAcclimation:
		return normalizeAcclimation(bundle)
	case store.KindActivities:
		return normalizeActivities(bundle)
	}
	return nil, &MalformedExportError{Kind: bundle.Kind, Detail: "unknown export kind"}
}

// entry is one semi-structured export record.
type entry map[string]json.RawMessage

// decodeEntries decodes the payload as a top-level array of objects.
func decodeEntries(bundle *Bundle) ([]entry, error) {
	var entries []entry
	if err := json.Unmarshal(bundle.Payload, &entries); err != nil {
		return nil, &MalformedExportError{Kind: bundle.Kind, Detail: "expected a top-level array of objects", Err: err}
	}
	return entries, nil
}

// entryDate extracts the entry's calendar date, preferring calendarDate
// over the full timestamp.
func entryDate(e entry) (time.Time, error) {
	var lastErr error
	for _, key := range []string{"calendarDate", "timestamp", "startTimeLocal", "beginTimestamp"} {
		if raw, ok := e[key]; ok {
			d, err := parseDate(raw)
			if err == nil {
				return d, nil
			}
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("entry has no date field")
	}
	return time.Time{}, lastErr
}

func normalizePredictions(bundle *Bundle) (*Result, error) {
	entries, err := decodeEntries(bundle)
	if err != nil {
		return nil, err
	}

	result := &Result{Records: &store.RecordSet{}}
	for _, e := range entries {
		date, err := entryDate(e)
		if err != nil {
			result.Skipped++
			continue
		}

		p := store.RacePrediction{Date: date}
		ok := false
		for key, field := range map[string]**int{
			"raceTime5K":       &p.Time5K,
			"raceTime10K":      &p.Time10K,
			"raceTimeHalf":     &p.TimeHalf,
			"raceTimeMarathon": &p.TimeMarathon,
		} {
			raw, present := e[key]
			if !present {
				continue
			}
			secs, err := parseSeconds(raw)
			if err != nil {
				continue
			}
			v := secs
			*field = &v
			ok = true
		}

		// A snapshot without a single parsable race time carries no signal
		if !ok {
			result.Skipped++
			continue
		}
		result.Records.Predictions = append(result.Records.Predictions, p)
	}
	return result, nil
}

func normalizeTrainingHistory(bundle *Bundle) (*Result, error) {
	entries, err := decodeEntries(bundle)
	if err != nil {
		return nil, err
	}

	result := &Result{Records: &store.RecordSet{}}
	for _, e := range entries {
		date, err := entryDate(e)
		if err != nil {
			result.Skipped++
			continue
		}

		var raw string
		if r, ok := e["trainingStatus"]; ok {
			if err := json.Unmarshal(r, &raw); err != nil {
				result.Skipped++
				continue
			}
		}

		result.Records.Statuses = append(result.Records.Statuses, store.StatusRecord{
			Date:   date,
			Status: store.NormalizeStatus(raw),
		})
	}
	return result, nil
}

func normalizeAcclimation(bundle *Bundle) (*Result, error) {
	entries, err := decodeEntries(bundle)
	if err != nil {
		return nil, err
	}

	result := &Result{Records: &store.RecordSet{}}
	for _, e := range entries {
		date, err := entryDate(e)
		if err != nil {
			result.Skipped++
			continue
		}

		rec := store.Acclimation{Date: date}
		if raw, ok := e["heatAcclimationPercentage"]; ok {
			var v int
			if err := json.Unmarshal(raw, &v); err == nil {
				rec.HeatPct = &v
			}
		}
		if raw, ok := e["altitudeAcclimation"]; ok {
			var v int
			if err := json.Unmarshal(raw, &v); err == nil {
				rec.AltitudePct = &v
			}
		}
		result.Records.Acclimation = append(result.Records.Acclimation, rec)
	}
	return result, nil
}

func normalizeActivities(bundle *Bundle) (*Result, error) {
	entries, err := decodeEntries(bundle)
	if err != nil {
		return nil, err
	}

	// The Garmin export wraps the activity list in a single-element
	// envelope: [{"summarizedActivitiesExport": [...]}]
	if len(entries) == 1 {
		if inner, ok := entries[0]["summarizedActivitiesExport"]; ok {
			if err := json.Unmarshal(inner, &entries); err != nil {
				return nil, &MalformedExportError{Kind: bundle.Kind, Detail: "invalid summarizedActivitiesExport envelope", Err: err}
			}
		}
	}

	result := &Result{Records: &store.RecordSet{}}
	for _, e := range entries {
		date, err := entryDate(e)
		if err != nil {
			result.Skipped++
			continue
		}

		a := store.Activity{Date: date}
		if raw, ok := e["activityType"]; ok {
			json.Unmarshal(raw, &a.ActivityType)
		}
		if a.ActivityType == "" {
			a.ActivityType = "unknown"
		}

		if raw, ok := e["distance"]; ok {
			if err := json.Unmarshal(raw, &a.DistanceMeters); err != nil {
				result.Skipped++
				continue
			}
		}

		if raw, ok := e["duration"]; ok {
			if err := json.Unmarshal(raw, &a.DurationSeconds); err != nil {
				result.Skipped++
				continue
			}
		}
		// Garmin emits durations in milliseconds; anything past 24h of
		// seconds is treated as such
		if a.DurationSeconds > 86400 {
			a.DurationSeconds /= 1000
		}

		if a.DurationSeconds <= 0 || a.DistanceMeters < 0 {
			result.Skipped++
			continue
		}
		result.Records.Activities = append(result.Records.Activities, a)
	}
	return result, nil
}
