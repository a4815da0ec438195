package store

import (
	"fmt"
	"time"
)

// Kind identifies one of the record families produced by the export
// normalizer and stored per user.
type Kind string

const (
	KindRacePredictions Kind = "race_predictions"
	KindTrainingHistory Kind = "training_history"
	KindAcclimation     Kind = "heat_altitude_acclimation"
	KindActivities      Kind = "summarized_activities"
)

// Kinds lists all record kinds in a stable order.
var Kinds = []Kind{KindRacePredictions, KindTrainingHistory, KindAcclimation, KindActivities}

// Distance is a canonical race distance label.
type Distance string

const (
	Distance5K       Distance = "5K"
	Distance10K      Distance = "10K"
	DistanceHalf     Distance = "Half Marathon"
	DistanceMarathon Distance = "Marathon"
)

// ParseDistance resolves a distance label, accepting the short "Half"
// spelling used by the original export tooling.
func ParseDistance(s string) (Distance, error) {
	switch s {
	case "5K", "5k":
		return Distance5K, nil
	case "10K", "10k":
		return Distance10K, nil
	case "Half", "half", "Half Marathon":
		return DistanceHalf, nil
	case "Marathon", "marathon":
		return DistanceMarathon, nil
	}
	return "", fmt.Errorf("invalid distance: %q", s)
}

// Meters returns the race distance in meters.
func (d Distance) Meters() float64 {
	switch d {
	case Distance5K:
		return 5000
	case Distance10K:
		return 10000
	case DistanceHalf:
		return 21097.5
	case DistanceMarathon:
		return 42195
	}
	return 0
}

// Status is a Garmin training status label.
type Status string

const (
	StatusProductive   Status = "Productive"
	StatusPeaking      Status = "Peaking"
	StatusRecovery     Status = "Recovery"
	StatusDetraining   Status = "Detraining"
	StatusMaintaining  Status = "Maintaining"
	StatusUnproductive Status = "Unproductive"
	StatusUnknown      Status = "Unknown"
)

// NormalizeStatus maps a raw export status string onto the known label
// set, defaulting to Unknown.
func NormalizeStatus(s string) Status {
	switch Status(s) {
	case StatusProductive, StatusPeaking, StatusRecovery, StatusDetraining,
		StatusMaintaining, StatusUnproductive:
		return Status(s)
	}
	return StatusUnknown
}

// RacePrediction is one dated snapshot of predicted race times. Absent
// distances are nil.
type RacePrediction struct {
	Date         time.Time
	Time5K       *int
	Time10K      *int
	TimeHalf     *int
	TimeMarathon *int
}

// TimeFor returns the predicted time in seconds for a distance, if the
// snapshot contains it.
func (p *RacePrediction) TimeFor(d Distance) (int, bool) {
	var v *int
	switch d {
	case Distance5K:
		v = p.Time5K
	case Distance10K:
		v = p.Time10K
	case DistanceHalf:
		v = p.TimeHalf
	case DistanceMarathon:
		v = p.TimeMarathon
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// StatusRecord is one dated training status observation.
type StatusRecord struct {
	Date   time.Time
	Status Status
}

// Acclimation is one dated heat/altitude acclimation observation.
type Acclimation struct {
	Date        time.Time
	HeatPct     *int
	AltitudePct *int
}

// Activity is one summarized activity.
type Activity struct {
	Date            time.Time
	ActivityType    string
	DistanceMeters  float64
	DurationSeconds float64
}

// PaceSecondsPerKm is the derived pace. Zero-distance activities have no
// meaningful pace and report 0.
func (a *Activity) PaceSecondsPerKm() float64 {
	if a.DistanceMeters <= 0 {
		return 0
	}
	return a.DurationSeconds / (a.DistanceMeters / 1000)
}

// RecordSet groups the typed records produced by normalizing one export
// bundle, ready for ingestion.
type RecordSet struct {
	Predictions []RacePrediction
	Statuses    []StatusRecord
	Acclimation []Acclimation
	Activities  []Activity
}

// Len is the total number of records across all kinds.
func (rs *RecordSet) Len() int {
	return len(rs.Predictions) + len(rs.Statuses) + len(rs.Acclimation) + len(rs.Activities)
}

// Window scopes a query to a date range, either as a lookback in days
// from now or as an explicit start/end pair.
type Window struct {
	Days  int
	Start time.Time
	End   time.Time
}

// Bounds resolves the window against a reference time. A zero window
// covers everything up to now.
func (w Window) Bounds(now time.Time) (time.Time, time.Time) {
	start, end := w.Start, w.End
	if w.Days > 0 {
		start = now.AddDate(0, 0, -w.Days)
		end = now
	}
	if end.IsZero() {
		end = now
	}
	return start, end
}

const dateLayout = "2006-01-02"
