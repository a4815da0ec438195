package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/analysis"
)

// Date layouts seen across Garmin export files. Tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05.0",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate coerces an export date value (layout string or epoch
// milliseconds) to a calendar date.
func parseDate(v json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Truncate(24 * time.Hour), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparsable date %q", s)
	}

	var ms int64
	if err := json.Unmarshal(v, &ms); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC().Truncate(24 * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unparsable date value %s", string(v))
}

// parseSeconds coerces a race time value to whole seconds. The export
// tool emits either numeric seconds or "MM:SS" / "HH:MM:SS" strings.
func parseSeconds(v json.RawMessage) (int, error) {
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		secs := int(n)
		if secs <= 0 {
			return 0, fmt.Errorf("non-positive duration %v", n)
		}
		return secs, nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, fmt.Errorf("unparsable time value %s", string(v))
	}
	return analysis.ParseDuration(s)
}
