package server

import (
	"fmt"
	"net/http"
	"time"
)

// Reads starttime/endtime query values. Start accepts RFC3339 or a signed duration relative to now
// (unparseable durations fall back to the last minute). End accepts RFC3339, a signed duration, or "now".
func parseTimeRange(clientRequest *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStartTime := clientRequest.FormValue("starttime")
	switch {
	case rawStartTime == "":
		// Default start is last minute
		start = now.Add(-1 * time.Minute)
	case rawStartTime[0] == '-' || rawStartTime[0] == '+':
		dur, parseErr := time.ParseDuration(rawStartTime)
		if parseErr != nil {
			start = now.Add(-1 * time.Minute)
		} else {
			start = now.Add(dur)
		}
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStartTime)
		if err != nil {
			err = fmt.Errorf("invalid start time: %w", err)
			return
		}
	}

	rawEndTime := clientRequest.FormValue("endtime")
	switch {
	case rawEndTime == "" || rawEndTime == "now":
		end = now
	case rawEndTime[0] == '-' || rawEndTime[0] == '+':
		var dur time.Duration
		dur, err = time.ParseDuration(rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid relative end time: %w", err)
			return
		}
		end = now.Add(dur)
	default:
		end, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid end time: %w", err)
			return
		}
	}

	if start.After(now) {
		err = fmt.Errorf("start time %s is in the future", start.Format(time.RFC3339))
		return
	}
	if start.After(end) {
		err = fmt.Errorf("start time is after end time")
		return
	}
	return
}
