package logbook

import (
	"strings"
	"time"
)

// KST is the fixed civil time zone users enter report windows in.
var KST = time.FixedZone("KST", 9*60*60)

const (
	inputLayout   = "2006/1/2 15:04"
	displayLayout = "2006/01/02 15:04"
)

// Window is an inclusive range of unix seconds.
type Window struct {
	StartUTC int64
	EndUTC   int64
}

// ParseWindow converts two KST wall clock instants given as
// "YYYY/MM/DD" + "HH:MM" into a UTC window.
func ParseWindow(startDate, startTime, endDate, endTime string) (Window, error) {
	start, err := parseKst(startDate, startTime)
	if err != nil {
		return Window{}, newErrInvalidTimeFormat().SetDebug(err)
	}
	end, err := parseKst(endDate, endTime)
	if err != nil {
		return Window{}, newErrInvalidTimeFormat().SetDebug(err)
	}
	if start.After(end) {
		return Window{}, newErrInvertedTimeRange()
	}
	return Window{StartUTC: start.UTC().Unix(), EndUTC: end.UTC().Unix()}, nil
}

func parseKst(date, clock string) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	return time.ParseInLocation(inputLayout, value, KST)
}

func formatKst(unix int64) string {
	return time.Unix(unix, 0).In(KST).Format(displayLayout)
}
