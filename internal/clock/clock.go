// Package clock provides the time source used by the recorder and records
// catalog. A single seam keeps "now" fakeable in tests without reaching for
// monkey-patching.
package clock

import "time"

// Clock returns the current instant. NowUTCNaive strips both monotonic
// reading and location, matching the naive-local semantics the schedule
// service uses for event instance starts.
type Clock interface {
	NowUTC() time.Time
	NowUTCNaive() time.Time
}

// Real is the production Clock, backed by time.Now.
type Real struct{}

func (Real) NowUTC() time.Time { return time.Now().UTC() }

func (Real) NowUTCNaive() time.Time {
	t := time.Now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// NaiveLayout is the ISO-8601 layout used to stamp record keys and parse
// event instance starts. No offset, no trailing Z: the schedule service's
// instance starts are naive local datetimes.
const NaiveLayout = "2006-01-02T15:04:05"

// Stringify renders a naive datetime using NaiveLayout.
func Stringify(t time.Time) string {
	return t.Format(NaiveLayout)
}

// Parse parses a naive datetime using NaiveLayout.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(NaiveLayout, s, time.UTC)
}

// ToUTC converts a naive local datetime in the named IANA zone to a naive
// UTC datetime: attach the zone, convert, then drop the zone again.
func ToUTC(naive time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	local := time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc)
	utc := local.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), utc.Hour(), utc.Minute(), utc.Second(), utc.Nanosecond(), time.UTC), nil
}
