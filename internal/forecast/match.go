package forecast

import "time"

// Match returns the first period whose start falls in the same clock hour as
// target. Both sides are compared in UTC at hour granularity, so a 12:30
// meeting matches the 12:00 period.
//
// The series is hourly and short (about a week of data), so a linear scan in
// period order is fine.
func Match(target time.Time, periods []Period) (Period, bool) {
	want := target.UTC().Truncate(time.Hour)
	for _, p := range periods {
		if p.StartTime.UTC().Truncate(time.Hour).Equal(want) {
			return p, true
		}
	}
	return Period{}, false
}
