package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Weekday symbols follow the registrar convention: M T W R F S U for Monday
// through Sunday. U is Sunday on purpose; an unrecognized letter is an error
// rather than a silent Sunday fallback, so typos do not pass as weekends.
var dayIndex = map[rune]int{
	'M': 0,
	'T': 1,
	'W': 2,
	'R': 3,
	'F': 4,
	'S': 5,
	'U': 6,
}

// startTimeLayout parses 12-hour clock strings like "12:30 PM".
const startTimeLayout = "3:04 PM"

// ErrNoMeetingDays is returned when a course declares no meeting days; the
// next meeting is undefined in that case.
var ErrNoMeetingDays = errors.New("no meeting days declared")

// DaySet marks which weekdays a course meets, indexed 0=Monday..6=Sunday.
// Symbol order in the input is irrelevant and duplicates are idempotent.
type DaySet [7]bool

// ParseDays builds a DaySet from a symbol string like "MWF" or "TR".
func ParseDays(symbols string) (DaySet, error) {
	var days DaySet
	for _, r := range strings.ToUpper(symbols) {
		if unicode.IsSpace(r) {
			continue
		}
		idx, ok := dayIndex[r]
		if !ok {
			return DaySet{}, fmt.Errorf("unknown weekday symbol %q", r)
		}
		days[idx] = true
	}
	return days, nil
}

// Empty reports whether no weekday is set.
func (d DaySet) Empty() bool {
	for _, set := range d {
		if set {
			return false
		}
	}
	return true
}

// NextMeeting returns the next date on or after now that falls on one of the
// meeting days, combined with the declared class start time in now's
// location.
//
// Today is selected on weekday membership alone, even when the start time
// has already passed; callers that need "the next meeting strictly in the
// future" must account for that themselves.
func NextMeeting(startTime string, days DaySet, now time.Time) (time.Time, error) {
	if days.Empty() {
		return time.Time{}, ErrNoMeetingDays
	}

	t, err := time.Parse(startTimeLayout, strings.ToUpper(strings.TrimSpace(startTime)))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}

	// Go weekdays are Sunday-based; shift to Monday=0.
	today := (int(now.Weekday()) + 6) % 7

	offset := 0
	for ; offset < 7; offset++ {
		if days[(today+offset)%7] {
			break
		}
	}

	meetingDate := now.AddDate(0, 0, offset)
	return time.Date(
		meetingDate.Year(), meetingDate.Month(), meetingDate.Day(),
		t.Hour(), t.Minute(), 0, 0,
		now.Location(),
	), nil
}
