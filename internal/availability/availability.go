// Package availability evaluates weekly recurring unavailability windows for
// resources. A window blocks a wall-clock range on one weekday; a resource is
// available for a slot when no window on the slot's weekday overlaps it.
package availability

import (
	"fmt"
	"time"
)

// Window is a weekly recurring block of time during which a resource cannot
// be booked. StartTime and EndTime are wall-clock values in "HH:MM:SS" form.
type Window struct {
	DayOfWeek time.Weekday
	StartTime string
	EndTime   string
}

// IsAvailable reports whether a slot starting at start and ending at end is
// clear of every window. The slot's weekday is taken from start; windows only
// describe same-day ranges, matching how unavailability is recorded.
func IsAvailable(windows []Window, start, end time.Time) bool {
	day := start.Weekday()
	slotStart := clockSeconds(start)
	slotEnd := clockSeconds(end)

	for _, window := range windows {
		if window.DayOfWeek != day {
			continue
		}
		windowStart, err := ParseClock(window.StartTime)
		if err != nil {
			continue
		}
		windowEnd, err := ParseClock(window.EndTime)
		if err != nil {
			continue
		}
		if slotStart < windowEnd && windowStart < slotEnd {
			return false
		}
	}

	return true
}

// FormatClock renders a time's wall-clock component in the "HH:MM:SS" form
// windows are stored in.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// ParseClock converts an "HH:MM:SS" value to seconds since midnight.
func ParseClock(value string) (int, error) {
	var hour, minute, second int
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &hour, &minute, &second); err != nil {
		return 0, err
	}
	return hour*3600 + minute*60 + second, nil
}

func clockSeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
