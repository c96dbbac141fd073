// Package recurrence expands compact recurrence patterns of the form
// "FREQUENCY:DETAIL" into concrete calendar dates.
//
// Supported frequencies:
//   - DAILY: every calendar day. DETAIL is empty.
//   - WEEKLY: DETAIL is a comma separated list of weekday tokens
//     (SU,MO,TU,WE,TH,FR,SA). Unrecognized tokens are ignored; an empty
//     resulting set expands to zero occurrences.
//   - MONTHLY: DETAIL is a target day of month. Months shorter than the
//     target clamp to their last day.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency identifies how often a recurring appointment repeats.
type Frequency string

const (
	// FrequencyDaily repeats every calendar day.
	FrequencyDaily Frequency = "DAILY"
	// FrequencyWeekly repeats on a selected set of weekdays.
	FrequencyWeekly Frequency = "WEEKLY"
	// FrequencyMonthly repeats on a target day of each month.
	FrequencyMonthly Frequency = "MONTHLY"
)

// ErrUnsupportedPattern indicates the pattern frequency or detail cannot be
// interpreted.
var ErrUnsupportedPattern = errors.New("recurrence: unsupported pattern")

var weekdayTokens = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// Pattern is a parsed recurrence configuration.
type Pattern struct {
	Frequency  Frequency
	Weekdays   map[time.Weekday]struct{}
	DayOfMonth int
}

// ParsePattern interprets a raw "FREQUENCY:DETAIL" string. Weekly patterns
// silently drop unrecognized weekday tokens; everything else that cannot be
// interpreted is an ErrUnsupportedPattern.
func ParsePattern(raw string) (Pattern, error) {
	frequency, detail, _ := strings.Cut(raw, ":")
	frequency = strings.ToUpper(strings.TrimSpace(frequency))

	switch Frequency(frequency) {
	case FrequencyDaily:
		return Pattern{Frequency: FrequencyDaily}, nil

	case FrequencyWeekly:
		weekdays := make(map[time.Weekday]struct{})
		for _, token := range strings.Split(detail, ",") {
			token = strings.ToUpper(strings.TrimSpace(token))
			if day, ok := weekdayTokens[token]; ok {
				weekdays[day] = struct{}{}
			}
		}
		return Pattern{Frequency: FrequencyWeekly, Weekdays: weekdays}, nil

	case FrequencyMonthly:
		day, err := strconv.Atoi(strings.TrimSpace(detail))
		if err != nil || day < 1 || day > 31 {
			return Pattern{}, fmt.Errorf("%w: invalid day of month %q", ErrUnsupportedPattern, detail)
		}
		return Pattern{Frequency: FrequencyMonthly, DayOfMonth: day}, nil

	default:
		return Pattern{}, fmt.Errorf("%w: unknown frequency %q", ErrUnsupportedPattern, frequency)
	}
}

// Expand parses the pattern and produces the ordered sequence of occurrence
// dates after firstOccurrence through endInclusive. See Pattern.Expand.
func Expand(firstOccurrence time.Time, pattern string, endInclusive time.Time) ([]time.Time, error) {
	parsed, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return parsed.Expand(firstOccurrence, endInclusive), nil
}

// Expand produces the strictly increasing sequence of calendar dates the
// pattern generates, excluding firstOccurrence itself, starting from the day
// after it, through endInclusive. Returned values are midnights in
// firstOccurrence's location; callers reattach the time of day.
func (p Pattern) Expand(firstOccurrence, endInclusive time.Time) []time.Time {
	first := midnight(firstOccurrence)
	end := midnight(endInclusive)
	if end.Before(first) {
		return nil
	}

	switch p.Frequency {
	case FrequencyDaily:
		return p.expandByDay(first, end, func(time.Weekday) bool { return true })
	case FrequencyWeekly:
		if len(p.Weekdays) == 0 {
			return nil
		}
		return p.expandByDay(first, end, func(day time.Weekday) bool {
			_, ok := p.Weekdays[day]
			return ok
		})
	case FrequencyMonthly:
		return p.expandMonthly(first, end)
	default:
		return nil
	}
}

func (p Pattern) expandByDay(first, end time.Time, include func(time.Weekday) bool) []time.Time {
	var dates []time.Time
	for current := first.AddDate(0, 0, 1); !current.After(end); current = current.AddDate(0, 0, 1) {
		if include(current.Weekday()) {
			dates = append(dates, current)
		}
	}
	return dates
}

func (p Pattern) expandMonthly(first, end time.Time) []time.Time {
	var dates []time.Time

	year, month, _ := first.Date()
	loc := first.Location()

	for {
		day := p.DayOfMonth
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		candidate := time.Date(year, month, day, 0, 0, 0, 0, loc)

		if candidate.After(end) {
			break
		}
		if candidate.After(first) {
			dates = append(dates, candidate)
		}

		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	return dates
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
