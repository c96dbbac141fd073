package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func assertDates(t *testing.T, got []time.Time, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	t.Run("daily", func(t *testing.T) {
		pattern, err := ParsePattern("DAILY:1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pattern.Frequency != FrequencyDaily {
			t.Fatalf("expected daily frequency, got %q", pattern.Frequency)
		}
	})

	t.Run("lowercase frequency accepted", func(t *testing.T) {
		pattern, err := ParsePattern("weekly:MO,WE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pattern.Frequency != FrequencyWeekly {
			t.Fatalf("expected weekly frequency, got %q", pattern.Frequency)
		}
		if len(pattern.Weekdays) != 2 {
			t.Fatalf("expected 2 weekdays, got %v", pattern.Weekdays)
		}
	})

	t.Run("weekly ignores unknown tokens", func(t *testing.T) {
		pattern, err := ParsePattern("WEEKLY:MO,XX,FR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pattern.Weekdays) != 2 {
			t.Fatalf("expected unknown token to be dropped, got %v", pattern.Weekdays)
		}
	})

	t.Run("monthly requires day number", func(t *testing.T) {
		if _, err := ParsePattern("MONTHLY:banana"); !errors.Is(err, ErrUnsupportedPattern) {
			t.Fatalf("expected ErrUnsupportedPattern, got %v", err)
		}
		if _, err := ParsePattern("MONTHLY:0"); !errors.Is(err, ErrUnsupportedPattern) {
			t.Fatalf("expected ErrUnsupportedPattern for day 0, got %v", err)
		}
		if _, err := ParsePattern("MONTHLY:32"); !errors.Is(err, ErrUnsupportedPattern) {
			t.Fatalf("expected ErrUnsupportedPattern for day 32, got %v", err)
		}
	})

	t.Run("unknown frequency rejected", func(t *testing.T) {
		if _, err := ParsePattern("YEARLY:1"); !errors.Is(err, ErrUnsupportedPattern) {
			t.Fatalf("expected ErrUnsupportedPattern, got %v", err)
		}
	})
}

func TestExpandDaily(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.January, 1), "DAILY:1", date(2024, time.January, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDates(t, dates, []time.Time{
		date(2024, time.January, 2),
		date(2024, time.January, 3),
	})
}

func TestExpandDailyExcludesFirstOccurrence(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.January, 1), "DAILY:1", date(2024, time.January, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected no occurrences on or before the first, got %v", dates)
	}
}

func TestExpandWeekly(t *testing.T) {
	t.Parallel()

	// 2024-01-01 is a Monday.
	dates, err := Expand(date(2024, time.January, 1), "WEEKLY:MO,WE", date(2024, time.January, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDates(t, dates, []time.Time{
		date(2024, time.January, 3),
		date(2024, time.January, 8),
		date(2024, time.January, 10),
		date(2024, time.January, 15),
	})
}

func TestExpandWeeklyEmptyDaySet(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.January, 1), "WEEKLY:XX", date(2024, time.March, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected zero occurrences for an empty weekday set, got %v", dates)
	}
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.January, 31), "MONTHLY:31", date(2024, time.April, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDates(t, dates, []time.Time{
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
	})
}

func TestExpandMonthlySkipsCandidatesBeforeFirst(t *testing.T) {
	t.Parallel()

	// Day 5 of the first month lands before the first occurrence and must not
	// be emitted.
	dates, err := Expand(date(2024, time.January, 10), "MONTHLY:5", date(2024, time.March, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDates(t, dates, []time.Time{
		date(2024, time.February, 5),
		date(2024, time.March, 5),
	})
}

func TestExpandUnsupportedPattern(t *testing.T) {
	t.Parallel()

	if _, err := Expand(date(2024, time.January, 1), "HOURLY:1", date(2024, time.January, 2)); !errors.Is(err, ErrUnsupportedPattern) {
		t.Fatalf("expected ErrUnsupportedPattern, got %v", err)
	}
}

func TestExpandEndBeforeFirst(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.June, 1), "DAILY:1", date(2024, time.May, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected no occurrences when end precedes first, got %v", dates)
	}
}
