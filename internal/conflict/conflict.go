// Package conflict implements the pure overlap rules used for double-booking
// detection. Time ranges are half-open intervals [start, end): back-to-back
// bookings where one ends exactly when the next starts do not overlap.
package conflict

import "time"

// Booking is the minimal view of an appointment the detector needs.
type Booking struct {
	ID          string
	Status      string
	ResourceIDs []string
	Start       time.Time
	End         time.Time
}

// Candidate describes a prospective time range to check. When ResourceIDs is
// empty the candidate is treated as resource-less and any time overlap counts.
type Candidate struct {
	Start       time.Time
	End         time.Time
	ExcludeID   string
	ResourceIDs []string
}

// StatusCancelled identifies bookings excluded from all conflict checks.
const StatusCancelled = "cancelled"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Detect returns the subset of existing bookings that conflict with the
// candidate: non-cancelled, time-overlapping, and sharing at least one
// resource when the candidate names any. Input order is preserved; callers
// must not rely on it.
func Detect(existing []Booking, candidate Candidate) []Booking {
	var conflicts []Booking
	for _, booking := range existing {
		if booking.Status == StatusCancelled {
			continue
		}
		if candidate.ExcludeID != "" && booking.ID == candidate.ExcludeID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, booking.Start, booking.End) {
			continue
		}
		if len(candidate.ResourceIDs) > 0 && !sharesResource(candidate.ResourceIDs, booking.ResourceIDs) {
			continue
		}
		conflicts = append(conflicts, booking)
	}
	return conflicts
}

func sharesResource(a, b []string) bool {
	for _, left := range a {
		for _, right := range b {
			if left == right {
				return true
			}
		}
	}
	return false
}
