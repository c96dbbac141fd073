package booking

import "time"

// Appointment statuses. The core enforces membership in this set but no
// transition graph; policy restrictions belong to the calling layer.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// ValidStatus reports whether status is one of the recognized values.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Appointment is the caller facing view of a booking, including the IDs of
// the resources it occupies.
type Appointment struct {
	ID                string
	ReferenceCode     string
	OwnerID           string
	ServiceID         string
	StaffID           *string
	Title             string
	Description       string
	Start             time.Time
	End               time.Time
	Status            string
	IsRecurring       bool
	RecurrencePattern string
	RecurrenceEndDate *time.Time
	ParentID          *string
	ResourceIDs       []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreatedAppointment identifies a freshly created booking.
type CreatedAppointment struct {
	ID            string
	ReferenceCode string
}

// CreateAppointmentInput carries the caller supplied fields for a new
// appointment. End may be zero, in which case it is computed from
// DurationMinutes, the service's default duration, or 60 minutes, in that
// order of preference.
type CreateAppointmentInput struct {
	OwnerID           string
	ServiceID         string
	StaffID           *string
	Title             string
	Description       string
	Start             time.Time
	End               time.Time
	DurationMinutes   int
	ResourceIDs       []string
	Status            string
	RecurrencePattern string
	RecurrenceEndDate *time.Time
}

// UpdateAppointmentFields expresses a partial update: only non-nil fields are
// applied. ResourceIDs replaces the full assignment set when non-nil; an
// explicitly empty slice clears it.
type UpdateAppointmentFields struct {
	ServiceID         *string
	StaffID           *string
	Title             *string
	Description       *string
	Start             *time.Time
	End               *time.Time
	DurationMinutes   *int
	Status            *string
	RecurrencePattern *string
	RecurrenceEndDate *time.Time
	ResourceIDs       []string
}

func (f UpdateAppointmentFields) isEmpty() bool {
	return f.ServiceID == nil &&
		f.StaffID == nil &&
		f.Title == nil &&
		f.Description == nil &&
		f.Start == nil &&
		f.End == nil &&
		f.DurationMinutes == nil &&
		f.Status == nil &&
		f.RecurrencePattern == nil &&
		f.RecurrenceEndDate == nil &&
		f.ResourceIDs == nil
}

// ConflictQuery describes a candidate time range for conflict detection.
// When ResourceIDs is empty the range is checked against every non-cancelled
// appointment; otherwise only appointments holding one of the listed
// resources are considered.
type ConflictQuery struct {
	Start       time.Time
	End         time.Time
	ExcludeID   string
	ResourceIDs []string
}

// ListFilter narrows appointment listings.
type ListFilter struct {
	OwnerID     string
	ServiceID   string
	Status      string
	StartsAfter *time.Time
	EndsBefore  *time.Time
	Search      string
	Limit       int
	Offset      int
}
