package persistence

import "time"

// User represents an account that can own appointments or act as assigned staff.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Phone       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service represents a bookable service catalog entry.
type Service struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Resource represents a bookable asset such as a hall, vehicle, or equipment.
type Resource struct {
	ID          string
	Name        string
	Description string
	Capacity    *int
	Location    string
	ColorCode   string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AvailabilityWindow represents a weekly recurring unavailability window for a
// resource. Stored rows always describe time the resource is blocked; removing
// the row restores availability. StartTime and EndTime hold wall-clock times
// formatted as "HH:MM:SS".
type AvailabilityWindow struct {
	ResourceID string
	DayOfWeek  time.Weekday
	StartTime  string
	EndTime    string
}

// Appointment represents a booking stored in persistence. Start and End form a
// half-open interval [Start, End).
type Appointment struct {
	ID                string
	ReferenceCode     string
	UserID            string
	ServiceID         string
	StaffID           *string
	Title             string
	Description       *string
	Start             time.Time
	End               time.Time
	Status            string
	IsRecurring       bool
	RecurrencePattern *string
	RecurrenceEndDate *time.Time
	ParentID          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ResourceAssignment links an appointment to a resource it occupies.
type ResourceAssignment struct {
	AppointmentID string
	ResourceID    string
	Status        string
	Notes         *string
}
