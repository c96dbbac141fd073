package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	MissingUserIDs(ctx context.Context, ids []string) ([]string, error)
}

// ServiceRepository exposes CRUD operations for the service catalog.
type ServiceRepository interface {
	CreateService(ctx context.Context, service Service) error
	UpdateService(ctx context.Context, service Service) error
	GetService(ctx context.Context, id string) (Service, error)
	ListServices(ctx context.Context) ([]Service, error)
	DeleteService(ctx context.Context, id string) error
}

// ResourceRepository exposes CRUD operations for resources together with
// their weekly availability windows.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	GetResourcesByIDs(ctx context.Context, ids []string) ([]Resource, error)
	ListResources(ctx context.Context, includeInactive bool) ([]Resource, error)
	DeleteResource(ctx context.Context, id string) error

	SetUnavailability(ctx context.Context, window AvailabilityWindow) error
	ClearUnavailability(ctx context.Context, resourceID string, day time.Weekday) error
	ListAvailability(ctx context.Context, resourceID string) ([]AvailabilityWindow, error)
}

// AppointmentFilter narrows appointment listing queries.
type AppointmentFilter struct {
	UserID      string
	ServiceID   string
	Status      string
	StartsAfter *time.Time
	EndsBefore  *time.Time
	Search      string
	Limit       int
	Offset      int
}

// OverlapQuery describes the parameters for a conflict scan: non-cancelled
// appointments whose [Start, End) range overlaps [Start, End), optionally
// restricted to appointments holding one of the listed resources.
type OverlapQuery struct {
	Start         time.Time
	End           time.Time
	ExcludeID     string
	ResourceIDs   []string
	ExcludeStatus string
}

// AppointmentRepository stores appointments and their resource assignments.
// Create, Delete, and UpdateAppointmentWithAssignments treat the appointment
// row and its assignment rows as a single atomic unit.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment, assignments []ResourceAssignment) error
	UpdateAppointment(ctx context.Context, appointment Appointment) error
	UpdateAppointmentWithAssignments(ctx context.Context, appointment Appointment, assignments []ResourceAssignment) error
	ReplaceAssignments(ctx context.Context, appointmentID string, assignments []ResourceAssignment) error
	GetAppointment(ctx context.Context, id string) (Appointment, error)
	GetAppointmentByReference(ctx context.Context, code string) (Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	ListOverlapping(ctx context.Context, query OverlapQuery) ([]Appointment, error)
	ListAssignments(ctx context.Context, appointmentID string) ([]ResourceAssignment, error)
	DeleteAppointment(ctx context.Context, id string) error
}
