// Package testfixtures provides deterministic builders, clocks, and a SQLite
// harness shared by the test suites.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/facility-booking/internal/persistence"
)

var (
	userCounter        uint64
	serviceCounter     uint64
	resourceCounter    uint64
	appointmentCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic user record with optional overrides.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("User %03d", idx),
		IsActive:    true,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) { u.ID = id }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// ---------------------------- Service fixtures ----------------------------

// ServiceOption configures a generated service fixture.
type ServiceOption func(*persistence.Service)

// NewServiceFixture returns a deterministic service catalog entry.
func NewServiceFixture(opts ...ServiceOption) persistence.Service {
	idx := atomic.AddUint64(&serviceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	service := persistence.Service{
		ID:              fmt.Sprintf("service-%03d", idx),
		Name:            fmt.Sprintf("Service %03d", idx),
		DurationMinutes: 60,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&service)
	}
	return service
}

// WithServiceID overrides the generated service ID.
func WithServiceID(id string) ServiceOption {
	return func(s *persistence.Service) { s.ID = id }
}

// WithServiceDuration overrides the default duration in minutes.
func WithServiceDuration(minutes int) ServiceOption {
	return func(s *persistence.Service) { s.DurationMinutes = minutes }
}

// ---------------------------- Resource fixtures ----------------------------

// ResourceOption configures a generated resource fixture.
type ResourceOption func(*persistence.Resource)

// NewResourceFixture returns a deterministic resource record.
func NewResourceFixture(opts ...ResourceOption) persistence.Resource {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	resource := persistence.Resource{
		ID:        fmt.Sprintf("resource-%03d", idx),
		Name:      fmt.Sprintf("Resource %03d", idx),
		Location:  "Main Building",
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(r *persistence.Resource) { r.ID = id }
}

// WithResourceInactive marks the resource inactive.
func WithResourceInactive() ResourceOption {
	return func(r *persistence.Resource) { r.IsActive = false }
}

// -------------------------- Appointment fixtures --------------------------

// AppointmentOption configures a generated appointment fixture.
type AppointmentOption func(*persistence.Appointment)

// NewAppointmentFixture returns a deterministic appointment record. The
// default occupies one hour starting at ReferenceTime plus an offset unique to
// the fixture.
func NewAppointmentFixture(opts ...AppointmentOption) persistence.Appointment {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	appointment := persistence.Appointment{
		ID:            fmt.Sprintf("appointment-%03d", idx),
		ReferenceCode: fmt.Sprintf("APP-%012d", idx),
		UserID:        "user-001",
		ServiceID:     "service-001",
		Title:         fmt.Sprintf("Appointment %03d", idx),
		Start:         start,
		End:           start.Add(time.Hour),
		Status:        "pending",
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&appointment)
	}
	return appointment
}

// WithAppointmentID overrides the generated appointment ID.
func WithAppointmentID(id string) AppointmentOption {
	return func(a *persistence.Appointment) { a.ID = id }
}

// WithAppointmentReference overrides the generated reference code.
func WithAppointmentReference(code string) AppointmentOption {
	return func(a *persistence.Appointment) { a.ReferenceCode = code }
}

// WithAppointmentTitle overrides the generated title.
func WithAppointmentTitle(title string) AppointmentOption {
	return func(a *persistence.Appointment) { a.Title = title }
}

// WithAppointmentOwner overrides the owning user ID.
func WithAppointmentOwner(userID string) AppointmentOption {
	return func(a *persistence.Appointment) { a.UserID = userID }
}

// WithAppointmentService overrides the service ID.
func WithAppointmentService(serviceID string) AppointmentOption {
	return func(a *persistence.Appointment) { a.ServiceID = serviceID }
}

// WithAppointmentRange sets the occupied time range.
func WithAppointmentRange(start, end time.Time) AppointmentOption {
	return func(a *persistence.Appointment) {
		a.Start = start
		a.End = end
	}
}

// WithAppointmentStatus overrides the status.
func WithAppointmentStatus(status string) AppointmentOption {
	return func(a *persistence.Appointment) { a.Status = status }
}
