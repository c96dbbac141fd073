package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/facility-booking/internal/availability"
	"github.com/example/facility-booking/internal/persistence"
)

// Catalog orchestrates validation and persistence for the entities
// appointments are booked against: users, services, and resources with their
// weekly availability windows.
type Catalog struct {
	users       persistence.UserRepository
	services    persistence.ServiceRepository
	resources   persistence.ResourceRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCatalog constructs a catalog service.
func NewCatalog(
	users persistence.UserRepository,
	services persistence.ServiceRepository,
	resources persistence.ResourceRepository,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *Catalog {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Catalog{
		users:       users,
		services:    services,
		resources:   resources,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (c *Catalog) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, c.logger, "Catalog", operation, attrs...)
}

// CreateUserInput carries the caller supplied fields for a new user.
type CreateUserInput struct {
	Email       string
	DisplayName string
	Phone       string
}

// CreateUser validates input and persists a new user.
func (c *Catalog) CreateUser(ctx context.Context, input CreateUserInput) (user persistence.User, err error) {
	if c == nil {
		err = fmt.Errorf("Catalog is nil")
		return
	}

	logger := c.loggerWith(ctx, "CreateUser", "email", input.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	vErr := &ValidationError{}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email address is required")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	user = persistence.User{
		ID:          c.idGenerator(),
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Phone:       strings.TrimSpace(input.Phone),
		IsActive:    true,
		CreatedAt:   c.now(),
	}
	user.UpdatedAt = user.CreatedAt

	if storeErr := c.users.CreateUser(ctx, user); storeErr != nil {
		err = mapStoreError(storeErr)
		user = persistence.User{}
		return
	}
	return
}

// GetUser loads a single user.
func (c *Catalog) GetUser(ctx context.Context, id string) (persistence.User, error) {
	user, err := c.users.GetUser(ctx, id)
	if err != nil {
		return persistence.User{}, mapStoreError(err)
	}
	return user, nil
}

// ListUsers returns every user.
func (c *Catalog) ListUsers(ctx context.Context) ([]persistence.User, error) {
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return users, nil
}

// DeleteUser removes a user.
func (c *Catalog) DeleteUser(ctx context.Context, id string) error {
	if err := c.users.DeleteUser(ctx, id); err != nil {
		return mapStoreError(err)
	}
	c.loggerWith(ctx, "DeleteUser", "user_id", id).InfoContext(ctx, "user deleted")
	return nil
}

// CreateServiceInput carries the caller supplied fields for a catalog service
// entry.
type CreateServiceInput struct {
	Name            string
	Description     string
	DurationMinutes int
}

// CreateService validates input and persists a new bookable service. A
// non-positive duration falls back to the store default.
func (c *Catalog) CreateService(ctx context.Context, input CreateServiceInput) (service persistence.Service, err error) {
	if c == nil {
		err = fmt.Errorf("Catalog is nil")
		return
	}

	logger := c.loggerWith(ctx, "CreateService", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create service", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("service_id", service.ID).InfoContext(ctx, "service created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.DurationMinutes < 0 {
		vErr.add("duration_minutes", "duration must not be negative")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	service = persistence.Service{
		ID:              c.idGenerator(),
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		DurationMinutes: input.DurationMinutes,
		CreatedAt:       c.now(),
	}
	service.UpdatedAt = service.CreatedAt

	if storeErr := c.services.CreateService(ctx, service); storeErr != nil {
		err = mapStoreError(storeErr)
		service = persistence.Service{}
		return
	}
	return
}

// GetService loads a single service.
func (c *Catalog) GetService(ctx context.Context, id string) (persistence.Service, error) {
	service, err := c.services.GetService(ctx, id)
	if err != nil {
		return persistence.Service{}, mapStoreError(err)
	}
	return service, nil
}

// ListServices returns the full service catalog.
func (c *Catalog) ListServices(ctx context.Context) ([]persistence.Service, error) {
	services, err := c.services.ListServices(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return services, nil
}

// DeleteService removes a service from the catalog.
func (c *Catalog) DeleteService(ctx context.Context, id string) error {
	if err := c.services.DeleteService(ctx, id); err != nil {
		return mapStoreError(err)
	}
	c.loggerWith(ctx, "DeleteService", "service_id", id).InfoContext(ctx, "service deleted")
	return nil
}

// CreateResourceInput carries the caller supplied fields for a new resource.
type CreateResourceInput struct {
	Name        string
	Description string
	Capacity    *int
	Location    string
	ColorCode   string
}

// CreateResource validates input and persists a new bookable resource.
func (c *Catalog) CreateResource(ctx context.Context, input CreateResourceInput) (resource persistence.Resource, err error) {
	if c == nil {
		err = fmt.Errorf("Catalog is nil")
		return
	}

	logger := c.loggerWith(ctx, "CreateResource", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	resource = persistence.Resource{
		ID:          c.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Capacity:    input.Capacity,
		Location:    strings.TrimSpace(input.Location),
		ColorCode:   strings.TrimSpace(input.ColorCode),
		IsActive:    true,
		CreatedAt:   c.now(),
	}
	resource.UpdatedAt = resource.CreatedAt

	if storeErr := c.resources.CreateResource(ctx, resource); storeErr != nil {
		err = mapStoreError(storeErr)
		resource = persistence.Resource{}
		return
	}
	return
}

// GetResource loads a single resource.
func (c *Catalog) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	resource, err := c.resources.GetResource(ctx, id)
	if err != nil {
		return persistence.Resource{}, mapStoreError(err)
	}
	return resource, nil
}

// ListResources returns resources, optionally including deactivated ones.
func (c *Catalog) ListResources(ctx context.Context, includeInactive bool) ([]persistence.Resource, error) {
	resources, err := c.resources.ListResources(ctx, includeInactive)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return resources, nil
}

// DeactivateResource marks a resource inactive without deleting its history.
func (c *Catalog) DeactivateResource(ctx context.Context, id string) error {
	resource, err := c.resources.GetResource(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	resource.IsActive = false
	resource.UpdatedAt = c.now()
	if err := c.resources.UpdateResource(ctx, resource); err != nil {
		return mapStoreError(err)
	}
	c.loggerWith(ctx, "DeactivateResource", "resource_id", id).InfoContext(ctx, "resource deactivated")
	return nil
}

// DeleteResource removes a resource.
func (c *Catalog) DeleteResource(ctx context.Context, id string) error {
	if err := c.resources.DeleteResource(ctx, id); err != nil {
		return mapStoreError(err)
	}
	c.loggerWith(ctx, "DeleteResource", "resource_id", id).InfoContext(ctx, "resource deleted")
	return nil
}

// UnavailabilityInput describes a weekly recurring window during which a
// resource cannot be booked.
type UnavailabilityInput struct {
	ResourceID string
	DayOfWeek  time.Weekday
	StartTime  string
	EndTime    string
}

// SetUnavailability records a weekly blocked window for a resource, replacing
// any previous window on the same weekday.
func (c *Catalog) SetUnavailability(ctx context.Context, input UnavailabilityInput) (err error) {
	if c == nil {
		return fmt.Errorf("Catalog is nil")
	}

	logger := c.loggerWith(ctx, "SetUnavailability",
		"resource_id", input.ResourceID,
		"day_of_week", int(input.DayOfWeek),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set unavailability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "unavailability window set")
	}()

	vErr := &ValidationError{}
	if input.DayOfWeek < time.Sunday || input.DayOfWeek > time.Saturday {
		vErr.add("day_of_week", "day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	start, startErr := availability.ParseClock(input.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be formatted as HH:MM:SS")
	}
	end, endErr := availability.ParseClock(input.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be formatted as HH:MM:SS")
	}
	if startErr == nil && endErr == nil && end <= start {
		vErr.add("end_time", "end time must be after start time")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if _, getErr := c.resources.GetResource(ctx, input.ResourceID); getErr != nil {
		return mapStoreError(getErr)
	}

	err = c.resources.SetUnavailability(ctx, persistence.AvailabilityWindow{
		ResourceID: input.ResourceID,
		DayOfWeek:  input.DayOfWeek,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
	})
	if err != nil {
		err = mapStoreError(err)
	}
	return
}

// ClearUnavailability removes the blocked window for a resource on a weekday.
func (c *Catalog) ClearUnavailability(ctx context.Context, resourceID string, day time.Weekday) error {
	if c == nil {
		return fmt.Errorf("Catalog is nil")
	}
	err := c.resources.ClearUnavailability(ctx, resourceID, day)
	if err != nil {
		return mapStoreError(err)
	}
	c.loggerWith(ctx, "ClearUnavailability", "resource_id", resourceID, "day_of_week", int(day)).
		InfoContext(ctx, "unavailability window cleared")
	return nil
}

// ListUnavailability returns a resource's weekly blocked windows.
func (c *Catalog) ListUnavailability(ctx context.Context, resourceID string) ([]persistence.AvailabilityWindow, error) {
	windows, err := c.resources.ListAvailability(ctx, resourceID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return windows, nil
}
