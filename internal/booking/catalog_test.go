package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/facility-booking/internal/persistence"
	"github.com/example/facility-booking/internal/testfixtures"
)

type userRepoStub struct {
	created persistence.User
	err     error
}

func (u *userRepoStub) CreateUser(ctx context.Context, user persistence.User) error {
	if u.err != nil {
		return u.err
	}
	u.created = user
	return nil
}

func (u *userRepoStub) UpdateUser(ctx context.Context, user persistence.User) error { return u.err }
func (u *userRepoStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if u.err != nil {
		return persistence.User{}, u.err
	}
	return u.created, nil
}
func (u *userRepoStub) ListUsers(ctx context.Context) ([]persistence.User, error) { return nil, u.err }
func (u *userRepoStub) DeleteUser(ctx context.Context, id string) error           { return u.err }
func (u *userRepoStub) MissingUserIDs(ctx context.Context, ids []string) ([]string, error) {
	return nil, u.err
}

type serviceRepoStub struct {
	created persistence.Service
	err     error
}

func (s *serviceRepoStub) CreateService(ctx context.Context, service persistence.Service) error {
	if s.err != nil {
		return s.err
	}
	s.created = service
	return nil
}
func (s *serviceRepoStub) UpdateService(ctx context.Context, service persistence.Service) error {
	return s.err
}
func (s *serviceRepoStub) GetService(ctx context.Context, id string) (persistence.Service, error) {
	return s.created, s.err
}
func (s *serviceRepoStub) ListServices(ctx context.Context) ([]persistence.Service, error) {
	return nil, s.err
}
func (s *serviceRepoStub) DeleteService(ctx context.Context, id string) error { return s.err }

type resourceRepoStub struct {
	created    persistence.Resource
	updated    persistence.Resource
	window     persistence.AvailabilityWindow
	clearedID  string
	clearedDay time.Weekday
	windows    []persistence.AvailabilityWindow
	getErr     error
	createErr  error
}

func (r *resourceRepoStub) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = resource
	return nil
}
func (r *resourceRepoStub) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	r.updated = resource
	return nil
}
func (r *resourceRepoStub) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	if r.getErr != nil {
		return persistence.Resource{}, r.getErr
	}
	if r.created.ID == "" {
		return persistence.Resource{ID: id, IsActive: true}, nil
	}
	return r.created, nil
}
func (r *resourceRepoStub) GetResourcesByIDs(ctx context.Context, ids []string) ([]persistence.Resource, error) {
	return nil, nil
}
func (r *resourceRepoStub) ListResources(ctx context.Context, includeInactive bool) ([]persistence.Resource, error) {
	return nil, nil
}
func (r *resourceRepoStub) DeleteResource(ctx context.Context, id string) error { return nil }
func (r *resourceRepoStub) SetUnavailability(ctx context.Context, window persistence.AvailabilityWindow) error {
	r.window = window
	return nil
}
func (r *resourceRepoStub) ClearUnavailability(ctx context.Context, resourceID string, day time.Weekday) error {
	r.clearedID = resourceID
	r.clearedDay = day
	return nil
}
func (r *resourceRepoStub) ListAvailability(ctx context.Context, resourceID string) ([]persistence.AvailabilityWindow, error) {
	return r.windows, nil
}

func newTestCatalog(users *userRepoStub, services *serviceRepoStub, resources *resourceRepoStub) *Catalog {
	return NewCatalog(users, services, resources, testfixtures.NewIDGenerator("id").NextFunc(), testfixtures.NewClock(testNow).NowFunc(), nil)
}

func TestCatalogCreateUser(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		users := &userRepoStub{}
		catalog := newTestCatalog(users, &serviceRepoStub{}, &resourceRepoStub{})

		user, err := catalog.CreateUser(context.Background(), CreateUserInput{
			Email:       "  alice@example.com ",
			DisplayName: "Alice",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Fatalf("expected trimmed email, got %q", user.Email)
		}
		if !user.IsActive {
			t.Fatal("new users must be active")
		}
		if users.created.ID == "" {
			t.Fatal("expected generated ID")
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, &resourceRepoStub{})

		_, err := catalog.CreateUser(context.Background(), CreateUserInput{Email: "nope", DisplayName: "X"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Fatalf("expected email field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &userRepoStub{err: persistence.ErrDuplicate}
		catalog := newTestCatalog(users, &serviceRepoStub{}, &resourceRepoStub{})

		_, err := catalog.CreateUser(context.Background(), CreateUserInput{
			Email:       "alice@example.com",
			DisplayName: "Alice",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestCatalogCreateService(t *testing.T) {
	t.Parallel()

	services := &serviceRepoStub{}
	catalog := newTestCatalog(&userRepoStub{}, services, &resourceRepoStub{})

	service, err := catalog.CreateService(context.Background(), CreateServiceInput{
		Name:            "Deep clean",
		DurationMinutes: 120,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.DurationMinutes != 120 {
		t.Fatalf("expected duration to persist, got %d", service.DurationMinutes)
	}

	_, err = catalog.CreateService(context.Background(), CreateServiceInput{Name: "", DurationMinutes: -5})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.FieldErrors) != 2 {
		t.Fatalf("expected name and duration errors, got %v", vErr.FieldErrors)
	}
}

func TestCatalogCreateResource(t *testing.T) {
	t.Parallel()

	resources := &resourceRepoStub{}
	catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, resources)

	capacity := 12
	resource, err := catalog.CreateResource(context.Background(), CreateResourceInput{
		Name:     "Conference Hall",
		Capacity: &capacity,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resource.IsActive {
		t.Fatal("new resources must be active")
	}

	zero := 0
	_, err = catalog.CreateResource(context.Background(), CreateResourceInput{Name: "X", Capacity: &zero})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for zero capacity, got %v", err)
	}
}

func TestCatalogDeactivateResource(t *testing.T) {
	t.Parallel()

	resources := &resourceRepoStub{created: persistence.Resource{ID: "room-1", IsActive: true}}
	catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, resources)

	if err := catalog.DeactivateResource(context.Background(), "room-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resources.updated.IsActive {
		t.Fatal("expected resource marked inactive")
	}
	if !resources.updated.UpdatedAt.Equal(testNow) {
		t.Fatalf("expected updated_at %v, got %v", testNow, resources.updated.UpdatedAt)
	}
}

func TestCatalogSetUnavailability(t *testing.T) {
	t.Parallel()

	t.Run("valid window", func(t *testing.T) {
		resources := &resourceRepoStub{}
		catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, resources)

		err := catalog.SetUnavailability(context.Background(), UnavailabilityInput{
			ResourceID: "room-1",
			DayOfWeek:  time.Monday,
			StartTime:  "09:00:00",
			EndTime:    "12:00:00",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resources.window.ResourceID != "room-1" || resources.window.DayOfWeek != time.Monday {
			t.Fatalf("unexpected stored window %+v", resources.window)
		}
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, &resourceRepoStub{})

		err := catalog.SetUnavailability(context.Background(), UnavailabilityInput{
			ResourceID: "room-1",
			DayOfWeek:  time.Monday,
			StartTime:  "12:00:00",
			EndTime:    "09:00:00",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["end_time"]; !ok {
			t.Fatalf("expected end_time field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		resources := &resourceRepoStub{getErr: persistence.ErrNotFound}
		catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, resources)

		err := catalog.SetUnavailability(context.Background(), UnavailabilityInput{
			ResourceID: "missing",
			DayOfWeek:  time.Monday,
			StartTime:  "09:00:00",
			EndTime:    "12:00:00",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCatalogClearUnavailability(t *testing.T) {
	t.Parallel()

	resources := &resourceRepoStub{}
	catalog := newTestCatalog(&userRepoStub{}, &serviceRepoStub{}, resources)

	if err := catalog.ClearUnavailability(context.Background(), "room-1", time.Friday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resources.clearedID != "room-1" || resources.clearedDay != time.Friday {
		t.Fatalf("unexpected cleared window %s %v", resources.clearedID, resources.clearedDay)
	}
}
