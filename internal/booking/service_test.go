package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/facility-booking/internal/persistence"
	"github.com/example/facility-booking/internal/recurrence"
	"github.com/example/facility-booking/internal/testfixtures"
)

type appointmentStoreStub struct {
	appointments map[string]persistence.Appointment
	assignments  map[string][]persistence.ResourceAssignment
	overlapping  []persistence.Appointment

	createErr       error
	createErrAfter  int
	failFirstCreate bool
	createCalls     int
	updateErr       error
	replaceErr      error
	listErr         error
	replacedWith    []persistence.ResourceAssignment
	replacedID      string
	updatedRecord   persistence.Appointment
	deletedID       string
}

func newAppointmentStoreStub() *appointmentStoreStub {
	return &appointmentStoreStub{
		appointments: make(map[string]persistence.Appointment),
		assignments:  make(map[string][]persistence.ResourceAssignment),
	}
}

func (s *appointmentStoreStub) CreateAppointment(ctx context.Context, appointment persistence.Appointment, assignments []persistence.ResourceAssignment) error {
	s.createCalls++
	if s.failFirstCreate && s.createCalls == 1 {
		return persistence.ErrDuplicate
	}
	if s.createErr != nil && s.createCalls > s.createErrAfter {
		return s.createErr
	}
	s.appointments[appointment.ID] = appointment
	if len(assignments) > 0 {
		stored := make([]persistence.ResourceAssignment, len(assignments))
		copy(stored, assignments)
		s.assignments[appointment.ID] = stored
	}
	return nil
}

func (s *appointmentStoreStub) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedRecord = appointment
	s.appointments[appointment.ID] = appointment
	return nil
}

func (s *appointmentStoreStub) UpdateAppointmentWithAssignments(ctx context.Context, appointment persistence.Appointment, assignments []persistence.ResourceAssignment) error {
	// Mirrors the store contract: a failure on either half leaves nothing
	// applied.
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.updatedRecord = appointment
	s.appointments[appointment.ID] = appointment
	s.replacedID = appointment.ID
	s.replacedWith = assignments
	s.assignments[appointment.ID] = assignments
	return nil
}

func (s *appointmentStoreStub) ReplaceAssignments(ctx context.Context, appointmentID string, assignments []persistence.ResourceAssignment) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replacedID = appointmentID
	s.replacedWith = assignments
	s.assignments[appointmentID] = assignments
	return nil
}

func (s *appointmentStoreStub) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	appointment, ok := s.appointments[id]
	if !ok {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	return appointment, nil
}

func (s *appointmentStoreStub) GetAppointmentByReference(ctx context.Context, code string) (persistence.Appointment, error) {
	for _, appointment := range s.appointments {
		if appointment.ReferenceCode == code {
			return appointment, nil
		}
	}
	return persistence.Appointment{}, persistence.ErrNotFound
}

func (s *appointmentStoreStub) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]persistence.Appointment, 0, len(s.appointments))
	for _, appointment := range s.appointments {
		out = append(out, appointment)
	}
	return out, nil
}

func (s *appointmentStoreStub) ListOverlapping(ctx context.Context, query persistence.OverlapQuery) ([]persistence.Appointment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]persistence.Appointment, len(s.overlapping))
	copy(out, s.overlapping)
	return out, nil
}

func (s *appointmentStoreStub) ListAssignments(ctx context.Context, appointmentID string) ([]persistence.ResourceAssignment, error) {
	return s.assignments[appointmentID], nil
}

func (s *appointmentStoreStub) DeleteAppointment(ctx context.Context, id string) error {
	if _, ok := s.appointments[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deletedID = id
	delete(s.appointments, id)
	delete(s.assignments, id)
	return nil
}

type serviceLookupStub struct {
	service persistence.Service
	err     error
}

func (s *serviceLookupStub) GetService(ctx context.Context, id string) (persistence.Service, error) {
	if s.err != nil {
		return persistence.Service{}, s.err
	}
	return s.service, nil
}

type resourceLookupStub struct {
	resources []persistence.Resource
	windows   map[string][]persistence.AvailabilityWindow
	err       error
}

func (r *resourceLookupStub) GetResourcesByIDs(ctx context.Context, ids []string) ([]persistence.Resource, error) {
	if r.err != nil {
		return nil, r.err
	}
	known := make(map[string]persistence.Resource, len(r.resources))
	for _, resource := range r.resources {
		known[resource.ID] = resource
	}
	out := make([]persistence.Resource, 0, len(ids))
	for _, id := range ids {
		if resource, ok := known[id]; ok {
			out = append(out, resource)
		}
	}
	return out, nil
}

func (r *resourceLookupStub) ListResources(ctx context.Context, includeInactive bool) ([]persistence.Resource, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]persistence.Resource, len(r.resources))
	copy(out, r.resources)
	return out, nil
}

func (r *resourceLookupStub) ListAvailability(ctx context.Context, resourceID string) ([]persistence.AvailabilityWindow, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.windows[resourceID], nil
}

type userDirectoryStub struct {
	missing []string
	err     error
}

func (u *userDirectoryStub) MissingUserIDs(ctx context.Context, ids []string) ([]string, error) {
	if u.err != nil {
		return nil, u.err
	}
	return u.missing, nil
}

var testNow = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

func newTestScheduler(store *appointmentStoreStub) *Scheduler {
	return NewScheduler(
		store,
		&serviceLookupStub{service: persistence.Service{ID: "service-1", DurationMinutes: 45}},
		&resourceLookupStub{resources: []persistence.Resource{{ID: "room-1", IsActive: true}}},
		&userDirectoryStub{},
		testfixtures.NewIDGenerator("appt").NextFunc(),
		testfixtures.NewIDGenerator("REF").NextFunc(),
		testfixtures.NewClock(testNow).NowFunc(),
		0,
		nil,
	)
}

func validInput() CreateAppointmentInput {
	return CreateAppointmentInput{
		OwnerID:   "user-1",
		ServiceID: "service-1",
		Title:     "Consultation",
		Start:     testNow.Add(24 * time.Hour),
	}
}

func TestCreateAppointmentValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	_, err := svc.CreateAppointment(context.Background(), CreateAppointmentInput{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"owner_id", "service_id", "title", "start"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected field error for %q, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestCreateAppointmentRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	input := validInput()
	input.Status = "tentative"
	if _, err := svc.CreateAppointment(context.Background(), input); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreateAppointmentComputesEndFromServiceDuration(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	svc := newTestScheduler(store)

	input := validInput()
	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.appointments[created.ID]
	if want := input.Start.Add(45 * time.Minute); !stored.End.Equal(want) {
		t.Fatalf("expected end %v from service duration, got %v", want, stored.End)
	}
	if stored.Status != StatusPending {
		t.Fatalf("expected default status pending, got %q", stored.Status)
	}
}

func TestCreateAppointmentExplicitDurationWins(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	svc := newTestScheduler(store)

	input := validInput()
	input.DurationMinutes = 90
	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.appointments[created.ID]
	if want := input.Start.Add(90 * time.Minute); !stored.End.Equal(want) {
		t.Fatalf("expected end %v from explicit duration, got %v", want, stored.End)
	}
}

func TestCreateAppointmentRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	input := validInput()
	input.End = input.Start.Add(-time.Hour)
	_, err := svc.CreateAppointment(context.Background(), input)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time field error, got %v", vErr.FieldErrors)
	}
}

func TestCreateAppointmentRejectsUnknownUsers(t *testing.T) {
	t.Parallel()

	svc := NewScheduler(
		newAppointmentStoreStub(),
		&serviceLookupStub{service: persistence.Service{ID: "service-1"}},
		&resourceLookupStub{},
		&userDirectoryStub{missing: []string{"user-1"}},
		testfixtures.NewIDGenerator("appt").NextFunc(),
		testfixtures.NewIDGenerator("REF").NextFunc(),
		testfixtures.NewClock(testNow).NowFunc(),
		0,
		nil,
	)

	_, err := svc.CreateAppointment(context.Background(), validInput())

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["users"]; !ok {
		t.Fatalf("expected users field error, got %v", vErr.FieldErrors)
	}
}

func TestCreateAppointmentRejectsUnknownResources(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	input := validInput()
	input.ResourceIDs = []string{"room-1", "room-404"}
	_, err := svc.CreateAppointment(context.Background(), input)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["resource_ids"]; !ok {
		t.Fatalf("expected resource_ids field error, got %v", vErr.FieldErrors)
	}
}

func TestCreateAppointmentRejectsUnparseablePattern(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	input := validInput()
	input.RecurrencePattern = "HOURLY:1"
	if _, err := svc.CreateAppointment(context.Background(), input); !errors.Is(err, recurrence.ErrUnsupportedPattern) {
		t.Fatalf("expected ErrUnsupportedPattern, got %v", err)
	}
}

func TestCreateAppointmentStoresAssignmentsAtomically(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	svc := newTestScheduler(store)

	input := validInput()
	input.ResourceIDs = []string{"room-1", "room-1"}
	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments := store.assignments[created.ID]
	if len(assignments) != 1 {
		t.Fatalf("expected duplicate resource IDs to collapse to one assignment, got %v", assignments)
	}
	if assignments[0].ResourceID != "room-1" {
		t.Fatalf("unexpected assignment %v", assignments[0])
	}
	// Assignment rows start out confirmed even while the booking is pending.
	if assignments[0].Status != StatusConfirmed {
		t.Fatalf("expected confirmed assignment, got %q", assignments[0].Status)
	}
}

func TestCreateAppointmentUsesConfiguredDefaultDuration(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	svc := NewScheduler(
		store,
		&serviceLookupStub{service: persistence.Service{ID: "service-1"}},
		&resourceLookupStub{},
		&userDirectoryStub{},
		testfixtures.NewIDGenerator("appt").NextFunc(),
		testfixtures.NewIDGenerator("REF").NextFunc(),
		testfixtures.NewClock(testNow).NowFunc(),
		25*time.Minute,
		nil,
	)

	input := validInput()
	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := store.appointments[created.ID]
	if want := input.Start.Add(25 * time.Minute); !stored.End.Equal(want) {
		t.Fatalf("expected configured default to produce end %v, got %v", want, stored.End)
	}
}

func TestResolveEnd(t *testing.T) {
	t.Parallel()

	start := testNow.Add(time.Hour)

	t.Run("explicit end wins", func(t *testing.T) {
		svc := newTestScheduler(newAppointmentStoreStub())
		explicit := start.Add(2 * time.Hour)
		end, err := svc.ResolveEnd(context.Background(), "service-1", start, explicit, 15)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !end.Equal(explicit) {
			t.Fatalf("expected %v, got %v", explicit, end)
		}
	})

	t.Run("explicit duration wins over service default", func(t *testing.T) {
		svc := newTestScheduler(newAppointmentStoreStub())
		end, err := svc.ResolveEnd(context.Background(), "service-1", start, time.Time{}, 15)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := start.Add(15 * time.Minute); !end.Equal(want) {
			t.Fatalf("expected %v, got %v", want, end)
		}
	})

	t.Run("service default applies", func(t *testing.T) {
		svc := newTestScheduler(newAppointmentStoreStub())
		end, err := svc.ResolveEnd(context.Background(), "service-1", start, time.Time{}, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := start.Add(45 * time.Minute); !end.Equal(want) {
			t.Fatalf("expected service duration end %v, got %v", want, end)
		}
	})

	t.Run("unknown service falls back to the default", func(t *testing.T) {
		svc := NewScheduler(
			newAppointmentStoreStub(),
			&serviceLookupStub{err: persistence.ErrNotFound},
			&resourceLookupStub{},
			&userDirectoryStub{},
			testfixtures.NewIDGenerator("appt").NextFunc(),
			testfixtures.NewIDGenerator("REF").NextFunc(),
			testfixtures.NewClock(testNow).NowFunc(),
			0,
			nil,
		)
		end, err := svc.ResolveEnd(context.Background(), "service-404", start, time.Time{}, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := start.Add(time.Hour); !end.Equal(want) {
			t.Fatalf("expected fallback end %v, got %v", want, end)
		}
	})
}

func TestCreateAppointmentRetriesOnceOnDuplicate(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.createErr = persistence.ErrDuplicate
	store.createErrAfter = 0
	svc := newTestScheduler(store)

	_, err := svc.CreateAppointment(context.Background(), validInput())
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists after exhausted retries, got %v", err)
	}
	if store.createCalls != 2 {
		t.Fatalf("expected exactly 2 create attempts, got %d", store.createCalls)
	}
}

func TestCreateAppointmentRetrySucceedsWithFreshIdentifiers(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.failFirstCreate = true
	svc := newTestScheduler(store)

	created, err := svc.CreateAppointment(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if store.createCalls != 2 {
		t.Fatalf("expected 2 create attempts, got %d", store.createCalls)
	}
	// The sequential generators yield -2 on the retried attempt.
	if created.ID != "appt-2" || created.ReferenceCode != "REF-2" {
		t.Fatalf("expected regenerated identifiers, got %+v", created)
	}
}

func TestCreateAppointmentExpandsChildOccurrences(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	svc := newTestScheduler(store)

	start := time.Date(2024, time.March, 18, 10, 30, 0, 0, time.UTC)
	endDate := time.Date(2024, time.March, 21, 0, 0, 0, 0, time.UTC)

	input := validInput()
	input.Start = start
	input.RecurrencePattern = "DAILY:1"
	input.RecurrenceEndDate = &endDate

	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Parent plus occurrences on the 19th, 20th, and 21st.
	if len(store.appointments) != 4 {
		t.Fatalf("expected 4 stored appointments, got %d", len(store.appointments))
	}

	parent := store.appointments[created.ID]
	if !parent.IsRecurring {
		t.Fatal("expected parent to be flagged recurring")
	}

	for id, appointment := range store.appointments {
		if id == created.ID {
			continue
		}
		if appointment.IsRecurring {
			t.Fatalf("child %s must not be recurring", id)
		}
		if appointment.ParentID == nil || *appointment.ParentID != created.ID {
			t.Fatalf("child %s must reference the parent", id)
		}
		if got := appointment.Start.Hour(); got != 10 {
			t.Fatalf("child %s must keep the parent's time of day, got hour %d", id, got)
		}
		if want := appointment.Start.Add(45 * time.Minute); !appointment.End.Equal(want) {
			t.Fatalf("child %s must keep the parent's duration", id)
		}
		if len(store.assignments[id]) != 0 {
			t.Fatalf("child %s must not inherit resource assignments", id)
		}
	}
}

func TestCreateAppointmentSkipsPastOccurrences(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	svc := newTestScheduler(store)

	// First occurrence a week in the past; only dates after the fixed clock
	// survive.
	start := testNow.AddDate(0, 0, -7)
	endDate := testNow.AddDate(0, 0, 2)

	input := validInput()
	input.Start = start
	input.RecurrencePattern = "DAILY:1"
	input.RecurrenceEndDate = &endDate

	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for id, appointment := range store.appointments {
		if id == created.ID {
			continue
		}
		if appointment.Start.Before(testNow) {
			t.Fatalf("child occurrence %s starts in the past: %v", id, appointment.Start)
		}
	}
}

func TestCreateAppointmentChildFailuresAreBestEffort(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	// Parent insert succeeds, every child insert fails.
	store.createErr = errors.New("disk full")
	store.createErrAfter = 1
	svc := newTestScheduler(store)

	endDate := testNow.AddDate(0, 0, 3)
	input := validInput()
	input.RecurrencePattern = "DAILY:1"
	input.RecurrenceEndDate = &endDate

	created, err := svc.CreateAppointment(context.Background(), input)
	if err != nil {
		t.Fatalf("parent creation must succeed despite child failures, got %v", err)
	}
	if _, ok := store.appointments[created.ID]; !ok {
		t.Fatal("parent appointment missing")
	}
	if len(store.appointments) != 1 {
		t.Fatalf("expected only the parent to be stored, got %d", len(store.appointments))
	}
}

func TestFindConflictsAppliesDetectorRules(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	slotStart := testNow.Add(time.Hour)
	store.overlapping = []persistence.Appointment{
		{ID: "busy", Status: StatusConfirmed, Start: slotStart, End: slotStart.Add(time.Hour)},
		{ID: "adjacent", Status: StatusConfirmed, Start: slotStart.Add(time.Hour), End: slotStart.Add(2 * time.Hour)},
	}
	svc := newTestScheduler(store)

	conflicts, err := svc.FindConflicts(context.Background(), ConflictQuery{
		Start: slotStart,
		End:   slotStart.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != "busy" {
		t.Fatalf("expected only the overlapping booking, got %v", conflicts)
	}
}

func TestConflictCheckThenCreateRace(t *testing.T) {
	t.Parallel()

	// Conflict checking and creation are separate calls, so two callers can
	// both observe a clear slot and both persist overlapping bookings.
	store := newAppointmentStoreStub()
	svc := newTestScheduler(store)

	slot := ConflictQuery{Start: testNow.Add(time.Hour), End: testNow.Add(2 * time.Hour)}

	for caller := 0; caller < 2; caller++ {
		conflicts, err := svc.FindConflicts(context.Background(), slot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conflicts) != 0 {
			t.Fatalf("expected clear slot for caller %d", caller)
		}
	}

	for caller := 0; caller < 2; caller++ {
		input := validInput()
		input.Start = slot.Start
		input.End = slot.End
		if _, err := svc.CreateAppointment(context.Background(), input); err != nil {
			t.Fatalf("create %d failed: %v", caller, err)
		}
	}

	if len(store.appointments) != 2 {
		t.Fatalf("expected both overlapping bookings to persist, got %d", len(store.appointments))
	}
}

func TestUpdateAppointmentRequiresFields(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateAppointmentAppliesPartialFields(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	existing := persistence.Appointment{
		ID:        "appt-1",
		UserID:    "user-1",
		ServiceID: "service-1",
		Title:     "Original",
		Start:     testNow.Add(time.Hour),
		End:       testNow.Add(2 * time.Hour),
		Status:    StatusPending,
	}
	store.appointments[existing.ID] = existing
	svc := newTestScheduler(store)

	title := "Renamed"
	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := store.appointments["appt-1"]
	if updated.Title != "Renamed" {
		t.Fatalf("expected title update, got %q", updated.Title)
	}
	if !updated.Start.Equal(existing.Start) || !updated.End.Equal(existing.End) {
		t.Fatal("untouched fields must not change")
	}
	if updated.Status != StatusPending {
		t.Fatalf("untouched status changed to %q", updated.Status)
	}
}

func TestUpdateAppointmentRecomputesEndFromDuration(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{
		ID:     "appt-1",
		Start:  testNow.Add(time.Hour),
		End:    testNow.Add(2 * time.Hour),
		Status: StatusPending,
	}
	svc := newTestScheduler(store)

	newStart := testNow.Add(3 * time.Hour)
	minutes := 30
	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{
		Start:           &newStart,
		DurationMinutes: &minutes,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := store.appointments["appt-1"]
	if want := newStart.Add(30 * time.Minute); !updated.End.Equal(want) {
		t.Fatalf("expected recomputed end %v, got %v", want, updated.End)
	}
}

func TestUpdateAppointmentRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{
		ID:     "appt-1",
		Start:  testNow.Add(time.Hour),
		End:    testNow.Add(2 * time.Hour),
		Status: StatusPending,
	}
	svc := newTestScheduler(store)

	newStart := testNow.Add(5 * time.Hour)
	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{Start: &newStart})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time field error, got %v", vErr.FieldErrors)
	}
}

func TestUpdateAppointmentReplacesAssignments(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{
		ID:     "appt-1",
		Start:  testNow.Add(time.Hour),
		End:    testNow.Add(2 * time.Hour),
		Status: StatusConfirmed,
	}
	store.assignments["appt-1"] = []persistence.ResourceAssignment{{AppointmentID: "appt-1", ResourceID: "room-9"}}
	svc := newTestScheduler(store)

	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{ResourceIDs: []string{"room-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.replacedID != "appt-1" {
		t.Fatal("expected ReplaceAssignments to be called")
	}
	if len(store.replacedWith) != 1 || store.replacedWith[0].ResourceID != "room-1" {
		t.Fatalf("unexpected replacement set %v", store.replacedWith)
	}
}

func TestUpdateAppointmentUnknownResourceLeavesRowUntouched(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{
		ID:     "appt-1",
		Title:  "Original",
		Start:  testNow.Add(time.Hour),
		End:    testNow.Add(2 * time.Hour),
		Status: StatusPending,
	}
	svc := newTestScheduler(store)

	title := "Renamed"
	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{
		Title:       &title,
		ResourceIDs: []string{"room-404"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["resource_ids"]; !ok {
		t.Fatalf("expected resource_ids field error, got %v", vErr.FieldErrors)
	}
	if got := store.appointments["appt-1"].Title; got != "Original" {
		t.Fatalf("rejected update must not persist field changes, title is %q", got)
	}
}

func TestUpdateAppointmentAssignmentFailureLeavesRowUntouched(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{
		ID:     "appt-1",
		Title:  "Original",
		Start:  testNow.Add(time.Hour),
		End:    testNow.Add(2 * time.Hour),
		Status: StatusPending,
	}
	store.replaceErr = errors.New("disk full")
	svc := newTestScheduler(store)

	title := "Renamed"
	err := svc.UpdateAppointment(context.Background(), "appt-1", UpdateAppointmentFields{
		Title:       &title,
		ResourceIDs: []string{"room-1"},
	})
	if err == nil {
		t.Fatal("expected error from failed assignment replacement")
	}
	if got := store.appointments["appt-1"].Title; got != "Original" {
		t.Fatalf("failed update must not persist field changes, title is %q", got)
	}
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	title := "anything"
	if err := svc.UpdateAppointment(context.Background(), "missing", UpdateAppointmentFields{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown status", func(t *testing.T) {
		svc := newTestScheduler(newAppointmentStoreStub())
		if err := svc.UpdateStatus(context.Background(), "appt-1", "archived"); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("missing appointment", func(t *testing.T) {
		svc := newTestScheduler(newAppointmentStoreStub())
		if err := svc.UpdateStatus(context.Background(), "missing", StatusConfirmed); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("repeating current status succeeds", func(t *testing.T) {
		store := newAppointmentStoreStub()
		store.appointments["appt-1"] = persistence.Appointment{ID: "appt-1", Status: StatusConfirmed}
		svc := newTestScheduler(store)

		if err := svc.UpdateStatus(context.Background(), "appt-1", StatusConfirmed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.appointments["appt-1"].Status != StatusConfirmed {
			t.Fatal("status changed unexpectedly")
		}
	})

	t.Run("applies new status", func(t *testing.T) {
		store := newAppointmentStoreStub()
		store.appointments["appt-1"] = persistence.Appointment{ID: "appt-1", Status: StatusPending}
		svc := newTestScheduler(store)

		if err := svc.UpdateStatus(context.Background(), "appt-1", StatusCancelled); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.appointments["appt-1"].Status != StatusCancelled {
			t.Fatalf("expected cancelled, got %q", store.appointments["appt-1"].Status)
		}
	})
}

func TestDeleteAppointment(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{ID: "appt-1"}
	svc := newTestScheduler(store)

	if err := svc.DeleteAppointment(context.Background(), "appt-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteAppointment(context.Background(), "appt-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetAppointmentIncludesResourceIDs(t *testing.T) {
	t.Parallel()

	store := newAppointmentStoreStub()
	store.appointments["appt-1"] = persistence.Appointment{ID: "appt-1", Title: "With rooms"}
	store.assignments["appt-1"] = []persistence.ResourceAssignment{
		{AppointmentID: "appt-1", ResourceID: "room-1"},
		{AppointmentID: "appt-1", ResourceID: "room-2"},
	}
	svc := newTestScheduler(store)

	appointment, err := svc.GetAppointment(context.Background(), "appt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appointment.ResourceIDs) != 2 {
		t.Fatalf("expected 2 resource IDs, got %v", appointment.ResourceIDs)
	}
}

func TestExpandRecurrencePreviewIsCached(t *testing.T) {
	t.Parallel()

	svc := newTestScheduler(newAppointmentStoreStub())

	first := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)

	dates, err := svc.ExpandRecurrence(first, "DAILY:1", end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %v", dates)
	}

	again, err := svc.ExpandRecurrence(first, "DAILY:1", end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != len(dates) {
		t.Fatalf("cached result differs: %v vs %v", again, dates)
	}
}

func TestAvailableResourcesFiltersBlockedSlots(t *testing.T) {
	t.Parallel()

	// 2024-03-18 is a Monday.
	slotStart := time.Date(2024, time.March, 18, 10, 0, 0, 0, time.UTC)

	resources := &resourceLookupStub{
		resources: []persistence.Resource{
			{ID: "room-free", IsActive: true},
			{ID: "room-blocked", IsActive: true},
		},
		windows: map[string][]persistence.AvailabilityWindow{
			"room-blocked": {
				{ResourceID: "room-blocked", DayOfWeek: time.Monday, StartTime: "09:00:00", EndTime: "12:00:00"},
			},
		},
	}
	svc := NewScheduler(
		newAppointmentStoreStub(),
		&serviceLookupStub{},
		resources,
		&userDirectoryStub{},
		testfixtures.NewIDGenerator("appt").NextFunc(),
		testfixtures.NewIDGenerator("REF").NextFunc(),
		testfixtures.NewClock(testNow).NowFunc(),
		0,
		nil,
	)

	available, err := svc.AvailableResources(context.Background(), slotStart, slotStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(available) != 1 || available[0].ID != "room-free" {
		t.Fatalf("expected only room-free, got %v", available)
	}
}
