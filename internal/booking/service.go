package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/facility-booking/internal/availability"
	"github.com/example/facility-booking/internal/conflict"
	"github.com/example/facility-booking/internal/persistence"
	"github.com/example/facility-booking/internal/recurrence"
)

// AppointmentStore captures the persistence interactions needed by the
// scheduler. Create, Delete, and UpdateAppointmentWithAssignments are atomic
// over the appointment row and its assignment rows.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appointment persistence.Appointment, assignments []persistence.ResourceAssignment) error
	UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error
	UpdateAppointmentWithAssignments(ctx context.Context, appointment persistence.Appointment, assignments []persistence.ResourceAssignment) error
	ReplaceAssignments(ctx context.Context, appointmentID string, assignments []persistence.ResourceAssignment) error
	GetAppointment(ctx context.Context, id string) (persistence.Appointment, error)
	GetAppointmentByReference(ctx context.Context, code string) (persistence.Appointment, error)
	ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error)
	ListOverlapping(ctx context.Context, query persistence.OverlapQuery) ([]persistence.Appointment, error)
	ListAssignments(ctx context.Context, appointmentID string) ([]persistence.ResourceAssignment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// ServiceLookup exposes service catalog lookups.
type ServiceLookup interface {
	GetService(ctx context.Context, id string) (persistence.Service, error)
}

// ResourceLookup exposes resource catalog lookups together with weekly
// availability windows.
type ResourceLookup interface {
	GetResourcesByIDs(ctx context.Context, ids []string) ([]persistence.Resource, error)
	ListResources(ctx context.Context, includeInactive bool) ([]persistence.Resource, error)
	ListAvailability(ctx context.Context, resourceID string) ([]persistence.AvailabilityWindow, error)
}

// UserDirectory exposes user existence checks.
type UserDirectory interface {
	MissingUserIDs(ctx context.Context, ids []string) ([]string, error)
}

// Scheduler orchestrates validation, conflict scanning, recurrence expansion,
// and persistence for appointment operations.
//
// Conflict checking and creation are deliberately two separate calls: callers
// run FindConflicts first and decide whether to proceed, which lets
// conflict-tolerant flows reuse the same core. Two concurrent callers can
// therefore both pass the conflict check and both create overlapping
// bookings; this race is accepted and documented rather than hidden behind
// partial locking.
type Scheduler struct {
	appointments    AppointmentStore
	services        ServiceLookup
	resources       ResourceLookup
	users           UserDirectory
	idGenerator     func() string
	refGenerator    func() string
	now             func() time.Time
	logger          *slog.Logger
	previews        *previewCache
	defaultDuration time.Duration
}

// NewScheduler wires dependencies for appointment operations. idGenerator and
// refGenerator must yield unique values; now defaults to time.Now.
// defaultDuration is the appointment length used when neither the request nor
// the service specifies one; zero or negative falls back to one hour.
func NewScheduler(
	appointments AppointmentStore,
	services ServiceLookup,
	resources ResourceLookup,
	users UserDirectory,
	idGenerator func() string,
	refGenerator func() string,
	now func() time.Time,
	defaultDuration time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if refGenerator == nil {
		refGenerator = NewReferenceCode
	}
	if now == nil {
		now = time.Now
	}
	if defaultDuration <= 0 {
		defaultDuration = time.Hour
	}
	return &Scheduler{
		appointments:    appointments,
		services:        services,
		resources:       resources,
		users:           users,
		idGenerator:     idGenerator,
		refGenerator:    refGenerator,
		now:             now,
		logger:          defaultLogger(logger),
		previews:        newPreviewCache(0, 0, now),
		defaultDuration: defaultDuration,
	}
}

// FindConflicts returns the existing non-cancelled appointments whose time
// range overlaps [query.Start, query.End). When query.ResourceIDs is
// non-empty the scan is restricted to appointments holding one of those
// resources. Read-only; callers must not depend on result order.
func (s *Scheduler) FindConflicts(ctx context.Context, query ConflictQuery) ([]Appointment, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment store not configured")
	}

	records, err := s.appointments.ListOverlapping(ctx, persistence.OverlapQuery{
		Start:         query.Start,
		End:           query.End,
		ExcludeID:     query.ExcludeID,
		ResourceIDs:   query.ResourceIDs,
		ExcludeStatus: StatusCancelled,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	appointments := make([]Appointment, 0, len(records))
	for _, record := range records {
		appointment, err := s.toAppointment(ctx, record)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}

	// The storage scan is a coarse filter; the pure detector applies the
	// authoritative half-open overlap and resource sharing rules.
	detected := conflict.Detect(toConflictBookings(appointments), conflict.Candidate{
		Start:       query.Start,
		End:         query.End,
		ExcludeID:   query.ExcludeID,
		ResourceIDs: query.ResourceIDs,
	})

	matched := make(map[string]struct{}, len(detected))
	for _, booking := range detected {
		matched[booking.ID] = struct{}{}
	}

	conflicts := make([]Appointment, 0, len(detected))
	for _, appointment := range appointments {
		if _, ok := matched[appointment.ID]; ok {
			conflicts = append(conflicts, appointment)
		}
	}

	return conflicts, nil
}

// ResolveEnd computes the end of a slot the way CreateAppointment would: an
// explicit end wins, then an explicit duration, then the service's default
// duration, then the configured fallback. An unknown service ID is not an
// error here; creation validates it later.
func (s *Scheduler) ResolveEnd(ctx context.Context, serviceID string, start, end time.Time, durationMinutes int) (time.Time, error) {
	if !end.IsZero() {
		return end, nil
	}

	var service persistence.Service
	if durationMinutes <= 0 && serviceID != "" && s.services != nil {
		found, err := s.services.GetService(ctx, serviceID)
		if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return time.Time{}, err
		}
		if err == nil {
			service = found
		}
	}

	return start.Add(s.resolveDuration(durationMinutes, service)), nil
}

// CreateAppointment validates the request, persists the parent appointment
// with its resource assignments as one atomic unit, and expands recurring
// occurrences best-effort. It does not run conflict detection; callers are
// expected to consult FindConflicts first.
func (s *Scheduler) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (CreatedAppointment, error) {
	if s == nil || s.appointments == nil {
		return CreatedAppointment{}, fmt.Errorf("appointment store not configured")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Status == "" {
		input.Status = StatusPending
	}

	vErr := &ValidationError{}
	if input.OwnerID == "" {
		vErr.add("owner_id", "owner is required")
	}
	if input.ServiceID == "" {
		vErr.add("service_id", "service is required")
	}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if !ValidStatus(input.Status) {
		return CreatedAppointment{}, ErrInvalidStatus
	}
	if vErr.HasErrors() {
		return CreatedAppointment{}, vErr
	}

	service, err := s.services.GetService(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("service_id", "service does not exist")
			return CreatedAppointment{}, vErr
		}
		return CreatedAppointment{}, err
	}

	end := input.End
	if end.IsZero() {
		end = input.Start.Add(s.resolveDuration(input.DurationMinutes, service))
	}
	if !end.After(input.Start) {
		vErr.add("time", "end must be after start")
		return CreatedAppointment{}, vErr
	}

	if err := s.ensureUsersExist(ctx, input.OwnerID, input.StaffID); err != nil {
		return CreatedAppointment{}, err
	}
	if err := s.ensureResourcesExist(ctx, input.ResourceIDs); err != nil {
		return CreatedAppointment{}, err
	}

	var pattern *string
	var recurrenceEnd *time.Time
	isRecurring := false
	if input.RecurrencePattern != "" {
		if _, err := recurrence.ParsePattern(input.RecurrencePattern); err != nil {
			return CreatedAppointment{}, err
		}
		raw := input.RecurrencePattern
		pattern = &raw
		isRecurring = true
		recurrenceEnd = input.RecurrenceEndDate
	}

	assignments := buildAssignments(input.ResourceIDs)

	record := persistence.Appointment{
		UserID:            input.OwnerID,
		ServiceID:         input.ServiceID,
		StaffID:           input.StaffID,
		Title:             input.Title,
		Description:       optionalText(input.Description),
		Start:             input.Start,
		End:               end,
		Status:            input.Status,
		IsRecurring:       isRecurring,
		RecurrencePattern: pattern,
		RecurrenceEndDate: recurrenceEnd,
	}

	created, err := s.persistWithRetry(ctx, record, assignments)
	if err != nil {
		return CreatedAppointment{}, err
	}

	if pattern != nil && recurrenceEnd != nil {
		s.createChildOccurrences(ctx, created, *pattern, *recurrenceEnd)
	}

	return CreatedAppointment{ID: created.ID, ReferenceCode: created.ReferenceCode}, nil
}

// UpdateAppointment applies a partial update: only non-nil fields change.
// Supplying Start together with DurationMinutes recomputes End. A non-nil
// ResourceIDs fully replaces the assignment set of this one appointment, in
// the same atomic unit as the field changes.
func (s *Scheduler) UpdateAppointment(ctx context.Context, appointmentID string, fields UpdateAppointmentFields) error {
	if s == nil || s.appointments == nil {
		return fmt.Errorf("appointment store not configured")
	}

	if fields.isEmpty() {
		vErr := &ValidationError{}
		vErr.add("fields", "no fields to update")
		return vErr
	}

	existing, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return mapStoreError(err)
	}

	updated := existing
	vErr := &ValidationError{}

	if fields.ServiceID != nil {
		if _, err := s.services.GetService(ctx, *fields.ServiceID); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				vErr.add("service_id", "service does not exist")
				return vErr
			}
			return err
		}
		updated.ServiceID = *fields.ServiceID
	}
	if fields.StaffID != nil {
		if err := s.ensureUsersExist(ctx, "", fields.StaffID); err != nil {
			return err
		}
		updated.StaffID = fields.StaffID
	}
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			vErr.add("title", "title is required")
			return vErr
		}
		updated.Title = title
	}
	if fields.Description != nil {
		updated.Description = optionalText(*fields.Description)
	}
	if fields.Start != nil {
		updated.Start = *fields.Start
	}
	if fields.End != nil {
		updated.End = *fields.End
	}
	if fields.Start != nil && fields.DurationMinutes != nil {
		if *fields.DurationMinutes <= 0 {
			vErr.add("duration_minutes", "duration must be positive")
			return vErr
		}
		updated.End = updated.Start.Add(time.Duration(*fields.DurationMinutes) * time.Minute)
	}
	if fields.Status != nil {
		if !ValidStatus(*fields.Status) {
			return ErrInvalidStatus
		}
		updated.Status = *fields.Status
	}
	if fields.RecurrencePattern != nil {
		if *fields.RecurrencePattern == "" {
			updated.RecurrencePattern = nil
			updated.IsRecurring = false
		} else {
			if _, err := recurrence.ParsePattern(*fields.RecurrencePattern); err != nil {
				return err
			}
			updated.RecurrencePattern = fields.RecurrencePattern
			updated.IsRecurring = true
		}
	}
	if fields.RecurrenceEndDate != nil {
		updated.RecurrenceEndDate = fields.RecurrenceEndDate
	}

	if !updated.End.After(updated.Start) {
		vErr.add("time", "end must be after start")
		return vErr
	}
	// Field changes and assignment replacement land in one atomic unit so a
	// rejected resource ID or a failing replacement cannot leave a
	// half-applied update behind.
	if fields.ResourceIDs != nil {
		if err := s.ensureResourcesExist(ctx, fields.ResourceIDs); err != nil {
			return err
		}
		assignments := buildAssignments(fields.ResourceIDs)
		if err := s.appointments.UpdateAppointmentWithAssignments(ctx, updated, assignments); err != nil {
			return mapStoreError(err)
		}
		return nil
	}

	if err := s.appointments.UpdateAppointment(ctx, updated); err != nil {
		return mapStoreError(err)
	}

	return nil
}

// UpdateStatus sets an appointment's status. The status set is closed but no
// transition graph is enforced; repeating the current status succeeds.
func (s *Scheduler) UpdateStatus(ctx context.Context, appointmentID, status string) error {
	if s == nil || s.appointments == nil {
		return fmt.Errorf("appointment store not configured")
	}

	if !ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	existing, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return mapStoreError(err)
	}

	existing.Status = status
	if err := s.appointments.UpdateAppointment(ctx, existing); err != nil {
		return mapStoreError(err)
	}

	return nil
}

// DeleteAppointment removes an appointment and its resource assignments as a
// single atomic unit. Generated child occurrences are standalone bookings and
// are deliberately left in place.
func (s *Scheduler) DeleteAppointment(ctx context.Context, appointmentID string) error {
	if s == nil || s.appointments == nil {
		return fmt.Errorf("appointment store not configured")
	}

	if err := s.appointments.DeleteAppointment(ctx, appointmentID); err != nil {
		return mapStoreError(err)
	}

	return nil
}

// GetAppointment retrieves an appointment by ID, including its resource
// assignments.
func (s *Scheduler) GetAppointment(ctx context.Context, appointmentID string) (Appointment, error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment store not configured")
	}

	record, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, mapStoreError(err)
	}

	return s.toAppointment(ctx, record)
}

// GetAppointmentByReference retrieves an appointment by its reference code.
func (s *Scheduler) GetAppointmentByReference(ctx context.Context, code string) (Appointment, error) {
	if s == nil || s.appointments == nil {
		return Appointment{}, fmt.Errorf("appointment store not configured")
	}

	record, err := s.appointments.GetAppointmentByReference(ctx, code)
	if err != nil {
		return Appointment{}, mapStoreError(err)
	}

	return s.toAppointment(ctx, record)
}

// ListAppointments enumerates appointments matching the filter ordered by
// start time.
func (s *Scheduler) ListAppointments(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	if s == nil || s.appointments == nil {
		return nil, fmt.Errorf("appointment store not configured")
	}

	records, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{
		UserID:      filter.OwnerID,
		ServiceID:   filter.ServiceID,
		Status:      filter.Status,
		StartsAfter: filter.StartsAfter,
		EndsBefore:  filter.EndsBefore,
		Search:      filter.Search,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	appointments := make([]Appointment, 0, len(records))
	for _, record := range records {
		appointment, err := s.toAppointment(ctx, record)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

// ExpandRecurrence previews the occurrence dates a pattern generates after
// firstOccurrence through endInclusive. Results are cached briefly since the
// expansion is a pure function of its inputs.
func (s *Scheduler) ExpandRecurrence(firstOccurrence time.Time, pattern string, endInclusive time.Time) ([]time.Time, error) {
	key := previewKey(firstOccurrence, pattern, endInclusive)
	if dates, ok := s.previews.Get(key); ok {
		return dates, nil
	}

	dates, err := recurrence.Expand(firstOccurrence, pattern, endInclusive)
	if err != nil {
		return nil, err
	}

	s.previews.Store(key, dates)
	return dates, nil
}

// AvailableResources returns the active resources whose weekly availability
// windows do not block the [start, end) slot.
func (s *Scheduler) AvailableResources(ctx context.Context, start, end time.Time) ([]persistence.Resource, error) {
	if s == nil || s.resources == nil {
		return nil, fmt.Errorf("resource lookup not configured")
	}

	resources, err := s.resources.ListResources(ctx, false)
	if err != nil {
		return nil, mapStoreError(err)
	}

	available := make([]persistence.Resource, 0, len(resources))
	for _, resource := range resources {
		windows, err := s.resources.ListAvailability(ctx, resource.ID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		if resourceAvailable(windows, start, end) {
			available = append(available, resource)
		}
	}

	return available, nil
}

// persistWithRetry inserts the appointment, regenerating the identifier and
// reference code once if a unique constraint collides.
func (s *Scheduler) persistWithRetry(ctx context.Context, record persistence.Appointment, assignments []persistence.ResourceAssignment) (persistence.Appointment, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		record.ID = s.idGenerator()
		record.ReferenceCode = s.refGenerator()

		err := s.appointments.CreateAppointment(ctx, record, assignments)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Appointment{}, mapStoreError(err)
		}
		lastErr = err
	}
	return persistence.Appointment{}, fmt.Errorf("%w: %v", ErrAlreadyExists, lastErr)
}

// createChildOccurrences expands the parent's recurrence pattern and creates
// one independent child appointment per future occurrence. Children carry the
// parent's time of day, duration, and status, are never themselves recurring,
// and are created best-effort: a failing occurrence is logged and skipped so
// one bad date does not block the series. Children do not inherit resource
// assignments.
func (s *Scheduler) createChildOccurrences(ctx context.Context, parent persistence.Appointment, pattern string, endInclusive time.Time) {
	logger := serviceLogger(ctx, s.logger, "scheduler", "create_occurrences", "parent_id", parent.ID)

	dates, err := recurrence.Expand(parent.Start, pattern, endInclusive)
	if err != nil {
		logger.WarnContext(ctx, "failed to expand recurrence pattern", "pattern", pattern, "error", err)
		return
	}

	duration := parent.End.Sub(parent.Start)
	now := s.now()
	created := 0

	for _, date := range dates {
		start := combineDateTime(date, parent.Start)
		if start.Before(now) {
			continue
		}

		child := persistence.Appointment{
			ID:            s.idGenerator(),
			ReferenceCode: s.refGenerator(),
			UserID:        parent.UserID,
			ServiceID:     parent.ServiceID,
			StaffID:       parent.StaffID,
			Title:         parent.Title,
			Description:   parent.Description,
			Start:         start,
			End:           start.Add(duration),
			Status:        parent.Status,
			IsRecurring:   false,
			ParentID:      &parent.ID,
		}

		if err := s.appointments.CreateAppointment(ctx, child, nil); err != nil {
			logger.WarnContext(ctx, "failed to create occurrence", "occurrence_start", start, "error", err)
			continue
		}
		created++
	}

	logger.InfoContext(ctx, "recurrence expansion finished", "occurrences", created, "candidates", len(dates))
}

func (s *Scheduler) resolveDuration(requestedMinutes int, service persistence.Service) time.Duration {
	if requestedMinutes > 0 {
		return time.Duration(requestedMinutes) * time.Minute
	}
	if service.DurationMinutes > 0 {
		return time.Duration(service.DurationMinutes) * time.Minute
	}
	return s.defaultDuration
}

func (s *Scheduler) ensureUsersExist(ctx context.Context, ownerID string, staffID *string) error {
	if s.users == nil {
		return nil
	}

	ids := make([]string, 0, 2)
	if ownerID != "" {
		ids = append(ids, ownerID)
	}
	if staffID != nil && *staffID != "" {
		ids = append(ids, *staffID)
	}
	if len(ids) == 0 {
		return nil
	}

	missing, err := s.users.MissingUserIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	vErr := &ValidationError{}
	vErr.add("users", fmt.Sprintf("unknown user ids: %s", strings.Join(missing, ", ")))
	return vErr
}

func (s *Scheduler) ensureResourcesExist(ctx context.Context, resourceIDs []string) error {
	if len(resourceIDs) == 0 || s.resources == nil {
		return nil
	}

	found, err := s.resources.GetResourcesByIDs(ctx, resourceIDs)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(found))
	for _, resource := range found {
		known[resource.ID] = struct{}{}
	}

	var missing []string
	for _, id := range resourceIDs {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	vErr := &ValidationError{}
	vErr.add("resource_ids", fmt.Sprintf("unknown resource ids: %s", strings.Join(missing, ", ")))
	return vErr
}

func (s *Scheduler) toAppointment(ctx context.Context, record persistence.Appointment) (Appointment, error) {
	assignments, err := s.appointments.ListAssignments(ctx, record.ID)
	if err != nil {
		return Appointment{}, mapStoreError(err)
	}

	resourceIDs := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		resourceIDs = append(resourceIDs, assignment.ResourceID)
	}

	appointment := Appointment{
		ID:                record.ID,
		ReferenceCode:     record.ReferenceCode,
		OwnerID:           record.UserID,
		ServiceID:         record.ServiceID,
		StaffID:           record.StaffID,
		Title:             record.Title,
		Start:             record.Start,
		End:               record.End,
		Status:            record.Status,
		IsRecurring:       record.IsRecurring,
		RecurrenceEndDate: record.RecurrenceEndDate,
		ParentID:          record.ParentID,
		ResourceIDs:       resourceIDs,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
	if record.Description != nil {
		appointment.Description = *record.Description
	}
	if record.RecurrencePattern != nil {
		appointment.RecurrencePattern = *record.RecurrencePattern
	}

	return appointment, nil
}

// toConflictBookings adapts app-level appointments into the pure detector's
// view, for callers that filter in memory rather than through storage.
func toConflictBookings(appointments []Appointment) []conflict.Booking {
	bookings := make([]conflict.Booking, 0, len(appointments))
	for _, appointment := range appointments {
		bookings = append(bookings, conflict.Booking{
			ID:          appointment.ID,
			Status:      appointment.Status,
			ResourceIDs: appointment.ResourceIDs,
			Start:       appointment.Start,
			End:         appointment.End,
		})
	}
	return bookings
}

func resourceAvailable(windows []persistence.AvailabilityWindow, start, end time.Time) bool {
	converted := make([]availability.Window, 0, len(windows))
	for _, window := range windows {
		converted = append(converted, availability.Window{
			DayOfWeek: window.DayOfWeek,
			StartTime: window.StartTime,
			EndTime:   window.EndTime,
		})
	}
	return availability.IsAvailable(converted, start, end)
}

// buildAssignments dedupes resource IDs into assignment rows. Assignments
// start out confirmed regardless of the appointment's own status; holding a
// resource is a firm claim even while the booking itself is pending.
func buildAssignments(resourceIDs []string) []persistence.ResourceAssignment {
	seen := make(map[string]struct{}, len(resourceIDs))
	assignments := make([]persistence.ResourceAssignment, 0, len(resourceIDs))
	for _, resourceID := range resourceIDs {
		if resourceID == "" {
			continue
		}
		if _, ok := seen[resourceID]; ok {
			continue
		}
		seen[resourceID] = struct{}{}
		assignments = append(assignments, persistence.ResourceAssignment{
			ResourceID: resourceID,
			Status:     StatusConfirmed,
		})
	}
	return assignments
}

// combineDateTime projects the template's time of day onto the given date.
func combineDateTime(date, template time.Time) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day,
		template.Hour(), template.Minute(), template.Second(), template.Nanosecond(),
		template.Location())
}

func optionalText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "end must be after start")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	}
	return err
}
