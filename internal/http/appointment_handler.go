package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/facility-booking/internal/booking"
	"github.com/example/facility-booking/internal/persistence"
)

type schedulerService interface {
	FindConflicts(ctx context.Context, query booking.ConflictQuery) ([]booking.Appointment, error)
	CreateAppointment(ctx context.Context, input booking.CreateAppointmentInput) (booking.CreatedAppointment, error)
	UpdateAppointment(ctx context.Context, appointmentID string, fields booking.UpdateAppointmentFields) error
	UpdateStatus(ctx context.Context, appointmentID, status string) error
	DeleteAppointment(ctx context.Context, appointmentID string) error
	GetAppointment(ctx context.Context, appointmentID string) (booking.Appointment, error)
	GetAppointmentByReference(ctx context.Context, code string) (booking.Appointment, error)
	ListAppointments(ctx context.Context, filter booking.ListFilter) ([]booking.Appointment, error)
	ExpandRecurrence(firstOccurrence time.Time, pattern string, endInclusive time.Time) ([]time.Time, error)
	AvailableResources(ctx context.Context, start, end time.Time) ([]persistence.Resource, error)
	ResolveEnd(ctx context.Context, serviceID string, start, end time.Time, durationMinutes int) (time.Time, error)
}

// AppointmentHandler exposes the scheduling core over JSON/HTTP. It is the
// layer that runs FindConflicts before creation and turns a non-empty result
// into a 409 unless the caller explicitly allows conflicts.
type AppointmentHandler struct {
	service   schedulerService
	responder responder
}

// NewAppointmentHandler wires an appointment handler.
func NewAppointmentHandler(service schedulerService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, responder: newResponder(logger)}
}

type createAppointmentRequest struct {
	OwnerID           string     `json:"owner_id"`
	ServiceID         string     `json:"service_id"`
	StaffID           *string    `json:"staff_id,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Start             time.Time  `json:"start"`
	End               *time.Time `json:"end,omitempty"`
	DurationMinutes   int        `json:"duration_minutes,omitempty"`
	ResourceIDs       []string   `json:"resource_ids,omitempty"`
	Status            string     `json:"status,omitempty"`
	RecurrencePattern string     `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	AllowConflicts    bool       `json:"allow_conflicts,omitempty"`
}

type updateAppointmentRequest struct {
	ServiceID         *string    `json:"service_id,omitempty"`
	StaffID           *string    `json:"staff_id,omitempty"`
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Start             *time.Time `json:"start,omitempty"`
	End               *time.Time `json:"end,omitempty"`
	DurationMinutes   *int       `json:"duration_minutes,omitempty"`
	Status            *string    `json:"status,omitempty"`
	RecurrencePattern *string    `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	ResourceIDs       []string   `json:"resource_ids,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type appointmentDTO struct {
	ID                string     `json:"id"`
	ReferenceCode     string     `json:"reference_code"`
	OwnerID           string     `json:"owner_id"`
	ServiceID         string     `json:"service_id"`
	StaffID           *string    `json:"staff_id,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Start             time.Time  `json:"start"`
	End               time.Time  `json:"end"`
	Status            string     `json:"status"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern string     `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	ParentID          *string    `json:"parent_id,omitempty"`
	ResourceIDs       []string   `json:"resource_ids,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type createdResponse struct {
	ID            string `json:"id"`
	ReferenceCode string `json:"reference_code"`
}

type conflictsResponse struct {
	Conflicts []appointmentDTO `json:"conflicts"`
}

type previewResponse struct {
	Dates []string `json:"dates"`
}

type resourceDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	Capacity  *int   `json:"capacity,omitempty"`
	ColorCode string `json:"color_code,omitempty"`
	IsActive  bool   `json:"is_active"`
}

// Create handles POST /appointments.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if !req.AllowConflicts && !req.Start.IsZero() {
		var reqEnd time.Time
		if req.End != nil {
			reqEnd = *req.End
		}
		// Resolve the checked range the same way creation will, so a
		// service with a non-default duration gets the right window.
		end, err := h.service.ResolveEnd(r.Context(), req.ServiceID, req.Start, reqEnd, req.DurationMinutes)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}

		conflicts, err := h.service.FindConflicts(r.Context(), booking.ConflictQuery{
			Start:       req.Start,
			End:         end,
			ResourceIDs: req.ResourceIDs,
		})
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		if len(conflicts) > 0 {
			h.responder.handleServiceError(r.Context(), w, &booking.ConflictError{Conflicts: conflicts})
			return
		}
	}

	input := booking.CreateAppointmentInput{
		OwnerID:           req.OwnerID,
		ServiceID:         req.ServiceID,
		StaffID:           req.StaffID,
		Title:             req.Title,
		Description:       req.Description,
		Start:             req.Start,
		DurationMinutes:   req.DurationMinutes,
		ResourceIDs:       req.ResourceIDs,
		Status:            req.Status,
		RecurrencePattern: req.RecurrencePattern,
		RecurrenceEndDate: req.RecurrenceEndDate,
	}
	if req.End != nil {
		input.End = *req.End
	}

	created, err := h.service.CreateAppointment(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createdResponse{
		ID:            created.ID,
		ReferenceCode: created.ReferenceCode,
	})
}

// Get handles GET /appointments/{id}.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request, appointmentID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if appointmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	appointment, err := h.service.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(appointment))
}

// GetByReference handles GET /appointments/reference/{code}.
func (h *AppointmentHandler) GetByReference(w http.ResponseWriter, r *http.Request, code string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	appointment, err := h.service.GetAppointmentByReference(r.Context(), code)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(appointment))
}

// List handles GET /appointments.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	appointments, err := h.service.ListAppointments(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTOs(appointments))
}

// Update handles PATCH /appointments/{id}.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, appointmentID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if appointmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.UpdateAppointment(r.Context(), appointmentID, booking.UpdateAppointmentFields{
		ServiceID:         req.ServiceID,
		StaffID:           req.StaffID,
		Title:             req.Title,
		Description:       req.Description,
		Start:             req.Start,
		End:               req.End,
		DurationMinutes:   req.DurationMinutes,
		Status:            req.Status,
		RecurrencePattern: req.RecurrencePattern,
		RecurrenceEndDate: req.RecurrenceEndDate,
		ResourceIDs:       req.ResourceIDs,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// UpdateStatus handles PUT /appointments/{id}/status.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, appointmentID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if appointmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), appointmentID, req.Status); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Delete handles DELETE /appointments/{id}.
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, appointmentID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if appointmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return
	}

	if err := h.service.DeleteAppointment(r.Context(), appointmentID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Conflicts handles GET /appointments/conflicts.
func (h *AppointmentHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	start, end, err := parseTimeRange(query.Get("start"), query.Get("end"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	conflicts, err := h.service.FindConflicts(r.Context(), booking.ConflictQuery{
		Start:       start,
		End:         end,
		ExcludeID:   query.Get("exclude_id"),
		ResourceIDs: splitIDs(query.Get("resource_ids")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictsResponse{Conflicts: toAppointmentDTOs(conflicts)})
}

// PreviewRecurrence handles GET /recurrence/preview.
func (h *AppointmentHandler) PreviewRecurrence(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	first, err := time.Parse(time.RFC3339, query.Get("first"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeRange)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeRange)
		return
	}

	dates, err := h.service.ExpandRecurrence(first, query.Get("pattern"), end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, date.Format("2006-01-02"))
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, previewResponse{Dates: formatted})
}

// AvailableResources handles GET /resources/available.
func (h *AppointmentHandler) AvailableResources(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	start, end, err := parseTimeRange(query.Get("start"), query.Get("end"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	resources, err := h.service.AvailableResources(r.Context(), start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		dtos = append(dtos, resourceDTO{
			ID:        resource.ID,
			Name:      resource.Name,
			Location:  resource.Location,
			Capacity:  resource.Capacity,
			ColorCode: resource.ColorCode,
			IsActive:  resource.IsActive,
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func parseTimeRange(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startValue)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidTimeRange
	}
	end, err := time.Parse(time.RFC3339, endValue)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidTimeRange
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errInvalidTimeRange
	}
	return start, end, nil
}

func parseListFilter(query url.Values) (booking.ListFilter, error) {
	filter := booking.ListFilter{
		OwnerID:   query.Get("owner_id"),
		ServiceID: query.Get("service_id"),
		Status:    query.Get("status"),
		Search:    query.Get("search"),
	}

	if value := query.Get("starts_after"); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return booking.ListFilter{}, errInvalidTimeRange
		}
		filter.StartsAfter = &t
	}
	if value := query.Get("ends_before"); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return booking.ListFilter{}, errInvalidTimeRange
		}
		filter.EndsBefore = &t
	}
	if value := query.Get("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if value := query.Get("offset"); value != "" {
		offset, err := strconv.Atoi(value)
		if err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	return filter, nil
}

func splitIDs(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func toAppointmentDTO(appointment booking.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:                appointment.ID,
		ReferenceCode:     appointment.ReferenceCode,
		OwnerID:           appointment.OwnerID,
		ServiceID:         appointment.ServiceID,
		StaffID:           appointment.StaffID,
		Title:             appointment.Title,
		Description:       appointment.Description,
		Start:             appointment.Start,
		End:               appointment.End,
		Status:            appointment.Status,
		IsRecurring:       appointment.IsRecurring,
		RecurrencePattern: appointment.RecurrencePattern,
		RecurrenceEndDate: appointment.RecurrenceEndDate,
		ParentID:          appointment.ParentID,
		ResourceIDs:       appointment.ResourceIDs,
		CreatedAt:         appointment.CreatedAt,
		UpdatedAt:         appointment.UpdatedAt,
	}
}

func toAppointmentDTOs(appointments []booking.Appointment) []appointmentDTO {
	dtos := make([]appointmentDTO, 0, len(appointments))
	for _, appointment := range appointments {
		dtos = append(dtos, toAppointmentDTO(appointment))
	}
	return dtos
}
