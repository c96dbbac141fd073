package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/facility-booking/internal/booking"
	"github.com/example/facility-booking/internal/persistence"
)

type catalogService interface {
	CreateUser(ctx context.Context, input booking.CreateUserInput) (persistence.User, error)
	GetUser(ctx context.Context, id string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateService(ctx context.Context, input booking.CreateServiceInput) (persistence.Service, error)
	GetService(ctx context.Context, id string) (persistence.Service, error)
	ListServices(ctx context.Context) ([]persistence.Service, error)
	DeleteService(ctx context.Context, id string) error

	CreateResource(ctx context.Context, input booking.CreateResourceInput) (persistence.Resource, error)
	GetResource(ctx context.Context, id string) (persistence.Resource, error)
	ListResources(ctx context.Context, includeInactive bool) ([]persistence.Resource, error)
	DeactivateResource(ctx context.Context, id string) error
	DeleteResource(ctx context.Context, id string) error

	SetUnavailability(ctx context.Context, input booking.UnavailabilityInput) error
	ClearUnavailability(ctx context.Context, resourceID string, day time.Weekday) error
	ListUnavailability(ctx context.Context, resourceID string) ([]persistence.AvailabilityWindow, error)
}

// CatalogHandler exposes user, service, and resource management over
// JSON/HTTP.
type CatalogHandler struct {
	service   catalogService
	responder responder
}

// NewCatalogHandler wires a catalog handler.
func NewCatalogHandler(service catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, responder: newResponder(logger)}
}

type userDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type serviceDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type availabilityWindowDTO struct {
	ResourceID string `json:"resource_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type createUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
}

type createServiceRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type createResourceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Capacity    *int   `json:"capacity,omitempty"`
	Location    string `json:"location,omitempty"`
	ColorCode   string `json:"color_code,omitempty"`
}

type unavailabilityRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateUser handles POST /users.
func (h *CatalogHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.service.CreateUser(r.Context(), booking.CreateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toUserDTO(user))
}

// GetUser handles GET /users/{id}.
func (h *CatalogHandler) GetUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// ListUsers handles GET /users.
func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]userDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// DeleteUser handles DELETE /users/{id}.
func (h *CatalogHandler) DeleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// CreateService handles POST /services.
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	service, err := h.service.CreateService(r.Context(), booking.CreateServiceInput{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toServiceDTO(service))
}

// GetService handles GET /services/{id}.
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, id string) {
	service, err := h.service.GetService(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toServiceDTO(service))
}

// ListServices handles GET /services.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]serviceDTO, 0, len(services))
	for _, service := range services {
		dtos = append(dtos, toServiceDTO(service))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// DeleteService handles DELETE /services/{id}.
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteService(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// CreateResource handles POST /resources.
func (h *CatalogHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req createResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	resource, err := h.service.CreateResource(r.Context(), booking.CreateResourceInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Location:    req.Location,
		ColorCode:   req.ColorCode,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toResourceDTO(resource))
}

// GetResource handles GET /resources/{id}.
func (h *CatalogHandler) GetResource(w http.ResponseWriter, r *http.Request, id string) {
	resource, err := h.service.GetResource(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTO(resource))
}

// ListResources handles GET /resources.
func (h *CatalogHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	resources, err := h.service.ListResources(r.Context(), includeInactive)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		dtos = append(dtos, toResourceDTO(resource))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// DeactivateResource handles POST /resources/{id}/deactivate.
func (h *CatalogHandler) DeactivateResource(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeactivateResource(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// DeleteResource handles DELETE /resources/{id}.
func (h *CatalogHandler) DeleteResource(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteResource(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// SetUnavailability handles PUT /resources/{id}/unavailability.
func (h *CatalogHandler) SetUnavailability(w http.ResponseWriter, r *http.Request, resourceID string) {
	var req unavailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.SetUnavailability(r.Context(), booking.UnavailabilityInput{
		ResourceID: resourceID,
		DayOfWeek:  time.Weekday(req.DayOfWeek),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ClearUnavailability handles DELETE /resources/{id}/unavailability.
func (h *CatalogHandler) ClearUnavailability(w http.ResponseWriter, r *http.Request, resourceID string) {
	var req unavailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.ClearUnavailability(r.Context(), resourceID, time.Weekday(req.DayOfWeek)); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListUnavailability handles GET /resources/{id}/unavailability.
func (h *CatalogHandler) ListUnavailability(w http.ResponseWriter, r *http.Request, resourceID string) {
	windows, err := h.service.ListUnavailability(r.Context(), resourceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]availabilityWindowDTO, 0, len(windows))
	for _, window := range windows {
		dtos = append(dtos, availabilityWindowDTO{
			ResourceID: window.ResourceID,
			DayOfWeek:  int(window.DayOfWeek),
			StartTime:  window.StartTime,
			EndTime:    window.EndTime,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func toUserDTO(user persistence.User) userDTO {
	return userDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toServiceDTO(service persistence.Service) serviceDTO {
	return serviceDTO{
		ID:              service.ID,
		Name:            service.Name,
		Description:     service.Description,
		DurationMinutes: service.DurationMinutes,
		CreatedAt:       service.CreatedAt,
		UpdatedAt:       service.UpdatedAt,
	}
}

func toResourceDTO(resource persistence.Resource) resourceDTO {
	return resourceDTO{
		ID:        resource.ID,
		Name:      resource.Name,
		Location:  resource.Location,
		Capacity:  resource.Capacity,
		ColorCode: resource.ColorCode,
		IsActive:  resource.IsActive,
	}
}
