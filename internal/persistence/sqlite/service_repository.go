package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/facility-booking/internal/persistence"
)

// ServiceRepository implements persistence.ServiceRepository using SQLite.
type ServiceRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewServiceRepository creates a new SQLite service catalog repository.
func NewServiceRepository(pool *ConnectionPool, now func() time.Time) *ServiceRepository {
	if now == nil {
		now = time.Now
	}
	return &ServiceRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

const serviceColumns = "id, name, description, duration_minutes, created_at, updated_at"

// CreateService inserts a new service catalog entry.
func (r *ServiceRepository) CreateService(ctx context.Context, service persistence.Service) error {
	if service.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	if service.DurationMinutes <= 0 {
		service.DurationMinutes = 60
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		service.ID,
		service.Name,
		service.Description,
		service.DurationMinutes,
		service.CreatedAt.Format(time.RFC3339),
		service.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateService updates an existing service catalog entry.
func (r *ServiceRepository) UpdateService(ctx context.Context, service persistence.Service) error {
	if service.ID == "" {
		return persistence.ErrNotFound
	}

	service.UpdatedAt = r.now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE services
		SET name = ?, description = ?, duration_minutes = ?, updated_at = ?
		WHERE id = ?
	`,
		service.Name,
		service.Description,
		service.DurationMinutes,
		service.UpdatedAt.Format(time.RFC3339),
		service.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetService retrieves a service by ID.
func (r *ServiceRepository) GetService(ctx context.Context, id string) (persistence.Service, error) {
	if id == "" {
		return persistence.Service{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+serviceColumns+" FROM services WHERE id = ?", id)
	return scanService(row, r.mapper)
}

// ListServices lists all services ordered by name.
func (r *ServiceRepository) ListServices(ctx context.Context) ([]persistence.Service, error) {
	rows, err := r.helper.Query(ctx, "SELECT "+serviceColumns+" FROM services ORDER BY name ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var services []persistence.Service
	for rows.Next() {
		service, err := scanService(rows, r.mapper)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return services, nil
}

// DeleteService removes a service catalog entry.
func (r *ServiceRepository) DeleteService(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func scanService(row rowScanner, mapper *ErrorMapper) (persistence.Service, error) {
	var service persistence.Service
	var createdStr, updatedStr string

	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.DurationMinutes,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Service{}, persistence.ErrNotFound
		}
		return persistence.Service{}, mapper.MapError(err)
	}

	if service.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if service.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Service{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return service, nil
}
