package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/facility-booking/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository using SQLite.
type ResourceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewResourceRepository creates a new SQLite resource repository.
func NewResourceRepository(pool *ConnectionPool, now func() time.Time) *ResourceRepository {
	if now == nil {
		now = time.Now
	}
	return &ResourceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

const resourceColumns = "id, name, description, capacity, location, color_code, is_active, created_at, updated_at"

// CreateResource inserts a new resource.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now

	if resource.ColorCode == "" {
		resource.ColorCode = "#3b82f6"
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO resources (`+resourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		resource.ID,
		resource.Name,
		resource.Description,
		nullInt(resource.Capacity),
		resource.Location,
		resource.ColorCode,
		boolToInt(resource.IsActive),
		resource.CreatedAt.Format(time.RFC3339),
		resource.UpdatedAt.Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateResource updates an existing resource.
func (r *ResourceRepository) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrNotFound
	}

	resource.UpdatedAt = r.now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE resources
		SET name = ?, description = ?, capacity = ?, location = ?, color_code = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		resource.Name,
		resource.Description,
		nullInt(resource.Capacity),
		resource.Location,
		resource.ColorCode,
		boolToInt(resource.IsActive),
		resource.UpdatedAt.Format(time.RFC3339),
		resource.ID,
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

// GetResource retrieves a resource by ID.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	if id == "" {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+resourceColumns+" FROM resources WHERE id = ?", id)
	return scanResource(row, r.mapper)
}

// GetResourcesByIDs retrieves the resources matching the provided IDs.
// Unknown IDs are silently absent from the result.
func (r *ResourceRepository) GetResourcesByIDs(ctx context.Context, ids []string) ([]persistence.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM resources WHERE id IN (%s) ORDER BY name ASC",
		resourceColumns, strings.Join(placeholders, ", "))

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectResources(rows, r.mapper)
}

// ListResources lists resources ordered by name, optionally including
// inactive entries.
func (r *ResourceRepository) ListResources(ctx context.Context, includeInactive bool) ([]persistence.Resource, error) {
	query := "SELECT " + resourceColumns + " FROM resources"
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name ASC"

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return collectResources(rows, r.mapper)
}

// DeleteResource removes a resource and its availability windows.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM resource_availability WHERE resource_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM resources WHERE id = ?", id)
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
	})
}

// SetUnavailability records a weekly unavailability window, replacing any
// existing window on the same weekday.
func (r *ResourceRepository) SetUnavailability(ctx context.Context, window persistence.AvailabilityWindow) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx, `
			DELETE FROM resource_availability
			WHERE resource_id = ? AND day_of_week = ?
		`, window.ResourceID, int(window.DayOfWeek))
		if err != nil {
			return r.mapper.MapError(err)
		}

		_, err = r.helper.ExecTx(tx, `
			INSERT INTO resource_availability (resource_id, day_of_week, start_time, end_time, is_available)
			VALUES (?, ?, ?, ?, 0)
		`, window.ResourceID, int(window.DayOfWeek), window.StartTime, window.EndTime)
		return r.mapper.MapError(err)
	})
}

// ClearUnavailability removes the recorded window for a weekday, restoring
// availability for that day.
func (r *ResourceRepository) ClearUnavailability(ctx context.Context, resourceID string, day time.Weekday) error {
	_, err := r.helper.Exec(ctx, `
		DELETE FROM resource_availability
		WHERE resource_id = ? AND day_of_week = ?
	`, resourceID, int(day))
	return r.mapper.MapError(err)
}

// ListAvailability returns the unavailability windows for a resource ordered
// by day and start time.
func (r *ResourceRepository) ListAvailability(ctx context.Context, resourceID string) ([]persistence.AvailabilityWindow, error) {
	query := `
		SELECT resource_id, day_of_week, start_time, end_time
		FROM resource_availability
		WHERE resource_id = ? AND is_available = 0
		ORDER BY day_of_week ASC, start_time ASC
	`

	rows, err := r.helper.Query(ctx, query, resourceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var windows []persistence.AvailabilityWindow
	for rows.Next() {
		var window persistence.AvailabilityWindow
		var day int
		if err := rows.Scan(&window.ResourceID, &day, &window.StartTime, &window.EndTime); err != nil {
			return nil, r.mapper.MapError(err)
		}
		window.DayOfWeek = time.Weekday(day)
		windows = append(windows, window)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return windows, nil
}

func scanResource(row rowScanner, mapper *ErrorMapper) (persistence.Resource, error) {
	var resource persistence.Resource
	var capacity sql.NullInt64
	var isActive int
	var createdStr, updatedStr string

	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Description,
		&capacity,
		&resource.Location,
		&resource.ColorCode,
		&isActive,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Resource{}, persistence.ErrNotFound
		}
		return persistence.Resource{}, mapper.MapError(err)
	}

	if capacity.Valid {
		value := int(capacity.Int64)
		resource.Capacity = &value
	}
	resource.IsActive = isActive != 0

	if resource.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if resource.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return resource, nil
}

func collectResources(rows *sql.Rows, mapper *ErrorMapper) ([]persistence.Resource, error) {
	var resources []persistence.Resource
	for rows.Next() {
		resource, err := scanResource(rows, mapper)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapper.MapError(err)
	}
	return resources, nil
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}
