package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/facility-booking/internal/persistence"
)

// AppointmentRepository implements persistence.AppointmentRepository using SQLite.
type AppointmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewAppointmentRepository creates a new SQLite appointment repository. The
// now function stamps created_at/updated_at; when nil, time.Now is used.
func NewAppointmentRepository(pool *ConnectionPool, now func() time.Time) *AppointmentRepository {
	if now == nil {
		now = time.Now
	}
	return &AppointmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

const appointmentColumns = `id, reference_code, user_id, service_id, staff_id, title, description,
	start_time, end_time, status, is_recurring, recurrence_pattern, recurrence_end_date,
	parent_appointment_id, created_at, updated_at`

// CreateAppointment inserts an appointment together with its resource
// assignments as a single atomic unit.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, appointment persistence.Appointment, assignments []persistence.ResourceAssignment) error {
	if appointment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := r.now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO appointments (` + appointmentColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := r.helper.ExecTx(tx, query,
			appointment.ID,
			appointment.ReferenceCode,
			appointment.UserID,
			appointment.ServiceID,
			nullString(appointment.StaffID),
			appointment.Title,
			nullString(appointment.Description),
			appointment.Start.UTC().Format(time.RFC3339),
			appointment.End.UTC().Format(time.RFC3339),
			appointment.Status,
			boolToInt(appointment.IsRecurring),
			nullString(appointment.RecurrencePattern),
			nullTime(appointment.RecurrenceEndDate),
			nullString(appointment.ParentID),
			appointment.CreatedAt.Format(time.RFC3339),
			appointment.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		return r.insertAssignments(tx, appointment.ID, assignments)
	})
}

// UpdateAppointment replaces the mutable fields of an existing appointment.
// Resource assignments are not touched; use ReplaceAssignments.
func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" {
		return persistence.ErrNotFound
	}

	appointment.UpdatedAt = r.now().UTC()

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return r.updateAppointmentTx(tx, appointment)
	})
}

// UpdateAppointmentWithAssignments replaces the mutable fields of an existing
// appointment and swaps its full resource assignment set in one transaction.
// If any step fails the appointment row is left untouched.
func (r *AppointmentRepository) UpdateAppointmentWithAssignments(ctx context.Context, appointment persistence.Appointment, assignments []persistence.ResourceAssignment) error {
	if appointment.ID == "" {
		return persistence.ErrNotFound
	}

	appointment.UpdatedAt = r.now().UTC()

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.updateAppointmentTx(tx, appointment); err != nil {
			return err
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM appointment_resources WHERE appointment_id = ?", appointment.ID); err != nil {
			return r.mapper.MapError(err)
		}

		return r.insertAssignments(tx, appointment.ID, assignments)
	})
}

func (r *AppointmentRepository) updateAppointmentTx(tx *sql.Tx, appointment persistence.Appointment) error {
	query := `
		UPDATE appointments
		SET service_id = ?, staff_id = ?, title = ?, description = ?, start_time = ?, end_time = ?,
			status = ?, is_recurring = ?, recurrence_pattern = ?, recurrence_end_date = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.ExecTx(tx, query,
		appointment.ServiceID,
		nullString(appointment.StaffID),
		appointment.Title,
		nullString(appointment.Description),
		appointment.Start.UTC().Format(time.RFC3339),
		appointment.End.UTC().Format(time.RFC3339),
		appointment.Status,
		boolToInt(appointment.IsRecurring),
		nullString(appointment.RecurrencePattern),
		nullTime(appointment.RecurrenceEndDate),
		appointment.UpdatedAt.Format(time.RFC3339),
		appointment.ID,
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

// ReplaceAssignments swaps the full resource assignment set for one
// appointment, delete-then-reinsert, in a single transaction.
func (r *AppointmentRepository) ReplaceAssignments(ctx context.Context, appointmentID string, assignments []persistence.ResourceAssignment) error {
	if appointmentID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := r.helper.QueryRowTx(tx, "SELECT COUNT(*) FROM appointments WHERE id = ?", appointmentID).Scan(&exists)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM appointment_resources WHERE appointment_id = ?", appointmentID); err != nil {
			return r.mapper.MapError(err)
		}

		return r.insertAssignments(tx, appointmentID, assignments)
	})
}

// GetAppointment retrieves an appointment by ID.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	if id == "" {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE id = ?", id)
	return r.scanAppointment(row)
}

// GetAppointmentByReference retrieves an appointment by its reference code.
func (r *AppointmentRepository) GetAppointmentByReference(ctx context.Context, code string) (persistence.Appointment, error) {
	if code == "" {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE reference_code = ?", code)
	return r.scanAppointment(row)
}

// ListAppointments lists appointments matching the provided filter ordered by
// start time.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	query, args := buildAppointmentListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectAppointments(rows)
}

// ListOverlapping returns non-excluded appointments whose [start, end) range
// overlaps the query range, optionally restricted to appointments holding one
// of the listed resources. This is the storage query behind conflict scans.
func (r *AppointmentRepository) ListOverlapping(ctx context.Context, query persistence.OverlapQuery) ([]persistence.Appointment, error) {
	sqlQuery := `
		SELECT ` + prefixColumns("a", appointmentColumns) + `
		FROM appointments a
		WHERE a.start_time < ? AND a.end_time > ?
	`
	args := []any{
		query.End.UTC().Format(time.RFC3339),
		query.Start.UTC().Format(time.RFC3339),
	}

	if query.ExcludeStatus != "" {
		sqlQuery += " AND a.status != ?"
		args = append(args, query.ExcludeStatus)
	}

	if query.ExcludeID != "" {
		sqlQuery += " AND a.id != ?"
		args = append(args, query.ExcludeID)
	}

	if len(query.ResourceIDs) > 0 {
		placeholders := make([]string, len(query.ResourceIDs))
		for i, resourceID := range query.ResourceIDs {
			placeholders[i] = "?"
			args = append(args, resourceID)
		}
		sqlQuery += fmt.Sprintf(`
			AND a.id IN (
				SELECT ar.appointment_id
				FROM appointment_resources ar
				WHERE ar.resource_id IN (%s)
			)
		`, strings.Join(placeholders, ", "))
	}

	sqlQuery += " ORDER BY a.start_time ASC, a.id ASC"

	rows, err := r.helper.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectAppointments(rows)
}

// ListAssignments returns the resource assignments for one appointment.
func (r *AppointmentRepository) ListAssignments(ctx context.Context, appointmentID string) ([]persistence.ResourceAssignment, error) {
	query := `
		SELECT appointment_id, resource_id, status, notes
		FROM appointment_resources
		WHERE appointment_id = ?
		ORDER BY resource_id ASC
	`

	rows, err := r.helper.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var assignments []persistence.ResourceAssignment
	for rows.Next() {
		var assignment persistence.ResourceAssignment
		var notes sql.NullString
		if err := rows.Scan(&assignment.AppointmentID, &assignment.ResourceID, &assignment.Status, &notes); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if notes.Valid {
			assignment.Notes = &notes.String
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return assignments, nil
}

// DeleteAppointment removes an appointment and its resource assignments as a
// single atomic unit. Child occurrences generated from this appointment are
// left in place.
func (r *AppointmentRepository) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM appointment_resources WHERE appointment_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM appointments WHERE id = ?", id)
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

func (r *AppointmentRepository) insertAssignments(tx *sql.Tx, appointmentID string, assignments []persistence.ResourceAssignment) error {
	for _, assignment := range assignments {
		status := assignment.Status
		if status == "" {
			status = "confirmed"
		}
		_, err := r.helper.ExecTx(tx,
			"INSERT INTO appointment_resources (appointment_id, resource_id, status, notes) VALUES (?, ?, ?, ?)",
			appointmentID, assignment.ResourceID, status, nullString(assignment.Notes))
		if err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AppointmentRepository) scanAppointment(row rowScanner) (persistence.Appointment, error) {
	var appointment persistence.Appointment
	var staffID, description, pattern, parentID sql.NullString
	var recurrenceEnd sql.NullString
	var startStr, endStr, createdStr, updatedStr string
	var isRecurring int

	err := row.Scan(
		&appointment.ID,
		&appointment.ReferenceCode,
		&appointment.UserID,
		&appointment.ServiceID,
		&staffID,
		&appointment.Title,
		&description,
		&startStr,
		&endStr,
		&appointment.Status,
		&isRecurring,
		&pattern,
		&recurrenceEnd,
		&parentID,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Appointment{}, persistence.ErrNotFound
		}
		return persistence.Appointment{}, r.mapper.MapError(err)
	}

	if staffID.Valid {
		appointment.StaffID = &staffID.String
	}
	if description.Valid {
		appointment.Description = &description.String
	}
	if pattern.Valid {
		appointment.RecurrencePattern = &pattern.String
	}
	if parentID.Valid {
		appointment.ParentID = &parentID.String
	}
	appointment.IsRecurring = isRecurring != 0

	if appointment.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if appointment.End, err = time.Parse(time.RFC3339, endStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if recurrenceEnd.Valid {
		endDate, err := time.Parse(time.RFC3339, recurrenceEnd.String)
		if err != nil {
			return persistence.Appointment{}, fmt.Errorf("failed to parse recurrence_end_date: %w", err)
		}
		appointment.RecurrenceEndDate = &endDate
	}
	if appointment.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if appointment.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Appointment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepository) collectAppointments(rows *sql.Rows) ([]persistence.Appointment, error) {
	var appointments []persistence.Appointment
	for rows.Next() {
		appointment, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return appointments, nil
}

func buildAppointmentListQuery(filter persistence.AppointmentFilter) (string, []any) {
	query := "SELECT " + prefixColumns("a", appointmentColumns) + " FROM appointments a"

	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "a.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.ServiceID != "" {
		conditions = append(conditions, "a.service_id = ?")
		args = append(args, filter.ServiceID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "a.status = ?")
		args = append(args, filter.Status)
	}
	if filter.StartsAfter != nil {
		conditions = append(conditions, "a.end_time > ?")
		args = append(args, filter.StartsAfter.UTC().Format(time.RFC3339))
	}
	if filter.EndsBefore != nil {
		conditions = append(conditions, "a.start_time < ?")
		args = append(args, filter.EndsBefore.UTC().Format(time.RFC3339))
	}
	if filter.Search != "" {
		conditions = append(conditions, "(a.reference_code LIKE ? OR a.title LIKE ? OR a.description LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like, like)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY a.start_time ASC, a.id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return query, args
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(time.RFC3339), Valid: true}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
