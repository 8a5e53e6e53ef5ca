package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classmark/classmark/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const insertAttendanceQuery = `
	INSERT INTO attendance (id, student_id, date, status, method, confidence)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (student_id, date) DO NOTHING
`

// Mark inserts one attendance record. The unique constraint on
// (student_id, date) is the authoritative arbiter: when the row already
// exists the insert is a no-op and domain.ErrAlreadyMarked is returned,
// which callers treat as a conflict, not a failure.
func (r *AttendanceRepository) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := insertAttendanceQuery + ` RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.StudentID,
		record.Date,
		record.Status,
		record.Method,
		record.Confidence,
	).Scan(&record.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAlreadyMarked
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrStudentNotFound
		}
		return fmt.Errorf("mark attendance: %w", err)
	}

	return nil
}

// BulkInsert inserts a batch of records inside one transaction and
// returns how many rows were genuinely new. Records that collide on
// (student_id, date) are skipped, never duplicated — the batch path
// enforces the same per-day uniqueness as Mark.
func (r *AttendanceRepository) BulkInsert(ctx context.Context, records []domain.AttendanceRecord) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted int64
	for i := range records {
		record := &records[i]
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}

		tag, err := tx.Exec(ctx, insertAttendanceQuery,
			record.ID,
			record.StudentID,
			record.Date,
			record.Status,
			record.Method,
			record.Confidence,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return 0, domain.ErrStudentNotFound
			}
			return 0, fmt.Errorf("bulk insert record %d: %w", i, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}

	return inserted, nil
}

// ListByDate returns all attendance records for one calendar day.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date domain.Date) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, date, status, method, confidence, created_at
		FROM attendance
		WHERE date = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var record domain.AttendanceRecord
		if err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&record.Date,
			&record.Status,
			&record.Method,
			&record.Confidence,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}

	return records, nil
}
