package service

import (
	"context"

	"github.com/classmark/classmark/internal/domain"
	"github.com/classmark/classmark/internal/repository"
)

// AttendanceService validates and persists attendance marks. The
// per-day uniqueness invariant itself lives in the database constraint;
// this layer normalizes input and maps conflicts to the error taxonomy.
type AttendanceService struct {
	repo repository.AttendanceRepositoryInterface
}

func NewAttendanceService(repo repository.AttendanceRepositoryInterface) *AttendanceService {
	return &AttendanceService{repo: repo}
}

// normalize validates the record in place and fills defaults.
func normalize(record *domain.AttendanceRecord) error {
	if record.StudentID <= 0 {
		return domain.ErrInvalidPayload
	}
	if record.Date.IsZero() {
		record.Date = domain.Today()
	}
	record.Status = domain.NormalizeStatus(string(record.Status))
	record.Method = domain.NormalizeMethod(string(record.Method))
	if record.Confidence != nil {
		c := *record.Confidence
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		record.Confidence = &c
	}
	return nil
}

// Mark persists a single attendance record. A duplicate
// (student_id, date) pair surfaces as domain.ErrAlreadyMarked, which
// callers must treat as success-equivalent.
func (s *AttendanceService) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	if err := normalize(record); err != nil {
		return err
	}
	return s.repo.Mark(ctx, record)
}

// Sync inserts a batch of records, applying the same per-day
// uniqueness as Mark. Returns how many records were genuinely new;
// duplicates within the batch or against the store are skipped.
func (s *AttendanceService) Sync(ctx context.Context, records []domain.AttendanceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, domain.ErrNoRecords
	}

	for i := range records {
		if err := normalize(&records[i]); err != nil {
			return 0, err
		}
	}

	return s.repo.BulkInsert(ctx, records)
}

// ListByDate returns the attendance records for one calendar day.
func (s *AttendanceService) ListByDate(ctx context.Context, date domain.Date) ([]domain.AttendanceRecord, error) {
	return s.repo.ListByDate(ctx, date)
}
