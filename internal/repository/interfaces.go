package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classmark/classmark/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StudentRepositoryInterface defines operations for student data access
type StudentRepositoryInterface interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id int64) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
	Delete(ctx context.Context, id int64) error
}

// AttendanceRepositoryInterface defines operations for the authoritative
// attendance store
type AttendanceRepositoryInterface interface {
	Mark(ctx context.Context, record *domain.AttendanceRecord) error
	BulkInsert(ctx context.Context, records []domain.AttendanceRecord) (int64, error)
	ListByDate(ctx context.Context, date domain.Date) ([]domain.AttendanceRecord, error)
}

// EmbeddingRepositoryInterface defines operations for reference descriptors
type EmbeddingRepositoryInterface interface {
	Create(ctx context.Context, embedding *domain.FaceEmbedding) error
	ListReferenceSet(ctx context.Context) ([]domain.ReferenceFace, error)
}
