package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/classmark/classmark/internal/domain"
)

// MockAttendanceRepository is a mock implementation of AttendanceRepositoryInterface
type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAttendanceRepository) BulkInsert(ctx context.Context, records []domain.AttendanceRecord) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttendanceRepository) ListByDate(ctx context.Context, date domain.Date) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func TestAttendanceService_Mark(t *testing.T) {
	t.Run("rejects missing student id", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		svc := NewAttendanceService(repo)

		err := svc.Mark(context.Background(), &domain.AttendanceRecord{})

		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		repo.AssertNotCalled(t, "Mark")
	})

	t.Run("normalizes status and method, defaults date", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		repo.On("Mark", mock.Anything, mock.Anything).Return(nil)
		svc := NewAttendanceService(repo)

		record := &domain.AttendanceRecord{
			StudentID: 42,
			Status:    "celebrating",
			Method:    "face",
		}
		require.NoError(t, svc.Mark(context.Background(), record))

		assert.Equal(t, domain.StatusPresent, record.Status)
		assert.Equal(t, domain.MethodFace, record.Method)
		assert.True(t, record.Date.Equal(domain.Today()))
		repo.AssertExpectations(t)
	})

	t.Run("clamps confidence to [0,1]", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		repo.On("Mark", mock.Anything, mock.Anything).Return(nil)
		svc := NewAttendanceService(repo)

		confidence := 1.3
		record := &domain.AttendanceRecord{StudentID: 42, Confidence: &confidence}
		require.NoError(t, svc.Mark(context.Background(), record))

		require.NotNil(t, record.Confidence)
		assert.Equal(t, 1.0, *record.Confidence)
	})

	t.Run("passes conflict through untouched", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		repo.On("Mark", mock.Anything, mock.Anything).Return(domain.ErrAlreadyMarked)
		svc := NewAttendanceService(repo)

		err := svc.Mark(context.Background(), &domain.AttendanceRecord{StudentID: 42})
		assert.ErrorIs(t, err, domain.ErrAlreadyMarked)
	})
}

func TestAttendanceService_Sync(t *testing.T) {
	t.Run("rejects empty batch", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		svc := NewAttendanceService(repo)

		_, err := svc.Sync(context.Background(), nil)

		assert.ErrorIs(t, err, domain.ErrNoRecords)
		repo.AssertNotCalled(t, "BulkInsert")
	})

	t.Run("rejects batch containing invalid record", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		svc := NewAttendanceService(repo)

		records := []domain.AttendanceRecord{
			{StudentID: 1},
			{StudentID: 0},
		}
		_, err := svc.Sync(context.Background(), records)

		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		repo.AssertNotCalled(t, "BulkInsert")
	})

	t.Run("returns inserted count", func(t *testing.T) {
		repo := new(MockAttendanceRepository)
		repo.On("BulkInsert", mock.Anything, mock.Anything).Return(int64(2), nil)
		svc := NewAttendanceService(repo)

		records := []domain.AttendanceRecord{
			{StudentID: 1},
			{StudentID: 2},
			{StudentID: 1},
		}
		inserted, err := svc.Sync(context.Background(), records)

		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
		repo.AssertExpectations(t)
	})
}
