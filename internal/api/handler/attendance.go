package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/classmark/classmark/internal/domain"
)

// AttendanceService interface for the service
type AttendanceService interface {
	Mark(ctx context.Context, record *domain.AttendanceRecord) error
	Sync(ctx context.Context, records []domain.AttendanceRecord) (int64, error)
	ListByDate(ctx context.Context, date domain.Date) ([]domain.AttendanceRecord, error)
}

// AttendanceHandler handles attendance marking and batch sync
type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

// MarkRequest is the single-record submission payload
type MarkRequest struct {
	StudentID  *int64   `json:"student_id"`
	Date       string   `json:"date"`
	Status     string   `json:"status"`
	Method     string   `json:"method"`
	Confidence *float64 `json:"confidence"`
}

// MarkResponse confirms the resolved (student_id, date) pair
type MarkResponse struct {
	Success   bool        `json:"success"`
	StudentID int64       `json:"student_id"`
	Date      domain.Date `json:"date"`
}

// SyncRequest is the batch submission payload
type SyncRequest struct {
	Records []MarkRequest `json:"records"`
}

// SyncResponse reports how many records were genuinely new
type SyncResponse struct {
	Success  bool  `json:"success"`
	Inserted int64 `json:"inserted"`
}

func (r MarkRequest) toRecord() (domain.AttendanceRecord, error) {
	if r.StudentID == nil {
		return domain.AttendanceRecord{}, domain.ErrInvalidPayload.WithError(errors.New("student_id is required"))
	}

	record := domain.AttendanceRecord{
		StudentID:  *r.StudentID,
		Status:     domain.Status(r.Status),
		Method:     domain.Method(r.Method),
		Confidence: r.Confidence,
	}

	if r.Date != "" {
		date, err := domain.ParseDate(r.Date)
		if err != nil {
			return domain.AttendanceRecord{}, domain.ErrInvalidPayload.WithError(err)
		}
		record.Date = date
	}

	return record, nil
}

// Mark POST /api/v1/attendance/mark - persist one attendance mark
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	var req MarkRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrInvalidPayload.WithError(err)
	}

	record, err := req.toRecord()
	if err != nil {
		return err
	}

	if err := h.service.Mark(c.Context(), &record); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(MarkResponse{
		Success:   true,
		StudentID: record.StudentID,
		Date:      record.Date,
	})
}

// Sync POST /api/v1/attendance/sync - persist a batch of marks
func (h *AttendanceHandler) Sync(c *fiber.Ctx) error {
	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrInvalidPayload.WithError(err)
	}

	if len(req.Records) == 0 {
		return domain.ErrNoRecords
	}

	records := make([]domain.AttendanceRecord, 0, len(req.Records))
	for _, r := range req.Records {
		record, err := r.toRecord()
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	inserted, err := h.service.Sync(c.Context(), records)
	if err != nil {
		return err
	}

	return c.JSON(SyncResponse{
		Success:  true,
		Inserted: inserted,
	})
}

// List GET /api/v1/attendance?date=YYYY-MM-DD - records for one day
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	date := domain.Today()
	if raw := c.Query("date"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			return domain.ErrInvalidPayload.WithError(err)
		}
		date = parsed
	}

	records, err := h.service.ListByDate(c.Context(), date)
	if err != nil {
		return err
	}

	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	return c.JSON(records)
}
