package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/classmark/classmark/internal/domain"
)

// EnrollmentService interface for face enrollment and reference download
type EnrollmentService interface {
	RegisterFace(ctx context.Context, studentID int64, embedding []float32) error
	ReferenceSet(ctx context.Context) ([]domain.ReferenceFace, error)
}

// EmbeddingHandler serves the reference set and accepts new descriptors
type EmbeddingHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

func NewEmbeddingHandler(service EnrollmentService, logger *slog.Logger) *EmbeddingHandler {
	return &EmbeddingHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterFaceRequest is the enrollment payload
type RegisterFaceRequest struct {
	StudentID *int64    `json:"student_id"`
	Embedding []float32 `json:"embedding"`
}

// List GET /api/v1/embeddings - full labeled reference set
func (h *EmbeddingHandler) List(c *fiber.Ctx) error {
	faces, err := h.service.ReferenceSet(c.Context())
	if err != nil {
		return err
	}

	if faces == nil {
		faces = []domain.ReferenceFace{}
	}
	return c.JSON(faces)
}

// Register POST /api/v1/face/register - store an additional descriptor
func (h *EmbeddingHandler) Register(c *fiber.Ctx) error {
	var req RegisterFaceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrInvalidPayload.WithError(err)
	}

	if req.StudentID == nil {
		return domain.ErrInvalidPayload
	}

	if err := h.service.RegisterFace(c.Context(), *req.StudentID, req.Embedding); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
