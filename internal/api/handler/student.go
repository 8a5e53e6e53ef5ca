package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/classmark/classmark/internal/domain"
)

// StudentService interface for the service
type StudentService interface {
	Create(ctx context.Context, student *domain.Student) error
	Get(ctx context.Context, id int64) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
	Delete(ctx context.Context, id int64) error
}

// StudentHandler handles roster CRUD
type StudentHandler struct {
	service StudentService
	logger  *slog.Logger
}

func NewStudentHandler(service StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger,
	}
}

// StudentRequest is the create/update payload
type StudentRequest struct {
	Roll string `json:"roll"`
	Name string `json:"name"`
}

func parseStudentID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidPayload.WithError(err)
	}
	return id, nil
}

// Create POST /api/v1/students
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrInvalidPayload.WithError(err)
	}

	student := &domain.Student{Roll: req.Roll, Name: req.Name}
	if err := h.service.Create(c.Context(), student); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(student)
}

// Get GET /api/v1/students/:id
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := parseStudentID(c)
	if err != nil {
		return err
	}

	student, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(student)
}

// List GET /api/v1/students
func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.service.List(c.Context())
	if err != nil {
		return err
	}

	if students == nil {
		students = []domain.Student{}
	}
	return c.JSON(students)
}

// Update PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := parseStudentID(c)
	if err != nil {
		return err
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrInvalidPayload.WithError(err)
	}

	student := &domain.Student{ID: id, Roll: req.Roll, Name: req.Name}
	if err := h.service.Update(c.Context(), student); err != nil {
		return err
	}

	return c.JSON(student)
}

// Delete DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseStudentID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"id": id})
}
