package service

import (
	"context"
	"errors"
	"strings"

	"github.com/classmark/classmark/internal/domain"
	"github.com/classmark/classmark/internal/repository"
)

// StudentService handles student roster CRUD and face enrollment.
type StudentService struct {
	students   repository.StudentRepositoryInterface
	embeddings repository.EmbeddingRepositoryInterface
}

func NewStudentService(
	students repository.StudentRepositoryInterface,
	embeddings repository.EmbeddingRepositoryInterface,
) *StudentService {
	return &StudentService{
		students:   students,
		embeddings: embeddings,
	}
}

func (s *StudentService) Create(ctx context.Context, student *domain.Student) error {
	student.Roll = strings.TrimSpace(student.Roll)
	student.Name = strings.TrimSpace(student.Name)
	if student.Roll == "" || student.Name == "" {
		return domain.ErrInvalidPayload.WithError(errors.New("roll and name are required"))
	}
	return s.students.Create(ctx, student)
}

func (s *StudentService) Get(ctx context.Context, id int64) (*domain.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	return s.students.List(ctx)
}

func (s *StudentService) Update(ctx context.Context, student *domain.Student) error {
	student.Roll = strings.TrimSpace(student.Roll)
	student.Name = strings.TrimSpace(student.Name)
	if student.ID <= 0 || student.Roll == "" || student.Name == "" {
		return domain.ErrInvalidPayload.WithError(errors.New("id, roll and name are required"))
	}
	return s.students.Update(ctx, student)
}

func (s *StudentService) Delete(ctx context.Context, id int64) error {
	return s.students.Delete(ctx, id)
}

// RegisterFace stores an additional reference descriptor for a
// student. Agents must refresh their reference set before the new
// descriptor is honored.
func (s *StudentService) RegisterFace(ctx context.Context, studentID int64, embedding []float32) error {
	if studentID <= 0 {
		return domain.ErrInvalidPayload
	}
	if len(embedding) == 0 {
		return domain.ErrInvalidEmbedding
	}

	return s.embeddings.Create(ctx, &domain.FaceEmbedding{
		StudentID: studentID,
		Embedding: embedding,
	})
}

// ReferenceSet returns all labeled descriptors for agent download.
func (s *StudentService) ReferenceSet(ctx context.Context) ([]domain.ReferenceFace, error) {
	return s.embeddings.ListReferenceSet(ctx)
}
