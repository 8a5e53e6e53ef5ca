package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/classmark/classmark/internal/domain"
)

type EmbeddingRepository struct {
	pool PgxPool
}

func NewEmbeddingRepository(pool PgxPool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

// Create stores a new reference descriptor. Registration is purely
// additive: a student may hold any number of reference descriptors.
func (r *EmbeddingRepository) Create(ctx context.Context, embedding *domain.FaceEmbedding) error {
	query := `
		INSERT INTO face_embeddings (id, student_id, embedding)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	if embedding.ID == uuid.Nil {
		embedding.ID = uuid.New()
	}

	vec := pgvector.NewVector(embedding.Embedding)

	err := r.pool.QueryRow(ctx, query, embedding.ID, embedding.StudentID, vec).
		Scan(&embedding.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrStudentNotFound
		}
		return fmt.Errorf("create embedding: %w", err)
	}

	return nil
}

// ListReferenceSet returns every stored descriptor joined with its
// student, the payload capture agents build their matcher from.
func (r *EmbeddingRepository) ListReferenceSet(ctx context.Context) ([]domain.ReferenceFace, error) {
	query := `
		SELECT s.id, s.roll, s.name, f.embedding
		FROM face_embeddings f
		INNER JOIN students s ON s.id = f.student_id
		ORDER BY s.roll, f.created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reference set: %w", err)
	}
	defer rows.Close()

	var faces []domain.ReferenceFace
	for rows.Next() {
		var face domain.ReferenceFace
		var vec pgvector.Vector

		if err := rows.Scan(&face.StudentID, &face.Roll, &face.Name, &vec); err != nil {
			return nil, fmt.Errorf("scan reference face: %w", err)
		}

		face.Embedding = vec.Slice()
		faces = append(faces, face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reference set: %w", err)
	}

	return faces, nil
}
