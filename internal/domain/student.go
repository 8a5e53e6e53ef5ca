package domain

import (
	"time"

	"github.com/google/uuid"
)

// Student is an enrolled student.
type Student struct {
	ID        int64     `json:"id"`
	Roll      string    `json:"roll"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReferenceFace is one labeled reference descriptor as served to
// capture agents. A student may have multiple reference descriptors;
// registration is purely additive.
type ReferenceFace struct {
	StudentID int64     `json:"student_id"`
	Roll      string    `json:"roll"`
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// FaceEmbedding is a stored reference descriptor row.
type FaceEmbedding struct {
	ID        uuid.UUID `json:"id"`
	StudentID int64     `json:"student_id"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}
