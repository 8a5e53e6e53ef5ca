package provider

import "context"

// EmbeddingProvider extracts face descriptors from a raw image frame
type EmbeddingProvider interface {
	// Represent returns one entry per face detected in the frame,
	// each carrying its descriptor and bounding box
	Represent(ctx context.Context, image []byte) ([]Face, error)
}

// Face is a single detected face with its descriptor
type Face struct {
	Descriptor []float32   `json:"descriptor"`
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// BoundingBox represents the face area in the frame
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box surface, used to rank faces by prominence
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}
