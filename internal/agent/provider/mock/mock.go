package mock

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"

	"github.com/classmark/classmark/internal/agent/provider"
)

const descriptorDimension = 512

// ErrInvalidImage is returned for inputs too small to hold a face
var ErrInvalidImage = errors.New("invalid image data")

// Provider implements provider.EmbeddingProvider for tests and development.
// The descriptor is a deterministic function of the image bytes, so the
// same input always resolves to the same identity.
type Provider struct{}

// New creates a new mock provider
func New() *Provider {
	return &Provider{}
}

// Represent returns a single deterministic face per image
func (p *Provider) Represent(ctx context.Context, image []byte) ([]provider.Face, error) {
	if len(image) < 16 {
		return nil, ErrInvalidImage
	}

	return []provider.Face{
		{
			Descriptor: Descriptor(image),
			Box: provider.BoundingBox{
				X:      0.1,
				Y:      0.1,
				Width:  0.8,
				Height: 0.8,
			},
			Confidence: 0.99,
		},
	}, nil
}

// Descriptor generates a deterministic unit-norm descriptor from the image hash
func Descriptor(image []byte) []float32 {
	hash := sha256.Sum256(image)
	descriptor := make([]float32, descriptorDimension)
	hashLen := len(hash)

	for i := 0; i < descriptorDimension; i++ {
		idx := i % hashLen
		descriptor[i] = (float32(hash[idx])/255.0)*2 - 1
	}

	var norm float64
	for _, v := range descriptor {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	for i := range descriptor {
		descriptor[i] = float32(float64(descriptor[i]) / norm)
	}

	return descriptor
}
