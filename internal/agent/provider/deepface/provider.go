package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/classmark/classmark/internal/agent/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements provider.EmbeddingProvider using the DeepFace API
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Represent extracts one descriptor per detected face
func (p *Provider) Represent(ctx context.Context, image []byte) ([]provider.Face, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("represent: %w", err)
	}

	faces := make([]provider.Face, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Embedding) == 0 {
			continue
		}

		descriptor := make([]float32, len(result.Embedding))
		for i, v := range result.Embedding {
			descriptor[i] = float32(v)
		}

		faceArea := float64(result.FacialArea.W * result.FacialArea.H)

		faces = append(faces, provider.Face{
			Descriptor: descriptor,
			Box: provider.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
			Confidence: calculateConfidence(faceArea),
		})
	}

	return faces, nil
}

// calculateConfidence estimates confidence based on face area
// DeepFace doesn't return confidence, so we estimate based on face size
func calculateConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5 // Low confidence for very small faces
	}
	// Scale from 0.7 to 0.99 based on face area
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}
