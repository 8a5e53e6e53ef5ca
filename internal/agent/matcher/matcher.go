package matcher

import (
	"errors"
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/classmark/classmark/internal/domain"
)

// DefaultThreshold is the Euclidean distance above which a face is unresolved
const DefaultThreshold = 0.5

// hnswMaxNeighbors tunes graph connectivity
const hnswMaxNeighbors = 16

// ErrNoReferenceData is returned when the matcher holds no reference descriptors
var ErrNoReferenceData = errors.New("no reference descriptors loaded")

// ErrDimensionMismatch is returned when a query descriptor's dimension
// differs from the loaded reference set's. Comparing vectors of unequal
// length would yield meaningless distances, so this is surfaced instead
// of a spurious match.
var ErrDimensionMismatch = errors.New("descriptor dimension does not match reference set")

// Match is the outcome of resolving one descriptor against the reference set
type Match struct {
	Identity domain.Identity
	Distance float64
	// OK is false when the nearest reference is beyond the threshold
	OK bool
}

// Matcher resolves face descriptors to student identities by nearest
// neighbor over the labeled reference set.
type Matcher struct {
	graph     *hnsw.Graph[int]
	refs      map[int]domain.ReferenceFace
	dim       int
	threshold float64
	mu        sync.RWMutex
}

// New creates an empty matcher with the given distance threshold.
// A non-positive threshold falls back to DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		refs:      make(map[int]domain.ReferenceFace),
		threshold: threshold,
	}
}

// Load replaces the reference set. Safe to call on a live matcher,
// e.g. after re-fetching embeddings from the server.
func (m *Matcher) Load(refs []domain.ReferenceFace) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(refs) == 0 {
		m.graph = nil
		m.refs = make(map[int]domain.ReferenceFace)
		m.dim = 0
		return
	}

	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	m.refs = make(map[int]domain.ReferenceFace, len(refs))
	m.dim = 0
	for i := range refs {
		if len(refs[i].Embedding) == 0 {
			continue
		}
		if m.dim == 0 {
			m.dim = len(refs[i].Embedding)
		}
		// A descriptor of a different dimension cannot live in the
		// same graph; skip it rather than corrupt every search
		if len(refs[i].Embedding) != m.dim {
			continue
		}
		g.Add(hnsw.MakeNode(i, refs[i].Embedding))
		m.refs[i] = refs[i]
	}

	m.graph = g
}

// Len returns the number of loaded reference descriptors
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.refs)
}

// Match resolves a descriptor to its nearest reference. A result with
// OK=false carries the distance but an empty identity.
func (m *Matcher) Match(descriptor []float32) (Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.graph == nil || len(m.refs) == 0 {
		return Match{}, ErrNoReferenceData
	}
	if len(descriptor) != m.dim {
		return Match{}, ErrDimensionMismatch
	}

	neighbors := m.graph.Search(descriptor, 1)
	if len(neighbors) == 0 {
		return Match{}, ErrNoReferenceData
	}

	nearest := neighbors[0]
	distance := euclideanDistance(descriptor, nearest.Value)

	if distance > m.threshold {
		return Match{Distance: distance, OK: false}, nil
	}

	ref, ok := m.refs[nearest.Key]
	if !ok {
		return Match{Distance: distance, OK: false}, nil
	}

	return Match{
		Identity: domain.ResolvedIdentity(ref.StudentID, ref.Name),
		Distance: distance,
		OK:       true,
	}, nil
}

func euclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
