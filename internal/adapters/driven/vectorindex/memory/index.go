// Package memory provides an exact brute-force cosine nearest-neighbour index.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
)

// Ensure implementations satisfy the interfaces.
var (
	_ driven.VectorIndexBuilder = (*Builder)(nil)
	_ driven.VectorIndex        = (*Index)(nil)
)

// ErrDimensionMismatch is returned when vectors of different sizes are mixed.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Builder builds Index values.
type Builder struct{}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build copies and L2-normalises every row. The returned index shares no
// memory with vectors.
func (b *Builder) Build(ctx context.Context, vectors [][]float32) (driven.VectorIndex, error) {
	idx := &Index{rows: make([][]float32, len(vectors))}
	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i == 0 {
			idx.dim = len(v)
		} else if len(v) != idx.dim {
			return nil, fmt.Errorf("row %d has %d dimensions, want %d: %w", i, len(v), idx.dim, ErrDimensionMismatch)
		}
		idx.rows[i] = normalise(v)
	}
	return idx, nil
}

// Index is an immutable set of normalised rows.
type Index struct {
	dim  int
	rows [][]float32
}

// Len returns the number of rows.
func (x *Index) Len() int {
	return len(x.rows)
}

// Dimensions returns the row size, or 0 for an empty index.
func (x *Index) Dimensions() int {
	return x.dim
}

// Search scans every row and returns the k closest by cosine distance.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(x.rows) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w", len(query), x.dim, ErrDimensionMismatch)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := normalise(query)
	hits := make([]driven.VectorHit, len(x.rows))
	for i, row := range x.rows {
		hits[i] = driven.VectorHit{Row: i, Distance: 1 - dot(row, q)}
	}

	// Rows are already in order, so a stable sort breaks ties by row.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
