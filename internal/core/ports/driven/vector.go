package driven

import "context"

// VectorIndexBuilder builds an immutable nearest-neighbour structure over
// a dense matrix. Row i of the matrix is the embedding of chunk i.
type VectorIndexBuilder interface {
	Build(ctx context.Context, vectors [][]float32) (VectorIndex, error)
}

// VectorIndex answers k-nearest-neighbour queries by cosine distance.
// A built index is never mutated, so concurrent searches need no locking.
type VectorIndex interface {
	// Search finds the k nearest rows to the query vector, ordered by
	// increasing distance with ties broken by row order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed rows.
	Len() int
}

// VectorHit represents a nearest-neighbour result.
type VectorHit struct {
	// Row is the matrix row, which equals the chunk ID.
	Row int

	// Distance is the cosine distance (1 - cosine similarity).
	Distance float64
}
