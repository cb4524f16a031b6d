package domain

// IndexMode is the retrieval strategy of the retrieval index.
// It is chosen once at construction and never changes.
type IndexMode string

// Available index modes.
const (
	// IndexModeVector ranks chunks by cosine similarity of embeddings.
	IndexModeVector IndexMode = "vector"

	// IndexModeTokenOverlap ranks chunks by shared lowercase tokens.
	IndexModeTokenOverlap IndexMode = "token-overlap"
)

// String returns the string representation.
func (m IndexMode) String() string {
	return string(m)
}

// DefaultTopK is the number of document hits returned when unspecified.
const DefaultTopK = 5

// Hit is a single document retrieval result.
type Hit struct {
	// Score is 1 - cosine distance in vector mode and the overlap count
	// in token-overlap mode.
	Score float64 `json:"score"`

	// Text is the matched chunk text.
	Text string `json:"text"`

	// Source is the file name of the chunk.
	Source string `json:"source"`
}
