package driven

import (
	"context"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// Extractor converts one kind of file into raw text.
// Implementations may return errors; the TextExtractor boundary swallows them.
type Extractor interface {
	// Type returns the document type this extractor handles.
	Type() domain.DocumentType

	// Extract reads the file at path and returns its text.
	Extract(ctx context.Context, path string) (string, error)
}

// TextExtractor dispatches a path to the matching Extractor.
// Extraction failure of any kind yields an empty string.
type TextExtractor interface {
	Extract(ctx context.Context, path string) string
}

// Chunker splits document text into bounded passages.
// The document type selects a strategy; unknown types use the default.
type Chunker interface {
	Chunk(text string, docType domain.DocumentType) []string
}
