package chunker

import (
	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits every document type with the line strategy. Extractors
// already reduce each format to lines, so the type does not change the split.
type Chunker struct {
	lines *Lines
}

// New creates a chunker with the given line options.
func New(opts ...LinesOption) *Chunker {
	return &Chunker{lines: NewLines(opts...)}
}

// MaxSize returns the chunk bound in characters.
func (c *Chunker) MaxSize() int {
	return c.lines.MaxSize()
}

// Chunk splits text into bounded passages.
func (c *Chunker) Chunk(text string, _ domain.DocumentType) []string {
	return c.lines.Split(text)
}
