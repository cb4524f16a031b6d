package domain

import (
	"path/filepath"
	"strings"
)

// MetadataSource is the chunk metadata key holding the source file name.
const MetadataSource = "source"

// DocumentType identifies the extraction strategy for a file.
type DocumentType string

// Supported document types.
const (
	// DocumentTypeCSV is tabular text.
	DocumentTypeCSV DocumentType = "csv"

	// DocumentTypePDF is a paginated document.
	DocumentTypePDF DocumentType = "pdf"

	// DocumentTypeDOCX is structured text with markup.
	DocumentTypeDOCX DocumentType = "docx"

	// DocumentTypeText is anything else, decoded as plain text.
	DocumentTypeText DocumentType = "text"
)

// DocumentTypeFromPath derives the document type from a file extension.
// Unknown extensions map to DocumentTypeText.
func DocumentTypeFromPath(path string) DocumentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DocumentTypeCSV
	case ".pdf":
		return DocumentTypePDF
	case ".docx":
		return DocumentTypeDOCX
	default:
		return DocumentTypeText
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Chunk represents a searchable unit of extracted document text.
// Chunks are created during ingestion and never deleted.
type Chunk struct {
	// ID is the chunk's position in the corpus. It is assigned
	// monotonically and is stable for the process lifetime.
	ID int

	// SourcePath is the file the text was extracted from.
	SourcePath string

	// Text is the chunk content.
	Text string

	// Metadata holds at least MetadataSource.
	Metadata map[string]string

	// Embedding is populated in vector mode.
	Embedding []float32

	// Tokens is populated in token-overlap mode.
	Tokens map[string]struct{}
}

// Source returns the source file name recorded in metadata,
// falling back to the base name of SourcePath.
func (c *Chunk) Source() string {
	if s, ok := c.Metadata[MetadataSource]; ok && s != "" {
		return s
	}
	return filepath.Base(c.SourcePath)
}

// Tokenize lowercases text and splits it on whitespace into a token set.
func Tokenize(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
