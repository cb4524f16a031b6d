// Package chunker splits extracted document text into bounded passages.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSize is the character count at which a chunk is closed.
const DefaultMaxSize = 2000

// Lines accumulates trimmed non-empty lines into chunks. A line is appended
// to the running chunk while the combined length stays below the maximum;
// otherwise the chunk is closed and the line starts the next one. A single
// line longer than the maximum becomes its own oversized chunk.
type Lines struct {
	maxSize int
}

// LinesOption configures the line strategy.
type LinesOption func(*Lines)

// WithMaxSize sets the chunk bound in characters.
func WithMaxSize(size int) LinesOption {
	return func(l *Lines) {
		if size > 0 {
			l.maxSize = size
		}
	}
}

// NewLines creates the line strategy with the given options.
func NewLines(opts ...LinesOption) *Lines {
	l := &Lines{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxSize returns the configured bound.
func (l *Lines) MaxSize() int {
	return l.maxSize
}

// Split returns the chunks of text. Text with no non-empty lines yields nil.
func (l *Lines) Split(text string) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lineLen := utf8.RuneCountInString(line)

		if curLen+lineLen < l.maxSize {
			if curLen > 0 {
				cur.WriteByte('\n')
				curLen++
			}
			cur.WriteString(line)
			curLen += lineLen
			continue
		}

		if curLen > 0 {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		cur.WriteString(line)
		curLen = lineLen
	}

	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
