package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

func TestNewLines(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		l := NewLines()
		if l.MaxSize() != DefaultMaxSize {
			t.Errorf("expected maxSize %d, got %d", DefaultMaxSize, l.MaxSize())
		}
	})

	t.Run("custom size", func(t *testing.T) {
		l := NewLines(WithMaxSize(50))
		if l.MaxSize() != 50 {
			t.Errorf("expected maxSize 50, got %d", l.MaxSize())
		}
	})

	t.Run("non-positive ignored", func(t *testing.T) {
		l := NewLines(WithMaxSize(0), WithMaxSize(-3))
		if l.MaxSize() != DefaultMaxSize {
			t.Errorf("expected default maxSize, got %d", l.MaxSize())
		}
	})
}

func TestLines_Split_Empty(t *testing.T) {
	l := NewLines()
	for _, text := range []string{"", "\n\n", "   \n\t\n  "} {
		if chunks := l.Split(text); len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestLines_Split_JoinsTrimmedLines(t *testing.T) {
	chunks := NewLines().Split("  first line  \n\n second\n")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "first line\nsecond" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestLines_Split_ClosesAtBound(t *testing.T) {
	l := NewLines(WithMaxSize(10))

	chunks := l.Split("aaaa\nbbbb\ncccc")

	// "aaaa" (4) + "bbbb" (4) = 8 < 10, joined with newline = 9 chars.
	// 9 + 4 = 13 is not < 10, so "cccc" starts a new chunk.
	want := []string{"aaaa\nbbbb", "cccc"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestLines_Split_OversizedFirstLine(t *testing.T) {
	long := strings.Repeat("x", 2500)

	chunks := NewLines().Split(long + "\nshort")

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != long {
		t.Error("expected oversized line to be its own chunk")
	}
	if chunks[1] != "short" {
		t.Errorf("unexpected second chunk: %q", chunks[1])
	}
}

func TestLines_Split_Bound(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString(strings.Repeat("word ", i%40+1))
		sb.WriteString("\n")
		if i%7 == 0 {
			sb.WriteString("\n   \n")
		}
	}

	l := NewLines()
	chunks := l.Split(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
		lines := strings.Split(c, "\n")
		last := lines[len(lines)-1]
		if n := utf8.RuneCountInString(c); n > l.MaxSize()+utf8.RuneCountInString(last) {
			t.Errorf("chunk %d has %d chars, exceeds bound", i, n)
		}
	}
}

func TestLines_Split_CountsRunes(t *testing.T) {
	l := NewLines(WithMaxSize(6))

	chunks := l.Split("héé\nüü")

	// 3 + 2 = 5 < 6 so both lines fit even though the byte length is larger.
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
}

func TestChunker_SameSplitForEveryType(t *testing.T) {
	c := New(WithMaxSize(100))

	if c.MaxSize() != 100 {
		t.Errorf("expected maxSize 100, got %d", c.MaxSize())
	}

	for _, docType := range []domain.DocumentType{
		domain.DocumentTypeCSV,
		domain.DocumentTypePDF,
		domain.DocumentTypeDOCX,
		domain.DocumentTypeText,
	} {
		got := c.Chunk("  line one \n\nline two", docType)
		if len(got) != 1 || got[0] != "line one\nline two" {
			t.Errorf("%s: expected line strategy output, got %q", docType, got)
		}
	}
}
