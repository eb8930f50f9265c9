package chunker

import (
	"errors"
	"strings"
	"testing"

	"ragpipe/internal/domain"
)

func TestWindowChunkerScenario(t *testing.T) {
	chunker, err := NewWindowChunker(512, 128)
	if err != nil {
		t.Fatal(err)
	}

	content := makeText(1000)
	chunks, err := chunker.Chunk(domain.NewDocument("doc.txt", content))
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	offsets := []int{0, 384, 768}
	for i, chunk := range chunks {
		if chunk.ChunkID != i {
			t.Errorf("expected ChunkID %d, got %d", i, chunk.ChunkID)
		}
		if chunk.Filename != "doc.txt" {
			t.Errorf("expected filename doc.txt, got %s", chunk.Filename)
		}
		if !strings.HasPrefix(content[offsets[i]:], chunk.Content) {
			t.Errorf("chunk %d does not start at offset %d", i, offsets[i])
		}
		if chunk.HasEmbedding() {
			t.Errorf("chunk %d should not be embedded yet", i)
		}
	}

	if len(chunks[2].Content) != 232 {
		t.Errorf("expected last window length 232, got %d", len(chunks[2].Content))
	}
}

func TestWindowChunkerReconstruction(t *testing.T) {
	params := []struct{ size, overlap int }{
		{1, 0}, {2, 1}, {5, 0}, {5, 4}, {10, 3}, {64, 16}, {512, 128},
	}
	lengths := []int{1, 2, 7, 63, 64, 65, 500, 1000, 1537}

	for _, p := range params {
		chunker, err := NewWindowChunker(p.size, p.overlap)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range lengths {
			content := makeText(n)
			chunks, err := chunker.Chunk(domain.NewDocument("f", content))
			if err != nil {
				t.Fatal(err)
			}

			step := p.size - p.overlap
			if want := (n + step - 1) / step; len(chunks) != want {
				t.Errorf("size=%d overlap=%d len=%d: expected %d chunks, got %d", p.size, p.overlap, n, want, len(chunks))
			}

			var sb strings.Builder
			for i, c := range chunks {
				if c.ChunkID != i {
					t.Fatalf("gap in chunk ids: position %d has id %d", i, c.ChunkID)
				}
				if len(c.Content) > p.size {
					t.Fatalf("window longer than chunk size: %d", len(c.Content))
				}
				if i == 0 {
					sb.WriteString(c.Content)
					continue
				}
				prev := chunks[i-1].Content
				shared := p.overlap
				if shared > len(c.Content) {
					shared = len(c.Content)
				}
				if len(prev) == p.size && prev[len(prev)-p.overlap:] != c.Content[:shared] {
					t.Errorf("window %d does not share %d characters with its predecessor", i, p.overlap)
				}
				sb.WriteString(c.Content[shared:])
			}

			if sb.String() != content {
				t.Errorf("size=%d overlap=%d len=%d: reconstruction differs from content", p.size, p.overlap, n)
			}
		}
	}
}

func TestWindowChunkerRejectsBadConfig(t *testing.T) {
	cases := []struct{ size, overlap int }{
		{512, 512},
		{512, 600},
		{0, 0},
		{-1, 0},
		{10, -1},
	}
	for _, c := range cases {
		_, err := NewWindowChunker(c.size, c.overlap)
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("size=%d overlap=%d: expected configuration error, got %v", c.size, c.overlap, err)
		}
	}
}

func TestWindowChunkerEmptyContent(t *testing.T) {
	chunker, _ := NewWindowChunker(10, 2)
	chunks, err := chunker.Chunk(domain.NewDocument("empty.txt", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty content, got %d", len(chunks))
	}
}

func TestWindowChunkerCountsRunes(t *testing.T) {
	chunker, _ := NewWindowChunker(3, 1)
	chunks, err := chunker.Chunk(domain.NewDocument("u.txt", "héllo wörld"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"hél", "llo", "o w", "wör", "rld", "d"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Content)
		}
	}
}

// makeText returns n ASCII characters with no repeating short period, so
// misplaced windows are detected.
func makeText(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789 "
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[(i*7+i/len(alphabet))%len(alphabet)])
	}
	return sb.String()
}
