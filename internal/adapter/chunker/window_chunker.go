package chunker

import (
	"fmt"

	"ragpipe/internal/domain"
)

// WindowChunker splits text into fixed-size character windows that share
// overlap characters with their predecessor. Offsets count runes.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

func NewWindowChunker(chunkSize, overlap int) (*WindowChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than chunk_size (%d)", domain.ErrConfiguration, overlap, chunkSize)
	}
	return &WindowChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Step is the distance between the starts of consecutive windows.
func (c *WindowChunker) Step() int {
	return c.chunkSize - c.overlap
}

func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil, nil
	}

	step := c.Step()
	chunks := make([]domain.Chunk, 0, (len(runes)+step-1)/step)

	for offset, index := 0, 0; offset < len(runes); offset, index = offset+step, index+1 {
		end := offset + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunk, err := domain.NewChunk(doc.Filename, index, string(runes[offset:end]))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
