package port

import "ragpipe/internal/domain"

// Saver persists the raw text of chunks.
type Saver interface {
	SaveChunks(chunks []domain.Chunk) error
}
