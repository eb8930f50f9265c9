package saver

import (
	"fmt"
	"os"
	"path/filepath"

	"ragpipe/internal/domain"
)

// FileSaver writes each chunk's text to {dir}/{filename}_chunk_{id}.txt.
// Existing files with the same name are overwritten.
type FileSaver struct {
	dir string
}

func NewFileSaver(dir string) *FileSaver {
	return &FileSaver{dir: dir}
}

// Dir returns the output directory.
func (s *FileSaver) Dir() string {
	return s.dir
}

// Path returns the file a chunk is written to.
func (s *FileSaver) Path(c domain.Chunk) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_chunk_%d.txt", c.Filename, c.ChunkID))
}

func (s *FileSaver) SaveChunks(chunks []domain.Chunk) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrPersistence, s.dir, err)
	}

	for _, c := range chunks {
		path := s.Path(c)
		if err := os.WriteFile(path, []byte(c.Content), 0o644); err != nil {
			return fmt.Errorf("%w: write %s: %v", domain.ErrPersistence, path, err)
		}
	}
	return nil
}
