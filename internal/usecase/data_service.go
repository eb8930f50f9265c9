package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// LoaderFinder picks the loader for a filename.
type LoaderFinder interface {
	Find(filename string) (port.Loader, bool)
}

// FileOutcome is reported once per directory entry.
type FileOutcome string

const (
	FileProcessed FileOutcome = "processed"
	FileSkipped   FileOutcome = "skipped"
	FileFailed    FileOutcome = "failed"
)

// DataService turns a directory of raw files into unembedded chunks.
type DataService struct {
	lister   port.DirectoryLister
	loaders  LoaderFinder
	cleaner  port.Cleaner
	chunker  port.Chunker
	metadata port.MetadataRepository
	saver    port.Saver
	now      func() time.Time
	log      zerolog.Logger

	// OnFile, when set, is called after each entry is handled.
	OnFile func(name string, outcome FileOutcome)
}

// NewDataService creates a new data service.
func NewDataService(
	lister port.DirectoryLister,
	loaders LoaderFinder,
	cleaner port.Cleaner,
	chunker port.Chunker,
	metadata port.MetadataRepository,
	saver port.Saver,
	now func() time.Time,
	log zerolog.Logger,
) *DataService {
	if now == nil {
		now = time.Now
	}
	return &DataService{
		lister:   lister,
		loaders:  loaders,
		cleaner:  cleaner,
		chunker:  chunker,
		metadata: metadata,
		saver:    saver,
		now:      now,
		log:      log,
	}
}

// IngestResult contains the results of processing a directory.
type IngestResult struct {
	Chunks         []domain.Chunk
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int
	Warnings       []string
}

// ProcessFiles handles every entry of directory in listing order. A file
// that fails is recorded and skipped; only a listing failure or a cancelled
// context ends the run early.
func (s *DataService) ProcessFiles(ctx context.Context, directory string) (*IngestResult, error) {
	files, err := s.lister.List(directory)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loader, ok := s.loaders.Find(file.Name)
		if !ok {
			result.FilesSkipped++
			s.log.Debug().Str("file", file.Name).Msg("no loader, skipping")
			s.report(file.Name, FileSkipped)
			continue
		}

		chunks, err := s.processFile(ctx, loader, file)
		if err != nil {
			result.FilesFailed++
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", file.Name, err))
			s.log.Warn().Err(err).Str("file", file.Name).Msg("file failed, continuing")
			s.report(file.Name, FileFailed)
			continue
		}

		result.FilesProcessed++
		result.Chunks = append(result.Chunks, chunks...)
		s.log.Debug().Str("file", file.Name).Int("chunks", len(chunks)).Msg("file processed")
		s.report(file.Name, FileProcessed)
	}

	return result, nil
}

func (s *DataService) processFile(ctx context.Context, loader port.Loader, file port.FileInfo) ([]domain.Chunk, error) {
	doc, err := loader.Load(file.Path)
	if err != nil {
		return nil, err
	}

	doc.Content = s.cleaner.Clean(doc.Content)

	source := SourceTag(doc.Filename)
	timestamp := s.now().UTC().Format(time.RFC3339)
	doc.AddMetadata(domain.MetaSource, source)
	doc.AddMetadata(domain.MetaIngestionTimestamp, timestamp)

	if err := s.metadata.InsertMetadata(ctx, doc.Filename, source, timestamp); err != nil {
		return nil, err
	}

	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return nil, err
	}

	if err := s.saver.SaveChunks(chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *DataService) report(name string, outcome FileOutcome) {
	if s.OnFile != nil {
		s.OnFile(name, outcome)
	}
}

// SourceTag is the uppercased extension without the dot, or the whole
// uppercased name when there is no extension.
func SourceTag(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return strings.ToUpper(filename)
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}
