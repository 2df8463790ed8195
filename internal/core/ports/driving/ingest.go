package driving

import "context"

// IngestService turns files into indexed records.
type IngestService interface {
	// IngestFile processes one file and writes its chunks to the active store.
	// Returns the number of chunks produced, or domain.ErrExtraction when
	// the file yielded nothing.
	IngestFile(ctx context.Context, path, subject, topic string) (int, error)

	// IngestDirectory processes every regular file in dir.
	// Files that fail are skipped.
	IngestDirectory(ctx context.Context, dir, subject string) (int, error)

	// Seed writes the built-in sample passages.
	Seed(ctx context.Context) (int, error)
}
