package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/logger"
)

// DefaultSubject tags documents ingested without --subject.
const DefaultSubject = "general"

// watchDebounce is how long a file must be quiet before it is ingested.
const watchDebounce = 500 * time.Millisecond

var (
	ingestSubject string
	ingestTopic   string
	ingestWatch   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a document or directory",
	Long: `Extracts, chunks and stores a file, or every supported file directly
inside a directory. Supported types: .txt, .pdf, .docx, .pptx.

With --watch the directory is kept open and files are ingested as they
are created or changed, until interrupted.`,
	Args:        cobra.ExactArgs(1),
	Annotations: needs(needsApp),
	RunE:        runIngest,
}

var seedCmd = &cobra.Command{
	Use:         "seed",
	Short:       "Load the built-in sample passages",
	Long:        `Adds the sample passages for Mathematics, Physics and Chemistry. Seeding twice adds them twice.`,
	Args:        cobra.NoArgs,
	Annotations: needs(needsApp),
	RunE:        runSeed,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSubject, "subject", "s", DefaultSubject, "subject label for the documents")
	ingestCmd.Flags().StringVarP(&ingestTopic, "topic", "t", "", "topic label (single files only)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new files")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(seedCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	ctx := cmd.Context()
	if !info.IsDir() {
		if ingestWatch {
			return errors.New("--watch needs a directory")
		}
		n, err := ingestService.IngestFile(ctx, path, ingestSubject, ingestTopic)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingested %s: %d chunks (subject: %s)\n", filepath.Base(path), n, ingestSubject)
		return nil
	}

	n, err := ingestService.IngestDirectory(ctx, path, ingestSubject)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %s: %d chunks (subject: %s)\n", path, n, ingestSubject)

	if !ingestWatch {
		return nil
	}
	return watchDirectory(ctx, cmd, path, ingestSubject, ingestTopic)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	n, err := ingestService.Seed(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	cmd.Printf("Seeded %d sample chunks.\n", n)
	return nil
}

// watchDirectory ingests files created or written in dir until ctx ends.
// Events for one file are debounced so a file being copied in is ingested once.
func watchDirectory(ctx context.Context, cmd *cobra.Command, dir, subject, topic string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for new documents (Ctrl+C to stop)...\n", dir)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for name, t := range pending {
			if t.Stop() {
				wg.Done()
			}
			delete(pending, name)
		}
		mu.Unlock()
		wg.Wait()
	}()

	ingest := func(path string) {
		defer wg.Done()

		n, err := ingestService.IngestFile(ctx, path, subject, topic)
		switch {
		case errors.Is(err, domain.ErrExtraction):
			logger.Warn("Skipped %s: nothing could be extracted", filepath.Base(path))
		case err != nil:
			logger.Error("Ingesting %s: %v", path, err)
		default:
			cmd.Printf("Ingested %s: %d chunks\n", filepath.Base(path), n)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !watchable(event.Name) {
				continue
			}

			mu.Lock()
			if t, exists := pending[event.Name]; exists && t.Stop() {
				wg.Done()
			}
			path := event.Name
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(watchDebounce, func() {
				mu.Lock()
				if pending[path] == timer {
					delete(pending, path)
				}
				mu.Unlock()
				ingest(path)
			})
			pending[path] = timer
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// watchable skips hidden, editor backup and partial download files.
func watchable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tmp", ".part", ".crdownload", ".swp":
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
