package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tylerpriest/readiwi/internal/importer"
	"github.com/tylerpriest/readiwi/internal/library"
	"github.com/tylerpriest/readiwi/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "readiwi/0.1"
)

var importCmd = &cobra.Command{
	Use:   "import [urls...]",
	Short: "Import books from web-novel table-of-contents URLs",
	Long: `Import fetches each URL's table of contents, discovers chapter links,
and downloads chapter text into the library. Chapters already stored are
skipped, so re-running an import resumes where the last run stopped.

Fetches are polite: one request at a time per book, a fixed delay between
chapters, and exponential backoff on rate-limit responses.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	importCmd.Flags().Duration("delay", 0, "delay between consecutive chapter fetches (default 1s)")
	importCmd.Flags().Int("max-retries", 0, "retry attempts on rate-limited fetches (default 5)")
	importCmd.Flags().Int("max-chapters", 0, "cap on chapters fetched per book (0 = no cap)")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more table-of-contents URLs")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	maxChapters, _ := cmd.Flags().GetInt("max-chapters")
	dir := libraryDir(cmd)

	cfg := types.ImportConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		FetchDelay:  delay,
		MaxRetries:  maxRetries,
		MaxChapters: maxChapters,
		LibraryDir:  dir,
	}

	store, err := library.NewStore(types.LibraryConfig{LibraryDir: dir})
	if err != nil {
		return err
	}
	defer store.Close()

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	imp := importer.New(client, store, cfg, loadedSecrets, importer.DefaultSources())
	_, failed := imp.ImportBatch(context.Background(), args, os.Stdout)
	if failed > 0 {
		return fmt.Errorf("%d book(s) failed import", failed)
	}
	return nil
}
