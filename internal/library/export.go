// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/tylerpriest/readiwi/pkg/types"
)

// ExportEntry holds one book with its chapters and saved reading position.
type ExportEntry struct {
	types.Book `yaml:",inline"`

	Chapters []ExportChapter        `json:"chapters" yaml:"chapters"`
	Position *types.ReadingPosition `json:"position,omitempty" yaml:"position,omitempty"`
}

// ExportChapter is a chapter without its full content; exports are
// library manifests, not text dumps.
type ExportChapter struct {
	Index     int    `json:"index" yaml:"index"`
	Title     string `json:"title" yaml:"title"`
	WordCount int    `json:"word_count" yaml:"word_count"`
}

// ExportYAML writes the library manifest to libraryDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.libraryDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the library manifest to libraryDir/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.libraryDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ListChapters returns chapter metadata for a book in reading order,
// without the chapter text.
func (s *Store) ListChapters(ctx context.Context, bookID string) ([]ExportChapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, title, word_count FROM chapters WHERE book_id = ? ORDER BY idx`,
		bookID)
	if err != nil {
		return nil, fmt.Errorf("listing chapters of %s: %w", bookID, err)
	}
	defer rows.Close()

	var chapters []ExportChapter
	for rows.Next() {
		var ch ExportChapter
		if err := rows.Scan(&ch.Index, &ch.Title, &ch.WordCount); err != nil {
			return nil, fmt.Errorf("scanning chapter row: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books for export: %w", err)
	}

	entries := make([]ExportEntry, len(books))
	for i, book := range books {
		entries[i] = ExportEntry{Book: book}

		entries[i].Chapters, err = s.ListChapters(ctx, book.ID)
		if err != nil {
			return nil, err
		}

		pos, ok, err := s.LoadPosition(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			entries[i].Position = &pos
		}
	}

	return entries, nil
}
