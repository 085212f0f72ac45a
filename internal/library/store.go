// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists books, chapters, and reading positions in a
// SQLite database with full-text chapter search.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tylerpriest/readiwi/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "readiwi.db"
)

// Store manages the library SQLite database.
type Store struct {
	db         *sql.DB
	libraryDir string
	maxResults int
}

// NewStore opens or creates the library database at
// libraryDir/index/readiwi.db, creating the schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.LibraryDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		libraryDir: cfg.LibraryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT,
			author TEXT,
			source_url TEXT,
			source TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chapters (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id TEXT NOT NULL REFERENCES books(id),
			idx INTEGER NOT NULL,
			title TEXT,
			content TEXT NOT NULL,
			word_count INTEGER,
			source_url TEXT,
			UNIQUE(book_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chapters_book_id ON chapters(book_id)`,
		`CREATE TABLE IF NOT EXISTS positions (
			book_id TEXT PRIMARY KEY REFERENCES books(id),
			chapter_idx INTEGER NOT NULL,
			pos_offset INTEGER NOT NULL,
			before_ctx TEXT,
			after_ctx TEXT,
			paragraph TEXT,
			word_index INTEGER,
			char_offset INTEGER,
			updated_at TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chapters_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE chapters_fts USING fts5(content, content=chapters, content_rowid=rowid)`,
			`CREATE TRIGGER chapters_ai AFTER INSERT ON chapters BEGIN
				INSERT INTO chapters_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER chapters_ad AFTER DELETE ON chapters BEGIN
				INSERT INTO chapters_fts(chapters_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER chapters_au AFTER UPDATE ON chapters BEGIN
				INSERT INTO chapters_fts(chapters_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO chapters_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// AddBook upserts a book record.
func (s *Store) AddBook(ctx context.Context, book types.Book) error {
	createdAt := book.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, source_url, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, author=excluded.author,
			source_url=excluded.source_url, source=excluded.source`,
		book.ID, book.Title, book.Author, book.SourceURL, book.Source,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting book %s: %w", book.ID, err)
	}
	return nil
}

// AddChapter upserts one chapter. The per-chapter word count is computed
// here so search results can report it without rescanning content.
func (s *Store) AddChapter(ctx context.Context, ch types.Chapter) error {
	wordCount := ch.WordCount
	if wordCount == 0 {
		wordCount = len(strings.Fields(ch.Content))
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (book_id, idx, title, content, word_count, source_url)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(book_id, idx) DO UPDATE SET
			title=excluded.title, content=excluded.content,
			word_count=excluded.word_count, source_url=excluded.source_url`,
		ch.BookID, ch.Index, ch.Title, ch.Content, wordCount, ch.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("upserting chapter %s/%d: %w", ch.BookID, ch.Index, err)
	}
	return nil
}

// HasChapter reports whether a chapter is already stored.
func (s *Store) HasChapter(ctx context.Context, bookID string, idx int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM chapters WHERE book_id = ? AND idx = ?`, bookID, idx,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking chapter %s/%d: %w", bookID, idx, err)
	}
	return n > 0, nil
}

// GetBook returns one book by ID.
func (s *Store) GetBook(ctx context.Context, bookID string) (types.Book, error) {
	var (
		book      types.Book
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT b.id, b.title, b.author, b.source_url, b.source, b.created_at,
			(SELECT count(*) FROM chapters c WHERE c.book_id = b.id)
		 FROM books b WHERE b.id = ?`, bookID,
	).Scan(&book.ID, &book.Title, &book.Author, &book.SourceURL, &book.Source,
		&createdAt, &book.ChapterCount)
	if err == sql.ErrNoRows {
		return types.Book{}, fmt.Errorf("book %q not found", bookID)
	}
	if err != nil {
		return types.Book{}, fmt.Errorf("loading book %s: %w", bookID, err)
	}
	book.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return book, nil
}

// ListBooks returns all books ordered by creation time.
func (s *Store) ListBooks(ctx context.Context) ([]types.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.title, b.author, b.source_url, b.source, b.created_at,
			(SELECT count(*) FROM chapters c WHERE c.book_id = b.id)
		 FROM books b ORDER BY b.created_at, b.id`)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []types.Book
	for rows.Next() {
		var (
			book      types.Book
			createdAt string
		)
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.SourceURL,
			&book.Source, &createdAt, &book.ChapterCount); err != nil {
			return nil, fmt.Errorf("scanning book row: %w", err)
		}
		book.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetChapter returns one chapter of a book.
func (s *Store) GetChapter(ctx context.Context, bookID string, idx int) (types.Chapter, error) {
	var ch types.Chapter
	err := s.db.QueryRowContext(ctx,
		`SELECT book_id, idx, title, content, word_count, source_url
		 FROM chapters WHERE book_id = ? AND idx = ?`, bookID, idx,
	).Scan(&ch.BookID, &ch.Index, &ch.Title, &ch.Content, &ch.WordCount, &ch.SourceURL)
	if err == sql.ErrNoRows {
		return types.Chapter{}, fmt.Errorf("chapter %d of book %q not found", idx, bookID)
	}
	if err != nil {
		return types.Chapter{}, fmt.Errorf("loading chapter %s/%d: %w", bookID, idx, err)
	}
	return ch, nil
}

// SavePosition upserts the reading position for a book. The fingerprint is
// stored as flat columns so the record stays readable without the library
// in the loop.
func (s *Store) SavePosition(ctx context.Context, pos types.ReadingPosition) error {
	updatedAt := pos.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	fp := pos.Fingerprint
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO positions (book_id, chapter_idx, pos_offset, before_ctx, after_ctx,
			paragraph, word_index, char_offset, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(book_id) DO UPDATE SET
			chapter_idx=excluded.chapter_idx, pos_offset=excluded.pos_offset,
			before_ctx=excluded.before_ctx, after_ctx=excluded.after_ctx,
			paragraph=excluded.paragraph, word_index=excluded.word_index,
			char_offset=excluded.char_offset, updated_at=excluded.updated_at`,
		pos.BookID, pos.ChapterIndex, pos.Offset, fp.Before, fp.After,
		fp.Paragraph, fp.WordIndex, fp.CharOffset, updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving position for %s: %w", pos.BookID, err)
	}
	return nil
}

// LoadPosition returns the saved reading position for a book. The second
// return is false when no position has been saved.
func (s *Store) LoadPosition(ctx context.Context, bookID string) (types.ReadingPosition, bool, error) {
	var (
		pos       types.ReadingPosition
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT book_id, chapter_idx, pos_offset, before_ctx, after_ctx,
			paragraph, word_index, char_offset, updated_at
		 FROM positions WHERE book_id = ?`, bookID,
	).Scan(&pos.BookID, &pos.ChapterIndex, &pos.Offset,
		&pos.Fingerprint.Before, &pos.Fingerprint.After, &pos.Fingerprint.Paragraph,
		&pos.Fingerprint.WordIndex, &pos.Fingerprint.CharOffset, &updatedAt)
	if err == sql.ErrNoRows {
		return types.ReadingPosition{}, false, nil
	}
	if err != nil {
		return types.ReadingPosition{}, false, fmt.Errorf("loading position for %s: %w", bookID, err)
	}
	pos.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return pos, true, nil
}
