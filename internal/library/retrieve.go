// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for chapter searches.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// BookID restricts the search to one book.
	BookID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.BookID == ""
}

// SearchResult is one matching chapter with book metadata and a content
// snippet around the first match.
type SearchResult struct {
	BookID    string `json:"book_id" yaml:"book_id"`
	BookTitle string `json:"book_title" yaml:"book_title"`
	Chapter   int    `json:"chapter" yaml:"chapter"`
	Title     string `json:"title" yaml:"title"`
	Snippet   string `json:"snippet" yaml:"snippet"`
	WordCount int    `json:"word_count" yaml:"word_count"`
}

// Retrieve searches chapter text with FTS5, optionally scoped to one book.
// Full-text queries are ranked by relevance; filter-only queries come back
// in book order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.book_id, b.title, c.idx, c.title, c.word_count,
				snippet(chapters_fts, 0, '[', ']', '…', 12)
			FROM chapters_fts
			JOIN chapters c ON c.rowid = chapters_fts.rowid
			LEFT JOIN books b ON c.book_id = b.id
			WHERE chapters_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT c.book_id, b.title, c.idx, c.title, c.word_count,
				substr(c.content, 1, 80)
			FROM chapters c
			LEFT JOIN books b ON c.book_id = b.id
			WHERE 1=1`)
	}

	if opts.BookID != "" {
		qb.WriteString(` AND c.book_id = ?`)
		args = append(args, opts.BookID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY chapters_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.book_id, c.idx`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chapters: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.BookID, &r.BookTitle, &r.Chapter, &r.Title,
			&r.WordCount, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
