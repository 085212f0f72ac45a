// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Book holds metadata for an imported web novel.
type Book struct {
	// ID is a slug derived from the source URL (e.g. "example.com-dragon-heir").
	ID string `json:"id" yaml:"id"`

	// Title is the book title as extracted from the source page.
	Title string `json:"title" yaml:"title"`

	// Author is the author name, when the source exposes one.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// SourceURL is the table-of-contents URL the book was imported from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Source identifies which importer source fetched the book (e.g. "generic").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// ChapterCount is the number of chapters stored for this book.
	ChapterCount int `json:"chapter_count" yaml:"chapter_count"`

	// CreatedAt is when the book was first imported.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Chapter is one unit of readable text within a book. Content is plain
// text with paragraphs separated by blank lines; all reading-position
// offsets are byte offsets into Content.
type Chapter struct {
	// BookID references the owning Book.
	BookID string `json:"book_id" yaml:"book_id"`

	// Index is the zero-based position of this chapter within the book.
	Index int `json:"index" yaml:"index"`

	// Title is the chapter title.
	Title string `json:"title" yaml:"title"`

	// Content is the extracted plain text of the chapter.
	Content string `json:"content" yaml:"content"`

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int `json:"word_count" yaml:"word_count"`

	// SourceURL is the page the chapter was fetched from.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}
