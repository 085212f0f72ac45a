// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tylerpriest/readiwi/pkg/types"
)

// ChapterRef is a link to one chapter discovered on a table-of-contents page.
type ChapterRef struct {
	Title string
	URL   string
}

// Source resolves a book URL into metadata and chapter references. Each
// supported novel site gets its own Source; the generic source handles
// everything else.
type Source interface {
	Name() string
	Matches(u *url.URL) bool
	ResolveBook(ctx context.Context, f *Fetcher, page *url.URL) (types.Book, []ChapterRef, error)
}

// DefaultSources returns the source list in match order. The generic
// source matches everything and must stay last.
func DefaultSources() []Source {
	return []Source{genericSource{}}
}

// pickSource returns the first source that claims the URL.
func pickSource(sources []Source, u *url.URL) (Source, error) {
	for _, s := range sources {
		if s.Matches(u) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no source handles %s", u.Host)
}

// genericSource works from page structure alone: the page title names the
// book and same-host chapter-looking links form the chapter list. A page
// without chapter links is treated as a single-chapter book.
type genericSource struct{}

func (genericSource) Name() string { return "generic" }

func (genericSource) Matches(*url.URL) bool { return true }

func (genericSource) ResolveBook(ctx context.Context, f *Fetcher, page *url.URL) (types.Book, []ChapterRef, error) {
	doc, err := f.GetHTML(ctx, page.String())
	if err != nil {
		return types.Book{}, nil, fmt.Errorf("fetching table of contents: %w", err)
	}

	book := types.Book{
		ID:        Slug(page),
		Title:     pageTitle(doc),
		SourceURL: page.String(),
		Source:    "generic",
	}
	if book.Title == "" {
		book.Title = page.Host
	}

	refs := chapterLinks(doc, page)
	if len(refs) == 0 {
		// Single-page book: the TOC page is the whole text.
		refs = []ChapterRef{{Title: book.Title, URL: page.String()}}
	}
	return book, refs, nil
}

// Slug derives a stable book ID from a URL: host plus path, lowercased,
// with runs of non-alphanumerics collapsed to single dashes.
func Slug(u *url.URL) string {
	raw := strings.ToLower(u.Host + "-" + strings.Trim(u.Path, "/"))
	var b strings.Builder
	dash := false
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
