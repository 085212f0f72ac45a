// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package importer fetches web novels chapter by chapter and stores them
// in the library. Fetches are polite: one configurable delay between
// chapters, retry with backoff on rate limiting, and per-site cookies
// from the secrets directory.
package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/tylerpriest/readiwi/internal/httputil"
	"github.com/tylerpriest/readiwi/internal/secrets"
	"github.com/tylerpriest/readiwi/pkg/types"
)

// Library is the subset of the library store the importer writes to.
type Library interface {
	AddBook(ctx context.Context, book types.Book) error
	AddChapter(ctx context.Context, ch types.Chapter) error
	HasChapter(ctx context.Context, bookID string, idx int) (bool, error)
}

// Fetcher performs polite HTTP fetches with per-host cookies.
type Fetcher struct {
	Client  *http.Client
	Cfg     types.ImportConfig
	Secrets map[string]string
}

// GetHTML fetches a URL and parses the response as HTML. Rate-limited
// responses are retried; other non-200 statuses are errors.
func (f *Fetcher) GetHTML(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.Cfg.UserAgent)
	req.Header.Set("Accept", "text/html")
	if cookie, ok := secrets.ForHost(f.Secrets, req.URL.Host); ok {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, f.Cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// Result holds the outcome of importing one book.
type Result struct {
	BookID  string
	Title   string
	Fetched int
	Skipped int
	Failed  int
}

// Total returns the number of chapters processed.
func (r Result) Total() int {
	return r.Fetched + r.Skipped + r.Failed
}

// HasFailures reports whether any chapters failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Importer drives book imports against a library store.
type Importer struct {
	fetcher *Fetcher
	store   Library
	sources []Source
}

// New builds an importer. A nil client uses a default with the configured
// timeout; nil sources use DefaultSources.
func New(client *http.Client, store Library, cfg types.ImportConfig, secretMap map[string]string, sources []Source) *Importer {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if sources == nil {
		sources = DefaultSources()
	}
	return &Importer{
		fetcher: &Fetcher{Client: client, Cfg: cfg, Secrets: secretMap},
		store:   store,
		sources: sources,
	}
}

// ImportBook resolves a book URL, fetches its chapters politely, and
// stores book and chapters. Already-stored chapters are skipped;
// individual chapter failures are reported and do not abort the book.
func (imp *Importer) ImportBook(ctx context.Context, rawURL string, w io.Writer) (Result, error) {
	page, err := url.Parse(rawURL)
	if err != nil || page.Host == "" {
		return Result{}, fmt.Errorf("invalid book URL %q", rawURL)
	}

	src, err := pickSource(imp.sources, page)
	if err != nil {
		return Result{}, err
	}

	book, refs, err := src.ResolveBook(ctx, imp.fetcher, page)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %s: %w", rawURL, err)
	}
	book.Source = src.Name()

	if max := imp.fetcher.Cfg.MaxChapters; max > 0 && len(refs) > max {
		refs = refs[:max]
	}

	if err := imp.store.AddBook(ctx, book); err != nil {
		return Result{}, err
	}

	fmt.Fprintf(w, "importing %q (%d chapters)\n", book.Title, len(refs))

	result := Result{BookID: book.ID, Title: book.Title}
	for i, ref := range refs {
		exists, err := imp.store.HasChapter(ctx, book.ID, i)
		if err != nil {
			return result, err
		}
		if exists {
			fmt.Fprintf(w, "skipped  %3d %s\n", i, ref.Title)
			result.Skipped++
			continue
		}

		if result.Fetched > 0 && imp.fetcher.Cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(imp.fetcher.Cfg.FetchDelay):
			}
		}

		ch, err := imp.fetchChapter(ctx, book.ID, i, ref)
		if err != nil {
			fmt.Fprintf(w, "failed   %3d %s: %v\n", i, ref.Title, err)
			result.Failed++
			continue
		}

		if err := imp.store.AddChapter(ctx, ch); err != nil {
			return result, err
		}
		fmt.Fprintf(w, "fetched  %3d %s (%d words)\n", i, ch.Title, ch.WordCount)
		result.Fetched++
	}

	fmt.Fprintf(w, "\n%s: %d fetched, %d skipped, %d failed\n",
		book.ID, result.Fetched, result.Skipped, result.Failed)
	return result, nil
}

func (imp *Importer) fetchChapter(ctx context.Context, bookID string, idx int, ref ChapterRef) (types.Chapter, error) {
	doc, err := imp.fetcher.GetHTML(ctx, ref.URL)
	if err != nil {
		return types.Chapter{}, err
	}

	text := flattenText(doc)
	if strings.TrimSpace(text) == "" {
		return types.Chapter{}, fmt.Errorf("no readable text at %s", ref.URL)
	}

	title := ref.Title
	if title == "" {
		title = pageTitle(doc)
	}

	return types.Chapter{
		BookID:    bookID,
		Index:     idx,
		Title:     title,
		Content:   text,
		WordCount: len(strings.Fields(text)),
		SourceURL: ref.URL,
	}, nil
}

// ImportBatch imports multiple book URLs, continuing after individual
// book failures, and returns the per-book results.
func (imp *Importer) ImportBatch(ctx context.Context, urls []string, w io.Writer) ([]Result, int) {
	var (
		results []Result
		failed  int
	)
	for _, u := range urls {
		result, err := imp.ImportBook(ctx, u, w)
		if err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", u, err)
			failed++
			continue
		}
		results = append(results, result)
	}
	return results, failed
}
