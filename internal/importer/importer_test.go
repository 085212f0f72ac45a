// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/tylerpriest/readiwi/pkg/types"
)

// --- fake library ---

type fakeLibrary struct {
	mu       sync.Mutex
	books    map[string]types.Book
	chapters map[string]types.Chapter
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		books:    map[string]types.Book{},
		chapters: map[string]types.Chapter{},
	}
}

func chapterKey(bookID string, idx int) string {
	return fmt.Sprintf("%s/%d", bookID, idx)
}

func (l *fakeLibrary) AddBook(_ context.Context, book types.Book) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books[book.ID] = book
	return nil
}

func (l *fakeLibrary) AddChapter(_ context.Context, ch types.Chapter) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chapters[chapterKey(ch.BookID, ch.Index)] = ch
	return nil
}

func (l *fakeLibrary) HasChapter(_ context.Context, bookID string, idx int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.chapters[chapterKey(bookID, idx)]
	return ok, nil
}

// --- test site ---

const tocPage = `<html><head><title>The Dragon Heir - NovelSite</title></head>
<body>
<h1>The Dragon Heir</h1>
<nav><a href="/home">Home</a><a href="/browse">Browse</a></nav>
<ul>
<li><a href="/dragon-heir/chapter-1">Chapter 1: The Summons</a></li>
<li><a href="/dragon-heir/chapter-2">Chapter 2: The Road North</a></li>
<li><a href="https://elsewhere.example/chapter-3">Chapter 3 (mirror)</a></li>
</ul>
<footer><a href="/about">About</a></footer>
</body></html>`

func chapterPage(n int) string {
	return fmt.Sprintf(`<html><head><title>Chapter %d</title></head>
<body>
<script>trackPageView();</script>
<h1>Chapter %d</h1>
<div class="content">
<p>The morning of chapter %d began like any other in the valley.</p>
<p>By nightfall, nothing would be the same again.</p>
</div>
</body></html>`, n, n, n)
}

func testImporter(t *testing.T, handler http.Handler, store Library) (*Importer, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := types.ImportConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "readiwi-test/0.1"},
		FetchDelay: 0,
		MaxRetries: 2,
	}
	return New(ts.Client(), store, cfg, nil, nil), ts
}

func siteHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dragon-heir", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, tocPage)
	})
	mux.HandleFunc("/dragon-heir/chapter-1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chapterPage(1))
	})
	mux.HandleFunc("/dragon-heir/chapter-2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chapterPage(2))
	})
	return mux
}

// --- import pipeline ---

func TestImportBook(t *testing.T) {
	store := newFakeLibrary()
	imp, ts := testImporter(t, siteHandler(), store)

	var out bytes.Buffer
	result, err := imp.ImportBook(context.Background(), ts.URL+"/dragon-heir", &out)
	if err != nil {
		t.Fatal(err)
	}

	if result.Fetched != 2 || result.Failed != 0 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 2 fetched", result)
	}
	if result.Title != "The Dragon Heir" {
		t.Errorf("title = %q, want %q", result.Title, "The Dragon Heir")
	}

	book, ok := store.books[result.BookID]
	if !ok {
		t.Fatalf("book %q not stored", result.BookID)
	}
	if book.Source != "generic" {
		t.Errorf("source = %q, want generic", book.Source)
	}

	ch := store.chapters[chapterKey(result.BookID, 0)]
	if !strings.Contains(ch.Content, "began like any other") {
		t.Errorf("chapter text missing body: %q", ch.Content)
	}
	if strings.Contains(ch.Content, "trackPageView") {
		t.Errorf("script text leaked into chapter: %q", ch.Content)
	}
	if !strings.Contains(ch.Content, "\n\n") {
		t.Error("chapter paragraphs not blank-line separated")
	}
	if ch.WordCount == 0 {
		t.Error("word count not set")
	}
}

func TestImportBookSkipsStoredChapters(t *testing.T) {
	store := newFakeLibrary()
	imp, ts := testImporter(t, siteHandler(), store)
	ctx := context.Background()

	var out bytes.Buffer
	first, err := imp.ImportBook(ctx, ts.URL+"/dragon-heir", &out)
	if err != nil {
		t.Fatal(err)
	}

	second, err := imp.ImportBook(ctx, ts.URL+"/dragon-heir", &out)
	if err != nil {
		t.Fatal(err)
	}
	if second.Skipped != first.Fetched {
		t.Errorf("second run skipped %d, want %d", second.Skipped, first.Fetched)
	}
	if second.Fetched != 0 {
		t.Errorf("second run fetched %d, want 0", second.Fetched)
	}
}

func TestImportBookContinuesAfterChapterFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dragon-heir", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, tocPage)
	})
	mux.HandleFunc("/dragon-heir/chapter-1", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/dragon-heir/chapter-2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chapterPage(2))
	})

	store := newFakeLibrary()
	imp, ts := testImporter(t, mux, store)

	var out bytes.Buffer
	result, err := imp.ImportBook(context.Background(), ts.URL+"/dragon-heir", &out)
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 1 || result.Fetched != 1 {
		t.Errorf("result = %+v, want 1 failed and 1 fetched", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures() = false")
	}
}

func TestImportBookSinglePageFallback(t *testing.T) {
	page := `<html><head><title>A Short Story</title></head><body>
<p>There was a story with no chapter list at all.</p>
<p>It fit on one page.</p>
</body></html>`
	mux := http.NewServeMux()
	mux.HandleFunc("/story", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	})

	store := newFakeLibrary()
	imp, ts := testImporter(t, mux, store)

	var out bytes.Buffer
	result, err := imp.ImportBook(context.Background(), ts.URL+"/story", &out)
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 1 {
		t.Fatalf("result = %+v, want exactly one chapter", result)
	}
	ch := store.chapters[chapterKey(result.BookID, 0)]
	if !strings.Contains(ch.Content, "no chapter list") {
		t.Errorf("chapter content = %q", ch.Content)
	}
}

func TestImportBookInvalidURL(t *testing.T) {
	imp := New(nil, newFakeLibrary(), types.ImportConfig{}, nil, nil)
	var out bytes.Buffer
	if _, err := imp.ImportBook(context.Background(), "::not a url::", &out); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestImportBatchContinuesAfterBookFailure(t *testing.T) {
	store := newFakeLibrary()
	imp, ts := testImporter(t, siteHandler(), store)

	var out bytes.Buffer
	results, failed := imp.ImportBatch(context.Background(),
		[]string{ts.URL + "/missing-book", ts.URL + "/dragon-heir"}, &out)

	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Fetched != 2 {
		t.Errorf("surviving book fetched %d chapters, want 2", results[0].Fetched)
	}
}

func TestFetcherSendsCookieForHost(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		fmt.Fprint(w, chapterPage(1))
	}))
	defer ts.Close()

	host := strings.TrimPrefix(ts.URL, "http://")
	f := &Fetcher{
		Client:  ts.Client(),
		Cfg:     types.ImportConfig{HTTPConfig: types.HTTPConfig{UserAgent: "readiwi-test/0.1"}},
		Secrets: map[string]string{host: "session=abc123"},
	}
	if _, err := f.GetHTML(context.Background(), ts.URL+"/x"); err != nil {
		t.Fatal(err)
	}
	if gotCookie != "session=abc123" {
		t.Errorf("cookie = %q, want session=abc123", gotCookie)
	}
}

// --- extraction helpers ---

func TestExtractText(t *testing.T) {
	title, text, err := ExtractText(strings.NewReader(chapterPage(7)))
	if err != nil {
		t.Fatal(err)
	}
	if title != "Chapter 7" {
		t.Errorf("title = %q, want %q", title, "Chapter 7")
	}
	paras := strings.Split(text, "\n\n")
	if len(paras) < 3 {
		t.Fatalf("got %d paragraphs, want >= 3 (heading plus two body)", len(paras))
	}
	if strings.Contains(text, "trackPageView") {
		t.Errorf("script leaked: %q", text)
	}
}

func TestChapterLinksFiltering(t *testing.T) {
	base, _ := url.Parse("https://novels.example.com/dragon-heir")
	doc, err := html.Parse(strings.NewReader(tocPage))
	if err != nil {
		t.Fatal(err)
	}

	refs := chapterLinks(doc, base)
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2: %+v", len(refs), refs)
	}
	for _, ref := range refs {
		if strings.Contains(ref.URL, "elsewhere.example") {
			t.Errorf("off-host link kept: %s", ref.URL)
		}
	}
	if refs[0].Title != "Chapter 1: The Summons" {
		t.Errorf("first ref = %+v", refs[0])
	}
}

func TestSlugFromURL(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://novels.example.com/fiction/dragon-heir/", "novels-example-com-fiction-dragon-heir"},
		{"https://www.site.example/The_Book!", "www-site-example-the-book"},
		{"https://site.example", "site-example"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.rawURL)
		if err != nil {
			t.Fatal(err)
		}
		if got := Slug(u); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}
