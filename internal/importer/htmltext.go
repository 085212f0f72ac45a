// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Tags whose subtrees carry no readable chapter text.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "nav": true,
	"header": true, "footer": true, "aside": true, "form": true,
	"noscript": true, "template": true, "iframe": true, "svg": true,
}

// Block-level tags that delimit paragraphs in the extracted text.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "tr": true,
}

// ExtractText parses HTML and returns the page title and readable text.
// Block elements become paragraphs separated by blank lines — the
// paragraph convention position fingerprints are built on. Inline
// whitespace is collapsed to single spaces.
func ExtractText(r io.Reader) (title, text string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}
	return pageTitle(doc), flattenText(doc), nil
}

func flattenText(doc *html.Node) string {
	var (
		paras []string
		cur   strings.Builder
	)
	flush := func() {
		s := strings.Join(strings.Fields(cur.String()), " ")
		if s != "" {
			paras = append(paras, s)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipTags[n.Data] {
				return
			}
			block := blockTags[n.Data]
			if block {
				flush()
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				flush()
			}
			return
		}
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			cur.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()

	return strings.Join(paras, "\n\n")
}

// pageTitle prefers the first h1 over the document title, which on novel
// sites usually carries site branding.
func pageTitle(doc *html.Node) string {
	if h1 := findElement(doc, "h1"); h1 != "" {
		return h1
	}
	return findElement(doc, "title")
}

func findElement(n *html.Node, tag string) string {
	if n.Type == html.ElementNode && n.Data == tag {
		return strings.Join(strings.Fields(nodeText(n)), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := findElement(c, tag); s != "" {
			return s
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
		b.WriteString(" ")
	}
	return b.String()
}

// chapterLinks collects same-host anchors that look like chapter links:
// the href or anchor text mentions "chapter", or the text is a bare
// number. Links are returned in document order, deduplicated by URL.
func chapterLinks(doc *html.Node, base *url.URL) []ChapterRef {
	var (
		refs []ChapterRef
		seen = map[string]bool{}
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			text := strings.Join(strings.Fields(nodeText(n)), " ")
			if u := resolveChapterLink(base, href, text); u != "" && !seen[u] {
				seen[u] = true
				refs = append(refs, ChapterRef{Title: text, URL: u})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return refs
}

func resolveChapterLink(base *url.URL, href, text string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := base.Parse(href)
	if err != nil || u.Host != base.Host {
		return ""
	}
	if !looksLikeChapter(u.Path, text) {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func looksLikeChapter(path, text string) bool {
	lower := strings.ToLower(path + " " + text)
	if strings.Contains(lower, "chapter") {
		return true
	}
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
