// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package position relocates reading positions in chapter text that may
// have changed since the position was saved. A fingerprint captures the
// textual context around a byte offset; competing strategies propose
// candidate offsets in the current text; a scoring pass picks the best one.
package position

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tylerpriest/readiwi/pkg/types"
)

// DefaultContextWindow bounds the Before/After fingerprint slices, in bytes.
const DefaultContextWindow = 30

// CreateFingerprint builds a fingerprint for offset in text using the
// default context window. It is a pure function: identical inputs produce
// field-for-field identical fingerprints. Out-of-range offsets are clamped,
// never rejected; empty text yields a zero fingerprint.
func CreateFingerprint(text string, offset int) types.TextFingerprint {
	return buildFingerprint(text, offset, DefaultContextWindow)
}

func buildFingerprint(text string, offset, window int) types.TextFingerprint {
	if window <= 0 {
		window = DefaultContextWindow
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	beforeStart := offset - window
	if beforeStart < 0 {
		beforeStart = 0
	}
	afterEnd := offset + window
	if afterEnd > len(text) {
		afterEnd = len(text)
	}

	paraStart, paraEnd := paragraphBounds(text, offset)
	wordIndex, charOffset := wordPosition(text[paraStart:offset])

	return types.TextFingerprint{
		Before:     strings.TrimSpace(text[beforeStart:offset]),
		After:      strings.TrimSpace(text[offset:afterEnd]),
		Paragraph:  strings.TrimSpace(text[paraStart:paraEnd]),
		WordIndex:  wordIndex,
		CharOffset: charOffset,
	}
}

// paragraphBounds returns the extent of the blank-line-delimited paragraph
// containing offset. Missing boundaries default to the start or end of text.
func paragraphBounds(text string, offset int) (start, end int) {
	start = 0
	if i := strings.LastIndex(text[:offset], "\n\n"); i >= 0 {
		start = i + 2
	}
	end = len(text)
	if i := strings.Index(text[offset:], "\n\n"); i >= 0 {
		end = offset + i
	}
	return start, end
}

// wordPosition locates the offset within its paragraph as a word index and
// a byte offset into that word. prefix is the paragraph text up to the
// offset. A trailing partial token means the offset is inside that word;
// otherwise the offset sits at the start of the next word.
func wordPosition(prefix string) (wordIndex, charOffset int) {
	tokens := strings.Fields(prefix)
	if len(tokens) == 0 {
		return 0, 0
	}
	if endsInWord(prefix) {
		return len(tokens) - 1, len(tokens[len(tokens)-1])
	}
	return len(tokens), 0
}

func endsInWord(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && !unicode.IsSpace(r)
}
