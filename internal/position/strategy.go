// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package position

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tylerpriest/readiwi/pkg/types"
)

// Strategy proposes a candidate offset for a fingerprint in the current
// text. A strategy that finds nothing returns (0, false); strategies do
// not return errors and must not panic on any input.
type Strategy interface {
	Name() string
	FindPosition(text string, fp types.TextFingerprint) (int, bool)
}

// exactStrategy searches for the literal before+after context. It is the
// cheapest and most trustworthy strategy but survives no drift at all, and
// in repetitive text the first occurrence wins.
type exactStrategy struct{}

func (exactStrategy) Name() string { return "exact" }

func (exactStrategy) FindPosition(text string, fp types.TextFingerprint) (int, bool) {
	needle := fp.Before + fp.After
	if needle == "" {
		return 0, false
	}
	i := strings.Index(text, needle)
	if i < 0 {
		return 0, false
	}
	return i + len(fp.Before), true
}

// walkStrategy anchors on the fingerprint's paragraph and walks forward
// word by word. When the full paragraph is gone it falls back to a shorter
// anchor phrase: the paragraph's first run of three consecutive words
// longer than three bytes. The walk is shortened by the words preceding
// the phrase so both anchors land on the same spot.
type walkStrategy struct{}

func (walkStrategy) Name() string { return "paragraph-walk" }

func (walkStrategy) FindPosition(text string, fp types.TextFingerprint) (int, bool) {
	if fp.Paragraph == "" {
		return 0, false
	}

	anchor := strings.Index(text, fp.Paragraph)
	skip := 0
	if anchor < 0 {
		phrase, preceding, ok := anchorPhrase(fp.Paragraph)
		if !ok {
			return 0, false
		}
		anchor = strings.Index(text, phrase)
		if anchor < 0 {
			return 0, false
		}
		skip = preceding
	}
	if fp.WordIndex < skip {
		return 0, false
	}

	pos := anchor
	for i := skip; i < fp.WordIndex; i++ {
		pos = skipWord(text, pos)
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			return 0, false
		}
	}

	offset := pos + fp.CharOffset
	if offset > len(text) {
		return 0, false
	}
	return offset, true
}

// anchorPhrase returns the paragraph's first run of three consecutive
// words longer than three bytes, joined by single spaces, plus the number
// of words preceding the run. Paragraphs without such a run give no anchor.
func anchorPhrase(paragraph string) (phrase string, precedingWords int, ok bool) {
	words := strings.Fields(paragraph)
	for i := 0; i+3 <= len(words); i++ {
		if len(words[i]) > 3 && len(words[i+1]) > 3 && len(words[i+2]) > 3 {
			return strings.Join(words[i:i+3], " "), i, true
		}
	}
	return "", 0, false
}

func skipWord(text string, pos int) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}
