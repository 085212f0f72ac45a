// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TextFingerprint is a compact descriptor of the textual context around a
// byte offset, used to relocate that point after the text has changed.
// It is a pure value: it holds no reference to the text it was built from
// and stays interpretable after that text is gone. All fields are flat and
// trivially serializable.
type TextFingerprint struct {
	// Before is the trimmed slice of text immediately preceding the offset,
	// at most the builder's context window in length.
	Before string `json:"before" yaml:"before"`

	// After is the trimmed slice of text immediately following the offset,
	// same bound as Before.
	After string `json:"after" yaml:"after"`

	// Paragraph is the full blank-line-delimited paragraph containing
	// the offset.
	Paragraph string `json:"paragraph" yaml:"paragraph"`

	// WordIndex is the zero-based index of the word containing the offset,
	// counted from the start of Paragraph.
	WordIndex int `json:"word_index" yaml:"word_index"`

	// CharOffset is the byte distance from the start of that word to
	// the offset.
	CharOffset int `json:"char_offset" yaml:"char_offset"`
}

// IsZero reports whether the fingerprint carries no context at all, as
// produced for empty text.
func (fp TextFingerprint) IsZero() bool {
	return fp.Before == "" && fp.After == "" && fp.Paragraph == ""
}

// PositionCandidate is one strategy's proposal for where a fingerprinted
// point lives in the current text.
type PositionCandidate struct {
	// Offset is the proposed byte offset into the current text.
	Offset int `json:"offset" yaml:"offset"`

	// Confidence is a similarity-weighted score in [0,1]. It is a relative
	// quality signal, not a calibrated probability.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Strategy names the strategy that produced the candidate.
	Strategy string `json:"strategy" yaml:"strategy"`
}

// ReadingPosition is the persisted bookmark for a book: which chapter the
// reader was in, the raw offset at save time, and the fingerprint used to
// relocate the point when the chapter text has drifted.
type ReadingPosition struct {
	// BookID references the book this position belongs to.
	BookID string `json:"book_id" yaml:"book_id"`

	// ChapterIndex is the chapter the reader was in.
	ChapterIndex int `json:"chapter_index" yaml:"chapter_index"`

	// Offset is the byte offset within the chapter text at save time.
	Offset int `json:"offset" yaml:"offset"`

	// Fingerprint relocates Offset after content drift.
	Fingerprint TextFingerprint `json:"fingerprint" yaml:"fingerprint"`

	// UpdatedAt is when the position was last saved.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
