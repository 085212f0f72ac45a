// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package position

import (
	"strings"
	"testing"
)

const twoParagraphs = "First paragraph.\n\nSecond paragraph starts here."

func TestCreateFingerprintParagraphAndWordIndex(t *testing.T) {
	offset := strings.Index(twoParagraphs, "Second")

	fp := CreateFingerprint(twoParagraphs, offset)

	if fp.Paragraph != "Second paragraph starts here." {
		t.Errorf("paragraph = %q, want %q", fp.Paragraph, "Second paragraph starts here.")
	}
	if fp.WordIndex != 0 {
		t.Errorf("wordIndex = %d, want 0", fp.WordIndex)
	}
	if fp.CharOffset != 0 {
		t.Errorf("charOffset = %d, want 0", fp.CharOffset)
	}
	if fp.Before != "First paragraph." {
		t.Errorf("before = %q, want %q", fp.Before, "First paragraph.")
	}
}

func TestCreateFingerprintDeterministic(t *testing.T) {
	text := "Alpha beta gamma.\n\nDelta epsilon zeta eta theta.\n\nIota kappa."
	for offset := 0; offset <= len(text); offset++ {
		a := CreateFingerprint(text, offset)
		b := CreateFingerprint(text, offset)
		if a != b {
			t.Fatalf("offset %d: fingerprints differ: %+v vs %+v", offset, a, b)
		}
	}
}

func TestCreateFingerprintWindowBound(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	for _, offset := range []int{0, 10, len(text) / 2, len(text) - 1, len(text)} {
		fp := CreateFingerprint(text, offset)
		if len(fp.Before) > DefaultContextWindow {
			t.Errorf("offset %d: before length %d exceeds window", offset, len(fp.Before))
		}
		if len(fp.After) > DefaultContextWindow {
			t.Errorf("offset %d: after length %d exceeds window", offset, len(fp.After))
		}
		if fp.WordIndex < 0 {
			t.Errorf("offset %d: negative word index", offset)
		}
	}
}

func TestCreateFingerprintEdges(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"empty text", "", 0},
		{"offset zero", "some text here", 0},
		{"offset at end", "some text here", 14},
		{"offset past end", "short", 100},
		{"negative offset", "short", -5},
		{"no paragraph breaks", "one continuous run of words with no blank lines at all", 20},
		{"only whitespace", "   \n\n   ", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := CreateFingerprint(tt.text, tt.offset)
			if fp.WordIndex < 0 || fp.CharOffset < 0 {
				t.Errorf("negative position fields: %+v", fp)
			}
		})
	}
}

func TestCreateFingerprintEmptyTextIsZero(t *testing.T) {
	fp := CreateFingerprint("", 0)
	if !fp.IsZero() {
		t.Errorf("fingerprint of empty text not zero: %+v", fp)
	}
}

func TestCreateFingerprintMidWord(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	// Offset inside "brown", two bytes in.
	offset := strings.Index(text, "brown") + 2

	fp := CreateFingerprint(text, offset)

	if fp.WordIndex != 2 {
		t.Errorf("wordIndex = %d, want 2", fp.WordIndex)
	}
	if fp.CharOffset != 2 {
		t.Errorf("charOffset = %d, want 2", fp.CharOffset)
	}
}

func TestCreateFingerprintWordBoundary(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	// Offset at the space after "brown": the offset belongs to "brown".
	offset := strings.Index(text, "brown") + len("brown")

	fp := CreateFingerprint(text, offset)

	if fp.WordIndex != 2 {
		t.Errorf("wordIndex = %d, want 2", fp.WordIndex)
	}
	if fp.CharOffset != len("brown") {
		t.Errorf("charOffset = %d, want %d", fp.CharOffset, len("brown"))
	}
}
