// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package position

import "github.com/tylerpriest/readiwi/pkg/types"

const (
	// DefaultFuzzyStride is the step between compared windows. Striding
	// trades recall for speed; the reliability harness is the tool for
	// revisiting this value.
	DefaultFuzzyStride = 10

	// DefaultFuzzyThreshold is the minimum similarity ratio a window must
	// reach to count as a match.
	DefaultFuzzyThreshold = 0.8
)

// fuzzyStrategy slides a window the size of the before+after context
// across the text and keeps the window with the smallest edit distance,
// provided its similarity clears the threshold. It is the only strategy
// that survives inserted or reworded text.
type fuzzyStrategy struct {
	stride    int
	threshold float64
}

func newFuzzyStrategy(cfg types.PositionConfig) fuzzyStrategy {
	s := fuzzyStrategy{stride: cfg.FuzzyStride, threshold: cfg.FuzzyThreshold}
	if s.stride <= 0 {
		s.stride = DefaultFuzzyStride
	}
	if s.threshold <= 0 {
		s.threshold = DefaultFuzzyThreshold
	}
	return s
}

func (fuzzyStrategy) Name() string { return "fuzzy" }

func (s fuzzyStrategy) FindPosition(text string, fp types.TextFingerprint) (int, bool) {
	needle := fp.Before + fp.After
	if needle == "" || len(text) < len(needle) {
		return 0, false
	}

	bestStart := -1
	bestSim := s.threshold

	prev := make([]int, len(needle)+1)
	curr := make([]int, len(needle)+1)

	for i := 0; i+len(needle) <= len(text); i += s.stride {
		window := text[i : i+len(needle)]
		dist := editDistance(window, needle, prev, curr)
		sim := 1 - float64(dist)/float64(len(needle))
		if sim > bestSim {
			bestSim = sim
			bestStart = i
			if dist == 0 {
				break
			}
		}
	}

	if bestStart < 0 {
		return 0, false
	}
	return bestStart + len(fp.Before), true
}

// editDistance computes the Levenshtein distance between a and b with two
// rolling rows. prev and curr must each hold len(b)+1 ints; they are
// scratch space so a sliding caller does not reallocate per window.
func editDistance(a, b string, prev, curr []int) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
