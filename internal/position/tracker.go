// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package position

import (
	"strings"

	"github.com/tylerpriest/readiwi/pkg/types"
)

// Scoring weights for the blended fingerprint similarity.
const (
	beforeWeight    = 0.3
	afterWeight     = 0.3
	paragraphWeight = 0.4
)

// Trust weights discount strategies by how speculative they are, so ties
// resolve toward the most literal match.
const (
	exactTrust = 1.0
	walkTrust  = 0.9
	fuzzyTrust = 0.8
)

type weightedStrategy struct {
	Strategy
	trust float64
}

// Tracker runs all relocation strategies and arbitrates between their
// candidates. It is stateless with respect to documents: the configuration
// is read-only after construction and concurrent calls with different
// texts need no synchronization.
type Tracker struct {
	cfg        types.PositionConfig
	strategies []weightedStrategy
}

// NewTracker builds a tracker from cfg, applying defaults for unset fields.
func NewTracker(cfg types.PositionConfig) *Tracker {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = DefaultContextWindow
	}
	if cfg.FuzzyStride <= 0 {
		cfg.FuzzyStride = DefaultFuzzyStride
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.5
	}
	if cfg.HarnessSamples <= 0 {
		cfg.HarnessSamples = DefaultHarnessSamples
	}

	return &Tracker{
		cfg: cfg,
		strategies: []weightedStrategy{
			{exactStrategy{}, exactTrust},
			{newFuzzyStrategy(cfg), fuzzyTrust},
			{walkStrategy{}, walkTrust},
		},
	}
}

// Config returns the tracker's effective configuration after defaulting.
func (t *Tracker) Config() types.PositionConfig {
	return t.cfg
}

// CreateFingerprint builds a fingerprint for offset in text using the
// tracker's context window.
func (t *Tracker) CreateFingerprint(text string, offset int) types.TextFingerprint {
	return buildFingerprint(text, offset, t.cfg.ContextWindow)
}

// RestorePosition runs every strategy against the current text and returns
// the highest-scoring candidate. Each candidate is scored by rebuilding a
// fingerprint at its offset and comparing field similarity against fp,
// scaled by the strategy's trust weight. Equal scores resolve by strategy
// order (exact, fuzzy, paragraph-walk). The second return is false when no
// strategy found anything, which is an expected outcome for fully replaced
// text, not an error.
func (t *Tracker) RestorePosition(text string, fp types.TextFingerprint) (types.PositionCandidate, bool) {
	var best types.PositionCandidate
	found := false

	for _, ws := range t.strategies {
		offset, ok := findSafely(ws.Strategy, text, fp)
		if !ok || offset < 0 || offset > len(text) {
			continue
		}

		cand := types.PositionCandidate{
			Offset:     offset,
			Confidence: t.scoreOffset(text, offset, fp) * ws.trust,
			Strategy:   ws.Name(),
		}
		if !found || cand.Confidence > best.Confidence {
			best = cand
			found = true
		}
	}

	return best, found
}

// findSafely isolates a strategy failure: a panicking strategy contributes
// no candidate instead of aborting the restoration.
func findSafely(s Strategy, text string, fp types.TextFingerprint) (offset int, ok bool) {
	defer func() {
		if recover() != nil {
			offset, ok = 0, false
		}
	}()
	return s.FindPosition(text, fp)
}

// scoreOffset rebuilds a fingerprint at offset in the current text and
// blends per-field word-set similarity against the original fingerprint.
func (t *Tracker) scoreOffset(text string, offset int, fp types.TextFingerprint) float64 {
	cand := buildFingerprint(text, offset, t.cfg.ContextWindow)
	return beforeWeight*jaccard(fp.Before, cand.Before) +
		afterWeight*jaccard(fp.After, cand.After) +
		paragraphWeight*jaccard(fp.Paragraph, cand.Paragraph)
}

// jaccard is the word-set Jaccard similarity of two strings: the token
// sets are lowercased and whitespace-split. Two empty strings score 0,
// not 1; an empty field carries no evidence of a match.
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
