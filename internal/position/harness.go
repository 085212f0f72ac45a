// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package position

import (
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultHarnessSamples is the number of offsets ValidateReliability
// probes per document.
const DefaultHarnessSamples = 100

// ReliabilityReport aggregates one round-trip validation run. Error fields
// are computed over successful restorations only; AverageTime spans all
// samples including failures.
type ReliabilityReport struct {
	Samples      int           `json:"samples" yaml:"samples"`
	SuccessRate  float64       `json:"success_rate" yaml:"success_rate"`
	AverageError float64       `json:"average_error" yaml:"average_error"`
	MaxError     int           `json:"max_error" yaml:"max_error"`
	FailureCount int           `json:"failure_count" yaml:"failure_count"`
	AverageTime  time.Duration `json:"average_time" yaml:"average_time"`
}

// ValidateReliability round-trips evenly spaced offsets through
// fingerprint creation and restoration against the same unmodified text,
// and reports aggregate relocation quality. It exists to regression-test
// strategy, weight, and threshold changes, not as a production-path
// operation. Sampled offsets are snapped forward past the current word so
// probes land on word boundaries, like real cursor positions.
func (t *Tracker) ValidateReliability(text string) ReliabilityReport {
	if len(text) == 0 {
		return ReliabilityReport{}
	}

	n := t.cfg.HarnessSamples
	if n > len(text) {
		n = len(text)
	}

	var (
		report    ReliabilityReport
		successes int
		errorSum  int
		totalTime time.Duration
	)

	for i := 0; i < n; i++ {
		offset := snapToBoundary(text, i*len(text)/n)

		start := time.Now()
		fp := t.CreateFingerprint(text, offset)
		cand, ok := t.RestorePosition(text, fp)
		totalTime += time.Since(start)

		report.Samples++
		if !ok {
			report.FailureCount++
			continue
		}

		successes++
		err := cand.Offset - offset
		if err < 0 {
			err = -err
		}
		errorSum += err
		if err > report.MaxError {
			report.MaxError = err
		}
	}

	report.SuccessRate = float64(successes) / float64(report.Samples)
	if successes > 0 {
		report.AverageError = float64(errorSum) / float64(successes)
	}
	report.AverageTime = totalTime / time.Duration(report.Samples)
	return report
}

// snapToBoundary advances offset past the word it landed in, stopping at
// the next whitespace rune or end of text.
func snapToBoundary(text string, offset int) int {
	for offset < len(text) {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if unicode.IsSpace(r) {
			break
		}
		offset += size
	}
	return offset
}
