package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "readiwi/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ImportConfig holds settings for the book import stage.
type ImportConfig struct {
	HTTPConfig `yaml:",inline"`

	// FetchDelay is the delay between consecutive chapter fetches (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// MaxRetries is the number of retry attempts on rate-limited fetches (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxChapters caps how many chapters are fetched per book. Zero means
	// no cap.
	MaxChapters int `json:"max_chapters" yaml:"max_chapters"`

	// LibraryDir is the base directory for the library (contains index/).
	LibraryDir string `json:"library_dir" yaml:"library_dir"`
}

// LibraryConfig holds settings for the library store.
type LibraryConfig struct {
	// LibraryDir is the base directory for the library (contains index/).
	LibraryDir string `json:"library_dir" yaml:"library_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PositionConfig holds tuning knobs for the reading-position tracker.
// The zero value is usable: each field falls back to its documented
// default when unset.
type PositionConfig struct {
	// ContextWindow bounds the Before/After fingerprint slices, in bytes
	// (default 30).
	ContextWindow int `json:"context_window" yaml:"context_window"`

	// FuzzyStride is the step between sliding-window comparisons in the
	// fuzzy strategy (default 10). Larger strides trade recall for speed;
	// the right value is an empirical question for the reliability harness,
	// not a constant.
	FuzzyStride int `json:"fuzzy_stride" yaml:"fuzzy_stride"`

	// FuzzyThreshold is the minimum similarity ratio a fuzzy window must
	// reach to produce a candidate (default 0.8).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`

	// MinConfidence is the score below which callers should treat a
	// restored position as approximate (default 0.5).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// HarnessSamples is the number of offsets the reliability harness
	// probes per document (default 100).
	HarnessSamples int `json:"harness_samples" yaml:"harness_samples"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Import   ImportConfig   `json:"import" yaml:"import"`
	Library  LibraryConfig  `json:"library" yaml:"library"`
	Position PositionConfig `json:"position" yaml:"position"`
}
