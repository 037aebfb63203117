package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch command.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Concurrency caps the number of identifiers resolved in parallel.
	// Zero means unbounded.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// RequestsPerSecond is the per-host request rate (default 4).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MetadataDir, when set, is where YAML sidecar records are written
	// alongside the BibLaTeX output.
	MetadataDir string `json:"metadata_dir,omitempty" yaml:"metadata_dir,omitempty"`
}
