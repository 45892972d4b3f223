package logging

import "time"

// ConsoleConfig controls the console sink's formatting.
type ConsoleConfig struct {
	// Development switches the underlying zap encoder to a human-readable
	// (rather than JSON) console format, matching zap's development preset.
	Development bool
}

// JSONConfig controls the batched JSON-lines sink.
type JSONConfig struct {
	MaxBatch      int
	FlushInterval time.Duration
	FilePath      string
}

// Config captures the runtime configuration for the logging router.
type Config struct {
	EnabledSinks []string
	BufferSize   int
	MinSeverity  Severity
	Categories   []Category

	Console ConsoleConfig
	JSON    JSONConfig

	Metadata map[string]string
}

// DefaultConfig returns a configuration mirroring the legacy stdout logging behaviour.
func DefaultConfig() Config {
	cfg := Config{
		EnabledSinks: []string{"console"},
		BufferSize:   1024,
		MinSeverity:  SeverityDebug,
		Categories:   nil,
		Metadata:     make(map[string]string),
	}
	cfg.JSON.MaxBatch = 32
	cfg.JSON.FlushInterval = 2 * time.Second
	return cfg
}

// Clock describes the time source used by the router.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
