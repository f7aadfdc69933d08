package models

import "time"

// ScraperConfig contains runtime options shared by adapters.
type ScraperConfig struct {
	RequestTimeout time.Duration
	DefaultDelay   time.Duration
	PlatformDelays map[string]time.Duration
	StubFallback   bool
	Concurrency    int
}
