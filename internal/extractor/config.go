package extractor

import "time"

// DefaultConcurrency is how many URLs a batch extracts at once.
const DefaultConcurrency = 3

type Config struct {
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	MaxRetries  int           `yaml:"max_retries"`
	Concurrency int           `yaml:"concurrency"`
}

func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxRetries:  DefaultMaxRetries,
		Concurrency: DefaultConcurrency,
	}
}
