package tokenbucket

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds a set of named bucket policies, typically loaded from a YAML
// file by the hosting application. Policies describe capacity and refill rate
// only; token state always lives in the store.
type Config struct {
	// Prefix overrides the Redis key prefix when non-empty.
	Prefix string `yaml:"prefix,omitempty"`

	// Timeout overrides the per-call Redis timeout when non-empty.
	// Format: "500ms", "2s".
	Timeout string `yaml:"timeout,omitempty"`

	// Buckets maps bucket ids to their policies.
	Buckets map[string]BucketPolicy `yaml:"buckets"`
}

// BucketPolicy defines the rate-limiting parameters for one bucket.
type BucketPolicy struct {
	// Capacity is the maximum number of tokens (burst size).
	Capacity float64 `yaml:"capacity"`

	// RefillRate is the number of tokens added per minute.
	RefillRate float64 `yaml:"refill_rate"`
}

// LoadConfigFromFile loads and validates a Config from a YAML file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every policy in the config.
func (c *Config) Validate() error {
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	for id, policy := range c.Buckets {
		if err := policy.Validate(); err != nil {
			return fmt.Errorf("invalid policy for bucket %q: %w", id, err)
		}
	}
	return nil
}

// TimeoutDuration parses the Timeout field, returning fallback when unset.
func (c *Config) TimeoutDuration(fallback time.Duration) time.Duration {
	if c.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fallback
	}
	return d
}

// Validate checks that the policy's parameters are positive.
func (p *BucketPolicy) Validate() error {
	if p.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if p.RefillRate <= 0 {
		return ErrInvalidRefillRate
	}
	return nil
}

// ToBucketConfig pairs the policy with a bucket id for NewBucket.
func (p BucketPolicy) ToBucketConfig(id string) BucketConfig {
	return BucketConfig{
		ID:         id,
		Capacity:   p.Capacity,
		RefillRate: p.RefillRate,
	}
}
