package lyra

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from JSON, YAML, environment-specific files, etc. The
// zero-value is useful – all nested fields inherit their package defaults.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Events    EventsConfig    `json:"events" yaml:"events"`
}

type SchedulerConfig struct {
	Workers       int `json:"workers" yaml:"workers"`
	FairnessQuota int `json:"fairnessQuota" yaml:"fairnessQuota"`
}

type EventsConfig struct {
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns a Config populated with the same default values the
// individual services use. Callers may modify the returned struct before
// passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Workers:       4,
			FairnessQuota: 1024,
		},
		Events: EventsConfig{
			QueueBuffer: 256,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Scheduler.Workers <= 0 {
		return fmt.Errorf("scheduler.workers must be > 0")
	}
	if c.Scheduler.FairnessQuota < 0 {
		return fmt.Errorf("scheduler.fairnessQuota must not be negative")
	}
	if c.Events.QueueBuffer <= 0 {
		return fmt.Errorf("events.queueBuffer must be > 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration from the given URL (file path, or any
// scheme the storage layer understands) on top of the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
