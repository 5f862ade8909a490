package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration so that config fields accept human-friendly
// strings like "30s" or "5m" in YAML, rather than yaml.v3's default
// integer-nanoseconds unmarshaling for a time.Duration-typed field.
type Duration time.Duration

// UnmarshalYAML accepts a duration string (time.ParseDuration syntax) or a
// bare integer number of seconds.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var seconds int64
	if err := unmarshal(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\" or a number of seconds: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }
