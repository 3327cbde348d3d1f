package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Runtime holds the parsed, defaulted form of the duration fields.
type Runtime struct {
	TelegramTimeout time.Duration
	SourceTimeout   time.Duration
	PublishDelay    time.Duration
	PersistTimeout  time.Duration
	BusyTimeout     time.Duration
	ScheduleTimeout time.Duration
}

// Runtime parses duration strings, applying defaults for empty values.
func (c *Config) Runtime() (Runtime, error) {
	var (
		rt  Runtime
		err error
	)
	if rt.TelegramTimeout, err = ParseDurationOrDefault("telegram.timeout", c.Telegram.Timeout, 20*time.Second); err != nil {
		return rt, err
	}
	if rt.SourceTimeout, err = ParseDurationOrDefault("sources.timeout", c.Sources.Timeout, 10*time.Second); err != nil {
		return rt, err
	}
	// An explicit "0s" disables pacing, so no default here.
	if rt.PublishDelay, err = ParseDurationField("publish.delay", c.Publish.Delay); err != nil {
		return rt, err
	}
	if rt.PersistTimeout, err = ParseDurationOrDefault("persist.timeout", c.Persist.Timeout, 60*time.Second); err != nil {
		return rt, err
	}
	if rt.BusyTimeout, err = ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return rt, err
	}
	if rt.ScheduleTimeout, err = ParseDurationField("schedule.timeout", c.Schedule.Timeout); err != nil {
		return rt, err
	}
	return rt, nil
}

// Validate checks the config without touching the network.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := c.Runtime(); err != nil {
		return err
	}
	if c.Publish.Quota < 0 {
		return fmt.Errorf("publish.quota must be >= 0")
	}
	if c.Storage.MaxIDs < 0 {
		return fmt.Errorf("storage.max_ids must be >= 0")
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", "file", "json", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	switch strings.ToLower(strings.TrimSpace(c.Persist.Hook)) {
	case "", "git", "none":
	default:
		return fmt.Errorf("persist.hook: unknown hook %q", c.Persist.Hook)
	}
	seen := map[string]bool{}
	for i, f := range c.Sources.Feeds {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("sources.feeds[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("sources.feeds[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
		u, err := url.Parse(strings.TrimSpace(f.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sources.feeds[%d] (%s): invalid url %q", i, name, f.URL)
		}
	}
	return nil
}
