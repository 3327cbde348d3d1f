package config

// Config is the file-backed configuration. Credentials never live here; they
// come from the environment (see Credentials).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Sources  SourcesConfig  `json:"sources"`
	Publish  PublishConfig  `json:"publish"`
	Storage  StorageConfig  `json:"storage"`
	Persist  PersistConfig  `json:"persist"`
	Schedule ScheduleConfig `json:"schedule"`
	Logging  LoggingConfig  `json:"logging"`
}

type TelegramConfig struct {
	// APIURL overrides the Bot API endpoint (local Bot API server, tests).
	APIURL string `json:"api_url,omitempty"`
	// Timeout bounds each sendMessage call. Default "20s".
	Timeout        string `json:"timeout,omitempty"`
	DisablePreview bool   `json:"disable_preview,omitempty"`
	ThreadID       int    `json:"thread_id,omitempty"`
}

type FeedConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type EndpointConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
}

type TipsConfig struct {
	Enabled bool     `json:"enabled"`
	Items   []string `json:"items,omitempty"`
}

type SourcesConfig struct {
	// Timeout bounds each adapter fetch. Default "10s".
	Timeout      string         `json:"timeout,omitempty"`
	PerFeedLimit int            `json:"per_feed_limit,omitempty"`
	Feeds        []FeedConfig   `json:"feeds"`
	Quote        EndpointConfig `json:"quote"`
	Fact         EndpointConfig `json:"fact"`
	Tips         TipsConfig     `json:"tips"`
}

type PublishConfig struct {
	// Quota caps successful sends per run. 0 means the default (6).
	Quota int `json:"quota,omitempty"`
	// Delay is the spacing between delivery attempts. Default "2s"; "0s" disables.
	Delay      string `json:"delay,omitempty"`
	SummaryMax int    `json:"summary_max,omitempty"`
}

// StorageConfig selects the dedup store.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./posted_ids.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	MaxIDs      int    `json:"max_ids,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite
}

// PersistConfig controls the durability hook run in unattended mode.
//
// Hook values: "git" (default) or "none".
type PersistConfig struct {
	Hook          string `json:"hook"`
	CommitMessage string `json:"commit_message,omitempty"`
	Timeout       string `json:"timeout,omitempty"`
}

// ScheduleConfig drives `feedcaster serve`.
type ScheduleConfig struct {
	// Spec is a cron expression ("0 * * * *", "@hourly") or an interval ("55m", "01:30").
	Spec     string `json:"spec"`
	Timezone string `json:"timezone,omitempty"`
	// RunOnStart triggers one run immediately when the daemon starts.
	RunOnStart bool `json:"run_on_start,omitempty"`
	// Timeout bounds one scheduled run. Empty means no limit.
	Timeout string `json:"timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}
