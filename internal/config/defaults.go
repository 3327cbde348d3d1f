package config

import (
	"feedcaster/internal/dedup"
	"feedcaster/internal/publish"
	"feedcaster/internal/source"
	"feedcaster/internal/storage"
)

// Default returns the built-in configuration. A config file is decoded on
// top of it, so omitted keys keep these values.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{Timeout: "20s"},
		Sources: SourcesConfig{
			Timeout:      source.DefaultTimeout.String(),
			PerFeedLimit: source.DefaultPerFeedLimit,
			Feeds: []FeedConfig{
				{Name: "Tech", URL: "https://techcrunch.com/feed/"},
				{Name: "Crypto", URL: "https://cointelegraph.com/rss"},
				{Name: "Finance", URL: "https://www.investing.com/rss/news.rss"},
				{Name: "AI News", URL: "https://venturebeat.com/category/ai/feed/"},
				{Name: "General Knowledge", URL: "https://www.sciencenews.org/feed"},
			},
			Quote: EndpointConfig{Enabled: true, URL: source.DefaultQuoteURL},
			Fact:  EndpointConfig{Enabled: true, URL: source.DefaultFactURL},
			Tips:  TipsConfig{Enabled: true},
		},
		Publish: PublishConfig{
			Quota: publish.DefaultQuota,
			Delay: publish.DefaultDelay.String(),
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   storage.DefaultPath,
			MaxIDs: dedup.DefaultMaxIDs,
		},
		Persist:  PersistConfig{Hook: "git", Timeout: "60s"},
		Schedule: ScheduleConfig{Spec: "@every 1h"},
		Logging:  LoggingConfig{Level: "info", Console: true},
	}
}
