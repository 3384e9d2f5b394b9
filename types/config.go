package types

// AppConfig is the unified application configuration, loaded by cmd via
// viper and validated before any server starts.
type AppConfig struct {
	Verbose     bool              `mapstructure:"verbose"`
	Upstream    UpstreamConfig    `mapstructure:"upstream" validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Bulk        BulkConfig        `mapstructure:"bulk"`
	WriteAccess WriteAccessConfig `mapstructure:"writeAccess"`
	Fuzzy       FuzzyConfig       `mapstructure:"fuzzy"`
}

// UpstreamConfig holds the upstream API transport settings.
type UpstreamConfig struct {
	APIToken      string `mapstructure:"apiToken" validate:"required"`
	BaseURL       string `mapstructure:"baseUrl" validate:"omitempty,url"`
	DefaultTeamID string `mapstructure:"defaultTeamId"`
	TimeoutMS     int64  `mapstructure:"timeoutMs" validate:"gte=0"`
}

// CacheConfig sets per-cache TTLs in milliseconds. Zero disables the cache
// in question (every read refetches).
type CacheConfig struct {
	HierarchyTTLMS int64 `mapstructure:"hierarchyTtlMs" validate:"gte=0"`
	TaskTTLMS      int64 `mapstructure:"taskTtlMs" validate:"gte=0"`
	ListPageTTLMS  int64 `mapstructure:"listPageTtlMs" validate:"gte=0"`
	SearchTTLMS    int64 `mapstructure:"searchTtlMs" validate:"gte=0"`
}

// BulkConfig controls the bulk execution engine.
type BulkConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=0,lte=50"`
}

// WriteAccessConfig controls the write-access gate.
type WriteAccessConfig struct {
	Mode           string   `mapstructure:"mode" validate:"omitempty,oneof=open closed selective"`
	AllowedSpaces  []string `mapstructure:"allowedSpaces"`
	AllowedLists   []string `mapstructure:"allowedLists"`
	MaxResolutions int      `mapstructure:"maxResolutions" validate:"gte=0"`
}

// FuzzyConfig controls reference resolution.
type FuzzyConfig struct {
	ResultLimit int `mapstructure:"resultLimit" validate:"gte=0"`
}
