package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CommunityConfig struct {
	Timezone  string `yaml:"timezone" validate:"required"`
	ResetHour int    `yaml:"resetHour" validate:"min:0|max:23"`
}

type RankRoles struct {
	MajorRoleID     string `yaml:"majorRoleId" validate:"required"`
	LtColonelRoleID string `yaml:"ltColonelRoleId" validate:"required"`
}

type RetentionConfig struct {
	KeepDays  int `yaml:"keepDays" validate:"required|min:1"`
	KeepWeeks int `yaml:"keepWeeks" validate:"required|min:1"`
}

type DemotionConfig struct {
	Threshold float64       `yaml:"threshold" validate:"required"`
	MinTenure time.Duration `yaml:"minTenure"`
}

type RoleLookupConfig struct {
	BaseURL                 string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Timeout                 time.Duration `yaml:"timeout" validate:"required|min:1"`
	ExcludedRoleIDs         []string      `yaml:"excludedRoleIds"`
	DemotionExcludedRoleIDs []string      `yaml:"demotionExcludedRoleIds"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server           `yaml:"webServer"`
	Persistence Persistence      `yaml:"persistence"`
	Logger      LoggerConfig     `yaml:"logger"`
	Community   CommunityConfig  `yaml:"community"`
	Ranks       RankRoles        `yaml:"ranks"`
	Retention   RetentionConfig  `yaml:"retention"`
	Demotion    DemotionConfig   `yaml:"demotion"`
	RoleLookup  RoleLookupConfig `yaml:"roleLookup"`
	Cache       CacheConfig      `yaml:"cache"`
	Metrics     MetricsConfig    `yaml:"metrics"`
}
