package providers

import (
	"testing"
	"time"

	"fms/internal/structures"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			FilePath:     "/tmp/fms.dat",
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Community: structures.CommunityConfig{
			Timezone:  "Asia/Seoul",
			ResetHour: 2,
		},
		Ranks: structures.RankRoles{
			MajorRoleID:     "100",
			LtColonelRoleID: "200",
		},
		Retention: structures.RetentionConfig{
			KeepDays:  21,
			KeepWeeks: 12,
		},
		Demotion: structures.DemotionConfig{
			Threshold: 150,
			MinTenure: 168 * time.Hour,
		},
		RoleLookup: structures.RoleLookupConfig{
			BaseURL: "http://localhost:9000",
			Timeout: 5 * time.Second,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingTimezone(t *testing.T) {
	c := validConfig()
	c.Community.Timezone = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingRankRoles(t *testing.T) {
	c := validConfig()
	c.Ranks.MajorRoleID = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_BadLookupURL(t *testing.T) {
	c := validConfig()
	c.RoleLookup.BaseURL = "not a url"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
