package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"fms/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("community.timezone", "Asia/Seoul")
	viper.SetDefault("community.resetHour", 2)
	viper.SetDefault("retention.keepDays", 21)
	viper.SetDefault("retention.keepWeeks", 12)
	viper.SetDefault("demotion.threshold", 150)
	viper.SetDefault("demotion.minTenure", "168h")

	viper.BindEnv("logger.level", "FMS_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "FMS_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "FMS_CACHE_ENABLED")
	viper.BindEnv("cache.size", "FMS_CACHE_SIZE")
	viper.BindEnv("roleLookup.baseUrl", "FMS_ROLE_LOOKUP_URL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "FulfillmentManagementService"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
