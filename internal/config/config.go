package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/meridianmaritime/globe/internal/globe"
)

// FileName is the config file looked up in the config directory.
const FileName = "globe.cfg.json"

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./globelogs")
	viper.SetDefault("logsKeep", 20)
	viper.SetDefault("variant", string(globe.VariantHero))
	viper.SetDefault("framePeriod", "33ms")

	viper.SetDefault("catalog.type", "memory")
	viper.SetDefault("catalog.sqlite.path", "./globe.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "globe")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "meridian")
	viper.SetDefault("influx.bucket", "globe")
	viper.SetDefault("influx.sampleEvery", 30)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "meridian-globe")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("stream.addr", "localhost:8765")
	viper.SetDefault("stream.secret", "")
	viper.SetDefault("stream.sampleEvery", 2)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetGlobeOptions returns the preset named by "variant" with any "globe.*"
// keys applied on top.
func GetGlobeOptions() (globe.Options, error) {
	opts, err := globe.Preset(globe.Variant(viper.GetString("variant")))
	if err != nil {
		return globe.Options{}, err
	}
	if viper.IsSet("globe") {
		if err := viper.UnmarshalKey("globe", &opts); err != nil {
			return globe.Options{}, fmt.Errorf("decoding globe options: %w", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return globe.Options{}, err
	}
	return opts, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
