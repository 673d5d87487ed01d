package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianmaritime/globe/internal/globe"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"variant": "network",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "network", viper.GetString("variant"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./globelogs", viper.GetString("logsDir"))
	assert.Equal(t, 20, viper.GetInt("logsKeep"))
	assert.Equal(t, "hero", viper.GetString("variant"))
	assert.Equal(t, 33*time.Millisecond, GetDuration("framePeriod"))
	assert.Equal(t, "memory", viper.GetString("catalog.type"))
	assert.Equal(t, "./globe.db", viper.GetString("catalog.sqlite.path"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "globe", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "globe", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "meridian-globe", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
	assert.Equal(t, "localhost:8765", viper.GetString("stream.addr"))
	assert.Equal(t, "", viper.GetString("stream.secret"))
	assert.Equal(t, true, viper.GetBool("monitor.enabled"))
	assert.Equal(t, time.Second, GetDuration("monitor.interval"))
	assert.Equal(t, 2, viper.GetInt("stream.sampleEvery"))
	assert.Equal(t, 30, viper.GetInt("influx.sampleEvery"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetGlobeOptions_Preset(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()

	opts, err := GetGlobeOptions()
	require.NoError(t, err)
	assert.Equal(t, globe.HeroOptions(), opts)
}

func TestGetGlobeOptions_Overrides(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"variant": "contact",
		"globe": {
			"fadeNear": 1.7,
			"fadeFar": 2.6,
			"entryAnimation": true,
			"entryDuration": "2500ms",
			"textures": { "earth": "assets/earth.jpg" }
		}
	}`)
	require.NoError(t, Load(dir))

	opts, err := GetGlobeOptions()
	require.NoError(t, err)

	contact := globe.ContactOptions()
	assert.Equal(t, 1.7, opts.FadeNear)
	assert.Equal(t, 2.6, opts.FadeFar)
	assert.True(t, opts.EntryAnimation)
	assert.Equal(t, 2500*time.Millisecond, opts.EntryDuration)
	assert.Equal(t, "assets/earth.jpg", opts.Textures.Earth)
	assert.Equal(t, contact.InitialCameraDistance, opts.InitialCameraDistance, "unset keys keep the preset")
	assert.Equal(t, contact.BrandAnchor, opts.BrandAnchor)
}

func TestGetGlobeOptions_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"globe": {"fadeNear": 3, "fadeFar": 2}}`)))
	_, err := GetGlobeOptions()
	assert.ErrorIs(t, err, globe.ErrInvalidOptions)

	viper.Set("variant", "carousel")
	_, err = GetGlobeOptions()
	assert.ErrorIs(t, err, globe.ErrInvalidOptions)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("intKey", 42)
	assert.Equal(t, 42, GetInt("intKey"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("boolKey", true)
	assert.True(t, GetBool("boolKey"))
}
