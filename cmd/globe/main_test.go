package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianmaritime/globe/internal/config"
)

// setupConfigDir writes a config that keeps logs and the catalog inside a
// temp dir.
func setupConfigDir(t *testing.T, catalogType string) string {
	t.Helper()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	body := `{
		"logLevel": "debug",
		"logsDir": ` + quote(filepath.Join(dir, "logs")) + `,
		"framePeriod": "20ms",
		"catalog": {
			"type": ` + quote(catalogType) + `,
			"sqlite": { "path": ` + quote(filepath.Join(dir, "catalog.db")) + ` }
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0o644))
	return dir
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	dir := setupConfigDir(t, "memory")

	out, err := execute(t, "--config-dir", dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, AppName+" "+CurrentVersion)
}

func TestRoot_MissingConfigFallsBackToDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()

	out, err := execute(t, "--config-dir", dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "using defaults")
	assert.Equal(t, "hero", viper.GetString("variant"))
}

func TestRoot_FlagOverrides(t *testing.T) {
	dir := setupConfigDir(t, "memory")

	_, err := execute(t, "--config-dir", dir, "--variant", "contact", "--log-level", "warn", "version")
	require.NoError(t, err)
	assert.Equal(t, "contact", viper.GetString("variant"))
	assert.Equal(t, "warn", viper.GetString("logLevel"))
}

func TestCatalog_SQLiteRoundTrip(t *testing.T) {
	dir := setupConfigDir(t, "sqlite")

	out, err := execute(t, "--config-dir", dir, "catalog", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 8 locations")

	// seeding again skips existing names
	out, err = execute(t, "--config-dir", dir, "catalog", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 0 locations")

	out, err = execute(t, "--config-dir", dir, "catalog", "add", "--country", "Kenya", "--tag", "port", "--", "Mombasa", "-4.0435", "39.6682")
	require.NoError(t, err)
	assert.Contains(t, out, "added Mombasa")

	out, err = execute(t, "--config-dir", dir, "catalog", "anchor", "Mombasa")
	require.NoError(t, err)
	assert.Contains(t, out, "anchor Mombasa (-4.0435, 39.6682)")

	out, err = execute(t, "--config-dir", dir, "catalog", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "  Colombo"), lines[0])
	assert.True(t, strings.HasPrefix(lines[8], "* Mombasa"), lines[8])
	assert.Contains(t, lines[8], "port")

	out, err = execute(t, "--config-dir", dir, "catalog", "remove", "Mombasa")
	require.NoError(t, err)
	assert.Contains(t, out, "removed Mombasa")

	out, err = execute(t, "--config-dir", dir, "catalog", "anchor")
	require.NoError(t, err)
	assert.Contains(t, out, "anchor Colombo")
}

func TestCatalog_Errors(t *testing.T) {
	dir := setupConfigDir(t, "sqlite")

	_, err := execute(t, "--config-dir", dir, "catalog", "add", "Nowhere", "north", "0")
	assert.ErrorContains(t, err, "latitude")

	_, err = execute(t, "--config-dir", dir, "catalog", "add", "Nowhere", "91", "0")
	assert.ErrorContains(t, err, "invalid location")

	_, err = execute(t, "--config-dir", dir, "catalog", "remove", "Atlantis")
	assert.ErrorContains(t, err, "location not found")

	_, err = execute(t, "--config-dir", dir, "catalog", "add", "Colombo")
	assert.Error(t, err)
}

func TestSnapshot_WritesPNG(t *testing.T) {
	dir := setupConfigDir(t, "memory")
	path := filepath.Join(dir, "frame.png")

	out, err := execute(t, "--config-dir", dir, "snapshot", "-o", path, "--width", "64", "--height", "40", "--after", "500ms")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestSnapshot_LogsToFile(t *testing.T) {
	dir := setupConfigDir(t, "memory")

	_, err := execute(t, "--config-dir", dir, "snapshot", "-o", filepath.Join(dir, "f.png"), "--width", "16", "--height", "16", "--after", "0s")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "logs", AppName+".*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Logging initialized")
}

func TestView_SimulationScreen(t *testing.T) {
	dir := setupConfigDir(t, "memory")

	sim := tcell.NewSimulationScreen("")
	prev := newScreen
	newScreen = func() (tcell.Screen, error) { return sim, nil }
	t.Cleanup(func() { newScreen = prev })

	_, err := execute(t, "--config-dir", dir, "view", "--duration", "300ms")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "logs", AppName+"-status.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session"`)
	assert.Contains(t, string(data), `"droppedEvents"`)
	assert.Contains(t, string(data), `"logFailures"`)

	logs, err := filepath.Glob(filepath.Join(dir, "logs", AppName+".*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	logData, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Viewer closed")
	assert.Contains(t, string(logData), "command=view")
}

func TestView_QuitKey(t *testing.T) {
	dir := setupConfigDir(t, "memory")

	sim := tcell.NewSimulationScreen("")
	prev := newScreen
	newScreen = func() (tcell.Screen, error) { return sim, nil }
	t.Cleanup(func() { newScreen = prev })

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, "--config-dir", dir, "view", "--duration", "5s")
		done <- err
	}()

	// keys injected before Init are dropped, so keep pressing q
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			return
		case <-tick.C:
			sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
		case <-timeout:
			t.Fatal("view did not exit on q")
		}
	}
}
