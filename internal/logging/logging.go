package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const sessionLayout = "20060102_150405"

// LogFilePath returns <logsDir>/<appName>.<UTC start>.log.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.UTC().Format(sessionLayout)),
	)
}

// OpenLogFile creates logsDir if needed and opens the session log for
// appending.
func OpenLogFile(logsDir, appName string, sessionStart time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	path := LogFilePath(logsDir, appName, sessionStart)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// PruneLogs removes the oldest session logs of appName so that at most
// keep remain, and returns the removed paths. keep <= 0 keeps everything.
// Session names sort chronologically.
func PruneLogs(logsDir, appName string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return nil, fmt.Errorf("reading logs dir: %w", err)
	}

	prefix := appName + "."
	var sessions []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log")
		if _, err := time.Parse(sessionLayout, stamp); err != nil {
			continue
		}
		sessions = append(sessions, name)
	}
	if len(sessions) <= keep {
		return nil, nil
	}
	sort.Strings(sessions)

	var removed []string
	for _, name := range sessions[:len(sessions)-keep] {
		path := filepath.Join(logsDir, name)
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", name, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
