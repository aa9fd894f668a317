package logging

import (
	"fmt"
	"os"
	"time"
)

// OpenLogFile creates logsDir if needed and opens the session log file in it.
// An existing file with the same name is kept as <path>.old.
func OpenLogFile(logsDir, prefix string, start time.Time) (*os.File, string, error) {
	path := LogFilePath(logsDir, prefix, start)
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, path, fmt.Errorf("creating logs dir: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, path, fmt.Errorf("rotating log file: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, path, fmt.Errorf("opening log file: %w", err)
	}
	return file, path, nil
}
