package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath returns <logsDir>/<prefix>_<YYYYMMDD_HHMMSS>.log.
func LogFilePath(logsDir, prefix string, start time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s_%s.log", prefix, start.Format("20060102_150405")),
	)
}
