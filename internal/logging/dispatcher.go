package logging

import "log/slog"

// DispatcherLogger tags dispatcher output with its component. The embedded
// slog.Logger already has the Debug, Info and Error methods the dispatcher
// calls.
type DispatcherLogger struct {
	*slog.Logger
}

func NewDispatcherLogger(logger *slog.Logger) *DispatcherLogger {
	return &DispatcherLogger{Logger: logger.With("component", "dispatcher")}
}
