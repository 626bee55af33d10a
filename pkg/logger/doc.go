// Package logger provides structured logging for reelgrab on top of zerolog.
//
// It exposes a small Logger interface with leveled methods, field
// chaining, and a global instance initialized from the logging section of
// the configuration:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.GetLogger().WithField("url", url).Info("fetching reel info")
//
// Tests use NewTestLogger, which records messages instead of printing them.
package logger
