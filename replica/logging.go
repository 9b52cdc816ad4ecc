package replica

import (
	"io"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Functions

// NewLogger initializes a JSON gokit-logger filtered to the supplied log
// level, typically taken from config.Config.LogLevel. Unknown levels fall
// back to debug.
func NewLogger(out io.Writer, loglevel string) log.Logger {

	logger := log.NewJSONLogger(log.NewSyncWriter(out))
	logger = log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
	)

	switch strings.ToLower(loglevel) {
	case "info":
		logger = level.NewFilter(logger, level.AllowInfo())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	default:
		logger = level.NewFilter(logger, level.AllowDebug())
	}

	return logger
}
