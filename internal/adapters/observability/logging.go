package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const serviceName = "hotel_rates"

// NewLogger builds the process logger. Local environments get a console
// writer; everything else writes JSON lines tagged with service and env.
func NewLogger(env string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if isLocal(env) {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(w).With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}

func isLocal(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

// SetLevel applies LOG_LEVEL globally; empty or unknown values mean info.
func SetLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return lvl
}
