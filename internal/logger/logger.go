package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger and routes the standard library logger into it.
func Init(logLevelStr string, appEnv string) {
	log.Logger = New(os.Stdout, logLevelStr, appEnv)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

// New builds a logger writing to out. Development environments get the console
// writer with caller info, everything else gets JSON lines.
func New(out io.Writer, logLevelStr string, appEnv string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil || parsedLevel == zerolog.NoLevel {
		parsedLevel = zerolog.InfoLevel
		log.Warn().Err(err).Msgf("Invalid log level '%s', defaulting to 'info'", logLevelStr)
	}
	zerolog.SetGlobalLevel(parsedLevel)

	if isDevelopment(appEnv) {
		console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(console).With().Timestamp().Caller().Logger()
	}
	return zerolog.New(out).With().Timestamp().Str("service", "instaclone-auth").Logger()
}

func isDevelopment(appEnv string) bool {
	env := strings.ToLower(appEnv)
	return env == "development" || env == "dev"
}
