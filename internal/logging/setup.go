package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Config controls how New assembles the render loop's logger.
type Config struct {
	Level string
	File  io.Writer

	GraylogEnabled bool
	GraylogAddress string
}

// RenderContext is consulted on every log event to attach the frame and
// dataset currently in flight, mirroring what a render run is doing at
// the moment a line is emitted.
type RenderContext func() (frameNumber int, dataset string)

// New builds a zerolog.Logger writing human-readable lines to stdout,
// optionally mirroring them to a log file and to a Graylog GELF endpoint.
// A failure to dial Graylog is logged and otherwise ignored: local logs
// still reach stdout and the file.
func New(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339},
	}
	if cfg.File != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        cfg.File,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	if cfg.GraylogEnabled {
		gw, err := gelf.NewWriter(cfg.GraylogAddress)
		if err != nil {
			logger.Warn().Err(err).Str("address", cfg.GraylogAddress).Msg("graylog writer unavailable")
		} else {
			logger = zerolog.New(zerolog.MultiLevelWriter(append(writers, gw)...)).With().Timestamp().Logger()
		}
	}

	return logger
}

// WithRenderContext returns a logger that attaches the current frame
// number and dataset, as reported by provider, to every event.
func WithRenderContext(logger zerolog.Logger, provider RenderContext) zerolog.Logger {
	if provider == nil {
		return logger
	}
	return logger.Hook(zerolog.HookFunc(func(e *zerolog.Event, level zerolog.Level, msg string) {
		frame, dataset := provider()
		e.Int("frame", frame).Str("dataset", dataset)
	}))
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
