package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"pulse-node/pkg/defaults"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	// LogVerbosityInfo is the default verbosity.
	LogVerbosityInfo = 0
	// LogVerbosityDebug turns on debug messages.
	LogVerbosityDebug = 1
	// LogVerbosityTrace turns on trace messages.
	LogVerbosityTrace = 2

	FormatText = "text"
	FormatJSON = "json"

	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

type contextKey struct{}

var (
	// logFile is the file the standard logger writes to when the output is a path.
	logFile   *os.File
	logFileMu sync.Mutex
)

// Config represents the configuration settings for a logger.
type Config struct {
	// Verbosity is the level of verbosity, 0 (info) through 2 (trace).
	Verbosity int
	// Format is the log format: text or json.
	Format string
	// Output is stderr, stdout or a file path.
	Output string
}

// Configure will configure the standard logger from the supplied config.
func Configure(logConfig *Config) error {
	logrus.SetLevel(levelFor(logConfig.Verbosity))

	switch strings.ToLower(logConfig.Format) {
	case FormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case FormatText, "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return invalidLogFormatError{format: logConfig.Format}
	}

	out, err := outputFor(logConfig.Output)
	if err != nil {
		return err
	}

	logFileMu.Lock()
	defer logFileMu.Unlock()

	logrus.SetOutput(out)

	previous := logFile
	logFile = nil

	if file, ok := out.(*os.File); ok && file != os.Stdout && file != os.Stderr {
		logFile = file
	}

	if previous != nil {
		if err := previous.Close(); err != nil {
			return fmt.Errorf("closing log file %s: %w", previous.Name(), err)
		}
	}

	return nil
}

func levelFor(verbosity int) logrus.Level {
	switch {
	case verbosity >= LogVerbosityTrace:
		return logrus.TraceLevel
	case verbosity == LogVerbosityDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func outputFor(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "":
		return nil, ErrLogOutputRequired
	case OutputStderr:
		return os.Stderr, nil
	case OutputStdout:
		return os.Stdout, nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaults.DataFilePerm)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", output, err)
		}

		return file, nil
	}
}

// AddFlagsToCommand will add the logging flags to the supplied command.
func AddFlagsToCommand(cmd *cobra.Command, cfg *Config) {
	cmd.PersistentFlags().IntVarP(&cfg.Verbosity,
		"verbosity",
		"v",
		LogVerbosityInfo,
		"The verbosity level of the logging. 0 is info, 1 is debug, 2 is trace.")

	cmd.PersistentFlags().StringVar(&cfg.Format,
		"log-format",
		FormatText,
		"The format of the log output. Valid values are: text, json.")

	cmd.PersistentFlags().StringVar(&cfg.Output,
		"log-output",
		OutputStderr,
		"The output for logging. Supply a file path or stderr or stdout.")
}

// WithLogger returns a new context with the supplied logger attached.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// GetLogger returns the logger from the context, or the standard logger if none is attached.
func GetLogger(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*logrus.Entry); ok {
			return logger
		}
	}

	return logrus.NewEntry(logrus.StandardLogger())
}
