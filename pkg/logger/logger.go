package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process-wide logger for the given environment.
// Development gets a console writer at debug level, everything else JSON at info level.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(env, "development") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log = zerolog.New(os.Stdout).With().Timestamp().Str("env", env).Logger()
}

func Debug(msg string, args ...interface{}) {
	write(log.Debug(), msg, args)
}

func Info(msg string, args ...interface{}) {
	write(log.Info(), msg, args)
}

func Warn(msg string, args ...interface{}) {
	write(log.Warn(), msg, args)
}

func Error(msg string, args ...interface{}) {
	write(log.Error(), msg, args)
}

// Fatal logs and exits the process.
func Fatal(msg string, args ...interface{}) {
	write(log.Fatal(), msg, args)
}

// write attaches alternating key/value args to the event. A trailing value
// without a key is stored under "error" when it is an error, "extra" otherwise.
func write(e *zerolog.Event, msg string, args []interface{}) {
	if e == nil {
		return
	}

	for i := 0; i < len(args); i++ {
		key, ok := args[i].(string)
		if ok && i+1 < len(args) {
			e = field(e, key, args[i+1])
			i++
			continue
		}

		if err, isErr := args[i].(error); isErr {
			e = e.Err(err)
			continue
		}
		e = e.Interface("extra", args[i])
	}

	e.Msg(msg)
}

func field(e *zerolog.Event, key string, val interface{}) *zerolog.Event {
	switch v := val.(type) {
	case error:
		return e.AnErr(key, v)
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case uint64:
		return e.Uint64(key, v)
	case float64:
		return e.Float64(key, v)
	case bool:
		return e.Bool(key, v)
	case time.Duration:
		return e.Dur(key, v)
	case fmt.Stringer:
		return e.Stringer(key, v)
	default:
		return e.Interface(key, v)
	}
}
