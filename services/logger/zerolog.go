package logsvc

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

// ZeroLogger writes structured logs with zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*ZeroLogger)(nil)

// NewZeroLogger logs JSON to `w`, or human-friendly lines to stdout in DEV when `w` is nil.
func NewZeroLogger(w io.Writer, conf *core.Config) *ZeroLogger {
	if w == nil {
		w = os.Stdout
		if conf.Env == "DEV" {
			w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		}
	}
	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("app", conf.AppName).
		Str("env", conf.Env).
		Logger()
	return &ZeroLogger{zl: zl}
}

// With returns a logger tagging every entry with `component` (e.g. "API", "DB").
func (l ZeroLogger) With(component string) *ZeroLogger {
	return &ZeroLogger{zl: l.zl.With().Str("component", component).Logger()}
}

// expected args: error, map[string]interface{}, account.Account, anything else
func (l ZeroLogger) log(ev *zerolog.Event, msg string, args []interface{}) {
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			ev = ev.Err(a)
			if st, ok := a.(interface{ StackTrace() errors.StackTrace }); ok {
				ev = ev.Str("stack", stackString(st.StackTrace()))
			}
		case map[string]interface{}:
			ev = ev.Fields(a)
		case account.Account:
			ev = ev.Str("account_id", a.ID).Str("account_email", a.Email)
		default:
			ev = ev.Interface("extra", a)
		}
	}
	ev.Msg(msg)
}

func stackString(st errors.StackTrace) string {
	if len(st) > 5 {
		st = st[:5]
	}
	return fmt.Sprintf("%+v", st)
}

func (l ZeroLogger) Debug(msg string, args ...interface{}) { l.log(l.zl.Debug(), msg, args) }
func (l ZeroLogger) Info(msg string, args ...interface{})  { l.log(l.zl.Info(), msg, args) }
func (l ZeroLogger) Warn(msg string, args ...interface{})  { l.log(l.zl.Warn(), msg, args) }
func (l ZeroLogger) Error(msg string, args ...interface{}) { l.log(l.zl.Error(), msg, args) }

func (l ZeroLogger) Fatal(msg string, args ...interface{}) {
	l.log(l.zl.WithLevel(zerolog.FatalLevel), msg, args)
	os.Exit(1)
}
