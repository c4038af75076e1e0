package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

// RollbarLogger reports to Rollbar and writes every entry to a local logger.
type RollbarLogger struct {
	local core.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(local core.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return &RollbarLogger{local: local}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Wait blocks until every queued report is sent.
func (l RollbarLogger) Wait() {
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, account.Account
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var accSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set the acting account
		if acc, ok := arg.(account.Account); ok {
			if !accSet { // only set one account
				rollbar.SetPerson(acc.ID, acc.Name, acc.Email)
				accSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !accSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.local.Debug(msg, args...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.local.Info(msg, args...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.local.Warn(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.local.Error(msg, args...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.local.Fatal(msg, args...)
}
