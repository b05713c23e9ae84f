package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"

	"github.com/ahmedtelkodsh/geniussmart/core"
)

type RollbarLogger struct {
	std *logrus.Entry
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger reports to rollbar and prints through std, tagged with component.
// Reporting is disabled in test mode or without a rollbar token.
func NewRollbarLogger(std *logrus.Logger, conf *core.Config, component string) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Address)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{std: std.WithFields(logrus.Fields{"app": conf.AppName, "component": component})}
	l.Enable(!conf.TestMode && conf.RollbarToken != "")
	return l
}

// NewStdLogger returns the logrus logger printing locally, at debug level when debug is set.
func NewStdLogger(debug bool) *logrus.Logger {
	std := logrus.New()
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		std.SetLevel(logrus.DebugLevel)
	}
	return std
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, core.Session
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, *logrus.Entry) {
	var sessSet bool
	entry := l.std
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case core.Session:
			// only set one Session
			if !sessSet {
				rollbar.SetPerson(a.ID, a.Name, a.Role)
				entry = entry.WithFields(logrus.Fields{"user": a.ID, "role": a.Role})
				sessSet = true
			}
		case error:
			entry = entry.WithError(a)
			newArgs = append(newArgs, a)
		case map[string]interface{}:
			entry = entry.WithFields(a)
			newArgs = append(newArgs, a)
		default:
			newArgs = append(newArgs, a)
		}
	}
	if !sessSet {
		rollbar.ClearPerson()
	}
	return newArgs, entry
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, entry := l.prepare(msg, args)
	rollbar.Debug(rArgs...)
	entry.Debug(msg)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, entry := l.prepare(msg, args)
	rollbar.Info(rArgs...)
	entry.Info(msg)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, entry := l.prepare(msg, args)
	rollbar.Warning(rArgs...)
	entry.Warn(msg)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, entry := l.prepare(msg, args)
	rollbar.Error(rArgs...)
	entry.Error(msg)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, entry := l.prepare(msg, args)
	rollbar.Critical(rArgs...)
	rollbar.Wait()
	entry.Fatal(msg)
}
