// Package logrus adapts a *logrus.Entry to kvbag.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/kvbag"
)

var _ kvbag.Logger = Logger{}

// Logger forwards adapter logs to E. A nil E drops everything.
type Logger struct{ E *logrus.Entry }

// New tags every record with component=kvbag.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "kvbag")}
}

func (l Logger) Debug(msg string, f kvbag.Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l Logger) Info(msg string, f kvbag.Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l Logger) Warn(msg string, f kvbag.Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l Logger) Error(msg string, f kvbag.Fields) { l.log(logrus.ErrorLevel, msg, f) }

func (l Logger) log(lvl logrus.Level, msg string, f kvbag.Fields) {
	if l.E == nil || !l.E.Logger.IsLevelEnabled(lvl) {
		return
	}
	e := l.E
	if len(f) > 0 {
		lf := make(logrus.Fields, len(f))
		for k, v := range f {
			if k == "err" {
				k = logrus.ErrorKey
			}
			lf[k] = v
		}
		e = e.WithFields(lf)
	}
	e.Log(lvl, msg)
}
