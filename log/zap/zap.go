// Package zap adapts a *zap.Logger to kvbag.Logger.
package zap

import (
	"sort"

	"github.com/unkn0wn-root/kvbag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ kvbag.Logger = Logger{}

// Logger forwards adapter logs to L. A nil L drops everything.
type Logger struct{ L *zap.Logger }

// New names the logger "kvbag" so adapter records are easy to filter.
func New(l *zap.Logger) Logger { return Logger{L: l.Named("kvbag")} }

func (z Logger) Debug(msg string, f kvbag.Fields) { z.log(zapcore.DebugLevel, msg, f) }
func (z Logger) Info(msg string, f kvbag.Fields)  { z.log(zapcore.InfoLevel, msg, f) }
func (z Logger) Warn(msg string, f kvbag.Fields)  { z.log(zapcore.WarnLevel, msg, f) }
func (z Logger) Error(msg string, f kvbag.Fields) { z.log(zapcore.ErrorLevel, msg, f) }

func (z Logger) log(lvl zapcore.Level, msg string, f kvbag.Fields) {
	if z.L == nil {
		return
	}
	// Check first so disabled levels never build fields.
	if ce := z.L.Check(lvl, msg); ce != nil {
		ce.Write(zf(f)...)
	}
}

// zf emits fields in key order; errors go through zap.NamedError.
func zf(f kvbag.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		switch v := f[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
