//go:build go1.21

// Package slog adapts a *slog.Logger to kvbag.Logger.
package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/kvbag"
)

var _ kvbag.Logger = Logger{}

// Logger forwards adapter logs to L. A nil L drops everything.
type Logger struct{ L *stdslog.Logger }

// New groups adapter attributes under "kvbag".
func New(l *stdslog.Logger) Logger { return Logger{L: l.WithGroup("kvbag")} }

func (s Logger) Debug(msg string, f kvbag.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f kvbag.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f kvbag.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f kvbag.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f kvbag.Fields) {
	ctx := context.Background()
	if s.L == nil || !s.L.Enabled(ctx, lvl) {
		return
	}
	s.L.LogAttrs(ctx, lvl, msg, attrs(f)...)
}

func attrs(f kvbag.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
