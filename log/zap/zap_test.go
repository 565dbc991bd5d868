package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/kvbag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))

	l.Debug("dropped", kvbag.Fields{"key": "k"})
	l.Info("compare-and-swap failed", kvbag.Fields{"key": "k", "err": errors.New("boom")})
	l.Warn("store error", nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.LoggerName != "kvbag" || first.Level != zapcore.InfoLevel {
		t.Fatalf("unexpected entry: %+v", first.Entry)
	}
	ctx := first.ContextMap()
	if ctx["key"] != "k" || ctx["err"] != "boom" {
		t.Fatalf("fields = %v", ctx)
	}
	if entries[1].Level != zapcore.WarnLevel || len(entries[1].Context) != 0 {
		t.Fatalf("warn entry: %+v", entries[1])
	}
}

func TestZapLoggerNilIsSilent(t *testing.T) {
	var l Logger
	l.Error("nothing", kvbag.Fields{"a": 1})
}
