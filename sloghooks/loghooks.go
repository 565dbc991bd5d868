// Package sloghooks implements kvbag.Hooks by logging to a *slog.Logger.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/kvbag"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CASConflictEvery  uint64
	DecodeFailedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	casCtr    atomic.Uint64
	decodeCtr atomic.Uint64
}

var _ kvbag.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CASConflict(key string) {
	if h.l == nil || !sample(h.opts.CASConflictEvery, &h.casCtr) {
		return
	}
	h.l.Debug("kvbag.cas_conflict",
		"key", h.redact(key))
}

func (h *Hooks) LockUnavailable(key, op string) {
	if h.l == nil {
		return
	}
	h.l.Warn("kvbag.lock_unavailable",
		"key", h.redact(key),
		"op", op)
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeCtr) {
		return
	}
	h.l.Warn("kvbag.decode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) NotInteger(key string) {
	if h.l == nil {
		return
	}
	h.l.Info("kvbag.not_integer",
		"key", h.redact(key))
}

func (h *Hooks) StoreError(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("kvbag.store_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) MergeExhausted(key string, attempts int) {
	if h.l == nil {
		return
	}
	h.l.Info("kvbag.merge_exhausted",
		"key", h.redact(key),
		"attempts", attempts)
}
