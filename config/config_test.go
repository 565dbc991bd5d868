package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/unkn0wn-root/kvbag/lock"
	"github.com/unkn0wn-root/kvbag/provider/bolt"
	"github.com/unkn0wn-root/kvbag/provider/memory"
)

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(`
backend: bigcache
keyspace: wiki
lock_timeout: 250ms
merge_attempts: 4
bigcache:
  life_window: 1h
  shards: 16
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Backend != BackendBigCache || cfg.Keyspace != "wiki" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.LockTimeout != 250*time.Millisecond || cfg.MergeAttempts != 4 {
		t.Fatalf("lock/merge = %v %d", cfg.LockTimeout, cfg.MergeAttempts)
	}
	if cfg.BigCache.LifeWindow != time.Hour || cfg.BigCache.Shards != 16 {
		t.Fatalf("bigcache = %+v", cfg.BigCache)
	}
	// untouched sections keep defaults
	if cfg.Ristretto.BufferItems != 64 {
		t.Fatalf("ristretto defaults lost: %+v", cfg.Ristretto)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"KVBAG_BACKEND":      "bolt",
		"KVBAG_BOLT_PATH":    "/tmp/x.db",
		"KVBAG_LOCK_TIMEOUT": "1s",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Backend != BackendBolt || cfg.Bolt.Path != "/tmp/x.db" || cfg.LockTimeout != time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}

	bad := func(k string) (string, bool) {
		if k == "KVBAG_MERGE_ATTEMPTS" {
			return "many", true
		}
		return "", false
	}
	if err := cfg.applyEnv(bad); err == nil {
		t.Fatalf("expected error on malformed override")
	}
}

func TestParseUsesProcessEnv(t *testing.T) {
	t.Setenv("KVBAG_KEYSPACE", "from-env")
	cfg, err := Parse([]byte("keyspace: from-file\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Keyspace != "from-env" {
		t.Fatalf("keyspace = %q", cfg.Keyspace)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"memory", Config{Backend: BackendMemory}, true},
		{"unknown", Config{Backend: "etcd"}, false},
		{"redis without url", Config{Backend: BackendRedis}, false},
		{"bolt without path", Config{Backend: BackendBolt}, false},
		{"negative merge", Config{Backend: BackendMemory, MergeAttempts: -1}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err=%v ok=%v", tc.name, err, tc.ok)
		}
	}
	if err := (Config{Backend: "etcd"}).Validate(); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("want ErrUnknownBackend, got %v", err)
	}
}

func TestLoadAndOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvbag.yaml")
	yml := "backend: bolt\nbolt:\n  path: " + filepath.Join(dir, "kv.db") + "\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx := context.Background()
	s, l, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(ctx)
	if _, ok := s.(*bolt.Store); !ok {
		t.Fatalf("store = %T, want *bolt.Store", s)
	}
	if _, ok := l.(*lock.Table); !ok {
		t.Fatalf("locker = %T, want *lock.Table", l)
	}
}

func TestOpenMemory(t *testing.T) {
	s, _, err := Open(context.Background(), Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Fatalf("store = %T", s)
	}
}
