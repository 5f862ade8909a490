package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "callsign: K1ABC\nhost: telnet.reversebeacon.net\nport: 7000\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConnectTimeout != defaultConnectTimeout {
		t.Errorf("ConnectTimeout = %v, want %v", cfg.ConnectTimeout, defaultConnectTimeout)
	}
	if cfg.ReadTimeout != defaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want %v", cfg.ReadTimeout, defaultReadTimeout)
	}
	if cfg.AutoReconnect == nil || !*cfg.AutoReconnect {
		t.Error("expected AutoReconnect to default true")
	}
	if cfg.HTTPPort != defaultHTTPPort {
		t.Errorf("HTTPPort = %d, want %d", cfg.HTTPPort, defaultHTTPPort)
	}
	if cfg.InstanceID == "" {
		t.Error("expected a non-empty InstanceID")
	}
}

func TestLoadRespectsExplicitAutoReconnectFalse(t *testing.T) {
	path := writeConfig(t, "callsign: K1ABC\nauto_reconnect: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AutoReconnect == nil || *cfg.AutoReconnect {
		t.Error("expected AutoReconnect to stay false when configured")
	}
}

func TestLoadRejectsInvalidFilterPattern(t *testing.T) {
	path := writeConfig(t, "callsign: K1ABC\nfilters:\n  - dx_call_patterns: [\"W*6\"]\n")
	if _, err := Load(path); err == nil {
		t.Error("expected Load to reject an internal wildcard in a filter pattern")
	}
}

func TestLoadRejectsInvalidStorageSize(t *testing.T) {
	path := writeConfig(t, "callsign: K1ABC\nstorage:\n  global_max_size: \"4TB\"\n")
	if _, err := Load(path); err == nil {
		t.Error("expected Load to reject a TB-suffixed global_max_size")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Error("expected Load to fail for a missing file")
	}
}

func TestGlobalMaxSizeBytesDefaultsWhenStorageAbsent(t *testing.T) {
	path := writeConfig(t, "callsign: K1ABC\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	n, err := cfg.GlobalMaxSizeBytes()
	if err != nil {
		t.Fatalf("GlobalMaxSizeBytes() error: %v", err)
	}
	if n == 0 {
		t.Error("expected a non-zero default global max size")
	}
}

func TestParseSizeBinaryMultiples(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"100B", 100},
		{"1K", 1024},
		{"1KB", 1024},
		{"2M", 2 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if err != nil {
			t.Errorf("ParseSize(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeRejectsEmptyAndTB(t *testing.T) {
	if _, err := ParseSize(""); err == nil {
		t.Error("expected ParseSize(\"\") to fail")
	}
	if _, err := ParseSize("5TB"); err == nil {
		t.Error("expected ParseSize(\"5TB\") to fail")
	}
}

func TestPoloBlockParsesRefreshInterval(t *testing.T) {
	path := writeConfig(t, "callsign: K1ABC\npolo:\n  url: https://example.com/notes.txt\n  refresh_interval: 10m\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Polo == nil {
		t.Fatal("expected a Polo block")
	}
	if cfg.Polo.RefreshInterval.Duration() != 10*time.Minute {
		t.Errorf("RefreshInterval = %v, want 10m", cfg.Polo.RefreshInterval.Duration())
	}
}
