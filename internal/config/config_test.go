package config

import (
	"testing"
	"time"
)

func TestLoadBoardConfigDefaults(t *testing.T) {
	cfg := LoadBoardConfig()
	if cfg.OpenHour != 9 || cfg.CloseHour != 21 {
		t.Fatalf("hours = %d..%d, want 9..21", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.NameLimit != 2 {
		t.Fatalf("NameLimit = %d", cfg.NameLimit)
	}
	if cfg.ReloadInterval != 10*time.Second || cfg.ClockInterval != time.Second {
		t.Fatalf("intervals = %s / %s", cfg.ReloadInterval, cfg.ClockInterval)
	}
	if cfg.Location == nil {
		t.Fatal("Location is nil")
	}
	if cfg.MaskNames {
		t.Fatal("names are shown in full unless BOARD_MASK_NAMES is set")
	}
}

func TestLoadBoardConfigRejectsBadHours(t *testing.T) {
	t.Setenv("BOARD_OPEN_HOUR", "22")
	t.Setenv("BOARD_CLOSE_HOUR", "20")
	t.Setenv("BOARD_NAME_LIMIT", "0")
	t.Setenv("PURGE_INTERVAL", "soon")
	cfg := LoadBoardConfig()
	if cfg.OpenHour != 9 || cfg.CloseHour != 21 {
		t.Fatalf("hours = %d..%d", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.NameLimit != 2 {
		t.Fatalf("NameLimit = %d, want fallback 2", cfg.NameLimit)
	}
	if cfg.PurgeInterval != time.Minute {
		t.Fatalf("PurgeInterval = %s, want fallback 1m", cfg.PurgeInterval)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "ON")
	if !envBool("X_FLAG", false) {
		t.Fatal("ON should parse as true")
	}
	t.Setenv("X_FLAG", "maybe")
	if envBool("X_FLAG", false) {
		t.Fatal("unknown value should fall back to default")
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("Capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.TTL != 50*time.Second {
		t.Fatalf("TTL = %s, want 50s", cfg.TTL)
	}
}

func TestLoadEventsConfigURLPrecedence(t *testing.T) {
	t.Setenv("AMQP_URL", "amqp://old")
	t.Setenv("RABBITMQ_URL", "amqp://new")
	if cfg := LoadEventsConfig(); cfg.URL != "amqp://new" || cfg.Enabled {
		t.Fatalf("events config = %+v", cfg)
	}
}
