package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "REDIS_URL", "TURN_TIMEOUT", "INACTIVITY_TIMEOUT", "BATTLE_TIMEOUT", "INTENT_RATE", "INTENT_BURST"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8009" {
		t.Errorf("expected port 8009, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Errorf("expected storage disabled by default, got %q %q", cfg.DatabaseURL, cfg.RedisURL)
	}
	if cfg.TurnTimeout != 60*time.Second {
		t.Errorf("expected 60s turn timeout, got %v", cfg.TurnTimeout)
	}
	if cfg.InactivityTimeout != 5*time.Minute {
		t.Errorf("expected 5m inactivity timeout, got %v", cfg.InactivityTimeout)
	}
	if cfg.BattleTimeout != 15*time.Second {
		t.Errorf("expected 15s battle timeout, got %v", cfg.BattleTimeout)
	}
	if cfg.IntentRate != 10 || cfg.IntentBurst != 20 {
		t.Errorf("expected rate 10/20, got %v/%d", cfg.IntentRate, cfg.IntentBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TURN_TIMEOUT", "90s")
	t.Setenv("BATTLE_TIMEOUT", "nonsense")
	t.Setenv("INTENT_BURST", "-3")
	t.Setenv("INTENT_RATE", "2.5")
	cfg := Load()

	if cfg.TurnTimeout != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.TurnTimeout)
	}
	if cfg.BattleTimeout != 15*time.Second {
		t.Errorf("expected fallback 15s, got %v", cfg.BattleTimeout)
	}
	if cfg.IntentBurst != 20 {
		t.Errorf("expected fallback burst 20, got %d", cfg.IntentBurst)
	}
	if cfg.IntentRate != 2.5 {
		t.Errorf("expected rate 2.5, got %v", cfg.IntentRate)
	}
}
