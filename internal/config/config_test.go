package config

import "testing"

func TestDefaultConfig_AuthThrottle(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.AuthRateLimit != 5 {
		t.Errorf("expected default auth rate limit 5, got %v", cfg.Server.AuthRateLimit)
	}
	if cfg.Server.AuthRateBurst != 10 {
		t.Errorf("expected default auth rate burst 10, got %v", cfg.Server.AuthRateBurst)
	}
}

func TestOverrideFromEnv_AuthThrottle(t *testing.T) {
	t.Setenv("AUTH_RATE_LIMIT", "2.5")
	t.Setenv("AUTH_RATE_BURST", "4")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if cfg.Server.AuthRateLimit != 2.5 {
		t.Errorf("expected auth rate limit 2.5 from env, got %v", cfg.Server.AuthRateLimit)
	}
	if cfg.Server.AuthRateBurst != 4 {
		t.Errorf("expected auth rate burst 4 from env, got %v", cfg.Server.AuthRateBurst)
	}

	t.Setenv("AUTH_RATE_BURST", "not-a-number")
	cfg.overrideFromEnv()
	if cfg.Server.AuthRateBurst != 4 {
		t.Errorf("malformed env value should be ignored, got %v", cfg.Server.AuthRateBurst)
	}
}
