package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Storage.HistoryFile != "data/history.json" {
		t.Errorf("HistoryFile = %q", cfg.Storage.HistoryFile)
	}
	if cfg.Storage.AuditDB != "data/audit.db" {
		t.Errorf("AuditDB = %q", cfg.Storage.AuditDB)
	}
	if cfg.Secrets.StopKey != "stopnow" || cfg.Secrets.ClearKey != "shareddd" {
		t.Errorf("secrets = %+v", cfg.Secrets)
	}
	if cfg.Submit.RatePerMinute != 30 || cfg.Submit.Burst != 10 {
		t.Errorf("submit = %+v", cfg.Submit)
	}
	if cfg.External.Timeout != 30 {
		t.Errorf("Timeout = %d, want 30", cfg.External.Timeout)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STOP_KEY", "other")
	t.Setenv("SUBMIT_RATE", "5")
	t.Setenv("RESOLVER_URL", "http://resolver.internal")

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Secrets.StopKey != "other" {
		t.Errorf("StopKey = %q, want other", cfg.Secrets.StopKey)
	}
	if cfg.Submit.RatePerMinute != 5 {
		t.Errorf("RatePerMinute = %d, want 5", cfg.Submit.RatePerMinute)
	}
	if cfg.External.ResolverURL != "http://resolver.internal" {
		t.Errorf("ResolverURL = %q", cfg.External.ResolverURL)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SUBMIT_RATE", "not-a-number")

	cfg := Load()
	if cfg.Submit.RatePerMinute != 30 {
		t.Errorf("RatePerMinute = %d, want default 30", cfg.Submit.RatePerMinute)
	}
}
