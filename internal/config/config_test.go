package config

import "testing"

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("COMPANY_PAGE_SIZE", "")
	t.Setenv("PEOPLE_PAGE_SIZE", "")
	t.Setenv("COMPANY_SEARCH_DELAY_MS", "")
	t.Setenv("PEOPLE_SEARCH_DELAY_MS", "")
	t.Setenv("NATS_SUBJECT", "")

	cfg := Load()
	if cfg.CompanyPageSize != 12 {
		t.Fatalf("expected default company page size 12, got %d", cfg.CompanyPageSize)
	}
	if cfg.PeoplePageSize != 15 {
		t.Fatalf("expected default people page size 15, got %d", cfg.PeoplePageSize)
	}
	if cfg.CompanySearchDelayMS != 1500 {
		t.Fatalf("expected default company delay 1500ms, got %d", cfg.CompanySearchDelayMS)
	}
	if cfg.PeopleSearchDelayMS != 1800 {
		t.Fatalf("expected default people delay 1800ms, got %d", cfg.PeopleSearchDelayMS)
	}
	if cfg.NATSSubject != "research.runs" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("COMPANY_PAGE_SIZE", "20")
	t.Setenv("API_RATE_LIMIT_RPS", "3")
	t.Setenv("POSTGRES_DSN", "postgres://example/db")
	t.Setenv("API_RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	if cfg.CompanyPageSize != 20 {
		t.Fatalf("expected company page size 20, got %d", cfg.CompanyPageSize)
	}
	if cfg.APIRateLimitRPS != 3 {
		t.Fatalf("expected rate limit 3, got %d", cfg.APIRateLimitRPS)
	}
	if cfg.PostgresDSN != "postgres://example/db" {
		t.Fatalf("expected dsn override, got %q", cfg.PostgresDSN)
	}
	if cfg.APIRateLimitBurst != 20 {
		t.Fatalf("expected invalid int to fall back to 20, got %d", cfg.APIRateLimitBurst)
	}
}
