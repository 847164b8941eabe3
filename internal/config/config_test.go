package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Fatalf("default environment = %q", cfg.Environment)
	}
	if cfg.IsProduction() {
		t.Fatal("development config reports production")
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Fatal("expected a default allowed origin")
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENV", "Production")
	cfg := Load()
	if !cfg.IsProduction() {
		t.Fatal("ENV=Production should report production")
	}
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	cfg := Load()

	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("got %d origins, want 2: %v", len(cfg.AllowedOrigins), cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[0] != "https://a.example.com" || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadSMTPFallsBackToAdminCreds(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	cfg := Load()

	if cfg.SMTPUser != "admin@example.com" {
		t.Fatalf("SMTPUser = %q", cfg.SMTPUser)
	}
	if cfg.SMTPPassword != "hunter22" {
		t.Fatalf("SMTPPassword = %q", cfg.SMTPPassword)
	}
	if cfg.MailFrom != "admin@example.com" {
		t.Fatalf("MailFrom = %q", cfg.MailFrom)
	}
}

func TestLoadSMTPPortFallback(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	cfg := Load()
	if cfg.SMTPPort != 587 {
		t.Fatalf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
}
