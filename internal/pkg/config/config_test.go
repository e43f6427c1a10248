package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadContext_Defaults(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("unexpected backend url %s", cfg.Backend.URL)
	}
	if cfg.Session.CookieName != "cf_session" || cfg.Session.TTL != 24*time.Hour {
		t.Errorf("unexpected session config %+v", cfg.Session)
	}
	if cfg.Checkout.Merchant != "Cascade Forum" || cfg.Checkout.ThemeColor != "#7B2CBF" {
		t.Errorf("unexpected checkout config %+v", cfg.Checkout)
	}
}

func TestLoadContext_Overrides(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND_URL":     "https://api.example.com",
		"SESSION_STORE":   "memory",
		"RAZORPAY_KEY_ID": "rzp_live_x",
		"JOURNAL_WORKERS": "2",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.URL != "https://api.example.com" || cfg.Session.Store != "memory" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Checkout.KeyID != "rzp_live_x" || cfg.Journal.Workers != 2 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadContext_RejectsUnknownStore(t *testing.T) {
	_, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_STORE": "localstorage",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
