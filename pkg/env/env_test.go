package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("PRICING_ENV_TEST", "8081")
	if got := Get("PRICING_ENV_TEST", "8080"); got != "8081" {
		t.Fatalf("expected env value, got %q", got)
	}
	t.Setenv("PRICING_ENV_TEST", "")
	if got := Get("PRICING_ENV_TEST", "8080"); got != "8080" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetTreatsBlankAsUnset(t *testing.T) {
	t.Setenv("PRICING_ENV_TEST", "   ")
	if got := Get("PRICING_ENV_TEST", "json"); got != "json" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	t.Setenv("PRICING_ENV_TEST", " console ")
	if got := Get("PRICING_ENV_TEST", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}
