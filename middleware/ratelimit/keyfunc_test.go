package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc_ForwardedForUsesFirstIP(t *testing.T) {
	fn := DefaultKeyFunc(true)

	r := httptest.NewRequest(http.MethodGet, "http://example/api/chat", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if got := fn(r); got != "1.2.3.4:/api/chat" {
		t.Fatalf("expected first XFF ip with path, got %q", got)
	}
}

func TestDefaultKeyFunc_FallsBackToRealIP(t *testing.T) {
	fn := DefaultKeyFunc(true)

	r := httptest.NewRequest(http.MethodGet, "http://example/api/chat", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Real-IP", " 4.3.2.1 ")

	if got := fn(r); got != "4.3.2.1:/api/chat" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}
}

func TestDefaultKeyFunc_IgnoresForwardedHeadersWhenNotTrusted(t *testing.T) {
	fn := DefaultKeyFunc(false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")

	if got := fn(r); got != "10.0.0.9:/" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestClientIP_Unknown(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = ""

	if got := ClientIP(r, true); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestDefaultKeyFunc_TrustedWithoutHeadersIsUnknown(t *testing.T) {
	fn := DefaultKeyFunc(true)

	r := httptest.NewRequest(http.MethodGet, "http://example/api/chat", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	if got := fn(r); got != "unknown:/api/chat" {
		t.Fatalf("expected shared unknown identity, got %q", got)
	}
}

func TestClientIP_UntrustedWithoutRemoteAddrIsUnknown(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = ""

	if got := ClientIP(r, false); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestHeaderKeyFunc_PrefersHeaderWhenSet(t *testing.T) {
	fn := HeaderKeyFunc("X-Api-Key", DefaultKeyFunc(false))

	r := httptest.NewRequest(http.MethodGet, "http://example/v1", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Api-Key", " client-123 ")

	if got := fn(r); got != "X-Api-Key=client-123:/v1" {
		t.Fatalf("expected header key, got %q", got)
	}

	r.Header.Del("X-Api-Key")
	if got := fn(r); got != "10.0.0.1:/v1" {
		t.Fatalf("expected fallback key, got %q", got)
	}
}

func TestUserAgentKeyFunc(t *testing.T) {
	fn := UserAgentKeyFunc()

	r := httptest.NewRequest(http.MethodPost, "http://example/api/webhooks/stripe", nil)
	r.Header.Set("User-Agent", "Stripe/1.0 (+https://stripe.com/docs/webhooks)")
	if got := fn(r); got != "webhook:Stripe/1.0 (+https://stripe.com/docs/webhooks)" {
		t.Fatalf("unexpected key %q", got)
	}

	r.Header.Del("User-Agent")
	if got := fn(r); got != "webhook:unknown" {
		t.Fatalf("expected unknown source, got %q", got)
	}
}

func TestHeaderPremiumFunc(t *testing.T) {
	fn := HeaderPremiumFunc("X-User-Tier", func(v string) bool { return v == "pro" })

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	if fn(r) {
		t.Fatalf("missing header must not be premium")
	}
	r.Header.Set("X-User-Tier", "pro")
	if !fn(r) {
		t.Fatalf("expected premium")
	}
	r.Header.Set("X-User-Tier", "free")
	if fn(r) {
		t.Fatalf("free must not be premium")
	}
}
