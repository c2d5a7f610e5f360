package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTrustedProxiesResolve(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 198.51.100.10 ", "2001:db8::2"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies returned error: %v", err)
	}

	tests := []struct {
		name       string
		proxies    *TrustedProxies
		header     string
		remoteAddr string
		want       string
	}{
		{
			name:       "untrusted peer ignores forwarded",
			proxies:    proxies,
			header:     "203.0.113.1",
			remoteAddr: "192.0.2.50:1234",
			want:       "192.0.2.50",
		},
		{
			name:       "no trusted proxies ignores forwarded",
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "trusted peer uses forwarded",
			proxies:    proxies,
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "spoofed left entries are skipped",
			proxies:    proxies,
			header:     " 1.2.3.4 , 203.0.113.1 , 10.1.2.3 ",
			remoteAddr: "10.0.0.7:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "invalid hop stops the walk",
			proxies:    proxies,
			header:     "203.0.113.1, invalid",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "empty forwarded uses remote host",
			proxies:    proxies,
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "ipv6 trusted peer",
			proxies:    proxies,
			header:     "2001:db8::1",
			remoteAddr: net.JoinHostPort("2001:db8::2", "443"),
			want:       "2001:db8::1",
		},
		{
			name:       "remote without port",
			proxies:    proxies,
			header:     "203.0.113.9",
			remoteAddr: "203.0.113.1",
			want:       "203.0.113.1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.header != "" {
				req.Header.Set("X-Forwarded-For", tc.header)
			}
			if got := tc.proxies.Resolve(req); got != tc.want {
				t.Fatalf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	for _, entry := range []string{"proxy.internal", "10.0.0.0/33"} {
		if _, err := ParseTrustedProxies([]string{entry}); err == nil {
			t.Fatalf("ParseTrustedProxies(%q) returned nil error", entry)
		}
	}
}

func TestClientIPWithoutClientAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.50:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	if got := ClientIP(req); got != "192.0.2.50" {
		t.Fatalf("ClientIP() = %q, want peer address", got)
	}
}

func TestRateLimitIgnoresRotatingForwardedFor(t *testing.T) {
	h := ClientAddr(nil)(RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	limited := 0
	for i := 1; i <= 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/plans", nil)
		req.RemoteAddr = "192.0.2.50:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 18 {
		t.Fatalf("limited = %d, want 18", limited)
	}
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.1"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies returned error: %v", err)
	}
	h := ClientAddr(proxies)(RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/plans", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("203.0.113.1"); code != http.StatusOK {
		t.Fatalf("first client status = %d", code)
	}
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Fatalf("second client status = %d", code)
	}
	if code := send("198.51.100.99, 203.0.113.1"); code != http.StatusTooManyRequests {
		t.Fatalf("spoofed prefix status = %d, want 429", code)
	}
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 4)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/plans", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After header")
		}
	}
	other := httptest.NewRequest(http.MethodPost, "/v1/plans", nil)
	other.RemoteAddr = "198.51.100.11:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	codes = append(codes, rec.Code)

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusOK}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
}
