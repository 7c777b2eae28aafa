package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedHandler(keys []string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return BearerAuthMiddleware(keys)(next)
}

func TestBearerAuth_DisabledWhenNoKeys(t *testing.T) {
	h := authedHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/mcp", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected pass-through with no keys, got %d", rr.Code)
	}
}

func TestBearerAuth_RejectsMissingAndInvalid(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"invalid key", "Bearer wrong"},
	}

	h := authedHandler([]string{"secret"})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestBearerAuth_AcceptsValidKey(t *testing.T) {
	h := authedHandler([]string{"secret"})

	req := httptest.NewRequest(http.MethodPost, "/mcp", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	h := authedHandler([]string{"secret"})

	for _, path := range []string{"/health", "/readyz", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected exempt path to bypass auth, got %d", rr.Code)
			}
		})
	}
}
