package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAdmin(keys []string, authHeader string) *httptest.ResponseRecorder {
	handler := AdminAuthMiddleware(keys)(okHandler())
	req := httptest.NewRequest("DELETE", "/api/v1/experiments/E-MTAB-5061/cache", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAdminAuth_NoKeys_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		rr := serveAdmin(keys, "Bearer anything")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestAdminAuth_MissingHeader_401(t *testing.T) {
	rr := serveAdmin([]string{"secret"}, "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != ErrorCodeUnauthorized {
		t.Errorf("expected code %q, got %q", ErrorCodeUnauthorized, errResp.Code)
	}
	if errResp.Message != "missing authorization header" {
		t.Errorf("unexpected message %q", errResp.Message)
	}
}

func TestAdminAuth_BasicScheme_401(t *testing.T) {
	rr := serveAdmin([]string{"secret"}, "Basic c2VjcmV0")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("basic scheme: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuth_InvalidToken_401(t *testing.T) {
	rr := serveAdmin([]string{"secret"}, "Bearer wrong")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuth_ValidToken_200(t *testing.T) {
	rr := serveAdmin([]string{"secret"}, "Bearer secret")
	if rr.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAdminAuth_MultipleKeys(t *testing.T) {
	keys := []string{"key1", "key2", "key3"}
	for _, k := range keys {
		if rr := serveAdmin(keys, "Bearer "+k); rr.Code != http.StatusOK {
			t.Errorf("key %q: got %d, want %d", k, rr.Code, http.StatusOK)
		}
	}
}
