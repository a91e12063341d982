package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"freshtrack/internal/http/handlers"
)

func TestAPINotFoundIsJSON(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	tok := env.login(t, "alice@freshtrack.test")

	status, raw := env.call(t, "GET", "/api/v1/nope", tok, nil)
	if status != http.StatusNotFound {
		t.Fatalf("want 404, got %d", status)
	}
	if !strings.Contains(string(raw), `"error"`) {
		t.Fatalf("want JSON error body, got %s", raw)
	}

	if status, _ = env.call(t, "GET", "/api/v1/items/does-not-exist", tok, nil); status != http.StatusNotFound {
		t.Fatalf("missing item: want 404, got %d", status)
	}
}

func TestMalformedBodyIsClientError(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	tok := env.login(t, "alice@freshtrack.test")

	req := httptest.NewRequest("POST", "/api/v1/items", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	logs := captureLogs(t, func() {
		resp, err := env.app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("want 400, got %d", resp.StatusCode)
		}
	})
	if e := findLog(logs, "validation.fail"); e == nil {
		t.Fatalf("expected validation.fail log, got %+v", logs)
	}
}

func TestWebNotFoundRendersPage(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	resp, err := env.app.Test(httptest.NewRequest("GET", "/definitely/missing", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Page not found") {
		t.Fatalf("friendly page missing: %s", body)
	}
	if strings.Contains(string(body), "goroutine") || strings.Contains(string(body), ".go:") {
		t.Fatal("internal details leaked")
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	status, raw := env.call(t, "GET", "/healthz", "", nil)
	if status != http.StatusOK || !strings.Contains(string(raw), `"ok":true`) {
		t.Fatalf("healthz: %d %s", status, raw)
	}
}
