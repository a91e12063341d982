package handlers_test

import (
	"net/http"
	"testing"

	"freshtrack/internal/http/handlers"
)

func TestNotificationInbox(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	alice := env.login(t, "alice@freshtrack.test")
	bob := env.login(t, "bob@freshtrack.test")

	var n struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Priority string `json:"priority"`
		IsRead   bool   `json:"isRead"`
	}
	status, raw := env.call(t, "POST", "/api/v1/notifications", alice, map[string]any{
		"title": "Shopping", "message": "Buy bread", "metadata": map[string]any{"list": "weekly"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %s", status, raw)
	}
	decode(t, raw, &n)
	if n.Type != "system" || n.Priority != "medium" || n.IsRead {
		t.Fatalf("defaults not applied: %+v", n)
	}

	if status, _ := env.call(t, "POST", "/api/v1/notifications", alice, map[string]any{"title": "x", "message": "y", "priority": "panic"}); status != http.StatusBadRequest {
		t.Fatalf("bad priority: want 400, got %d", status)
	}

	// bob cannot touch alice's notification
	if status, _ := env.call(t, "PUT", "/api/v1/notifications/"+n.ID+"/read", bob, nil); status != http.StatusNotFound {
		t.Fatalf("foreign mark read: want 404, got %d", status)
	}
	if status, _ := env.call(t, "DELETE", "/api/v1/notifications/"+n.ID, bob, nil); status != http.StatusNotFound {
		t.Fatalf("foreign delete: want 404, got %d", status)
	}

	if status, _ := env.call(t, "PUT", "/api/v1/notifications/"+n.ID+"/read", alice, nil); status != http.StatusNoContent {
		t.Fatalf("mark read: want 204, got %d", status)
	}
	var unread []struct {
		ID string `json:"id"`
	}
	_, raw = env.call(t, "GET", "/api/v1/notifications?unread=true", alice, nil)
	decode(t, raw, &unread)
	if len(unread) != 0 {
		t.Fatalf("unread after mark read = %d", len(unread))
	}

	_, _ = env.call(t, "POST", "/api/v1/notifications", alice, map[string]any{"title": "a", "message": "b"})
	var updated struct {
		Updated int64 `json:"updated"`
	}
	_, raw = env.call(t, "PUT", "/api/v1/notifications/read-all", alice, nil)
	decode(t, raw, &updated)
	if updated.Updated != 1 {
		t.Fatalf("read-all updated %d, want 1", updated.Updated)
	}

	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	_, raw = env.call(t, "DELETE", "/api/v1/notifications", alice, nil)
	decode(t, raw, &cleared)
	if cleared.Deleted != 2 {
		t.Fatalf("clear deleted %d, want 2", cleared.Deleted)
	}
}
