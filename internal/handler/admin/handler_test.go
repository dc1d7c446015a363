package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	"github.com/avelichko/pyai-teacher/backend/internal/model/user"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
)

const testAdminKey = "admin-secret"

func setupRouter(t *testing.T) (*chi.Mux, store.Repository) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "admin.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	u := &user.User{
		ID:           "u-1",
		Email:        "student@example.com",
		PasswordHash: "hash",
		Tokens:       100,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	costs := config.CostsConfig{Chat: 5, Speech: 45, SpeechHighlight: 49, SignupGrant: 100}
	handler := New(repo, ledger.NewService(repo, costs))

	r := chi.NewRouter()
	r.Use(middleware.RequireAdmin(testAdminKey))
	handler.RegisterRoutes(r)
	return r, repo
}

func doRequest(r http.Handler, method, path, key string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAdminRequiresKey(t *testing.T) {
	r, _ := setupRouter(t)

	if resp := doRequest(r, http.MethodGet, "/admin/users", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", resp.Code)
	}
	if resp := doRequest(r, http.MethodGet, "/admin/users", "wrong-key", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", resp.Code)
	}
}

func TestAdminListsUsers(t *testing.T) {
	r, _ := setupRouter(t)

	resp := doRequest(r, http.MethodGet, "/admin/users", testAdminKey, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Users []map[string]any `json:"users"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(payload.Users))
	}
	if email := payload.Users[0]["email"]; email != "student@example.com" {
		t.Fatalf("unexpected email: %v", email)
	}
	if _, ok := payload.Users[0]["passwordHash"]; ok {
		t.Fatal("password hash must not leak into the listing")
	}
}

func TestAdminSetsTokens(t *testing.T) {
	r, repo := setupRouter(t)

	payload, _ := json.Marshal(map[string]int{"tokens": 500})
	resp := doRequest(r, http.MethodPut, "/admin/users/u-1/tokens", testAdminKey, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	tokens, err := repo.GetTokens(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if tokens != 500 {
		t.Fatalf("expected 500 tokens, got %d", tokens)
	}
}

func TestAdminSetTokensValidation(t *testing.T) {
	r, _ := setupRouter(t)

	payload, _ := json.Marshal(map[string]int{"tokens": -5})
	if resp := doRequest(r, http.MethodPut, "/admin/users/u-1/tokens", testAdminKey, payload); resp.Code != http.StatusBadRequest {
		t.Fatalf("negative tokens: expected 400, got %d", resp.Code)
	}

	payload, _ = json.Marshal(map[string]int{"tokens": 10})
	if resp := doRequest(r, http.MethodPut, "/admin/users/nope/tokens", testAdminKey, payload); resp.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", resp.Code)
	}
}

func TestAdminDeletesUser(t *testing.T) {
	r, repo := setupRouter(t)

	resp := doRequest(r, http.MethodDelete, "/admin/users/u-1", testAdminKey, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	u, err := repo.GetUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("failed to read user: %v", err)
	}
	if u != nil {
		t.Fatalf("expected user to be gone, got %+v", u)
	}

	if resp := doRequest(r, http.MethodDelete, "/admin/users/u-1", testAdminKey, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: expected 404, got %d", resp.Code)
	}
}
