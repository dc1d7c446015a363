package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	"github.com/avelichko/pyai-teacher/backend/internal/model/user"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ai"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
)

type stubVerifier struct {
	userID string
}

func (v stubVerifier) VerifyToken(string) (string, error) {
	return v.userID, nil
}

func setupRouter(t *testing.T, providers ...ai.Provider) (*chi.Mux, *ledger.Service) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
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
	ledgerSvc := ledger.NewService(repo, costs)

	aiSvc, err := ai.NewServiceWithProviders(providers, ledgerSvc, costs.Chat)
	if err != nil {
		t.Fatalf("failed to build AI service: %v", err)
	}
	handler := New(aiSvc, ledgerSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(stubVerifier{userID: "u-1"}))
	handler.RegisterRoutes(r)
	return r, ledgerSvc
}

func ask(r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/ai/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAskReturnsReplyAndBalance(t *testing.T) {
	mock := ai.NewMockProvider(ai.BackendOpenAI).Reply("## Урок\n**Переменные**")
	r, _ := setupRouter(t, mock)

	resp := ask(r, map[string]string{"prompt": "расскажи про переменные"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var reply askResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &reply); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reply.Content != "Урок\nПеременные" {
		t.Fatalf("expected sanitized content, got %q", reply.Content)
	}
	if reply.Source != ai.BackendOpenAI {
		t.Fatalf("expected openai source, got %q", reply.Source)
	}
	if reply.Tokens != 95 {
		t.Fatalf("expected balance 95 after debit, got %d", reply.Tokens)
	}
}

func TestAskEmptyPrompt(t *testing.T) {
	mock := ai.NewMockProvider(ai.BackendOpenAI)
	r, _ := setupRouter(t, mock)

	resp := ask(r, map[string]string{"prompt": "   "})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no provider calls, got %d", mock.CallCount())
	}
}

func TestAskInsufficientTokens(t *testing.T) {
	mock := ai.NewMockProvider(ai.BackendOpenAI).Reply("ответ")
	r, ledgerSvc := setupRouter(t, mock)

	if err := ledgerSvc.SetBalance(context.Background(), "u-1", 3); err != nil {
		t.Fatalf("failed to set balance: %v", err)
	}

	resp := ask(r, map[string]string{"prompt": "вопрос"})

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.Code)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no provider calls, got %d", mock.CallCount())
	}
}

func TestAskAllBackendsDown(t *testing.T) {
	primary := ai.NewMockProvider(ai.BackendOpenAI).Fail(errors.New("upstream 500"))
	fallback := ai.NewMockProvider(ai.BackendAnthropic).Fail(errors.New("upstream 429"))
	r, ledgerSvc := setupRouter(t, primary, fallback)

	resp := ask(r, map[string]string{"prompt": "вопрос"})

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	balance, err := ledgerSvc.Balance(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("failed request must not debit: balance %d", balance)
	}
}

func TestAskUnknownPreferredBackend(t *testing.T) {
	mock := ai.NewMockProvider(ai.BackendOpenAI).Reply("ответ")
	r, _ := setupRouter(t, mock)

	resp := ask(r, map[string]string{"prompt": "вопрос", "preferred": "gemini"})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAskFallbackToSecondBackend(t *testing.T) {
	primary := ai.NewMockProvider(ai.BackendOpenAI).Fail(errors.New("upstream 500"))
	fallback := ai.NewMockProvider(ai.BackendAnthropic).Reply("запасной ответ")
	r, _ := setupRouter(t, primary, fallback)

	resp := ask(r, map[string]string{"prompt": "вопрос"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var reply askResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &reply); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reply.Source != ai.BackendAnthropic {
		t.Fatalf("expected anthropic fallback, got %q", reply.Source)
	}
}
