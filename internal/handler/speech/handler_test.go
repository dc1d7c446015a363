package speech

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
	speechsvc "github.com/avelichko/pyai-teacher/backend/internal/service/speech"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
)

type stubVerifier struct {
	userID string
}

func (v stubVerifier) VerifyToken(string) (string, error) {
	return v.userID, nil
}

func setupRouter(t *testing.T, upstreamURL string) (*chi.Mux, *ledger.Service) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "speech.db"))
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
	svc := speechsvc.NewService(config.SpeechConfig{
		APIKey:  "test-key",
		BaseURL: upstreamURL,
		VoiceID: "voice-1",
		ModelID: "eleven_multilingual_v2",
		Enabled: true,
	}, costs, ledgerSvc)
	handler := New(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(stubVerifier{userID: "u-1"}))
	handler.RegisterRoutes(r)
	return r, ledgerSvc
}

func synthesize(r http.Handler, body map[string]any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/speech/synthesize", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSynthesizeStreamsAudio(t *testing.T) {
	audio := []byte("mp3-bytes")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer upstream.Close()

	r, ledgerSvc := setupRouter(t, upstream.URL)

	resp := synthesize(r, map[string]any{"text": "Привет, мир"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("expected audio/mpeg, got %q", ct)
	}
	if !bytes.Equal(resp.Body.Bytes(), audio) {
		t.Fatal("expected upstream audio bytes to pass through")
	}

	balance, err := ledgerSvc.Balance(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if balance != 55 {
		t.Fatalf("expected balance 55 after standard debit, got %d", balance)
	}
}

func TestSynthesizeHighlightCostsMore(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3-bytes"))
	}))
	defer upstream.Close()

	r, ledgerSvc := setupRouter(t, upstream.URL)

	resp := synthesize(r, map[string]any{"text": "Привет", "highlight": true})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	balance, err := ledgerSvc.Balance(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if balance != 51 {
		t.Fatalf("expected balance 51 after highlight debit, got %d", balance)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for empty text")
	}))
	defer upstream.Close()

	r, _ := setupRouter(t, upstream.URL)

	resp := synthesize(r, map[string]any{"text": "  "})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSynthesizeInsufficientTokens(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called without tokens")
	}))
	defer upstream.Close()

	r, ledgerSvc := setupRouter(t, upstream.URL)
	if err := ledgerSvc.SetBalance(context.Background(), "u-1", 10); err != nil {
		t.Fatalf("failed to set balance: %v", err)
	}

	resp := synthesize(r, map[string]any{"text": "Привет"})

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.Code)
	}
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	r, ledgerSvc := setupRouter(t, upstream.URL)

	resp := synthesize(r, map[string]any{"text": "Привет"})

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	balance, err := ledgerSvc.Balance(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("failed synthesis must not debit: balance %d", balance)
	}
}
