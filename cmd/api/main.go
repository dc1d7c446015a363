package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
	"github.com/avelichko/pyai-teacher/backend/internal/handler"
	"github.com/avelichko/pyai-teacher/backend/internal/model/lesson"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ai"
	"github.com/avelichko/pyai-teacher/backend/internal/service/auth"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	"github.com/avelichko/pyai-teacher/backend/internal/service/payment"
	"github.com/avelichko/pyai-teacher/backend/internal/service/speech"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sqliteStore, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open store at %s: %v", cfg.Store.Path, err)
	}
	defer sqliteStore.Close()

	repo := store.WithRetry(sqliteStore, store.DefaultRetryPolicy())

	catalog := lesson.NewMemoryStore(lesson.Seed())
	ledgerService := ledger.NewService(repo, cfg.Costs)
	authService := auth.NewService(repo, cfg.Auth, cfg.Costs.SignupGrant)

	// The AI tutor is the product; refuse to start without a backend.
	if !cfg.AI.Enabled() {
		log.Fatal("no AI backend configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}
	aiService, err := ai.NewService(cfg.AI, ledgerService, cfg.Costs.Chat)
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}
	log.Println("AI service initialized successfully")

	var speechService *speech.Service
	if cfg.Speech.Enabled {
		speechService = speech.NewService(cfg.Speech, cfg.Costs, ledgerService)
		log.Println("Speech service initialized successfully")
	} else {
		log.Println("speech credentials not configured, skipping speech synthesis")
	}

	var paymentService *payment.Service
	if cfg.Payment.Enabled {
		paymentService = payment.NewService(cfg.Payment, ledgerService)
		log.Println("Payment service initialized successfully")
	} else {
		log.Println("payment credentials not configured, skipping payment notifications")
	}

	if cfg.Admin.Enabled {
		log.Println("Admin panel endpoints enabled")
	} else {
		log.Println("admin password not configured, skipping admin endpoints")
	}

	router := handler.NewRouter(handler.Deps{
		Catalog:        catalog,
		Repo:           repo,
		AuthSvc:        authService,
		LedgerSvc:      ledgerService,
		AISvc:          aiService,
		SpeechSvc:      speechService,
		PaymentSvc:     paymentService,
		AdminPassword:  cfg.Admin.Password,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PyAI Teacher backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
