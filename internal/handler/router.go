package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	adminHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/admin"
	authHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/auth"
	chatHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/chat"
	lessonHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/lesson"
	paymentHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/payment"
	progressHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/progress"
	speechHandler "github.com/avelichko/pyai-teacher/backend/internal/handler/speech"
	"github.com/avelichko/pyai-teacher/backend/internal/middleware"
	lessonModel "github.com/avelichko/pyai-teacher/backend/internal/model/lesson"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ai"
	authService "github.com/avelichko/pyai-teacher/backend/internal/service/auth"
	"github.com/avelichko/pyai-teacher/backend/internal/service/ledger"
	paymentService "github.com/avelichko/pyai-teacher/backend/internal/service/payment"
	speechService "github.com/avelichko/pyai-teacher/backend/internal/service/speech"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
	"github.com/avelichko/pyai-teacher/backend/pkg/utils"
)

// Deps carries the services the router wires to HTTP routes.
// Speech and payment are optional: their routes answer 501 when the
// matching credentials are not configured. Admin routes are registered
// only when an admin password is set.
type Deps struct {
	Catalog        lessonModel.Store
	Repo           store.Repository
	AuthSvc        *authService.Service
	LedgerSvc      *ledger.Service
	AISvc          *ai.Service
	SpeechSvc      *speechService.Service
	PaymentSvc     *paymentService.Service
	AdminPassword  string
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	authH := authHandler.New(deps.AuthSvc, deps.LedgerSvc, deps.Repo)
	lessonH := lessonHandler.New(deps.Catalog)
	chatH := chatHandler.New(deps.AISvc, deps.LedgerSvc)
	progressH := progressHandler.New(deps.LedgerSvc, deps.Catalog)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth(deps.Repo))

		authH.RegisterRoutes(api)
		lessonH.RegisterRoutes(api)

		if deps.PaymentSvc != nil {
			paymentHandler.New(deps.PaymentSvc).RegisterRoutes(api)
		}

		// Admin key is its own credential, separate from user sessions.
		if deps.AdminPassword != "" {
			api.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdmin(deps.AdminPassword))
				adminHandler.New(deps.Repo, deps.LedgerSvc).RegisterRoutes(admin)
			})
		}

		// Everything below requires a session token.
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(deps.AuthSvc))

			authH.RegisterProtectedRoutes(protected)
			chatH.RegisterRoutes(protected)
			progressH.RegisterRoutes(protected)

			if deps.SpeechSvc != nil {
				speechHandler.New(deps.SpeechSvc).RegisterRoutes(protected)
			} else {
				protected.Post("/speech/synthesize", func(w http.ResponseWriter, _ *http.Request) {
					utils.RespondError(w, http.StatusNotImplemented, "speech synthesis not available")
				})
			}
		})
	})

	return r
}

func handleHealth(repo store.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
