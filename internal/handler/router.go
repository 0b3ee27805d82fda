package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/ai-joe/backend/internal/handler/chat"
	"github.com/zhouzirui/ai-joe/backend/internal/handler/speech"
	"github.com/zhouzirui/ai-joe/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/ai-joe/backend/internal/middleware"
	"github.com/zhouzirui/ai-joe/backend/pkg/utils"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Chat        chat.Sender
	Speech      speech.SpeechService
	Provider    string
	AllowOrigin string
	Logger      *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowOrigin))
	r.Use(middlewarePkg.RequestLogger(deps.Logger))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "Not found")
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			speechReady := deps.Speech != nil &&
				(deps.Speech.TranscriptionEnabled() || deps.Speech.SynthesisEnabled())
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":   "healthy",
				"provider": deps.Provider,
				"speech":   speechReady,
			})
		})

		chat.New(deps.Chat).RegisterRoutes(api)
		ws.New(deps.Chat).RegisterRoutes(api)

		if deps.Speech != nil {
			speech.New(deps.Speech).RegisterRoutes(api)
		}
	})

	return r
}
