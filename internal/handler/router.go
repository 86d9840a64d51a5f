package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alpacachat/alpaca/backend/internal/handler/chat"
	"github.com/alpacachat/alpaca/backend/internal/handler/persona"
	"github.com/alpacachat/alpaca/backend/internal/handler/ws"
	middlewarePkg "github.com/alpacachat/alpaca/backend/internal/middleware"
	personaModel "github.com/alpacachat/alpaca/backend/internal/model/persona"
	chatService "github.com/alpacachat/alpaca/backend/internal/service/chat"
	"github.com/alpacachat/alpaca/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, activePersonaID string, session *chatService.Session) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(personas, activePersonaID)
	chatHandler := chat.New(session)
	wsHandler := ws.New(session)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "sessionId": session.ID()})
	})

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
