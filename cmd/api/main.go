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

	"github.com/alpacachat/alpaca/backend/internal/config"
	"github.com/alpacachat/alpaca/backend/internal/handler"
	"github.com/alpacachat/alpaca/backend/internal/model/persona"
	"github.com/alpacachat/alpaca/backend/internal/service/ai"
	chatService "github.com/alpacachat/alpaca/backend/internal/service/chat"
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

	personaStore := persona.NewMemoryStore(persona.Seed())
	activePersona, ok := personaStore.FindByID(cfg.AI.PersonaID)
	if !ok {
		log.Fatalf("persona %q not found", cfg.AI.PersonaID)
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create %s chat model: %v", cfg.AI.Provider, err)
	}

	var counter ai.TokenCounter
	if cfg.AI.TokenWarnLimit > 0 {
		counter = ai.NewTokenCounter()
	}

	aiService, err := ai.NewService(ctx, chatModel, ai.Options{
		Persona:        activePersona,
		TokenCounter:   counter,
		TokenWarnLimit: cfg.AI.TokenWarnLimit,
	})
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}
	log.Printf("AI service initialized provider=%s persona=%s", cfg.AI.Provider, activePersona.ID)

	store := chatService.NewFileStore(cfg.Storage.TranscriptPath)
	session := chatService.NewSession(store, aiService)
	if state, err := session.Start(); err != nil {
		log.Printf("warning: failed to load chat history from %s: %v", store.Path(), err)
	} else if state == chatService.StateEmpty {
		log.Printf("no saved chat history found at %s", store.Path())
	}

	router := handler.NewRouter(personaStore, activePersona.ID, session)

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

	log.Printf("Alpaca chat backend listening on %s", addr)
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
