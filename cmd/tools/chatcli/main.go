package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alpacachat/alpaca/backend/internal/config"
	"github.com/alpacachat/alpaca/backend/internal/model/chat"
	"github.com/alpacachat/alpaca/backend/internal/model/persona"
	"github.com/alpacachat/alpaca/backend/internal/service/ai"
	chatService "github.com/alpacachat/alpaca/backend/internal/service/chat"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	history := flag.String("history", "", "transcript file path (defaults to TRANSCRIPT_PATH)")
	quiet := flag.Bool("quiet", false, "discard service logs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *history != "" {
		cfg.Storage.TranscriptPath = *history
	}
	if *quiet {
		log.SetOutput(io.Discard)
	}

	ctx := context.Background()

	active, ok := persona.NewMemoryStore(persona.Seed()).FindByID(cfg.AI.PersonaID)
	if !ok {
		log.Fatalf("persona %q not found", cfg.AI.PersonaID)
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create chat model: %v", err)
	}

	aiService, err := ai.NewService(ctx, chatModel, ai.Options{
		Persona:        active,
		TokenCounter:   ai.HeuristicCounter{},
		TokenWarnLimit: cfg.AI.TokenWarnLimit,
	})
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}

	session := chatService.NewSession(chatService.NewFileStore(cfg.Storage.TranscriptPath), aiService)
	shell := &shell{session: session, out: os.Stdout}

	fmt.Fprintf(shell.out, "%s\n%s\n", active.Title, active.OpeningLine)
	fmt.Fprintln(shell.out, "Commands: /save /load /clear /history /quit")

	if state, err := session.Start(); err != nil {
		fmt.Fprintf(shell.out, "error: %v\n", err)
	} else if state == chatService.StateEmpty {
		fmt.Fprintln(shell.out, "warning: No saved chat history found.")
	}
	shell.render(session.Turns())

	shell.run(ctx, os.Stdin)
}

type shell struct {
	session *chatService.Session
	out     io.Writer
}

func (s *shell) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return
		}
		if !s.handle(ctx, scanner.Text()) {
			return
		}
	}
}

// handle runs one line of input and reports whether the shell should keep going.
func (s *shell) handle(ctx context.Context, line string) bool {
	switch strings.TrimSpace(line) {
	case "":
		return true
	case "/quit", "/exit":
		return false
	case "/save":
		if err := s.session.Save(); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		} else {
			fmt.Fprintln(s.out, "Chat history saved successfully!")
		}
	case "/load":
		state, err := s.session.Load()
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return true
		}
		if state == chatService.StateEmpty {
			fmt.Fprintln(s.out, "warning: No saved chat history found.")
		}
		s.render(s.session.Turns())
	case "/clear":
		s.session.Clear()
		fmt.Fprintln(s.out, "Chat history cleared.")
	case "/history":
		s.render(s.session.Turns())
	default:
		fmt.Fprintln(s.out, "Processing your request...")
		turn, err := s.session.Submit(ctx, line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return true
		}
		s.render([]chat.Turn{turn})
	}
	return true
}

func (s *shell) render(turns []chat.Turn) {
	for _, turn := range turns {
		fmt.Fprintf(s.out, "[%s] %s: %s\n", turn.Timestamp, turn.Role, turn.Content)
	}
}
