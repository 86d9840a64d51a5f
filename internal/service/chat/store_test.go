package chat_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
	chatservice "github.com/alpacachat/alpaca/backend/internal/service/chat"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := chatservice.NewFileStore(filepath.Join(t.TempDir(), "chat_history.json"))
	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "hi", Timestamp: "2024-01-01 00:00:00"},
		{Role: chat.RoleAssistant, Content: "<b>yo</b> & \"quotes\"\nnew line ✨", Timestamp: "2024-01-01 00:00:03"},
		{Role: chat.RoleUser, Content: "", Timestamp: "2024-01-01 00:01:00"},
	}

	if err := store.Save(turns); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if snapshot.State != chatservice.StateFound {
		t.Fatalf("expected StateFound, got %v", snapshot.State)
	}
	if len(snapshot.Turns) != len(turns) {
		t.Fatalf("expected %d turns, got %d", len(turns), len(snapshot.Turns))
	}
	for i := range turns {
		if snapshot.Turns[i] != turns[i] {
			t.Fatalf("turn %d mismatch: got %+v want %+v", i, snapshot.Turns[i], turns[i])
		}
	}
}

func TestFileStoreSingleTurnScenario(t *testing.T) {
	store := chatservice.NewFileStore(filepath.Join(t.TempDir(), "chat_history.json"))
	turn := chat.Turn{Role: chat.RoleUser, Content: "hi", Timestamp: "2024-01-01 00:00:00"}

	if err := store.Save([]chat.Turn{turn}); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(snapshot.Turns) != 1 || snapshot.Turns[0] != turn {
		t.Fatalf("unexpected turns: %+v", snapshot.Turns)
	}
}

func TestFileStoreEmptyTranscriptWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	store := chatservice.NewFileStore(path)

	if err := store.Save(nil); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", data)
	}

	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if snapshot.State != chatservice.StateFound || len(snapshot.Turns) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store := chatservice.NewFileStore(filepath.Join(t.TempDir(), "chat_history.json"))

	first := []chat.Turn{
		{Role: chat.RoleUser, Content: "a", Timestamp: "2024-01-01 00:00:00"},
		{Role: chat.RoleAssistant, Content: "b", Timestamp: "2024-01-01 00:00:01"},
	}
	if err := store.Save(first); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if err := store.Save(first[:1]); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(snapshot.Turns) != 1 {
		t.Fatalf("expected file to be replaced, got %d turns", len(snapshot.Turns))
	}
}

func TestFileStoreLoadMissingIsEmpty(t *testing.T) {
	store := chatservice.NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if snapshot.State != chatservice.StateEmpty || len(snapshot.Turns) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	cases := map[string]string{
		"truncated":    `[{"role": "user", "content": "hi"`,
		"object":       `{"role": "user"}`,
		"null":         `null`,
		"unknown role": `[{"role": "tool", "content": "x", "timestamp": "2024-01-01 00:00:00"}]`,
		"empty":        ``,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chat_history.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write file: %v", err)
			}

			_, err := chatservice.NewFileStore(path).Load()
			if !chatservice.IsStorageKind(err, chatservice.KindParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
		})
	}
}

func TestFileStoreLoadDirectoryIsReadError(t *testing.T) {
	_, err := chatservice.NewFileStore(t.TempDir()).Load()
	if !chatservice.IsStorageKind(err, chatservice.KindRead) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestFileStoreSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	store := chatservice.NewFileStore(filepath.Join(blocker, "chat_history.json"))
	err := store.Save([]chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
	if !chatservice.IsStorageKind(err, chatservice.KindWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
}
