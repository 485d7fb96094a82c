package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return store
}

func TestStore_RecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Second)
	turn := assistant.Turn{
		ID:          "turn_abc",
		Source:      assistant.SourceTyped,
		UserText:    "Translate this",
		ScreenText:  "Hello World",
		FrameSeq:    7,
		Prompt:      "Screen content: Hello World\nUser instruction: Translate this",
		Answer:      "Bonjour le monde",
		Backend:     "OpenAI",
		Voice:       "os",
		StartedAt:   started,
		AnsweredAt:  started.Add(500 * time.Millisecond),
		CompletedAt: started.Add(time.Second),
	}
	if err := store.RecordTurn(ctx, turn); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}

	got, err := store.GetByID(ctx, "turn_abc")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Answer != "Bonjour le monde" || got.FrameSeq != 7 || got.Source != "typed" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RecordAssignsID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	if err := store.RecordTurn(ctx, assistant.Turn{UserText: "hi", Source: assistant.SourceVoice, StartedAt: time.Now()}); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("expected 1 record, got %d (%v)", n, err)
	}
}

func TestStore_RecentNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"first", "second", "third"} {
		store.RecordTurn(ctx, assistant.Turn{
			ID:        shared.NewID("turn_"),
			Source:    assistant.SourceTyped,
			UserText:  text,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	recent, err := store.Recent(ctx, 2, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].UserText != "third" || recent[1].UserText != "second" {
		t.Errorf("unexpected order %s, %s", recent[0].UserText, recent[1].UserText)
	}

	older, _ := store.Recent(ctx, 2, 2)
	if len(older) != 1 || older[0].UserText != "first" {
		t.Errorf("unexpected offset page %+v", older)
	}
}

func TestStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
