package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/html-hub/learninghub/internal/seed"
	"github.com/html-hub/learninghub/internal/topic"
)

func writeSeed(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
}

func TestLoad_ProvisionsAndSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "intro.json", `{
		"id": "html-intro",
		"title": "HTML Introduction",
		"questions": [
			{"question": "What does HTML stand for?", "options": ["A", "B"], "correctAnswer": 0}
		]
	}`)
	writeSeed(t, dir, "notes.txt", "not a topic")

	store := topic.NewInMemoryStore()
	ctx := context.Background()
	if err := seed.Load(ctx, dir, store, zap.NewNop()); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := store.GetTopic(ctx, "html-intro")
	if err != nil {
		t.Fatalf("seeded topic missing: %v", err)
	}
	if got.Title != "HTML Introduction" || len(got.Questions) != 1 {
		t.Fatalf("seeded topic = %+v", got)
	}

	// Re-applying must not clobber later edits.
	got.Title = "HTML Introduction (edited)"
	if _, err := store.PutTopic(ctx, got); err != nil {
		t.Fatalf("edit topic: %v", err)
	}
	if err := seed.Load(ctx, dir, store, zap.NewNop()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	again, _ := store.GetTopic(ctx, "html-intro")
	if again.Title != "HTML Introduction (edited)" {
		t.Fatalf("seed pass overwrote an edited topic: %q", again.Title)
	}
}

func TestLoad_RejectsSeedWithoutID(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "bad.json", `{"title": "No ID"}`)
	err := seed.Load(context.Background(), dir, topic.NewInMemoryStore(), zap.NewNop())
	if err == nil {
		t.Fatal("expected error for seed topic without id")
	}
}
