package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
)

func newTestStore(t *testing.T, max int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	store, err := NewStore(path, max, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store, path
}

func TestAddAndLoad(t *testing.T) {
	store, path := newTestStore(t, 0)

	added, err := store.Add(models.DownloadRecord{
		URL:      "https://www.instagram.com/reel/ABC123",
		Title:    "a reel",
		Uploader: "someone",
		Duration: 12.5,
	})
	if err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}
	if added.ID == "" {
		t.Error("expected generated id")
	}
	if added.DownloadedAt.IsZero() {
		t.Error("expected downloadedAt to be set")
	}

	// Simulated restart.
	reloaded, err := NewStore(path, 0, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("Failed to recreate store: %v", err)
	}
	reloaded.Load()

	records := reloaded.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.URL != added.URL || got.Title != added.Title || got.Uploader != added.Uploader {
		t.Errorf("record mismatch after reload: %+v", got)
	}
	if got.ID != added.ID {
		t.Errorf("expected id %s, got %s", added.ID, got.ID)
	}
}

func TestNewestFirstOrder(t *testing.T) {
	store, _ := newTestStore(t, 0)

	for i := 0; i < 3; i++ {
		if _, err := store.Add(models.DownloadRecord{URL: fmt.Sprintf("url-%d", i)}); err != nil {
			t.Fatalf("Failed to add record %d: %v", i, err)
		}
	}

	records := store.Records()
	if records[0].URL != "url-2" || records[2].URL != "url-0" {
		t.Errorf("expected newest first, got %s .. %s", records[0].URL, records[2].URL)
	}
}

func TestCapEvictsOldest(t *testing.T) {
	store, _ := newTestStore(t, 200)

	for i := 0; i < 201; i++ {
		if _, err := store.Add(models.DownloadRecord{URL: fmt.Sprintf("url-%d", i)}); err != nil {
			t.Fatalf("Failed to add record %d: %v", i, err)
		}
	}

	records := store.Records()
	if len(records) != 200 {
		t.Fatalf("expected exactly 200 records, got %d", len(records))
	}
	if records[0].URL != "url-200" {
		t.Errorf("expected newest record first, got %s", records[0].URL)
	}
	// url-0 was the oldest and must have been evicted.
	for _, r := range records {
		if r.URL == "url-0" {
			t.Error("expected oldest record to be evicted")
		}
	}
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t, 0)

	first, _ := store.Add(models.DownloadRecord{URL: "keep"})
	second, _ := store.Add(models.DownloadRecord{URL: "drop"})

	if err := store.Remove(second.ID); err != nil {
		t.Fatalf("Failed to remove record: %v", err)
	}
	records := store.Records()
	if len(records) != 1 || records[0].ID != first.ID {
		t.Errorf("unexpected records after remove: %+v", records)
	}

	// Absent id is a no-op, not an error.
	if err := store.Remove("no-such-id"); err != nil {
		t.Errorf("expected nil for missing id, got %v", err)
	}
}

func TestClearRemovesPayload(t *testing.T) {
	store, path := newTestStore(t, 0)

	if _, err := store.Add(models.DownloadRecord{URL: "x"}); err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Failed to clear history: %v", err)
	}
	if store.Len() != 0 {
		t.Error("expected empty list after clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected persisted payload to be removed")
	}
}

func TestLoadCorruptedYieldsEmpty(t *testing.T) {
	store, path := newTestStore(t, 0)

	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}
	store.Load()
	if store.Len() != 0 {
		t.Error("corrupted history must yield an empty list")
	}
}

func TestRecordIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newRecordID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
