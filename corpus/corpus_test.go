// ABOUTME: Tests for the corpus store
// ABOUTME: Directory loading, bad-file skipping and snapshot lookups

package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"melodysearch/song"
)

func writeTestSong(t *testing.T, dir, name string, pitches ...int8) {
	t.Helper()
	notes := make([]song.Note, len(pitches))
	for i, p := range pitches {
		notes[i] = song.Note{Onset: uint32(i) * 480, Pitch: p, Duration: 240}
	}
	if err := WriteSongFile(filepath.Join(dir, name+".msong"), name, notes, 480, nil); err != nil {
		t.Fatalf("Failed to write test song: %v", err)
	}
}

// TestStoreLoad verifies directory loading, ID ordering and lookups.
func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestSong(t, dir, "beta", 60, 62, 64)
	writeTestSong(t, dir, "alpha", 50, 55)

	// non-song files are ignored, broken songs are skipped
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.msong"), []byte("junk"), 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	store := NewStore(dir)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("Expected 2 songs, got %d", store.Len())
	}
	songs := store.Songs()
	if songs[0].ID != "alpha" || songs[1].ID != "beta" {
		t.Errorf("Expected ID order alpha, beta; got %s, %s", songs[0].ID, songs[1].ID)
	}

	if s := store.Get("beta"); s == nil || s.NumNotes != 3 {
		t.Errorf("Get(beta) = %+v, want a 3-note song", s)
	}
	if s := store.Get("gamma"); s != nil {
		t.Errorf("Get(gamma) = %+v, want nil", s)
	}
}

// TestStoreLoadMissingDir verifies the error for a missing directory.
func TestStoreLoadMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	if err := store.Load(); err == nil {
		t.Error("Expected error for missing directory")
	}
}

// TestStoreReloadReplacesSnapshot verifies that Load swaps the snapshot.
func TestStoreReloadReplacesSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeTestSong(t, dir, "one", 60)

	store := NewStore(dir)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := store.Songs()

	writeTestSong(t, dir, "two", 62)
	if err := store.Load(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if store.Len() != 2 {
		t.Errorf("Expected 2 songs after reload, got %d", store.Len())
	}
	if len(before) != 1 {
		t.Errorf("Old snapshot changed: %d songs", len(before))
	}
}
