package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), 9)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestDigestSettings_Defaults(t *testing.T) {
	s := newTestStore(t)

	settings := s.DigestSettings(100)
	if settings.Enabled {
		t.Error("digest should default to disabled")
	}
	if settings.Hour != 9 {
		t.Errorf("expected default hour 9, got %d", settings.Hour)
	}
}

func TestDigestSettings_SetAndGet(t *testing.T) {
	s := newTestStore(t)

	want := DigestSettings{Enabled: true, Hour: 7, Schedule: "@daily"}
	if err := s.SetDigestSettings(100, want); err != nil {
		t.Fatalf("SetDigestSettings failed: %v", err)
	}

	got := s.DigestSettings(100)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestToggleDigest(t *testing.T) {
	s := newTestStore(t)

	on, err := s.ToggleDigest(100)
	if err != nil {
		t.Fatalf("ToggleDigest failed: %v", err)
	}
	if !on {
		t.Error("first toggle should enable")
	}

	off, err := s.ToggleDigest(100)
	if err != nil {
		t.Fatalf("ToggleDigest failed: %v", err)
	}
	if off {
		t.Error("second toggle should disable")
	}
}

func TestEnabledDigestUsers(t *testing.T) {
	s := newTestStore(t)

	s.SetDigestSettings(300, DigestSettings{Enabled: true, Hour: 8})
	s.SetDigestSettings(100, DigestSettings{Enabled: true, Hour: 9})
	s.SetDigestSettings(200, DigestSettings{Enabled: false, Hour: 10})

	users := s.EnabledDigestUsers()
	if len(users) != 2 {
		t.Fatalf("expected 2 enabled users, got %d", len(users))
	}
	if users[0].ChatID != 100 || users[1].ChatID != 300 {
		t.Errorf("users should be ordered by chat ID: %+v", users)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir, 9)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s1.SetDigestSettings(100, DigestSettings{Enabled: true, Hour: 7})
	s1.SetLanguage(100, "de")
	s1.AddSearch(100, "Azuki", 1)

	s2, err := Open(dir, 9)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	if settings := s2.DigestSettings(100); !settings.Enabled || settings.Hour != 7 {
		t.Errorf("digest settings not persisted: %+v", settings)
	}
	if lang := s2.Language(100); lang != "de" {
		t.Errorf("language not persisted: %s", lang)
	}
	if history := s2.SearchHistory(100, 10); len(history) != 1 || history[0] != "azuki" {
		t.Errorf("search history not persisted: %v", history)
	}
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, digestSettingsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(dir, 9)
	if err != nil {
		t.Fatalf("Open should tolerate corrupt files: %v", err)
	}
	if settings := s.DigestSettings(100); settings.Enabled {
		t.Error("corrupt file should yield defaults")
	}
}

func TestLanguage_Default(t *testing.T) {
	s := newTestStore(t)

	if lang := s.Language(42); lang != "en" {
		t.Errorf("expected default language 'en', got %s", lang)
	}
}

func TestAddSearch_DedupAndOrder(t *testing.T) {
	s := newTestStore(t)

	s.AddSearch(100, "punks", 3)
	s.AddSearch(100, "azuki", 1)
	s.AddSearch(100, "  PUNKS ", 3)

	history := s.SearchHistory(100, 10)
	if len(history) != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d: %v", len(history), history)
	}
	if history[0] != "punks" || history[1] != "azuki" {
		t.Errorf("expected newest-first order [punks azuki], got %v", history)
	}
}

func TestAddSearch_CapsStoredEntries(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < maxStoredSearches+5; i++ {
		s.AddSearch(100, "query-"+string(rune('a'+i)), 0)
	}

	if n := len(s.history[100]); n != maxStoredSearches {
		t.Errorf("expected %d stored entries, got %d", maxStoredSearches, n)
	}
}

func TestSearchHistory_SkipsOldEntries(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.AddSearch(100, "old-query", 0)

	s.now = func() time.Time { return base.Add(40 * 24 * time.Hour) }
	s.AddSearch(100, "fresh-query", 0)

	history := s.SearchHistory(100, 10)
	if len(history) != 1 || history[0] != "fresh-query" {
		t.Errorf("expected only the fresh query, got %v", history)
	}
}

func TestSearchHistory_Limit(t *testing.T) {
	s := newTestStore(t)

	s.AddSearch(100, "one", 0)
	s.AddSearch(100, "two", 0)
	s.AddSearch(100, "three", 0)

	if history := s.SearchHistory(100, 2); len(history) != 2 {
		t.Errorf("expected 2 entries, got %v", history)
	}
}

func TestSearchSuggestions(t *testing.T) {
	s := newTestStore(t)
	s.AddSearch(100, "doodles", 1)

	suggestions := s.SearchSuggestions(100, "ape")

	if len(suggestions.Popular) != 6 {
		t.Errorf("expected 6 popular suggestions, got %d", len(suggestions.Popular))
	}
	if len(suggestions.Recent) != 1 || suggestions.Recent[0] != "doodles" {
		t.Errorf("unexpected recent suggestions: %v", suggestions.Recent)
	}
	for _, slug := range suggestions.Similar {
		if !containsSubstr(slug, "ape") {
			t.Errorf("similar suggestion %q does not match query", slug)
		}
	}
	if len(suggestions.Similar) == 0 {
		t.Error("expected similar suggestions for 'ape'")
	}
}

func containsSubstr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
