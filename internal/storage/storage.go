// Package storage persists per-chat preferences and search history as
// flat JSON files under a data directory. All state is held in memory
// and written through on every mutation, so reads never touch disk
// after Open.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	digestSettingsFile = "digest_settings.json"
	userLanguagesFile  = "user_languages.json"
	searchHistoryFile  = "search_history.json"

	maxStoredSearches  = 20
	searchHistoryAge   = 30 * 24 * time.Hour
	defaultHistoryView = 10
)

// PopularCollections are well-known slugs used for search suggestions.
var PopularCollections = []string{
	"cryptopunks", "bored-ape-yacht-club", "mutant-ape-yacht-club",
	"azuki", "clone-x-x-takashi-murakami", "doodles-official",
	"otherdeed-for-otherside", "moonbirds", "veefriends",
	"pudgy-penguins", "cool-cats-nft", "world-of-women-nft",
}

// DigestSettings holds a chat's daily digest preferences.
type DigestSettings struct {
	Enabled  bool   `json:"enabled"`
	Hour     int    `json:"hour"`
	Schedule string `json:"schedule,omitempty"`
}

// DigestUser pairs a chat with its digest settings.
type DigestUser struct {
	ChatID   int64
	Settings DigestSettings
}

// SearchEntry records one search a chat performed.
type SearchEntry struct {
	Query       string    `json:"query"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
}

// Suggestions groups search suggestions for a chat.
type Suggestions struct {
	Popular []string `json:"popular"`
	Recent  []string `json:"recent"`
	Similar []string `json:"similar"`
}

// Store is a write-through flat-file store for chat preferences.
type Store struct {
	mu      sync.Mutex
	dir     string
	digest  map[int64]DigestSettings
	langs   map[int64]string
	history map[int64][]SearchEntry

	defaultHour int
	now         func() time.Time
}

// Open creates the data directory if needed and loads any existing
// state. Corrupt or missing files start empty rather than failing.
func Open(dir string, defaultHour int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{
		dir:         dir,
		digest:      make(map[int64]DigestSettings),
		langs:       make(map[int64]string),
		history:     make(map[int64][]SearchEntry),
		now:         time.Now,
		defaultHour: defaultHour,
	}

	loadFile(filepath.Join(dir, digestSettingsFile), &s.digest)
	loadFile(filepath.Join(dir, userLanguagesFile), &s.langs)
	loadFile(filepath.Join(dir, searchHistoryFile), &s.history)

	return s, nil
}

// loadFile reads a JSON file keyed by stringified chat IDs into a map.
// A missing or unreadable file leaves the map empty.
func loadFile[V any](path string, out *map[int64]V) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	raw := make(map[string]V)
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}

	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		(*out)[id] = v
	}
}

// saveFile writes a map keyed by chat ID as JSON, atomically via a
// temp file and rename.
func saveFile[V any](path string, in map[int64]V) error {
	raw := make(map[string]V, len(in))
	for k, v := range in {
		raw[strconv.FormatInt(k, 10)] = v
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// DigestSettings returns the chat's digest settings, or defaults when
// the chat has none saved.
func (s *Store) DigestSettings(chatID int64) DigestSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings, ok := s.digest[chatID]; ok {
		return settings
	}
	return DigestSettings{Enabled: false, Hour: s.defaultHour}
}

// SetDigestSettings replaces the chat's digest settings and persists.
func (s *Store) SetDigestSettings(chatID int64, settings DigestSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.digest[chatID] = settings
	return saveFile(filepath.Join(s.dir, digestSettingsFile), s.digest)
}

// ToggleDigest flips the chat's digest enabled flag and returns the
// new state.
func (s *Store) ToggleDigest(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, ok := s.digest[chatID]
	if !ok {
		settings = DigestSettings{Hour: s.defaultHour}
	}
	settings.Enabled = !settings.Enabled
	s.digest[chatID] = settings

	err := saveFile(filepath.Join(s.dir, digestSettingsFile), s.digest)
	return settings.Enabled, err
}

// EnabledDigestUsers returns every chat with the digest turned on,
// ordered by chat ID for deterministic scheduling.
func (s *Store) EnabledDigestUsers() []DigestUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []DigestUser
	for id, settings := range s.digest {
		if settings.Enabled {
			users = append(users, DigestUser{ChatID: id, Settings: settings})
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ChatID < users[j].ChatID })
	return users
}

// Language returns the chat's language preference, defaulting to "en".
func (s *Store) Language(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lang, ok := s.langs[chatID]; ok {
		return lang
	}
	return "en"
}

// SetLanguage saves the chat's language preference.
func (s *Store) SetLanguage(chatID int64, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.langs[chatID] = lang
	return saveFile(filepath.Join(s.dir, userLanguagesFile), s.langs)
}

// AddSearch records a search in the chat's history. Repeats of the
// same query move to the front, and only the most recent entries are
// kept.
func (s *Store) AddSearch(chatID int64, query string, resultCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := SearchEntry{
		Query:       strings.ToLower(strings.TrimSpace(query)),
		Timestamp:   s.now(),
		ResultCount: resultCount,
	}

	var kept []SearchEntry
	for _, e := range s.history[chatID] {
		if e.Query != entry.Query {
			kept = append(kept, e)
		}
	}

	history := append([]SearchEntry{entry}, kept...)
	if len(history) > maxStoredSearches {
		history = history[:maxStoredSearches]
	}
	s.history[chatID] = history

	return saveFile(filepath.Join(s.dir, searchHistoryFile), s.history)
}

// SearchHistory returns the chat's recent queries, newest first.
// Entries older than thirty days are skipped. A limit <= 0 uses the
// default of ten.
func (s *Store) SearchHistory(chatID int64, limit int) []string {
	if limit <= 0 {
		limit = defaultHistoryView
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-searchHistoryAge)
	var queries []string
	for _, e := range s.history[chatID] {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		queries = append(queries, e.Query)
		if len(queries) == limit {
			break
		}
	}
	return queries
}

// SearchSuggestions builds popular, recent, and query-similar
// suggestions for a chat.
func (s *Store) SearchSuggestions(chatID int64, query string) Suggestions {
	suggestions := Suggestions{
		Popular: PopularCollections[:6],
		Recent:  s.SearchHistory(chatID, 5),
	}

	if query != "" {
		q := strings.ToLower(strings.TrimSpace(query))
		for _, slug := range PopularCollections {
			if strings.Contains(slug, q) {
				suggestions.Similar = append(suggestions.Similar, slug)
				if len(suggestions.Similar) == 5 {
					break
				}
			}
		}
	}

	return suggestions
}
