// Package history keeps the user's recently searched city names: most recent
// first, no case-insensitive duplicates, at most MaxEntries long.
package history

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
)

const (
	MaxEntries     = 100
	MaxSuggestions = 10
)

// ErrHistoryLoad marks a slot that could not be read or parsed. It is logged
// and the store starts empty; callers never see it.
var ErrHistoryLoad = errors.New("history load failed")

type Store struct {
	mu        sync.Mutex
	persister Persister
	entries   []string
	loaded    bool
}

func NewStore(persister Persister) *Store {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	return &Store{persister: persister}
}

// Load reads the persisted slot. Only the first call (explicit or implied by
// another method) touches the persister.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
}

func (s *Store) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.entries = []string{}

	data, err := s.persister.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return
	}
	if err != nil {
		config.GetLogger().Warnw("Resetting search history", "error", errors.Join(ErrHistoryLoad, err))
		return
	}
	entries, err := Decode(data)
	if err != nil {
		config.GetLogger().Warnw("Resetting search history", "error", errors.Join(ErrHistoryLoad, err))
		return
	}
	s.entries = sanitize(entries)
}

// sanitize drops blank and duplicate entries and enforces MaxEntries.
func sanitize(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e) == "" || indexFold(out, e) >= 0 {
			continue
		}
		out = append(out, e)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

func indexFold(entries []string, city string) int {
	for i, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(city)) {
			return i
		}
	}
	return -1
}

// Add moves city to the front, replacing any entry equal to it ignoring case,
// and rewrites the persisted slot. Blank names are ignored.
func (s *Store) Add(ctx context.Context, city string) {
	city = strings.TrimSpace(city)
	if city == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	next := make([]string, 0, len(s.entries)+1)
	next = append(next, city)
	for _, e := range s.entries {
		if !strings.EqualFold(strings.TrimSpace(e), city) {
			next = append(next, e)
		}
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	s.entries = next

	data, err := Encode(s.entries)
	if err == nil {
		err = s.persister.Write(ctx, data)
	}
	if err != nil {
		config.GetLogger().Errorw("Failed to persist search history", "city", city, "error", err)
	}
}

// Suggestions returns up to MaxSuggestions entries in stored order. A blank
// partial returns the most recent entries; otherwise entries containing
// partial, ignoring case.
func (s *Store) Suggestions(ctx context.Context, partial string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	partial = strings.ToLower(strings.TrimSpace(partial))
	out := make([]string, 0, MaxSuggestions)
	for _, e := range s.entries {
		if len(out) == MaxSuggestions {
			break
		}
		if partial == "" || strings.Contains(strings.ToLower(e), partial) {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns a copy of the full list, most recent first.
func (s *Store) Entries(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Len(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return len(s.entries)
}
