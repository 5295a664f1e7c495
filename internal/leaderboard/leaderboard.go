// Package leaderboard keeps the top scores in the local store.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ayusman/fingerquiz/internal/cache"
	"github.com/ayusman/fingerquiz/internal/store"
)

const (
	// Key is the storage key of the serialized leaderboard.
	Key = "quizLeaderboard"
	// MaxEntries is how many scores are kept.
	MaxEntries = 50
)

// ErrCorrupt is returned when the stored leaderboard cannot be decoded.
var ErrCorrupt = errors.New("leaderboard data is corrupt")

// KV is the local key/value store the leaderboard lives in.
// Get returns store.ErrNotFound for missing keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Entry is one saved score.
type Entry struct {
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Board reads and writes the leaderboard.
type Board struct {
	mu    sync.Mutex
	kv    KV
	cache cache.Cache
	now   func() time.Time
}

// New creates a Board on kv. The cache may be nil.
func New(kv KV, c cache.Cache) *Board {
	return &Board{kv: kv, cache: c, now: time.Now}
}

// List returns all entries, best first.
func (b *Board) List(ctx context.Context) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Append records a score, keeping the list sorted and capped.
// A corrupt list is replaced.
func (b *Board) Append(ctx context.Context, name string, score int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}

	next := make([]Entry, 0, len(entries)+1)
	next = append(next, entries...)
	next = append(next, Entry{Name: name, Score: score, Timestamp: b.now().UTC()})

	// stable: among equal scores the earlier entry stays ahead
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Score > next[j].Score
	})
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	b.invalidate()
	if err := b.kv.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to save leaderboard: %w", err)
	}
	if b.cache != nil {
		b.cache.Add(Key, next)
	}
	return nil
}

// Clear removes every entry.
func (b *Board) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.invalidate()
	if err := b.kv.Delete(ctx, Key); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	return nil
}

func (b *Board) invalidate() {
	if b.cache != nil {
		b.cache.Delete(Key)
	}
}

// load reads the list through the cache. Callers hold b.mu.
func (b *Board) load(ctx context.Context) ([]Entry, error) {
	if b.cache != nil {
		if v, ok := b.cache.Get(Key); ok {
			return v.([]Entry), nil
		}
	}

	data, err := b.kv.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if b.cache != nil {
		b.cache.Add(Key, entries)
	}
	return entries, nil
}
