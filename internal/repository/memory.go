package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/charttactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
)

type memoryEntry struct {
	game      *entity.Game
	expiresAt time.Time
}

type memoryGame struct {
	mu    sync.RWMutex
	games map[string]memoryEntry

	ttl time.Duration
	now func() time.Time
}

// NewMemoryGameRepository - process-local storage. Like the redis repository, a game expires
// ttl after its last update; zero keeps games until they are deleted.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return newMemoryGameRepository(ttl, time.Now)
}

func newMemoryGameRepository(ttl time.Duration, now func() time.Time) *memoryGame {
	return &memoryGame{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   now,
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	that.evictExpired(now)

	entry := memoryEntry{game: game.Clone()}
	if that.ttl > 0 {
		entry.expiresAt = now.Add(that.ttl)
	}

	that.games[game.ID] = entry

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok || entry.expired(that.now()) {
		return nil, apperror.ErrGameNotFound
	}

	return entry.game.Clone(), nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[id]
	if !ok || entry.expired(that.now()) {
		delete(that.games, id)
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}

// evictExpired - drops expired games; the caller holds the write lock.
func (that *memoryGame) evictExpired(now time.Time) {
	if that.ttl <= 0 {
		return
	}

	for id, entry := range that.games {
		if entry.expired(now) {
			delete(that.games, id)
		}
	}
}

func (that memoryEntry) expired(now time.Time) bool {
	return !that.expiresAt.IsZero() && !now.Before(that.expiresAt)
}
