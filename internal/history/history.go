// Package history keeps per-table roll sequences and persists them as shards.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/store"
	"github.com/sup9097/table-dice-app/internal/table"
)

// ErrEmptyHistory is returned when undoing on a table with no rolls.
var ErrEmptyHistory = errors.New("history is empty")

// Store holds the in-memory history of every table.
//
// Every save writes the complete sequence as the shard for the current day and
// then removes the table's other shards, so the shard set for a table always
// holds exactly one snapshot after a successful save. Saving an empty sequence
// removes the table's shards. Reset never saves, so it leaves disk alone; use
// Purge for that.
type Store struct {
	mu    sync.RWMutex
	area  store.Area
	log   *zap.Logger
	now   func() time.Time
	rolls map[table.Name][]dice.Roll
}

// New returns an empty Store backed by area.
func New(area store.Area, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		area:  area,
		log:   log,
		now:   time.Now,
		rolls: map[table.Name][]dice.Roll{},
	}
}

// SetClock overrides the clock used to date shards.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load reads every shard in the area and extends the matching histories in
// shard order. Shards that fail to read or decode are logged and skipped.
func (s *Store) Load(ctx context.Context) error {
	refs, err := s.area.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shards: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		rolls, err := s.area.Read(ctx, ref)
		if err != nil {
			s.log.Warn("skipping unreadable shard", zap.String("shard", ref.Name), zap.Error(err))
			continue
		}
		s.rolls[ref.Table] = append(s.rolls[ref.Table], rolls...)
		s.log.Debug("loaded shard", zap.String("shard", ref.Name), zap.Int("rows", len(rolls)))
	}
	return nil
}

// Get returns a copy of the history of t.
func (s *Store) Get(t table.Name) []dice.Roll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dice.Roll(nil), s.rolls[t]...)
}

// Len returns the number of rolls recorded for t.
func (s *Store) Len(t table.Name) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rolls[t])
}

// Last returns the most recent roll of t.
func (s *Store) Last(t table.Name) (dice.Roll, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.rolls[t]
	if len(h) == 0 {
		return dice.Roll{}, false
	}
	return h[len(h)-1], true
}

// Snapshot returns copies of every non-empty history.
func (s *Store) Snapshot() map[table.Name][]dice.Roll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[table.Name][]dice.Roll, len(s.rolls))
	for t, h := range s.rolls {
		if len(h) == 0 {
			continue
		}
		out[t] = append([]dice.Roll(nil), h...)
	}
	return out
}

// Append extends the history of t and persists it.
func (s *Store) Append(ctx context.Context, t table.Name, rolls []dice.Roll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolls[t] = append(s.rolls[t], rolls...)
	return s.saveLocked(ctx, t)
}

// Replace sets the whole history of t and persists it.
func (s *Store) Replace(ctx context.Context, t table.Name, rolls []dice.Roll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolls[t] = append([]dice.Roll(nil), rolls...)
	return s.saveLocked(ctx, t)
}

// Undo removes and returns the most recent roll of t.
func (s *Store) Undo(ctx context.Context, t table.Name) (dice.Roll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.rolls[t]
	if len(h) == 0 {
		return dice.Roll{}, ErrEmptyHistory
	}
	removed := h[len(h)-1]
	s.rolls[t] = h[:len(h)-1]
	return removed, s.saveLocked(ctx, t)
}

// Reset clears the in-memory history of t. Shards stay on disk.
func (s *Store) Reset(t table.Name) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolls[t] = nil
}

// Purge removes every shard of t and returns what was removed.
func (s *Store) Purge(ctx context.Context, t table.Name) ([]store.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(ctx, t)
}

func (s *Store) purgeLocked(ctx context.Context, t table.Name) ([]store.Ref, error) {
	refs, err := s.area.List(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to list shards: %w", err)
	}
	removed := make([]store.Ref, 0, len(refs))
	for _, ref := range refs {
		if err := s.area.Remove(ctx, ref); err != nil {
			return removed, fmt.Errorf("failed to remove shard %s: %w", ref.Name, err)
		}
		removed = append(removed, ref)
		s.log.Debug("removed shard", zap.String("shard", ref.Name))
	}
	return removed, nil
}

// Shards lists the persisted shards of every table.
func (s *Store) Shards(ctx context.Context) ([]store.Ref, error) {
	return s.area.ListAll(ctx)
}

func (s *Store) saveLocked(ctx context.Context, t table.Name) error {
	h := s.rolls[t]
	if len(h) == 0 {
		_, err := s.purgeLocked(ctx, t)
		return err
	}
	day := s.now().Format(store.DayLayout)
	ref, err := s.area.Write(ctx, day, t, h)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", t, err)
	}
	refs, err := s.area.List(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to list shards of %s: %w", t, err)
	}
	for _, old := range refs {
		if old.Day == ref.Day {
			continue
		}
		if err := s.area.Remove(ctx, old); err != nil {
			return fmt.Errorf("failed to prune shard %s: %w", old.Name, err)
		}
		s.log.Debug("pruned superseded shard", zap.String("shard", old.Name))
	}
	s.log.Info("saved shard", zap.String("shard", ref.Name), zap.Int("rows", len(h)))
	return nil
}
