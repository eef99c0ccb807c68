package memory

import (
	"context"
	"sync"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	moves           map[model.GameID][]*model.MoveRecord
	dictionaryWords []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		moves: make(map[model.GameID][]*model.MoveRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Move log operations

func (s *Storage) AppendMove(ctx context.Context, record *model.MoveRecord) error {
	if err := storage.ValidateMoveRecord(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves[record.GameID] = append(s.moves[record.GameID], copyRecord(record))
	return nil
}

func (s *Storage) ListMoves(ctx context.Context, gameID model.GameID) ([]*model.MoveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.moves[gameID]
	result := make([]*model.MoveRecord, 0, len(records))
	for _, r := range records {
		result = append(result, copyRecord(r))
	}
	return result, nil
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dictionaryWords == nil {
		return nil, model.ErrDictionaryNotLoaded
	}
	result := make([]string, len(s.dictionaryWords))
	copy(result, s.dictionaryWords)
	return result, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = make([]string, len(words))
	copy(s.dictionaryWords, words)
	return nil
}

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

func copyRecord(r *model.MoveRecord) *model.MoveRecord {
	c := *r
	if r.Placements != nil {
		c.Placements = make([]model.Placement, len(r.Placements))
		copy(c.Placements, r.Placements)
	}
	if r.Words != nil {
		c.Words = make([]string, len(r.Words))
		copy(c.Words, r.Words)
	}
	return &c
}
