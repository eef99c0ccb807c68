package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Move log operations

func (s *Storage) AppendMove(ctx context.Context, record *model.MoveRecord) error {
	if err := storage.ValidateMoveRecord(record); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := moveLogKey(record.GameID)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.cfg.MoveLogTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.MoveLogTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListMoves(ctx context.Context, gameID model.GameID) ([]*model.MoveRecord, error) {
	entries, err := s.client.LRange(ctx, moveLogKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.MoveRecord, 0, len(entries))
	for i, entry := range entries {
		var record model.MoveRecord
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			return nil, fmt.Errorf("decode move %d of game %s: %w", i, gameID, err)
		}
		records = append(records, &record)
	}
	return records, nil
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	key := dictionaryKey()

	// Check if dictionary exists
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}

	return s.client.SMembers(ctx, key).Result()
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	key := dictionaryKey()

	// Delete existing dictionary and add new words atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)

	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
	}

	_, err := pipe.Exec(ctx)
	return err
}
