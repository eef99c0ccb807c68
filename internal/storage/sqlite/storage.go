package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (creating if missing) the database at path and applies migrations
func New(path string, logger *slog.Logger) (*Storage, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	s := &Storage{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite-storage")),
	}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// migrate applies each embedded migration once, in lexical order,
// recording applied names in _migrations
func (s *Storage) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var done int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		s.logger.Info("applied migration", slog.String("migration", name))
	}
	return nil
}

// Move log operations

func (s *Storage) AppendMove(ctx context.Context, record *model.MoveRecord) error {
	if err := storage.ValidateMoveRecord(record); err != nil {
		return err
	}

	placements, err := json.Marshal(record.Placements)
	if err != nil {
		return err
	}
	words, err := json.Marshal(record.Words)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO moves
            (game_id, player_id, turn, kind, placements, words, score, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.GameID), int(record.PlayerID), record.Turn, string(record.Kind),
		string(placements), string(words), record.Score,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Storage) ListMoves(ctx context.Context, gameID model.GameID) ([]*model.MoveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_id, turn, kind, placements, words, score, created_at
        FROM moves
        WHERE game_id=?
        ORDER BY id ASC`, string(gameID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.MoveRecord, 0)
	for rows.Next() {
		var (
			r          = model.MoveRecord{GameID: gameID}
			playerID   int
			kind       string
			placements string
			words      string
			createdAt  string
		)
		if err := rows.Scan(&playerID, &r.Turn, &kind, &placements, &words, &r.Score, &createdAt); err != nil {
			return nil, err
		}
		r.PlayerID = model.SeatID(playerID)
		r.Kind = model.ActionKind(kind)
		if err := json.Unmarshal([]byte(placements), &r.Placements); err != nil {
			return nil, fmt.Errorf("decode placements: %w", err)
		}
		if err := json.Unmarshal([]byte(words), &r.Words); err != nil {
			return nil, fmt.Errorf("decode words: %w", err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("decode timestamp: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	var loadedAt string
	err := s.db.QueryRowContext(ctx, `SELECT loaded_at FROM dictionary_meta WHERE id=1`).Scan(&loadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrDictionaryNotLoaded
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT word FROM dictionary_words ORDER BY word`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]string, 0)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dictionary_words`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO dictionary_words(word) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, w := range words {
		if _, err := stmt.ExecContext(ctx, w); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO dictionary_meta(id, loaded_at) VALUES (1, ?)`,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}
