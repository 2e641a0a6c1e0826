// Package storage records rooms and finished games in SQLite. In-progress
// game state is never stored.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Seednode/codenames/storage/migrations"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

// Room is a persisted room.
type Room struct {
	ID        string
	Slug      string
	Lang      string
	CreatedAt time.Time
	ClosedAt  time.Time
}

// Game is a finished game. Ranking lists team numbers from first place to
// last.
type Game struct {
	ID        string
	RoomID    string
	Teams     int
	Cards     int
	StartedAt time.Time
	EndedAt   time.Time
	Ranking   []int
}

// Store persists records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateRoom inserts a room record.
func (s *Store) CreateRoom(ctx context.Context, room Room) error {
	if room.ID == "" || room.Slug == "" {
		return fmt.Errorf("room id and slug are required")
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO rooms (id, slug, lang, created_at) VALUES (?, ?, ?, ?)`,
		room.ID, room.Slug, room.Lang, toMillis(room.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert room %s: %w", room.ID, err)
	}

	return nil
}

// CloseRoom marks a room closed. Closing twice keeps the first timestamp.
func (s *Store) CloseRoom(ctx context.Context, id string, at time.Time) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rooms SET closed_at = COALESCE(closed_at, ?) WHERE id = ?`,
		toMillis(at), id,
	)
	if err != nil {
		return fmt.Errorf("close room %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close room %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// GetRoom loads a room by id.
func (s *Store) GetRoom(ctx context.Context, id string) (Room, error) {
	var (
		room     Room
		created  int64
		closedAt sql.NullInt64
	)

	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, slug, lang, created_at, closed_at FROM rooms WHERE id = ?`, id,
	).Scan(&room.ID, &room.Slug, &room.Lang, &created, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("get room %s: %w", id, err)
	}

	room.CreatedAt = fromMillis(created)
	if closedAt.Valid {
		room.ClosedAt = fromMillis(closedAt.Int64)
	}

	return room, nil
}

// RecordGame inserts a finished game.
func (s *Store) RecordGame(ctx context.Context, game Game) error {
	if game.ID == "" || game.RoomID == "" {
		return fmt.Errorf("game id and room id are required")
	}

	ranking, err := json.Marshal(game.Ranking)
	if err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (id, room_id, teams, cards, started_at, ended_at, ranking) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		game.ID, game.RoomID, game.Teams, game.Cards, toMillis(game.StartedAt), toMillis(game.EndedAt), string(ranking),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", game.ID, err)
	}

	return nil
}

// ListGames returns a room's finished games, oldest first.
func (s *Store) ListGames(ctx context.Context, roomID string) ([]Game, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, room_id, teams, cards, started_at, ended_at, ranking FROM games WHERE room_id = ? ORDER BY ended_at, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list games for %s: %w", roomID, err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var (
			game           Game
			started, ended int64
			ranking        string
		)
		if err := rows.Scan(&game.ID, &game.RoomID, &game.Teams, &game.Cards, &started, &ended, &ranking); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if err := json.Unmarshal([]byte(ranking), &game.Ranking); err != nil {
			return nil, fmt.Errorf("decode ranking of %s: %w", game.ID, err)
		}
		game.StartedAt = fromMillis(started)
		game.EndedAt = fromMillis(ended)
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games for %s: %w", roomID, err)
	}

	return games, nil
}
