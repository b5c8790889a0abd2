package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pokedex_service/internal/models"
	"pokedex_service/internal/storage"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is the SQLite implementation used for local runs and tests.
type Storage struct {
	db *sql.DB
}

// New opens the database at dbPath and applies migrations.
// Use ":memory:" for an in-memory database.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("%s: failed to create db path: %w", op, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: failed to set pragma: %w", op, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, "migrations")
}

func (s *Storage) SaveUser(ctx context.Context, email string, passHash []byte) (string, error) {
	const op = "storage.sqlite.SaveUser"

	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, query, id, email, passHash, time.Now().UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return "", storage.ErrUserExists
		}

		return "", fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.sqlite.User"

	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`

	var (
		u         models.User
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.PassHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u.CreatedAt = time.UnixMilli(createdAt).UTC()

	return u, nil
}

func (s *Storage) Species(ctx context.Context, name string) (models.Species, error) {
	const op = "storage.sqlite.Species"

	var sp models.Species

	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM species WHERE name = ?`, name).
		Scan(&sp.ID, &sp.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Species{}, storage.ErrSpeciesNotFound
		}

		return models.Species{}, fmt.Errorf("%s: %w", op, err)
	}

	return sp, nil
}

func (s *Storage) SaveSpecies(ctx context.Context, name string) (models.Species, error) {
	const op = "storage.sqlite.SaveSpecies"

	sp := models.Species{ID: uuid.NewString(), Name: name}

	_, err := s.db.ExecContext(ctx, `INSERT INTO species (id, name) VALUES (?, ?)`, sp.ID, sp.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Species{}, storage.ErrSpeciesExists
		}

		return models.Species{}, fmt.Errorf("%s: %w", op, err)
	}

	return sp, nil
}

func (s *Storage) SaveCatch(ctx context.Context, userID, speciesID string) (models.CaughtRecord, error) {
	const op = "storage.sqlite.SaveCatch"

	query := `
		INSERT INTO caught_pokemon (id, user_id, species_id, caught_at)
		VALUES (?, ?, ?, ?)
	`

	c := models.CaughtRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		SpeciesID: speciesID,
		CaughtAt:  time.UnixMilli(time.Now().UnixMilli()).UTC(),
	}

	_, err := s.db.ExecContext(ctx, query, c.ID, c.UserID, c.SpeciesID, c.CaughtAt.UnixMilli())
	if err != nil {
		return models.CaughtRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// DeleteCatch removes the record only when it belongs to userID.
func (s *Storage) DeleteCatch(ctx context.Context, id, userID string) error {
	const op = "storage.sqlite.DeleteCatch"

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM caught_pokemon WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get rows affected: %w", op, err)
	}

	if rows == 0 {
		return storage.ErrCatchNotFound
	}

	return nil
}

func (s *Storage) CaughtByUser(ctx context.Context, userID string) ([]models.CaughtPokemon, error) {
	const op = "storage.sqlite.CaughtByUser"

	query := `
		SELECT c.id, c.user_id, c.species_id, c.caught_at, s.id, s.name
		FROM caught_pokemon c
		JOIN species s ON s.id = c.species_id
		WHERE c.user_id = ?
		ORDER BY c.caught_at, c.rowid
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	caught := make([]models.CaughtPokemon, 0)

	for rows.Next() {
		var (
			p        models.CaughtPokemon
			caughtAt int64
		)

		if err := rows.Scan(&p.ID, &p.UserID, &p.SpeciesID, &caughtAt, &p.Species.ID, &p.Species.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		p.CaughtAt = time.UnixMilli(caughtAt).UTC()
		caught = append(caught, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return caught, nil
}

func (s *Storage) Close() {
	_ = s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error

	return errors.As(err, &sqliteErr) &&
		(sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}
