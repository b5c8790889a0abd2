package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"pokedex_service/internal/config"
	"pokedex_service/internal/models"
	"pokedex_service/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

//go:embed migrations/*.sql
var embedMigrations embed.FS

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, stdlib.OpenDBFromPool(pool), "migrations")
}

func (r *PostgresRepo) SaveUser(ctx context.Context, email string, passHash []byte) (string, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text;
	`

	var id string

	err := r.pool.QueryRow(ctx, query, uuid.NewString(), email, string(passHash)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", storage.ErrUserExists
		}

		return "", fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.User"

	query := `
		SELECT id::text, email, password_hash, created_at
		FROM users
		WHERE email = $1;
	`

	var (
		u        models.User
		passHash string
	)

	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &passHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u.PassHash = []byte(passHash)

	return u, nil
}

func (r *PostgresRepo) Species(ctx context.Context, name string) (models.Species, error) {
	const op = "storage.postgres.Species"

	query := `SELECT id::text, name FROM species WHERE name = $1;`

	var s models.Species

	err := r.pool.QueryRow(ctx, query, name).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Species{}, storage.ErrSpeciesNotFound
		}

		return models.Species{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *PostgresRepo) SaveSpecies(ctx context.Context, name string) (models.Species, error) {
	const op = "storage.postgres.SaveSpecies"

	query := `
		INSERT INTO species (id, name)
		VALUES ($1, $2)
		RETURNING id::text, name;
	`

	var s models.Species

	err := r.pool.QueryRow(ctx, query, uuid.NewString(), name).Scan(&s.ID, &s.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Species{}, storage.ErrSpeciesExists
		}

		return models.Species{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *PostgresRepo) SaveCatch(ctx context.Context, userID, speciesID string) (models.CaughtRecord, error) {
	const op = "storage.postgres.SaveCatch"

	query := `
		INSERT INTO caught_pokemon (id, user_id, species_id, caught_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, user_id::text, species_id::text, caught_at;
	`

	var c models.CaughtRecord

	err := r.pool.QueryRow(ctx, query, uuid.NewString(), userID, speciesID, time.Now().UTC()).
		Scan(&c.ID, &c.UserID, &c.SpeciesID, &c.CaughtAt)
	if err != nil {
		return models.CaughtRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// DeleteCatch removes the record only when it belongs to userID.
func (r *PostgresRepo) DeleteCatch(ctx context.Context, id, userID string) error {
	const op = "storage.postgres.DeleteCatch"

	query := `DELETE FROM caught_pokemon WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrCatchNotFound
	}

	return nil
}

func (r *PostgresRepo) CaughtByUser(ctx context.Context, userID string) ([]models.CaughtPokemon, error) {
	const op = "storage.postgres.CaughtByUser"

	query := `
		SELECT c.id::text, c.user_id::text, c.species_id::text, c.caught_at, s.id::text, s.name
		FROM caught_pokemon c
		JOIN species s ON s.id = c.species_id
		WHERE c.user_id = $1
		ORDER BY c.caught_at, c.id;
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	caught := make([]models.CaughtPokemon, 0)

	for rows.Next() {
		var p models.CaughtPokemon

		err := rows.Scan(&p.ID, &p.UserID, &p.SpeciesID, &p.CaughtAt, &p.Species.ID, &p.Species.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		caught = append(caught, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return caught, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// * dsn builds the connection string from the postgres config section.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
