package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"
	"pokedex_service/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidInput       = errors.New("species name is required")
	ErrNotFoundOrNotOwned = errors.New("caught pokemon not found or not owned by user")
)

// Ledger records which user caught which species.
type Ledger struct {
	log     *slog.Logger
	species SpeciesRepo
	catches CatchRepo
	tracer  trace.Tracer
}

type SpeciesRepo interface {
	Species(ctx context.Context, name string) (models.Species, error)
	SaveSpecies(ctx context.Context, name string) (models.Species, error)
}

type CatchRepo interface {
	SaveCatch(ctx context.Context, userID, speciesID string) (models.CaughtRecord, error)
	DeleteCatch(ctx context.Context, id, userID string) error
	CaughtByUser(ctx context.Context, userID string) ([]models.CaughtPokemon, error)
}

func New(log *slog.Logger, species SpeciesRepo, catches CatchRepo) *Ledger {
	return &Ledger{
		log:     log,
		species: species,
		catches: catches,
		tracer:  otel.Tracer("pokedex_service/ledger"),
	}
}

// Catch records a new catch of name for uid, creating the species on first use.
func (l *Ledger) Catch(ctx context.Context, uid, name string) (models.CaughtRecord, error) {
	const op = "ledger.Catch"

	ctx, span := l.tracer.Start(ctx, op)
	defer span.End()

	log := l.log.With(slog.String("op", op), slog.String("uid", uid))

	name = strings.TrimSpace(name)
	if name == "" {
		return models.CaughtRecord{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	span.SetAttributes(attribute.String("species.name", name))

	species, err := l.speciesByName(ctx, name)
	if err != nil {
		log.Error("failed to resolve species", slog.String("species", name), sl.Err(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "species lookup failed")

		return models.CaughtRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	record, err := l.catches.SaveCatch(ctx, uid, species.ID)
	if err != nil {
		log.Error("failed to save catch", sl.Err(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "save catch failed")

		return models.CaughtRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("pokemon caught", slog.String("species", species.Name), slog.String("record_id", record.ID))

	return record, nil
}

// speciesByName is a get-or-create. When a concurrent catch inserts the same
// name first, the unique constraint rejects our insert and the row it
// created is read back.
func (l *Ledger) speciesByName(ctx context.Context, name string) (models.Species, error) {
	species, err := l.species.Species(ctx, name)
	if err == nil {
		return species, nil
	}
	if !errors.Is(err, storage.ErrSpeciesNotFound) {
		return models.Species{}, err
	}

	species, err = l.species.SaveSpecies(ctx, name)
	if err == nil {
		return species, nil
	}
	if !errors.Is(err, storage.ErrSpeciesExists) {
		return models.Species{}, err
	}

	l.log.Debug("species created concurrently, reading it back", slog.String("species", name))

	return l.species.Species(ctx, name)
}

// Release deletes the caught record id only if uid owns it.
func (l *Ledger) Release(ctx context.Context, uid, id string) error {
	const op = "ledger.Release"

	ctx, span := l.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("record.id", id)))
	defer span.End()

	log := l.log.With(slog.String("op", op), slog.String("uid", uid), slog.String("record_id", id))

	if err := l.catches.DeleteCatch(ctx, id, uid); err != nil {
		if errors.Is(err, storage.ErrCatchNotFound) {
			log.Info("nothing to release")

			return fmt.Errorf("%s: %w", op, ErrNotFoundOrNotOwned)
		}

		log.Error("failed to release pokemon", sl.Err(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete catch failed")

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("pokemon released")

	return nil
}

// Caught lists every record owned by uid with its species. An empty result
// is a non-nil empty slice.
func (l *Ledger) Caught(ctx context.Context, uid string) ([]models.CaughtPokemon, error) {
	const op = "ledger.Caught"

	ctx, span := l.tracer.Start(ctx, op)
	defer span.End()

	caught, err := l.catches.CaughtByUser(ctx, uid)
	if err != nil {
		l.log.Error("failed to list caught pokemon", slog.String("op", op), slog.String("uid", uid), sl.Err(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list caught failed")

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if caught == nil {
		caught = []models.CaughtPokemon{}
	}

	span.SetAttributes(attribute.Int("caught.count", len(caught)))

	return caught, nil
}
