package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemosyne-app/mnemo-api/internal/domain"
	"github.com/mnemosyne-app/mnemo-api/internal/platform/logger"
	"github.com/mnemosyne-app/mnemo-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = `id, deck_id, user_id, front, back, transcription, example, image_url,
	due_date, interval_days, ease_factor, repetitions, created_at, updated_at`

// Create implements store.CardStore.Create
// Returns store.ErrInvalidEntity if the referenced deck does not exist.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.DeckID,
		card.UserID,
		card.Front,
		card.Back,
		nullString(card.Transcription),
		nullString(card.Example),
		nullString(card.ImageURL),
		card.DueDate,
		card.Interval,
		card.EaseFactor,
		card.Repetitions,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during card creation",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return fmt.Errorf("%w: deck with ID %s not found",
				store.ErrInvalidEntity, card.DeckID)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// ListByUser implements store.CardStore.ListByUser
func (s *PostgresCardStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1 ORDER BY created_at`
	return s.queryCards(ctx, query, userID)
}

// ListByDeckIDs implements store.CardStore.ListByDeckIDs
func (s *PostgresCardStore) ListByDeckIDs(ctx context.Context, deckIDs []uuid.UUID) ([]*domain.Card, error) {
	if len(deckIDs) == 0 {
		return []*domain.Card{}, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE deck_id = ANY($1::uuid[]) ORDER BY created_at`
	return s.queryCards(ctx, query, uuidSliceParam(deckIDs))
}

// Update implements store.CardStore.Update
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET deck_id = $1, front = $2, back = $3, transcription = $4,
			example = $5, image_url = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		card.DeckID,
		card.Front,
		card.Back,
		nullString(card.Transcription),
		nullString(card.Example),
		nullString(card.ImageURL),
		time.Now().UTC(),
		card.ID,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: deck with ID %s not found",
				store.ErrInvalidEntity, card.DeckID)
		}
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	return checkRowsAffected(result, store.ErrCardNotFound)
}

// UpdateScheduling implements store.CardStore.UpdateScheduling
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) UpdateScheduling(ctx context.Context, id uuid.UUID, sched store.CardScheduling) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE cards
		SET due_date = $1, interval_days = $2, ease_factor = $3,
			repetitions = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		sched.DueDate,
		sched.Interval,
		sched.EaseFactor,
		sched.Repetitions,
		time.Now().UTC(),
		id,
	)

	if err != nil {
		log.Error("failed to update card scheduling",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Debug("card scheduling updated",
		slog.String("card_id", id.String()),
		slog.Int("interval", sched.Interval),
		slog.Float64("ease_factor", sched.EaseFactor))
	return nil
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, ids []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM cards WHERE id = ANY($1::uuid[])`

	if _, err := s.db.ExecContext(ctx, query, uuidSliceParam(ids)); err != nil {
		log.Error("failed to delete cards",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return err
	}

	return nil
}

// DeleteByDeckIDs implements store.CardStore.DeleteByDeckIDs
func (s *PostgresCardStore) DeleteByDeckIDs(ctx context.Context, deckIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(deckIDs) == 0 {
		return nil
	}

	query := `DELETE FROM cards WHERE deck_id = ANY($1::uuid[])`

	result, err := s.db.ExecContext(ctx, query, uuidSliceParam(deckIDs))
	if err != nil {
		log.Error("failed to delete cards by deck",
			slog.String("error", err.Error()),
			slog.Int("deck_count", len(deckIDs)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	log.Info("cards deleted by deck",
		slog.Int("deck_count", len(deckIDs)),
		slog.Int64("card_count", rowsAffected))
	return nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresCardStore) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning card rows", slog.String("error", err.Error()))
		return nil, err
	}

	return cards, nil
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var transcription, example, imageURL sql.NullString

	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.UserID,
		&card.Front,
		&card.Back,
		&transcription,
		&example,
		&imageURL,
		&card.DueDate,
		&card.Interval,
		&card.EaseFactor,
		&card.Repetitions,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.Transcription = transcription.String
	card.Example = example.String
	card.ImageURL = imageURL.String

	return &card, nil
}

// nullString maps an empty optional field to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// checkRowsAffected translates a zero-row update into the given
// not-found error.
func checkRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
