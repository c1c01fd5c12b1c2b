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

// PostgresNodeStore implements the store.NodeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNodeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNodeStore creates a new PostgreSQL implementation of the
// NodeStore interface. If logger is nil, a default logger will be used.
func NewPostgresNodeStore(db store.DBTX, logger *slog.Logger) *PostgresNodeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNodeStore{
		db:     db,
		logger: logger.With(slog.String("component", "node_store")),
	}
}

// Ensure PostgresNodeStore implements store.NodeStore interface
var _ store.NodeStore = (*PostgresNodeStore)(nil)

// Create implements store.NodeStore.Create
// Returns store.ErrInvalidEntity if the referenced parent does not exist.
func (s *PostgresNodeStore) Create(ctx context.Context, node *domain.DeckNode) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := node.Validate(); err != nil {
		log.Warn("node validation failed during create",
			slog.String("error", err.Error()),
			slog.String("node_id", node.ID.String()))
		return err
	}

	query := `
		INSERT INTO deck_nodes (id, user_id, title, node_type, parent_id,
			card_count, due_count, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		node.ID,
		node.UserID,
		node.Title,
		node.Type,
		node.ParentID,
		node.CardCount,
		node.DueCount,
		node.Progress,
		node.CreatedAt,
		node.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during node creation",
				slog.String("error", err.Error()),
				slog.String("node_id", node.ID.String()))
			return fmt.Errorf("%w: referenced parent or user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create node",
			slog.String("error", err.Error()),
			slog.String("node_id", node.ID.String()))
		return err
	}

	log.Info("deck node created successfully",
		slog.String("node_id", node.ID.String()),
		slog.String("node_type", string(node.Type)))
	return nil
}

// GetByID implements store.NodeStore.GetByID
// Returns store.ErrNodeNotFound if the node does not exist.
func (s *PostgresNodeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeckNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, node_type, parent_id,
			card_count, due_count, progress, created_at, updated_at
		FROM deck_nodes
		WHERE id = $1
	`

	node, err := scanNode(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck node not found", slog.String("node_id", id.String()))
			return nil, store.ErrNodeNotFound
		}
		log.Error("failed to get deck node by ID",
			slog.String("error", err.Error()),
			slog.String("node_id", id.String()))
		return nil, err
	}

	return node, nil
}

// ListByUser implements store.NodeStore.ListByUser
func (s *PostgresNodeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.DeckNode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, node_type, parent_id,
			card_count, due_count, progress, created_at, updated_at
		FROM deck_nodes
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list deck nodes",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	nodes := []*domain.DeckNode{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			log.Error("failed to scan deck node row",
				slog.String("error", err.Error()))
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning deck node rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return nodes, nil
}

// Update implements store.NodeStore.Update
// Returns store.ErrNodeNotFound if the node does not exist.
func (s *PostgresNodeStore) Update(ctx context.Context, node *domain.DeckNode) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := node.Validate(); err != nil {
		log.Warn("node validation failed during update",
			slog.String("error", err.Error()),
			slog.String("node_id", node.ID.String()))
		return err
	}

	query := `
		UPDATE deck_nodes
		SET title = $1, parent_id = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		node.Title,
		node.ParentID,
		time.Now().UTC(),
		node.ID,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced parent not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update deck node",
			slog.String("error", err.Error()),
			slog.String("node_id", node.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("node_id", node.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("deck node not found for update",
			slog.String("node_id", node.ID.String()))
		return store.ErrNodeNotFound
	}

	return nil
}

// UpdateAggregates implements store.NodeStore.UpdateAggregates
// It batch-writes recomputed subtree statistics. The caller is expected
// to run it inside a transaction via WithTx.
func (s *PostgresNodeStore) UpdateAggregates(ctx context.Context, aggregates []store.NodeAggregates) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(aggregates) == 0 {
		return nil
	}

	query := `
		UPDATE deck_nodes
		SET card_count = $1, due_count = $2, progress = $3, updated_at = $4
		WHERE id = $5
	`

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		log.Error("failed to prepare aggregate update",
			slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close statement", slog.String("error", err.Error()))
		}
	}()

	now := time.Now().UTC()
	for _, agg := range aggregates {
		if _, err := stmt.ExecContext(ctx, agg.CardCount, agg.DueCount, agg.Progress, now, agg.NodeID); err != nil {
			log.Error("failed to update node aggregates",
				slog.String("error", err.Error()),
				slog.String("node_id", agg.NodeID.String()))
			return err
		}
	}

	log.Debug("node aggregates updated",
		slog.Int("count", len(aggregates)))
	return nil
}

// Delete implements store.NodeStore.Delete
func (s *PostgresNodeStore) Delete(ctx context.Context, ids []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM deck_nodes WHERE id = ANY($1::uuid[])`

	result, err := s.db.ExecContext(ctx, query, uuidSliceParam(ids))
	if err != nil {
		log.Error("failed to delete deck nodes",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	log.Info("deck nodes deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", rowsAffected))
	return nil
}

// WithTx implements store.NodeStore.WithTx
func (s *PostgresNodeStore) WithTx(tx *sql.Tx) store.NodeStore {
	return &PostgresNodeStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*domain.DeckNode, error) {
	var node domain.DeckNode
	var nodeType string
	var parentID sql.Null[uuid.UUID]

	err := row.Scan(
		&node.ID,
		&node.UserID,
		&node.Title,
		&nodeType,
		&parentID,
		&node.CardCount,
		&node.DueCount,
		&node.Progress,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	node.Type = domain.NodeType(nodeType)
	if parentID.Valid {
		node.ParentID = &parentID.V
	}

	return &node, nil
}

// uuidSliceParam converts a uuid slice into the string form the pgx
// stdlib driver binds to a uuid[] parameter.
func uuidSliceParam(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}
