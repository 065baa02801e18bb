package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/platform/logger"
	"github.com/flashquiz/flashquiz-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
//
// Bookmarks live in a join table keyed on (user_id, card_id). Known/unknown
// membership lives in a single card_progress row per (user_id, card_id)
// with a boolean, so a card can never be in both sets at once.
type PostgresProgressStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. Unlike the other stores it requires a *sql.DB
// rather than a DBTX because the bookmark toggle runs its own transaction.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db *sql.DB, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// ToggleBookmark implements store.ProgressStore.ToggleBookmark
// A present bookmark is removed; an absent one is added. The toggle and the
// read-back of the resulting set run in one transaction so concurrent
// toggles cannot interleave between the delete and the insert.
func (s *PostgresProgressStore) ToggleBookmark(
	ctx context.Context,
	userID, cardID uuid.UUID,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var bookmarks []uuid.UUID
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM bookmarks WHERE user_id = $1 AND card_id = $2`, userID, cardID)
		if err != nil {
			return err
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if removed == 0 {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO bookmarks (user_id, card_id, created_at)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (user_id, card_id) DO NOTHING`,
				userID, cardID, time.Now().UTC())
			if err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("%w: cannot bookmark", store.ErrCardNotFound)
				}
				return err
			}
		}

		log.Debug("bookmark toggled",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.Bool("removed", removed > 0))

		bookmarks, err = s.getBookmarks(ctx, tx, userID)
		return err
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to toggle bookmark",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
		}
		return nil, err
	}

	return bookmarks, nil
}

// SetProgress implements store.ProgressStore.SetProgress
// A single upsert keyed on (user_id, card_id) moves the card between the
// known and unknown sets. Returns the user's resulting progress.
func (s *PostgresProgressStore) SetProgress(
	ctx context.Context,
	userID, cardID uuid.UUID,
	known bool,
) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO card_progress (user_id, card_id, known, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, card_id)
		DO UPDATE SET known = EXCLUDED.known, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, userID, cardID, known, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: cannot record progress", store.ErrCardNotFound)
		}
		log.Error("failed to set progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	log.Debug("progress updated",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Bool("known", known))

	return s.GetProgress(ctx, userID)
}

// GetProgress implements store.ProgressStore.GetProgress
func (s *PostgresProgressStore) GetProgress(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, known FROM card_progress
		 WHERE user_id = $1
		 ORDER BY updated_at DESC, card_id`, userID)
	if err != nil {
		log.Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	progress := domain.NewProgress()
	for rows.Next() {
		var cardID uuid.UUID
		var known bool
		if err := rows.Scan(&cardID, &known); err != nil {
			return nil, err
		}
		if known {
			progress.Known = append(progress.Known, cardID)
		} else {
			progress.Unknown = append(progress.Unknown, cardID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return progress, nil
}

// GetBookmarks implements store.ProgressStore.GetBookmarks
func (s *PostgresProgressStore) GetBookmarks(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	bookmarks, err := s.getBookmarks(ctx, s.db, userID)
	if err != nil {
		log.Error("failed to get bookmarks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return bookmarks, nil
}

// getBookmarks reads the bookmark set through the given connection or
// transaction, most recently bookmarked first.
func (s *PostgresProgressStore) getBookmarks(
	ctx context.Context,
	q store.DBTX,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT card_id FROM bookmarks
		 WHERE user_id = $1
		 ORDER BY created_at DESC, card_id`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	bookmarks := []uuid.UUID{}
	for rows.Next() {
		var cardID uuid.UUID
		if err := rows.Scan(&cardID); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, cardID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookmarks, nil
}
