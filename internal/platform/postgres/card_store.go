package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flashquiz/flashquiz-api/internal/domain"
	"github.com/flashquiz/flashquiz-api/internal/platform/logger"
	"github.com/flashquiz/flashquiz-api/internal/store"
)

// cardColumns is the column list shared by every card SELECT.
const cardColumns = `id, question, answer, topic, category, difficulty, tags,
	hint, explanation, image_url, is_public, created_by,
	view_count, correct_count, incorrect_count, created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db       store.DBTX
	logger   *slog.Logger
	randIntN func(n int) int // injectable for deterministic Random tests
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:       db,
		logger:   logger.With(slog.String("component", "card_store")),
		randIntN: rand.IntN,
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
// It saves a new card to the database after domain validation.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO cards (id, question, answer, topic, category, difficulty, tags,
			hint, explanation, image_url, is_public, created_by,
			view_count, correct_count, incorrect_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Question,
		card.Answer,
		card.Topic,
		card.Category,
		card.Difficulty,
		tags,
		card.Hint,
		card.Explanation,
		card.ImageURL,
		card.IsPublic,
		uuidOrNil(card.CreatedBy),
		card.ViewCount,
		card.CorrectCount,
		card.IncorrectCount,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during card creation",
				slog.String("card_id", card.ID.String()))
			return fmt.Errorf("%w: creator does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("topic", card.Topic))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = $1`, cardColumns)

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

// Update implements store.CardStore.Update
// It persists the full card record. Returns store.ErrCardNotFound if the
// card does not exist.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		UPDATE cards
		SET question = $1, answer = $2, topic = $3, category = $4,
			difficulty = $5, tags = $6, hint = $7, explanation = $8,
			image_url = $9, is_public = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Question,
		card.Answer,
		card.Topic,
		card.Category,
		card.Difficulty,
		tags,
		card.Hint,
		card.Explanation,
		card.ImageURL,
		card.IsPublic,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	return requireRowAffected(result, log, "update", card.ID)
}

// Delete implements store.CardStore.Delete
// It physically removes the card; bookmark and progress rows referencing it
// are removed by ON DELETE CASCADE constraints in the schema.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	return requireRowAffected(result, log, "delete", id)
}

// List implements store.CardStore.List
// It returns one page of matching cards plus the total match count.
func (s *PostgresCardStore) List(
	ctx context.Context,
	query store.CardQuery,
) ([]*domain.Card, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildCardFilter(query)

	var total int64
	countQuery := `SELECT COUNT(*) FROM cards` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count cards", slog.String("error", err.Error()))
		return nil, 0, err
	}

	pageQuery := fmt.Sprintf(`SELECT %s FROM cards%s%s LIMIT $%d OFFSET $%d`,
		cardColumns, where, orderClause(query.SortKey), len(args)+1, len(args)+2)
	args = append(args, query.Limit, query.Offset())

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		log.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0, query.Limit)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, 0, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

// Random implements store.CardStore.Random
// It counts the matching cards, picks a uniformly random offset, and
// fetches that single row. Returns store.ErrCardNotFound when the filter
// matches nothing.
func (s *PostgresCardStore) Random(
	ctx context.Context,
	query store.CardQuery,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildCardFilter(query)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count cards for random pick",
			slog.String("error", err.Error()))
		return nil, err
	}
	if total == 0 {
		log.Debug("no cards match random filter",
			slog.String("topic", query.Topic),
			slog.String("difficulty", query.Difficulty))
		return nil, store.ErrCardNotFound
	}

	offset := s.randIntN(int(total))
	rowQuery := fmt.Sprintf(`SELECT %s FROM cards%s ORDER BY created_at DESC, id LIMIT 1 OFFSET $%d`,
		cardColumns, where, len(args)+1)
	args = append(args, offset)

	card, err := scanCard(s.db.QueryRowContext(ctx, rowQuery, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent delete can shrink the set between count and fetch.
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to fetch random card", slog.String("error", err.Error()))
		return nil, err
	}

	return card, nil
}

// IncrementViewCount implements store.CardStore.IncrementViewCount
// The counter is incremented in the database so concurrent views on the
// same card are never lost.
func (s *PostgresCardStore) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to increment view count",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	return requireRowAffected(result, log, "increment view count", id)
}

// RecordAttempt implements store.CardStore.RecordAttempt
// It atomically increments the correct or incorrect counter selected by
// correct.
func (s *PostgresCardStore) RecordAttempt(ctx context.Context, id uuid.UUID, correct bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE cards SET incorrect_count = incorrect_count + 1 WHERE id = $1`
	if correct {
		query = `UPDATE cards SET correct_count = correct_count + 1 WHERE id = $1`
	}

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to record attempt",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()),
			slog.Bool("correct", correct))
		return err
	}

	return requireRowAffected(result, log, "record attempt", id)
}

// buildCardFilter translates a normalized CardQuery into a WHERE clause and
// its ordered arguments. The same clause backs List and Random so every read
// path filters identically.
func buildCardFilter(query store.CardQuery) (string, []any) {
	var conditions []string
	var args []any

	next := func() int { return len(args) + 1 }

	if query.PublicOnly {
		conditions = append(conditions, "is_public = TRUE")
	}
	if query.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", next()))
		args = append(args, *query.OwnerID)
	}
	if query.Topic != "" {
		conditions = append(conditions, fmt.Sprintf("topic = $%d", next()))
		args = append(args, query.Topic)
	}
	if query.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", next()))
		args = append(args, query.Category)
	}
	if query.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", next()))
		args = append(args, query.Difficulty)
	}
	if query.Keyword != "" {
		pattern := "%" + escapeLike(query.Keyword) + "%"
		tag := strings.ToLower(query.Keyword)
		conditions = append(conditions, fmt.Sprintf(
			"(question ILIKE $%d OR answer ILIKE $%d OR topic ILIKE $%d OR jsonb_exists(tags, $%d))",
			next(), next()+1, next()+2, next()+3))
		args = append(args, pattern, pattern, pattern, tag)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause maps a sort key to its ORDER BY clause. The id tiebreaker
// keeps pagination stable across identical timestamps.
func orderClause(sortKey string) string {
	switch sortKey {
	case store.SortOldest:
		return " ORDER BY created_at ASC, id"
	case store.SortViews:
		return " ORDER BY view_count DESC, created_at DESC, id"
	default:
		return " ORDER BY created_at DESC, id"
	}
}

// escapeLike escapes LIKE wildcards in user-supplied keywords.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCard.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard maps one result row onto a domain.Card.
func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card      domain.Card
		tags      []byte
		createdBy uuid.NullUUID
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&card.ID,
		&card.Question,
		&card.Answer,
		&card.Topic,
		&card.Category,
		&card.Difficulty,
		&tags,
		&card.Hint,
		&card.Explanation,
		&card.ImageURL,
		&card.IsPublic,
		&createdBy,
		&card.ViewCount,
		&card.CorrectCount,
		&card.IncorrectCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &card.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}
	if createdBy.Valid {
		id := createdBy.UUID
		card.CreatedBy = &id
	}
	card.CreatedAt = createdAt.UTC()
	card.UpdatedAt = updatedAt.UTC()

	return &card, nil
}

// uuidOrNil converts an optional UUID to a driver-friendly value.
func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// requireRowAffected converts a zero-row update/delete into ErrCardNotFound.
func requireRowAffected(result sql.Result, log *slog.Logger, op string, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Debug("card not found",
			slog.String("operation", op),
			slog.String("card_id", id.String()))
		return store.ErrCardNotFound
	}
	return nil
}
