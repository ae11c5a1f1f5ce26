package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// HistoryRepo persists translation history per client. Each insert prunes
// rows beyond the configured cap within the same transaction.
type HistoryRepo struct {
	pool  *pgxpool.Pool
	limit int
}

var _ domain.HistoryStore = (*HistoryRepo)(nil)

func NewHistoryRepo(pool *pgxpool.Pool, limit int) *HistoryRepo {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &HistoryRepo{pool: pool, limit: limit}
}

const (
	insertHistorySQL = `
		INSERT INTO translation_history
			(client_id, created_at, original_language, original_text, translated_text, target_language)
		VALUES ($1, $2, $3, $4, $5, $6)`

	pruneHistorySQL = `
		DELETE FROM translation_history
		WHERE client_id = $1
		  AND id NOT IN (
			SELECT id FROM translation_history
			WHERE client_id = $1
			ORDER BY id DESC
			LIMIT $2
		  )`

	listHistorySQL = `
		SELECT created_at, original_language, original_text, translated_text, target_language
		FROM translation_history
		WHERE client_id = $1
		ORDER BY id DESC
		LIMIT $2`

	clearHistorySQL = `DELETE FROM translation_history WHERE client_id = $1`
)

func (r *HistoryRepo) Add(ctx context.Context, clientID uuid.UUID, entry domain.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertHistorySQL,
		clientID,
		entry.Timestamp.UTC(),
		string(entry.OriginalLanguage),
		entry.OriginalText,
		entry.TranslatedText,
		string(entry.TargetLanguage),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	if _, err := tx.Exec(ctx, pruneHistorySQL, clientID, r.limit); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *HistoryRepo) List(ctx context.Context, clientID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}

	rows, err := r.pool.Query(ctx, listHistorySQL, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.HistoryEntry, error) {
		var (
			e             domain.HistoryEntry
			original, tgt string
		)
		if err := row.Scan(&e.Timestamp, &original, &e.OriginalText, &e.TranslatedText, &tgt); err != nil {
			return e, err
		}
		e.OriginalLanguage = domain.Language(original)
		e.TargetLanguage = domain.Language(tgt)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return entries, nil
}

func (r *HistoryRepo) Clear(ctx context.Context, clientID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, clearHistorySQL, clientID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
