package bracket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duelist/stockduel/internal/contracts"
)

// Repository persists brackets in Postgres. The entry and match trees
// live in JSONB columns; the indexed columns mirror only what the list
// queries filter and sort on.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new bracket repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ contracts.BracketStore = (*Repository)(nil)

// EnsureSchema creates the brackets table if missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS brackets (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			status       TEXT NOT NULL,
			end_date     TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL,
			doc          JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_brackets_user ON brackets (user_id, updated_at DESC);
		CREATE INDEX IF NOT EXISTS idx_brackets_status ON brackets (status);
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure bracket schema: %w", err)
	}
	return nil
}

// Save upserts a bracket
func (r *Repository) Save(ctx context.Context, b *contracts.Bracket) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket: %w", err)
	}

	query := `
		INSERT INTO brackets (id, user_id, status, end_date, updated_at, doc)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			end_date = EXCLUDED.end_date,
			updated_at = EXCLUDED.updated_at,
			doc = EXCLUDED.doc
	`

	_, err = r.pool.Exec(ctx, query, b.ID, b.UserID, b.Status, b.EndDate, b.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("failed to save bracket: %w", err)
	}

	return nil
}

// Load fetches one bracket by id
func (r *Repository) Load(ctx context.Context, id string) (*contracts.Bracket, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, "SELECT doc FROM brackets WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bracket %s: %w", id, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket: %w", err)
	}

	return decodeBracket(doc)
}

// ListByUser returns a user's brackets, newest first
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*contracts.Bracket, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT doc FROM brackets WHERE user_id = $1 ORDER BY updated_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets: %w", err)
	}
	defer rows.Close()

	return collectBrackets(rows)
}

// ListActive returns every bracket that still needs refreshing
func (r *Repository) ListActive(ctx context.Context) ([]*contracts.Bracket, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT doc FROM brackets WHERE status != $1 ORDER BY end_date ASC", contracts.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list active brackets: %w", err)
	}
	defer rows.Close()

	return collectBrackets(rows)
}

func collectBrackets(rows pgx.Rows) ([]*contracts.Bracket, error) {
	var out []*contracts.Bracket
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan bracket: %w", err)
		}
		b, err := decodeBracket(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brackets: %w", err)
	}
	return out, nil
}

func decodeBracket(doc []byte) (*contracts.Bracket, error) {
	var b contracts.Bracket
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bracket: %w", err)
	}
	return &b, nil
}
