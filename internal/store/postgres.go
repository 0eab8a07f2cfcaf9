package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource persists collection snapshots as JSONB rows. It is the
// backend the local cache reconciles against; the workflow engine never
// queries it directly.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a Source over the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Fetch returns the stored snapshot for key, or ErrNotFound.
func (p *PostgresSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM collection_snapshots WHERE key = $1`, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save upserts the snapshot for key.
func (p *PostgresSource) Save(ctx context.Context, key string, data []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO collection_snapshots (key, agency_id, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		key, agencyFromKey(key), data,
	)
	return err
}

// agencyFromKey extracts the tenant id from a "workspace:{agency}:{name}"
// snapshot key. Unknown key shapes map to the zero UUID.
func agencyFromKey(key string) uuid.UUID {
	const prefix = "workspace:"
	if !strings.HasPrefix(key, prefix) || len(key) <= len(prefix) {
		return uuid.Nil
	}
	rest := key[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			if id, err := uuid.Parse(rest[:i]); err == nil {
				return id
			}
			return uuid.Nil
		}
	}
	return uuid.Nil
}
