// README: Snapshot store backed by PostgreSQL (versioned rows, bounded history).
package snapshot

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// keepDumps bounds the history kept per backend; older rows are pruned on
// every save.
const keepDumps = 20

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// Init creates the snapshots table when it does not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS snapshots (
            id       UUID PRIMARY KEY,
            taken_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            state    BYTEA NOT NULL
        )`)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO snapshots (id, state) VALUES ($1, $2)`,
		uuid.NewString(), data,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        DELETE FROM snapshots
        WHERE id NOT IN (
            SELECT id FROM snapshots ORDER BY taken_at DESC LIMIT $1
        )`, keepDumps,
	)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	row := s.db.QueryRow(ctx, `
        SELECT state FROM snapshots ORDER BY taken_at DESC LIMIT 1`)

	var data []byte
	err := row.Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
