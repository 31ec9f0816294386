// Package postgres is a pgx-backed note cache. The schema lives under
// db/migrations.
package postgres

import (
    "context"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/grutesr1/DUSK-test/internal/dusk"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
    pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
    cfg, err := pgxpool.ParseConfig(dsn)
    if err != nil { return nil, err }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil { return nil, err }
    if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
    return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { if s.pool != nil { s.pool.Close() } }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Notes returns every cached note for vk ordered by position.
func (s *Store) Notes(ctx context.Context, vk dusk.ViewKey) ([]dusk.Note, error) {
    rows, err := s.pool.Query(ctx, `
        select position, value, owner, height, nullifier, spent
        from notes where view_key = $1 order by position
    `, vk[:])
    if err != nil { return nil, err }
    defer rows.Close()
    out := []dusk.Note{}
    for rows.Next() {
        var (
            pos, value, height int64
            owner              int16
            nullifier          []byte
            n                  dusk.Note
        )
        if err := rows.Scan(&pos, &value, &owner, &height, &nullifier, &n.Spent); err != nil { return nil, err }
        if len(nullifier) != len(n.Nullifier) {
            return nil, fmt.Errorf("note %d: nullifier is %d bytes", pos, len(nullifier))
        }
        n.Position = uint64(pos)
        n.Value = dusk.Lux(value)
        n.Owner = uint8(owner)
        n.Height = uint64(height)
        copy(n.Nullifier[:], nullifier)
        out = append(out, n)
    }
    return out, rows.Err()
}

// PutNotes upserts notes and advances the sync height in one transaction.
func (s *Store) PutNotes(ctx context.Context, vk dusk.ViewKey, height uint64, notes []dusk.Note) error {
    tx, err := s.pool.Begin(ctx)
    if err != nil { return err }
    defer func() { _ = tx.Rollback(ctx) }()

    batch := &pgx.Batch{}
    for _, n := range notes {
        batch.Queue(`
            insert into notes (view_key, position, value, owner, height, nullifier, spent)
            values ($1,$2,$3,$4,$5,$6,$7)
            on conflict (view_key, position) do update
            set value = excluded.value, owner = excluded.owner, height = excluded.height,
                nullifier = excluded.nullifier, spent = excluded.spent
        `, vk[:], int64(n.Position), int64(n.Value), int16(n.Owner), int64(n.Height), n.Nullifier[:], n.Spent)
    }
    batch.Queue(`
        insert into sync_heights (view_key, height) values ($1, $2)
        on conflict (view_key) do update set height = greatest(sync_heights.height, excluded.height)
    `, vk[:], int64(height))
    if err := tx.SendBatch(ctx, batch).Close(); err != nil { return err }
    return tx.Commit(ctx)
}

// LastHeight returns the recorded sync height, 0 when vk was never synced.
func (s *Store) LastHeight(ctx context.Context, vk dusk.ViewKey) (uint64, error) {
    var h int64
    err := s.pool.QueryRow(ctx, `select height from sync_heights where view_key = $1`, vk[:]).Scan(&h)
    if errors.Is(err, pgx.ErrNoRows) { return 0, nil }
    if err != nil { return 0, err }
    return uint64(h), nil
}
