package rusk

import (
    "context"
    "log/slog"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/errs"
)

// Cache persists notes fetched from the node between runs.
type Cache interface {
    // Notes returns every cached note for the view key, ordered by position.
    Notes(ctx context.Context, vk dusk.ViewKey) ([]dusk.Note, error)
    // PutNotes upserts notes by position and records the height they were synced to.
    PutNotes(ctx context.Context, vk dusk.ViewKey, height uint64, notes []dusk.Note) error
    // LastHeight returns the height the view key was last synced to, 0 if never.
    LastHeight(ctx context.Context, vk dusk.ViewKey) (uint64, error)
}

// StateClient queries the node's state service. Its failures are
// errs.StateError values, except Check which reports lost connections.
type StateClient struct {
    conn  *Conn
    cache Cache
    log   *slog.Logger
}

// NewStateClient builds a client on an established node connection.
func NewStateClient(conn *Conn, cache Cache, logger *slog.Logger) *StateClient {
    if logger == nil {
        logger = slog.Default()
    }
    return &StateClient{conn: conn, cache: cache, log: logger}
}

// Check reports whether the node connection is still up.
func (c *StateClient) Check(ctx context.Context) error { return c.conn.Check(ctx) }

// Height returns the node's current block height.
func (c *StateClient) Height(ctx context.Context) (uint64, error) {
    var out HeightResponse
    if err := c.conn.invoke(ctx, methodHeight, &HeightRequest{}, &out); err != nil {
        return 0, errs.NewStateError(err)
    }
    return out.Height, nil
}

// Sync fetches notes created since the last synced height into the cache.
func (c *StateClient) Sync(ctx context.Context, vk dusk.ViewKey) error {
    last, err := c.cache.LastHeight(ctx, vk)
    if err != nil {
        return errs.NewStateError(errs.CacheError{Op: "last height", Msg: err.Error()})
    }
    var out NotesResponse
    if err := c.conn.invoke(ctx, methodNotes, &NotesRequest{ViewKey: vk, From: last}, &out); err != nil {
        return errs.NewStateError(err)
    }
    if err := c.cache.PutNotes(ctx, vk, out.Height, out.Notes); err != nil {
        return errs.NewStateError(errs.CacheError{Op: "put notes", Msg: err.Error()})
    }
    c.log.Debug("notes synced", "view_key", vk.String()[:8], "from", last, "to", out.Height, "notes", len(out.Notes))
    return nil
}

// Notes returns the cached notes for the view key. Call Sync first for fresh data.
func (c *StateClient) Notes(ctx context.Context, vk dusk.ViewKey) ([]dusk.Note, error) {
    notes, err := c.cache.Notes(ctx, vk)
    if err != nil {
        return nil, errs.NewStateError(errs.CacheError{Op: "notes", Msg: err.Error()})
    }
    return notes, nil
}

// Stake returns the staking state of the key.
func (c *StateClient) Stake(ctx context.Context, key dusk.Address) (dusk.Stake, error) {
    var out StakeResponse
    if err := c.conn.invoke(ctx, methodStake, &StakeRequest{Key: key}, &out); err != nil {
        return dusk.Stake{}, errs.NewStateError(err)
    }
    return out.Stake, nil
}

// Propagate submits a proven transaction to the network.
func (c *StateClient) Propagate(ctx context.Context, tx dusk.ProvenTx) error {
    var out PropagateResponse
    if err := c.conn.invoke(ctx, methodPropagate, &PropagateRequest{Tx: tx}, &out); err != nil {
        return errs.NewStateError(err)
    }
    return nil
}
