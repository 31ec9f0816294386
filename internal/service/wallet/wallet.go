// Package wallet implements the wallet operations on top of the node, the
// prover and the encrypted wallet file. It is the only place domain errors
// (balance, staking, address ownership) are produced; every collaborator
// failure is converted once into the unified errs taxonomy before it leaves.
package wallet

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "sync"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/errs"
    "github.com/grutesr1/DUSK-test/internal/store"
    "github.com/grutesr1/DUSK-test/internal/walletfile"
)

// State is the node's state service as the wallet uses it.
type State interface {
    Check(ctx context.Context) error
    Height(ctx context.Context) (uint64, error)
    Sync(ctx context.Context, vk dusk.ViewKey) error
    Notes(ctx context.Context, vk dusk.ViewKey) ([]dusk.Note, error)
    Stake(ctx context.Context, key dusk.Address) (dusk.Stake, error)
    Propagate(ctx context.Context, tx dusk.ProvenTx) error
}

// Prover proves transactions.
type Prover interface {
    Check(ctx context.Context) error
    Prove(ctx context.Context, tx dusk.Tx) (dusk.ProvenTx, error)
}

// Connection is what a Dialer hands back.
type Connection struct {
    State  State
    Prover Prover
    Closer io.Closer
}

// Dialer opens the connections to the node and the prover.
type Dialer func(ctx context.Context) (Connection, error)

// StatusFunc receives human readable progress while connecting.
type StatusFunc func(status string)

type Config struct {
    Dir  string
    Name string
    // RuskAddr is the configured node address. Staking is only allowed
    // against a node running on this machine.
    RuskAddr string
    Dial     Dialer
    Logger   *slog.Logger
    // Retry tunes Sync; zero values pick defaults.
    Retry RetryPolicy
}

// Wallet is safe for concurrent use. Operations are serialized.
type Wallet struct {
    mu     sync.Mutex
    cfg    Config
    log    *slog.Logger
    status StatusFunc

    // set while unlocked
    file      *walletfile.File
    keys      *store.LocalStore
    addresses uint8

    conn *Connection
}

func New(cfg Config) *Wallet {
    logger := cfg.Logger
    if logger == nil {
        logger = slog.Default()
    }
    return &Wallet{cfg: cfg, log: logger}
}

// Create writes a new wallet file protected by password and unlocks it. An
// empty mnemonic generates a fresh one; the phrase in use is returned.
func (w *Wallet) Create(password, mnemonic string) (string, error) {
    const op = "create wallet"
    if mnemonic == "" {
        phrase, err := store.NewMnemonic()
        if err != nil {
            return "", errs.WithOp(op, err)
        }
        mnemonic = phrase
    }
    keys, err := store.FromMnemonic(mnemonic)
    if err != nil {
        return "", errs.WithOp(op, err)
    }
    seed := keys.Seed()
    f, err := walletfile.Create(w.cfg.Dir, w.cfg.Name, password, walletfile.Contents{Seed: seed[:], Addresses: 1})
    if err != nil {
        return "", errs.WithOp(op, err)
    }
    w.mu.Lock()
    defer w.mu.Unlock()
    w.file, w.keys, w.addresses = f, &keys, 1
    w.log.Info("wallet created", "path", f.Path())
    return mnemonic, nil
}

// Open decrypts the wallet file and unlocks the wallet.
func (w *Wallet) Open(password string) error {
    const op = "open wallet"
    f, c, err := walletfile.Open(w.cfg.Dir, w.cfg.Name, password)
    if err != nil {
        return errs.WithOp(op, err)
    }
    keys := store.New(c.Seed)
    w.mu.Lock()
    defer w.mu.Unlock()
    w.file, w.keys, w.addresses = f, &keys, max(c.Addresses, 1)
    w.log.Info("wallet opened", "path", f.Path(), "addresses", w.addresses)
    return nil
}

// Close locks the wallet and drops the connection.
func (w *Wallet) Close() error {
    w.mu.Lock()
    defer w.mu.Unlock()
    w.file, w.keys, w.addresses = nil, nil, 0
    return w.disconnectLocked()
}

// IsOpen reports whether the wallet is unlocked.
func (w *Wallet) IsOpen() bool {
    w.mu.Lock()
    defer w.mu.Unlock()
    return w.keys != nil
}

// SetStatus registers the progress callback used by Connect. It must be set
// before connecting.
func (w *Wallet) SetStatus(fn StatusFunc) error {
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.conn != nil {
        return errs.WithOp("set status", errs.ErrStatusWalletConnected)
    }
    w.status = fn
    return nil
}

// Connect dials the node and the prover. Connecting twice is a no-op.
func (w *Wallet) Connect(ctx context.Context) error {
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.conn != nil {
        return nil
    }
    w.notify("Connecting to Rusk")
    conn, err := w.cfg.Dial(ctx)
    if err != nil {
        w.notify("Connection failed")
        return errs.WithOp("connect", err)
    }
    w.conn = &conn
    w.notify("Connected")
    return nil
}

// Disconnect drops the connection, keeping the wallet unlocked.
func (w *Wallet) Disconnect() error {
    w.mu.Lock()
    defer w.mu.Unlock()
    return w.disconnectLocked()
}

func (w *Wallet) disconnectLocked() error {
    if w.conn == nil {
        return nil
    }
    var err error
    if w.conn.Closer != nil {
        err = w.conn.Closer.Close()
    }
    w.conn = nil
    if err != nil {
        w.log.Warn("closing connection", "err", err)
    }
    return nil
}

// IsOnline reports whether both collaborators are reachable.
func (w *Wallet) IsOnline(ctx context.Context) bool {
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.conn == nil {
        return false
    }
    return errors.Join(w.conn.State.Check(ctx), w.conn.Prover.Check(ctx)) == nil
}

func (w *Wallet) notify(s string) {
    if w.status != nil {
        w.status(s)
    }
}

// Addresses lists the wallet's public keys in index order.
func (w *Wallet) Addresses() ([]dusk.Address, error) {
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.keys == nil {
        return nil, errs.WithOp("addresses", errs.ErrUnauthorized)
    }
    out := make([]dusk.Address, w.addresses)
    for i := range out {
        out[i] = w.keys.Address(uint8(i))
    }
    return out, nil
}

// ViewKey returns the view key of the address at idx, as a node needs it to
// find the address's notes.
func (w *Wallet) ViewKey(idx uint8) (dusk.ViewKey, error) {
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.keys == nil {
        return dusk.ViewKey{}, errs.WithOp("view key", errs.ErrUnauthorized)
    }
    if idx >= w.addresses {
        return dusk.ViewKey{}, errs.WithOp("view key", errs.ErrAddressNotOwned)
    }
    return w.keys.ViewKey(idx), nil
}

// IndexOf resolves a base58 address to the index of the wallet key behind it.
// Addresses this wallet did not derive are AddressNotOwned.
func (w *Wallet) IndexOf(addr string) (uint8, error) {
    const op = "address index"
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.keys == nil {
        return 0, errs.WithOp(op, errs.ErrUnauthorized)
    }
    a, err := dusk.ParseAddress(addr)
    if err != nil {
        return 0, errs.WithOp(op, errs.BadAddress(err))
    }
    idx, ok := w.keys.IndexOf(a, int(w.addresses))
    if !ok {
        return 0, errs.WithOp(op, errs.ErrAddressNotOwned)
    }
    return idx, nil
}

// Exists reports whether the configured wallet file is on disk.
func (w *Wallet) Exists() (bool, error) {
    ok, err := walletfile.Exists(w.cfg.Dir, w.cfg.Name)
    if err != nil {
        return false, errs.WithOp("exists", err)
    }
    return ok, nil
}

// NewAddress derives the next key and persists the new count.
func (w *Wallet) NewAddress() (uint8, dusk.Address, error) {
    const op = "new address"
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.keys == nil {
        return 0, dusk.Address{}, errs.WithOp(op, errs.ErrUnauthorized)
    }
    if int(w.addresses) >= dusk.MaxAddresses {
        return 0, dusk.Address{}, errs.WithOp(op, errs.ErrAddressNotOwned)
    }
    idx := w.addresses
    seed := w.keys.Seed()
    if err := w.file.Save(walletfile.Contents{Seed: seed[:], Addresses: idx + 1}); err != nil {
        return 0, dusk.Address{}, errs.WithOp(op, err)
    }
    w.addresses++
    return idx, w.keys.Address(idx), nil
}

// session checks the wallet is unlocked, online and owns idx.
func (w *Wallet) session(op string, idx uint8) (*Connection, error) {
    if w.keys == nil {
        return nil, errs.WithOp(op, errs.ErrUnauthorized)
    }
    if w.conn == nil {
        return nil, errs.WithOp(op, errs.ErrOffline)
    }
    if idx >= w.addresses {
        return nil, errs.WithOp(op, errs.ErrAddressNotOwned)
    }
    return w.conn, nil
}
