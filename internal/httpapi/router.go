// Package httpapi is the HTTP surface of the wallet daemon. Handlers stay
// thin: they decode requests, call the wallet, and map its errors to
// statuses in one place (errors.go).
package httpapi

import (
    "context"
    "log/slog"
    "net/http"
    "sync"

    chi "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/service/wallet"
)

// Wallet is the subset of *wallet.Wallet the API drives.
type Wallet interface {
    Create(password, mnemonic string) (string, error)
    Open(password string) error
    Close() error
    Exists() (bool, error)
    IsOpen() bool
    Connect(ctx context.Context) error
    Disconnect() error
    IsOnline(ctx context.Context) bool
    Addresses() ([]dusk.Address, error)
    IndexOf(addr string) (uint8, error)
    NewAddress() (uint8, dusk.Address, error)
    Balance(ctx context.Context, idx uint8) (wallet.Balance, error)
    StakeInfo(ctx context.Context, idx uint8) (dusk.Stake, error)
    Transfer(ctx context.Context, from uint8, to string, amount dusk.Lux, fee dusk.Fee) (uuid.UUID, error)
    Stake(ctx context.Context, idx uint8, amount dusk.Lux, fee dusk.Fee) (uuid.UUID, error)
    Unstake(ctx context.Context, idx uint8, fee dusk.Fee) (uuid.UUID, error)
    Withdraw(ctx context.Context, idx uint8, fee dusk.Fee) (uuid.UUID, error)
    Sync(ctx context.Context) error
}

// ReadyChecker is optionally implemented by the note cache.
type ReadyChecker interface {
    Ready(ctx context.Context) error
}

// Server wires handlers and middleware using Chi.
type Server struct {
    wallet Wallet
    cache  ReadyChecker
    log    *slog.Logger
    rt     *chi.Mux

    idemMu sync.Mutex
    idem   map[string]storedResponse
}

// New constructs the HTTP server with routes and middleware. cache may be nil.
func New(w Wallet, cache ReadyChecker, logger *slog.Logger) *Server {
    r := chi.NewRouter()
    r.Use(chimw.RequestID)
    r.Use(requestLogger(logger))
    r.Use(recoverer(logger))
    r.Use(metricsMiddleware)
    if auth := authJWTFromEnv(); auth != nil {
        r.Use(auth)
    }

    s := &Server{
        wallet: w,
        cache:  cache,
        log:    logger,
        rt:     r,
        idem:   make(map[string]storedResponse),
    }
    s.routes()
    return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
    // Wallet lifecycle
    s.rt.Get("/v1/wallet", s.walletStatus)
    s.rt.Post("/v1/wallet", s.createWallet)
    s.rt.Post("/v1/wallet/open", s.openWallet)
    s.rt.Post("/v1/wallet/close", s.closeWallet)
    s.rt.Post("/v1/wallet/connect", s.connectWallet)
    s.rt.Post("/v1/wallet/disconnect", s.disconnectWallet)
    s.rt.Post("/v1/sync", s.sync)
    // Addresses
    s.rt.Get("/v1/addresses", s.listAddresses)
    s.rt.Post("/v1/addresses", s.newAddress)
    s.rt.Get("/v1/addresses/{idx}/balance", s.balance)
    s.rt.Get("/v1/addresses/{idx}/stake", s.stakeInfo)
    // Transactions
    s.rt.With(s.idempotent).Post("/v1/transfers", s.transfer)
    s.rt.With(s.idempotent).Post("/v1/stakes", s.stake)
    s.rt.With(s.idempotent).Post("/v1/stakes/{idx}/unstake", s.unstake)
    s.rt.With(s.idempotent).Post("/v1/stakes/{idx}/withdraw", s.withdraw)
    // Health (unversioned)
    s.rt.Get("/healthz", s.healthz)
    s.rt.Get("/readyz", s.readyz)
    s.rt.Handle("/metrics", metricsHandler())
}
