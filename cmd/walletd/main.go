package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/grutesr1/DUSK-test/internal/dusk"
	"github.com/grutesr1/DUSK-test/internal/errs"
	"github.com/grutesr1/DUSK-test/internal/httpapi"
	"github.com/grutesr1/DUSK-test/internal/rusk"
	"github.com/grutesr1/DUSK-test/internal/service/wallet"
	"github.com/grutesr1/DUSK-test/internal/storage/memory"
	pgstore "github.com/grutesr1/DUSK-test/internal/storage/postgres"
)

type config struct {
	ruskAddr       string
	proverAddr     string
	walletDir      string
	walletName     string
	httpAddr       string
	connectTimeout time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(2)
	}

	var cache rusk.Cache
	var ready httpapi.ReadyChecker
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		cache, ready, closeFn = pg, pg, pg.Close
		logger.Info("note cache: postgres")
	} else {
		mem := memory.New()
		cache, ready = mem, mem
		logger.Info("note cache: memory")
	}

	if isTrue(os.Getenv("DEV_NODE")) {
		node, stopNode, err := startDevNode(cfg.ruskAddr, logger)
		if err != nil {
			logger.Error("dev node failed", "err", err)
			os.Exit(1)
		}
		defer stopNode()
		if pw := os.Getenv("WALLET_PASSWORD"); pw != "" {
			devSeed(cfg, pw, node, logger)
		}
	}

	w := wallet.New(wallet.Config{
		Dir:      cfg.walletDir,
		Name:     cfg.walletName,
		RuskAddr: cfg.ruskAddr,
		Logger:   logger,
		Dial: wallet.RuskDialer(rusk.Config{
			NodeAddr:   cfg.ruskAddr,
			ProverAddr: cfg.proverAddr,
			Cache:      cache,
			Logger:     logger,
		}),
	})
	_ = w.SetStatus(func(s string) { logger.Debug("wallet status", "status", s) })

	connectCtx, cancel := context.WithTimeout(ctx, cfg.connectTimeout)
	err = w.Connect(connectCtx)
	cancel()
	if err != nil {
		logError(logger, "connect failed, starting offline", err)
		// a bad address or platform will not get better by retrying from the API
		if c, _ := errs.ClassOf(err); c == errs.ClassConfig {
			os.Exit(2)
		}
	}

	srv := &http.Server{
		Addr:              cfg.httpAddr,
		Handler:           httpapi.New(w, ready, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// proving and propagating can take a while
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("wallet service listening", "addr", srv.Addr, "rusk", cfg.ruskAddr, "wallet_dir", cfg.walletDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	_ = w.Close()
	if closeFn != nil {
		closeFn()
	}
}

func configFromEnv() (config, error) {
	cfg := config{
		ruskAddr:       envOr("RUSK_ADDR", "http://127.0.0.1:8585"),
		proverAddr:     strings.TrimSpace(os.Getenv("PROVER_ADDR")),
		walletName:     envOr("WALLET_NAME", "wallet"),
		httpAddr:       envOr("HTTP_ADDR", ":8080"),
		connectTimeout: 10 * time.Second,
	}
	cfg.walletDir = strings.TrimSpace(os.Getenv("WALLET_DIR"))
	if cfg.walletDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config{}, fmt.Errorf("WALLET_DIR unset and no home directory: %w", err)
		}
		cfg.walletDir = filepath.Join(home, ".dusk", "rusk-wallet")
	}
	if raw := strings.TrimSpace(os.Getenv("CONNECT_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return config{}, fmt.Errorf("CONNECT_TIMEOUT: invalid duration %q", raw)
		}
		cfg.connectTimeout = d
	}
	return cfg, nil
}

// startDevNode serves an in-memory node and prover on addr.
func startDevNode(addr string, l *slog.Logger) (*rusk.DevNode, func(), error) {
	if !rusk.IsLocal(addr) {
		return nil, nil, fmt.Errorf("dev node needs a local RUSK_ADDR, got %q", addr)
	}
	hostport := addr
	if i := strings.Index(addr, "://"); i >= 0 {
		hostport = addr[i+3:]
	}
	lis, err := net.Listen("tcp", hostport)
	if err != nil {
		return nil, nil, err
	}
	node := rusk.NewDevNode()
	srv := grpc.NewServer(rusk.ServerOptions()...)
	rusk.RegisterStateServer(srv, node)
	rusk.RegisterProverServer(srv, node)
	go func() {
		if err := srv.Serve(lis); err != nil {
			l.Error("dev node stopped", "err", err)
		}
	}()
	l.Info("dev node listening", "addr", lis.Addr().String())
	return node, srv.GracefulStop, nil
}

// devSeed opens (or creates) the configured wallet, registers its first
// address with the dev node and funds it.
func devSeed(cfg config, password string, node *rusk.DevNode, l *slog.Logger) {
	w := wallet.New(wallet.Config{Dir: cfg.walletDir, Name: cfg.walletName, Logger: l})
	exists, err := w.Exists()
	if err != nil {
		logError(l, "dev seed failed", err)
		return
	}
	phrase := ""
	if exists {
		err = w.Open(password)
	} else {
		phrase, err = w.Create(password, "")
	}
	if err != nil {
		logError(l, "dev seed failed", err)
		return
	}
	defer w.Close()
	addrs, err := w.Addresses()
	if err != nil || len(addrs) == 0 {
		logError(l, "dev seed failed", err)
		return
	}
	vk, err := w.ViewKey(0)
	if err != nil {
		logError(l, "dev seed failed", err)
		return
	}
	node.Register(addrs[0], vk, 0)
	node.Mint(addrs[0], dusk.Dusk(1000))
	l.Info("DEV seed", "address", addrs[0].String(), "balance", dusk.Dusk(1000).String())
	printDevSeedBanner(addrs[0], phrase)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste
func printDevSeedBanner(addr dusk.Address, mnemonic string) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("address #0: %s\n", addr.String())
	fmt.Printf("balance:    %s DUSK\n", dusk.Dusk(1000).String())
	if mnemonic != "" {
		fmt.Printf("mnemonic:   %s\n", mnemonic)
	}
	fmt.Println("==================================================")
}

// logError logs a wallet error with its taxonomy fields.
func logError(l *slog.Logger, msg string, err error) {
	attrs := []any{"err", err}
	if k, ok := errs.KindOf(err); ok {
		attrs = append(attrs, "kind", k.String())
	}
	if c, ok := errs.ClassOf(err); ok {
		attrs = append(attrs, "class", c.String(), "retryable", errs.Retryable(err))
	}
	l.Error(msg, attrs...)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
