package rusk

import (
    "context"
    "errors"
    "log/slog"

    "google.golang.org/grpc"
)

// Config addresses the node and the prover.
type Config struct {
    NodeAddr   string
    ProverAddr string
    Cache      Cache
    Logger     *slog.Logger
    // DialOptions are appended to every dial, e.g. a custom dialer in tests.
    DialOptions []grpc.DialOption
}

// Session holds live connections to the node and the prover.
type Session struct {
    State  *StateClient
    Prover *ProverClient

    node   *Conn
    prover *Conn
}

// Connect dials the node, then the prover. Either failing closes what was opened.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
    node, err := Dial(ctx, cfg.NodeAddr, RoleNode, cfg.DialOptions...)
    if err != nil {
        return nil, err
    }
    proverAddr := cfg.ProverAddr
    if proverAddr == "" {
        proverAddr = cfg.NodeAddr
    }
    prover, err := Dial(ctx, proverAddr, RoleProver, cfg.DialOptions...)
    if err != nil {
        _ = node.Close()
        return nil, err
    }
    return &Session{
        State:  NewStateClient(node, cfg.Cache, cfg.Logger),
        Prover: NewProverClient(prover),
        node:   node,
        prover: prover,
    }, nil
}

// Close closes both connections.
func (s *Session) Close() error {
    return errors.Join(s.node.Close(), s.prover.Close())
}
