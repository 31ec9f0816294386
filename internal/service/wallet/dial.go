package wallet

import (
    "context"

    "github.com/grutesr1/DUSK-test/internal/rusk"
)

// RuskDialer connects through the rusk gRPC clients.
func RuskDialer(cfg rusk.Config) Dialer {
    return func(ctx context.Context) (Connection, error) {
        s, err := rusk.Connect(ctx, cfg)
        if err != nil {
            return Connection{}, err
        }
        return Connection{State: s.State, Prover: s.Prover, Closer: s}, nil
    }
}
