package httpapi

import (
    "github.com/grutesr1/DUSK-test/internal/service/wallet"
    "github.com/grutesr1/DUSK-test/internal/storage/memory"
    "github.com/grutesr1/DUSK-test/internal/storage/postgres"
)

// Compile-time interface assertions documenting what the server is wired to.
var (
    _ Wallet       = (*wallet.Wallet)(nil)
    _ ReadyChecker = (*memory.Store)(nil)
    _ ReadyChecker = (*postgres.Store)(nil)
)
