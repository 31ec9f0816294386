package memory

import "github.com/grutesr1/DUSK-test/internal/rusk"

// Compile-time interface assertions documenting which interfaces Store satisfies.
var _ rusk.Cache = (*Store)(nil)
