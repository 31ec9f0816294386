// Package store derives the wallet's keys from its seed.
//
// The store has no failure modes of its own: it never touches the disk (the
// walletfile package persists the seed) and derivation cannot fail.
package store

import (
    "lukechampine.com/blake3"

    "github.com/grutesr1/DUSK-test/internal/dusk"
)

// SeedSize is the length of a BIP-39 seed.
const SeedSize = 64

const (
    spendContext = "dusk wallet 2024 spend key"
    viewContext  = "dusk wallet 2024 view key"
)

// LocalStore holds a wallet seed and derives per-index keys from it.
type LocalStore struct {
    seed [SeedSize]byte
}

// New copies seed into a store. Seeds shorter than SeedSize are zero padded.
func New(seed []byte) LocalStore {
    var s LocalStore
    copy(s.seed[:], seed)
    return s
}

// Seed returns a copy of the seed.
func (s LocalStore) Seed() [SeedSize]byte { return s.seed }

// Address returns the public spend key for index.
func (s LocalStore) Address(index uint8) dusk.Address {
    var a dusk.Address
    blake3.DeriveKey(a[:], spendContext, s.material(index))
    return a
}

// ViewKey returns the view key for index.
func (s LocalStore) ViewKey(index uint8) dusk.ViewKey {
    var k dusk.ViewKey
    blake3.DeriveKey(k[:], viewContext, s.material(index))
    return k
}

// IndexOf finds the index whose address is a, scanning the first count keys.
func (s LocalStore) IndexOf(a dusk.Address, count int) (uint8, bool) {
    for i := 0; i < count && i < dusk.MaxAddresses; i++ {
        if s.Address(uint8(i)) == a {
            return uint8(i), true
        }
    }
    return 0, false
}

func (s LocalStore) material(index uint8) []byte {
    m := make([]byte, 0, SeedSize+1)
    m = append(m, s.seed[:]...)
    return append(m, index)
}
