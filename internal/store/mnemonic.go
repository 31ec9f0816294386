package store

import (
    "crypto/rand"
    "strings"

    "github.com/tyler-smith/go-bip39"

    "github.com/grutesr1/DUSK-test/internal/errs"
)

const entropyBits = 256

// NewMnemonic generates a fresh 24 word recovery phrase.
func NewMnemonic() (string, error) {
    entropy := make([]byte, entropyBits/8)
    if _, err := rand.Read(entropy); err != nil {
        return "", errs.FromRng(err)
    }
    phrase, err := bip39.NewMnemonic(entropy)
    if err != nil {
        return "", errs.FromMnemonic(err)
    }
    return phrase, nil
}

// FromMnemonic validates a recovery phrase and builds the store from its seed.
func FromMnemonic(phrase string) (LocalStore, error) {
    phrase = strings.Join(strings.Fields(phrase), " ")
    seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
    if err != nil {
        return LocalStore{}, errs.FromMnemonic(err)
    }
    return New(seed), nil
}
