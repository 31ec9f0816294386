package dusk

import (
    "github.com/mr-tron/base58"

    "github.com/grutesr1/DUSK-test/internal/errs"
)

// AddressSize is the length of a public spend key.
const AddressSize = 64

// Address is a public spend key, shown to users in base58.
type Address [AddressSize]byte

func (a Address) String() string { return base58.Encode(a[:]) }

// ParseAddress decodes a base58 address. Failures are Base58 or Bytes errors.
func ParseAddress(s string) (Address, error) {
    raw, err := base58.Decode(s)
    if err != nil {
        return Address{}, errs.FromBase58(err)
    }
    if len(raw) != AddressSize {
        return Address{}, errs.FromBytes(errs.BadLength(len(raw), AddressSize))
    }
    var a Address
    copy(a[:], raw)
    return a, nil
}

// MarshalText encodes the address as base58.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText decodes a base58 address.
func (a *Address) UnmarshalText(b []byte) error {
    v, err := ParseAddress(string(b))
    if err != nil {
        return err
    }
    *a = v
    return nil
}
