// Package dusk holds the entities the wallet reasons about: amounts, addresses,
// notes, stakes and unproven transactions.
package dusk

import (
    "encoding/hex"
    "math/bits"

    "github.com/google/uuid"
)

const (
    // MaxInputNotes is the most notes a single transaction may spend.
    MaxInputNotes = 4
    // MaxAddresses bounds the key indexes a wallet derives.
    MaxAddresses = 255
    // MinGasLimit is the smallest gas limit the node accepts for a transaction.
    MinGasLimit uint64 = 350_000_000
    // DefaultGasLimit is used when the caller does not set one.
    DefaultGasLimit uint64 = 500_000_000
    // DefaultGasPrice in lux per unit of gas.
    DefaultGasPrice Lux = 1
)

// Note is a spendable output owned by one of the wallet's keys.
type Note struct {
    Position  uint64   `cbor:"1,keyasint"`
    Value     Lux      `cbor:"2,keyasint"`
    Owner     uint8    `cbor:"3,keyasint"`
    Height    uint64   `cbor:"4,keyasint"`
    Nullifier [32]byte `cbor:"5,keyasint"`
    Spent     bool     `cbor:"6,keyasint"`
}

// Stake is the staking state of one key as reported by the node.
type Stake struct {
    Staked      bool   `cbor:"1,keyasint"`
    Amount      Lux    `cbor:"2,keyasint"`
    Eligibility uint64 `cbor:"3,keyasint"`
    Reward      Lux    `cbor:"4,keyasint"`
    Counter     uint64 `cbor:"5,keyasint"`
}

// Fee is the gas budget attached to a transaction.
type Fee struct {
    GasLimit uint64 `cbor:"1,keyasint"`
    GasPrice Lux    `cbor:"2,keyasint"`
}

// Max is the most the fee can cost, MaxLux when limit times price overflows.
func (f Fee) Max() Lux {
    hi, lo := bits.Mul64(f.GasLimit, uint64(f.GasPrice))
    if hi != 0 {
        return MaxLux
    }
    return Lux(lo)
}

// CallKind enumerates the contract calls a wallet issues.
type CallKind string

const (
    CallTransfer CallKind = "transfer"
    CallStake    CallKind = "stake"
    CallUnstake  CallKind = "unstake"
    CallWithdraw CallKind = "withdraw"
)

// Output is a note the transaction creates.
type Output struct {
    Receiver Address `cbor:"1,keyasint"`
    Value    Lux     `cbor:"2,keyasint"`
}

// Tx is an unproven transaction.
type Tx struct {
    ID      uuid.UUID `cbor:"1,keyasint"`
    Call    CallKind  `cbor:"2,keyasint"`
    Sender  uint8     `cbor:"3,keyasint"`
    Inputs  []Note    `cbor:"4,keyasint"`
    Outputs []Output  `cbor:"5,keyasint"`
    Fee     Fee       `cbor:"6,keyasint"`
    Amount  Lux       `cbor:"7,keyasint"`
    // Key is the sender's public key, used by stake calls.
    Key Address `cbor:"8,keyasint"`
}

// Spent sums the value of the input notes.
func (t Tx) Spent() Lux {
    var sum Lux
    for _, n := range t.Inputs {
        sum = sum.Add(n.Value)
    }
    return sum
}

// ProvenTx is a transaction together with its proof, ready for the node.
type ProvenTx struct {
    Tx    Tx     `cbor:"1,keyasint"`
    Proof []byte `cbor:"2,keyasint"`
}

// ViewKey lets a node find the notes owned by one key without being able to spend them.
type ViewKey [32]byte

func (k ViewKey) String() string { return hex.EncodeToString(k[:]) }
