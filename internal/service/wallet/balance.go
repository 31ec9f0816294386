package wallet

import (
    "context"
    "sort"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/errs"
)

// Balance of one address. Spendable is what a single transaction can move:
// the sum of the largest MaxInputNotes unspent notes.
type Balance struct {
    Value     dusk.Lux
    Spendable dusk.Lux
}

// Balance syncs the address and sums its unspent notes.
func (w *Wallet) Balance(ctx context.Context, idx uint8) (Balance, error) {
    const op = "balance"
    w.mu.Lock()
    defer w.mu.Unlock()
    conn, err := w.session(op, idx)
    if err != nil {
        return Balance{}, err
    }
    notes, err := w.unspent(ctx, conn, idx)
    if err != nil {
        return Balance{}, errs.WithOp(op, err)
    }
    var b Balance
    for i, n := range notes {
        b.Value = b.Value.Add(n.Value)
        if i < dusk.MaxInputNotes {
            b.Spendable = b.Spendable.Add(n.Value)
        }
    }
    return b, nil
}

// StakeInfo returns the staking state of an address.
func (w *Wallet) StakeInfo(ctx context.Context, idx uint8) (dusk.Stake, error) {
    const op = "stake info"
    w.mu.Lock()
    defer w.mu.Unlock()
    conn, err := w.session(op, idx)
    if err != nil {
        return dusk.Stake{}, err
    }
    st, err := conn.State.Stake(ctx, w.keys.Address(idx))
    if err != nil {
        return dusk.Stake{}, errs.WithOp(op, errs.StateFailure(err))
    }
    return st, nil
}

// unspent syncs idx and returns its unspent notes, largest first.
func (w *Wallet) unspent(ctx context.Context, conn *Connection, idx uint8) ([]dusk.Note, error) {
    vk := w.keys.ViewKey(idx)
    if err := w.syncKey(ctx, conn, vk); err != nil {
        return nil, err
    }
    notes, err := conn.State.Notes(ctx, vk)
    if err != nil {
        return nil, errs.StateFailure(err)
    }
    out := notes[:0:0]
    for _, n := range notes {
        if !n.Spent {
            out = append(out, n)
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
    return out, nil
}

// pickInputs chooses at most MaxInputNotes notes covering required.
// notes must be sorted largest first.
// A required amount of dusk.MaxLux is an overflowed request and is never covered.
func pickInputs(notes []dusk.Note, required dusk.Lux) ([]dusk.Note, error) {
    var total dusk.Lux
    for _, n := range notes {
        total = total.Add(n.Value)
    }
    if total < required || required == dusk.MaxLux {
        return nil, errs.NotEnoughBalance(uint64(total), uint64(required))
    }
    var sum dusk.Lux
    for i, n := range notes {
        if i == dusk.MaxInputNotes {
            break
        }
        sum = sum.Add(n.Value)
        if sum >= required {
            return notes[:i+1], nil
        }
    }
    return nil, errs.ErrNoteCombinationProblem
}
