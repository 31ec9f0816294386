package wallet

import (
    "context"

    "github.com/google/uuid"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/errs"
    "github.com/grutesr1/DUSK-test/internal/rusk"
)

// Gas picks DefaultGasLimit and DefaultGasPrice for zero fields.
func Gas(limit uint64, price dusk.Lux) dusk.Fee {
    if limit == 0 {
        limit = dusk.DefaultGasLimit
    }
    if price == 0 {
        price = dusk.DefaultGasPrice
    }
    return dusk.Fee{GasLimit: limit, GasPrice: price}
}

// Transfer sends amount from the address at index from to the recipient
// given in base58. It returns the id of the propagated transaction.
func (w *Wallet) Transfer(ctx context.Context, from uint8, to string, amount dusk.Lux, fee dusk.Fee) (uuid.UUID, error) {
    const op = "transfer"
    w.mu.Lock()
    defer w.mu.Unlock()
    if _, err := w.session(op, from); err != nil {
        return uuid.Nil, err
    }
    receiver, err := dusk.ParseAddress(to)
    if err != nil {
        return uuid.Nil, errs.WithOp(op, errs.BadAddress(err))
    }
    if amount == 0 {
        return uuid.Nil, errs.WithOp(op, errs.ErrAmountIsZero)
    }
    tx := dusk.Tx{Call: dusk.CallTransfer, Amount: amount}
    tx.Outputs = []dusk.Output{{Receiver: receiver, Value: amount}}
    return w.execute(ctx, op, from, tx, fee)
}

// Stake locks amount from the address at idx. Only allowed against a node
// running on this machine.
func (w *Wallet) Stake(ctx context.Context, idx uint8, amount dusk.Lux, fee dusk.Fee) (uuid.UUID, error) {
    const op = "stake"
    w.mu.Lock()
    defer w.mu.Unlock()
    conn, err := w.session(op, idx)
    if err != nil {
        return uuid.Nil, err
    }
    if !rusk.IsLocal(w.cfg.RuskAddr) {
        return uuid.Nil, errs.WithOp(op, errs.ErrStakingNotAllowed)
    }
    if amount == 0 {
        return uuid.Nil, errs.WithOp(op, errs.ErrAmountIsZero)
    }
    st, err := conn.State.Stake(ctx, w.keys.Address(idx))
    if err != nil {
        return uuid.Nil, errs.WithOp(op, errs.StateFailure(err))
    }
    if st.Staked {
        return uuid.Nil, errs.WithOp(op, errs.AlreadyStaked(idx))
    }
    return w.execute(ctx, op, idx, dusk.Tx{Call: dusk.CallStake, Amount: amount}, fee)
}

// Unstake releases the stake of the address at idx back to it.
func (w *Wallet) Unstake(ctx context.Context, idx uint8, fee dusk.Fee) (uuid.UUID, error) {
    const op = "unstake"
    w.mu.Lock()
    defer w.mu.Unlock()
    conn, err := w.session(op, idx)
    if err != nil {
        return uuid.Nil, err
    }
    st, err := conn.State.Stake(ctx, w.keys.Address(idx))
    if err != nil {
        return uuid.Nil, errs.WithOp(op, errs.StateFailure(err))
    }
    if !st.Staked {
        return uuid.Nil, errs.WithOp(op, errs.NotStaked(idx))
    }
    return w.execute(ctx, op, idx, dusk.Tx{Call: dusk.CallUnstake}, fee)
}

// Withdraw claims the accumulated staking reward of the address at idx.
func (w *Wallet) Withdraw(ctx context.Context, idx uint8, fee dusk.Fee) (uuid.UUID, error) {
    const op = "withdraw"
    w.mu.Lock()
    defer w.mu.Unlock()
    conn, err := w.session(op, idx)
    if err != nil {
        return uuid.Nil, err
    }
    st, err := conn.State.Stake(ctx, w.keys.Address(idx))
    if err != nil {
        return uuid.Nil, errs.WithOp(op, errs.StateFailure(err))
    }
    if st.Reward == 0 {
        return uuid.Nil, errs.WithOp(op, errs.NoReward(idx))
    }
    return w.execute(ctx, op, idx, dusk.Tx{Call: dusk.CallWithdraw}, fee)
}

// execute funds tx from the address at idx, proves it and hands it to the
// node. tx.Amount is moved out of the sender for transfers and stakes.
func (w *Wallet) execute(ctx context.Context, op string, idx uint8, tx dusk.Tx, fee dusk.Fee) (uuid.UUID, error) {
    if fee.GasLimit < dusk.MinGasLimit {
        return uuid.Nil, errs.WithOp(op, errs.ErrNotEnoughGas)
    }
    // saturates at MaxLux, which pickInputs refuses
    required := fee.Max()
    if tx.Call == dusk.CallTransfer || tx.Call == dusk.CallStake {
        required = required.Add(tx.Amount)
    }
    notes, err := w.unspent(ctx, w.conn, idx)
    if err != nil {
        return uuid.Nil, errs.WithOp(op, err)
    }
    inputs, err := pickInputs(notes, required)
    if err != nil {
        return uuid.Nil, errs.WithOp(op, err)
    }

    sender := w.keys.Address(idx)
    tx.ID = uuid.New()
    tx.Sender = idx
    tx.Key = sender
    tx.Inputs = inputs
    tx.Fee = fee
    if change := tx.Spent() - required; change > 0 {
        tx.Outputs = append(tx.Outputs, dusk.Output{Receiver: sender, Value: change})
    }

    proven, err := w.conn.Prover.Prove(ctx, tx)
    if err != nil {
        return uuid.Nil, errs.WithOp(op, errs.ProverFailure(err))
    }
    if err := w.conn.State.Propagate(ctx, proven); err != nil {
        return uuid.Nil, errs.WithOp(op, errs.StateFailure(err))
    }
    w.log.Info("transaction propagated", "op", op, "tx", tx.ID, "inputs", len(inputs), "fee", fee.Max().String())
    return tx.ID, nil
}
