package wallet

import (
    "context"
    "errors"
    "time"

    "github.com/cenkalti/backoff/v5"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/errs"
)

// RetryPolicy bounds how long Sync keeps retrying transient node failures.
type RetryPolicy struct {
    MaxTries        uint
    InitialInterval time.Duration
    MaxInterval     time.Duration
}

func (p RetryPolicy) options() []backoff.RetryOption {
    b := backoff.NewExponentialBackOff()
    b.InitialInterval = 200 * time.Millisecond
    b.MaxInterval = 5 * time.Second
    if p.InitialInterval > 0 {
        b.InitialInterval = p.InitialInterval
    }
    if p.MaxInterval > 0 {
        b.MaxInterval = p.MaxInterval
    }
    tries := p.MaxTries
    if tries == 0 {
        tries = 5
    }
    return []backoff.RetryOption{backoff.WithBackOff(b), backoff.WithMaxTries(tries)}
}

// Sync refreshes the cached notes of every address.
func (w *Wallet) Sync(ctx context.Context) error {
    const op = "sync"
    w.mu.Lock()
    defer w.mu.Unlock()
    conn, err := w.session(op, 0)
    if err != nil {
        return err
    }
    for i := uint8(0); i < w.addresses; i++ {
        if err := w.syncKey(ctx, conn, w.keys.ViewKey(i)); err != nil {
            return errs.WithOp(op, err)
        }
    }
    return nil
}

// syncKey retries retryable state failures with exponential backoff. The
// returned error is always converted.
func (w *Wallet) syncKey(ctx context.Context, conn *Connection, vk dusk.ViewKey) error {
    attempt := 0
    _, err := backoff.Retry(ctx, func() (struct{}, error) {
        attempt++
        err := errs.StateFailure(conn.State.Sync(ctx, vk))
        if err == nil {
            return struct{}{}, nil
        }
        if !errs.Retryable(err) {
            return struct{}{}, backoff.Permanent(err)
        }
        w.log.Debug("sync retry", "attempt", attempt, "err", err)
        return struct{}{}, err
    }, w.cfg.Retry.options()...)
    if err == nil {
        return nil
    }
    var e *errs.Error
    if errors.As(err, &e) {
        return e
    }
    // context cancelled between attempts
    return errs.StateFailure(err)
}
