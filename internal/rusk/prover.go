package rusk

import (
    "context"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/errs"
)

// ProverClient asks the proving service to prove transactions. Its failures
// are errs.ProverError values.
type ProverClient struct {
    conn *Conn
}

func NewProverClient(conn *Conn) *ProverClient { return &ProverClient{conn: conn} }

// Check reports whether the prover connection is still up.
func (c *ProverClient) Check(ctx context.Context) error { return c.conn.Check(ctx) }

// Prove returns the proven transaction, or the verifier's rejection.
func (c *ProverClient) Prove(ctx context.Context, tx dusk.Tx) (dusk.ProvenTx, error) {
    var out ProveResponse
    if err := c.conn.invoke(ctx, methodProve, &ProveRequest{Tx: tx}, &out); err != nil {
        return dusk.ProvenTx{}, errs.NewProverError(err)
    }
    if out.Rejected != "" {
        return dusk.ProvenTx{}, errs.Rejected(out.Rejected)
    }
    if len(out.Tx.Proof) == 0 {
        return dusk.ProvenTx{}, errs.NewProverError(errs.InvalidData("empty proof"))
    }
    return out.Tx, nil
}
