package rusk

import (
    "context"
    "sort"
    "sync"

    "google.golang.org/grpc/codes"
    "google.golang.org/grpc/status"
    "lukechampine.com/blake3"

    "github.com/grutesr1/DUSK-test/internal/dusk"
)

// DevNode is an in-memory node and prover for local development and tests.
// It serves both StateServer and ProverServer.
type DevNode struct {
    mu         sync.Mutex
    height     uint64
    position   uint64
    notes      map[dusk.ViewKey][]dusk.Note
    owners     map[dusk.Address]owner
    stakes     map[dusk.Address]dusk.Stake
    propagated []dusk.ProvenTx
    failures   map[string][]error
    rejection  string
}

type owner struct {
    vk    dusk.ViewKey
    index uint8
}

var (
    _ StateServer  = (*DevNode)(nil)
    _ ProverServer = (*DevNode)(nil)
)

func NewDevNode() *DevNode {
    return &DevNode{
        notes:    make(map[dusk.ViewKey][]dusk.Note),
        owners:   make(map[dusk.Address]owner),
        stakes:   make(map[dusk.Address]dusk.Stake),
        failures: make(map[string][]error),
    }
}

// Register tells the node which view key receives notes sent to addr.
func (n *DevNode) Register(addr dusk.Address, vk dusk.ViewKey, index uint8) {
    n.mu.Lock()
    n.owners[addr] = owner{vk: vk, index: index}
    n.mu.Unlock()
}

// Mint creates a note of value for a registered address.
func (n *DevNode) Mint(addr dusk.Address, value dusk.Lux) {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.height++
    n.mintLocked(addr, value)
}

func (n *DevNode) mintLocked(addr dusk.Address, value dusk.Lux) {
    o, ok := n.owners[addr]
    if !ok || value == 0 {
        return
    }
    n.position++
    note := dusk.Note{Position: n.position, Value: value, Owner: o.index, Height: n.height}
    note.Nullifier = blake3.Sum256(append(addr[:], byte(n.position), byte(n.position>>8), byte(n.position>>16)))
    n.notes[o.vk] = append(n.notes[o.vk], note)
}

// SetStake overrides the staking state of a key.
func (n *DevNode) SetStake(addr dusk.Address, s dusk.Stake) {
    n.mu.Lock()
    n.stakes[addr] = s
    n.mu.Unlock()
}

// FailNext makes the next call to method (e.g. "Notes") return err.
func (n *DevNode) FailNext(method string, err error) {
    n.mu.Lock()
    n.failures[method] = append(n.failures[method], err)
    n.mu.Unlock()
}

// RejectProofs makes the prover refuse every transaction with reason; "" resets.
func (n *DevNode) RejectProofs(reason string) {
    n.mu.Lock()
    n.rejection = reason
    n.mu.Unlock()
}

// Propagated returns the transactions accepted so far.
func (n *DevNode) Propagated() []dusk.ProvenTx {
    n.mu.Lock()
    defer n.mu.Unlock()
    return append([]dusk.ProvenTx(nil), n.propagated...)
}

func (n *DevNode) failure(method string) error {
    q := n.failures[method]
    if len(q) == 0 {
        return nil
    }
    n.failures[method] = q[1:]
    return q[0]
}

func (n *DevNode) Height(context.Context, *HeightRequest) (*HeightResponse, error) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if err := n.failure("Height"); err != nil {
        return nil, err
    }
    return &HeightResponse{Height: n.height}, nil
}

func (n *DevNode) Notes(_ context.Context, req *NotesRequest) (*NotesResponse, error) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if err := n.failure("Notes"); err != nil {
        return nil, err
    }
    var out []dusk.Note
    for _, note := range n.notes[req.ViewKey] {
        if note.Height > req.From {
            out = append(out, note)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
    return &NotesResponse{Notes: out, Height: n.height}, nil
}

func (n *DevNode) Stake(_ context.Context, req *StakeRequest) (*StakeResponse, error) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if err := n.failure("Stake"); err != nil {
        return nil, err
    }
    return &StakeResponse{Stake: n.stakes[req.Key]}, nil
}

func (n *DevNode) Propagate(_ context.Context, req *PropagateRequest) (*PropagateResponse, error) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if err := n.failure("Propagate"); err != nil {
        return nil, err
    }
    tx := req.Tx.Tx
    if len(req.Tx.Proof) == 0 {
        return nil, status.Error(codes.InvalidArgument, "missing proof")
    }
    o, ok := n.owners[tx.Key]
    if !ok {
        return nil, status.Error(codes.NotFound, "unknown sender")
    }
    n.height++
    if err := n.spendLocked(o.vk, tx.Inputs); err != nil {
        return nil, err
    }
    for _, out := range tx.Outputs {
        n.mintLocked(out.Receiver, out.Value)
    }
    st := n.stakes[tx.Key]
    switch tx.Call {
    case dusk.CallStake:
        n.stakes[tx.Key] = dusk.Stake{Staked: true, Amount: tx.Amount, Eligibility: n.height + 2, Reward: st.Reward, Counter: st.Counter + 1}
    case dusk.CallUnstake:
        n.mintLocked(tx.Key, st.Amount)
        n.stakes[tx.Key] = dusk.Stake{Reward: st.Reward, Counter: st.Counter + 1}
    case dusk.CallWithdraw:
        n.mintLocked(tx.Key, st.Reward)
        st.Reward = 0
        st.Counter++
        n.stakes[tx.Key] = st
    }
    n.propagated = append(n.propagated, req.Tx)
    return &PropagateResponse{}, nil
}

func (n *DevNode) spendLocked(vk dusk.ViewKey, inputs []dusk.Note) error {
    notes := n.notes[vk]
    for _, in := range inputs {
        found := false
        for i := range notes {
            if notes[i].Nullifier != in.Nullifier {
                continue
            }
            if notes[i].Spent {
                return status.Error(codes.FailedPrecondition, "note already spent")
            }
            found = true
        }
        if !found {
            return status.Error(codes.NotFound, "unknown note")
        }
    }
    for _, in := range inputs {
        for i := range notes {
            if notes[i].Nullifier == in.Nullifier {
                notes[i].Spent = true
                notes[i].Height = n.height
            }
        }
    }
    return nil
}

func (n *DevNode) Prove(_ context.Context, req *ProveRequest) (*ProveResponse, error) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if err := n.failure("Prove"); err != nil {
        return nil, err
    }
    if n.rejection != "" {
        return &ProveResponse{Rejected: n.rejection}, nil
    }
    body, err := canonical.Marshal(req.Tx)
    if err != nil {
        return nil, status.Error(codes.InvalidArgument, err.Error())
    }
    proof := blake3.Sum256(body)
    return &ProveResponse{Tx: dusk.ProvenTx{Tx: req.Tx, Proof: proof[:]}}, nil
}
