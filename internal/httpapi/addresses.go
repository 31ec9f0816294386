package httpapi

import (
    "net/http"
    "strconv"

    chi "github.com/go-chi/chi/v5"
)

// pathIndex parses the {idx} URL parameter. Out of range indexes are left
// to the wallet, which reports them as not owned.
func pathIndex(w http.ResponseWriter, r *http.Request) (uint8, bool) {
    n, err := strconv.ParseUint(chi.URLParam(r, "idx"), 10, 8)
    if err != nil {
        badRequest(w, "invalid address index", "invalid_index")
        return 0, false
    }
    return uint8(n), true
}

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request) {
    addrs, err := s.wallet.Addresses()
    if err != nil { s.fail(w, r, err); return }
    out := make([]addressResponse, 0, len(addrs))
    for i, a := range addrs {
        out = append(out, addressResponse{Index: uint8(i), Address: a.String()})
    }
    toJSON(w, http.StatusOK, struct {
        Addresses []addressResponse `json:"addresses"`
    }{Addresses: out})
}

func (s *Server) newAddress(w http.ResponseWriter, r *http.Request) {
    idx, addr, err := s.wallet.NewAddress()
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusCreated, addressResponse{Index: idx, Address: addr.String()})
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
    idx, ok := pathIndex(w, r)
    if !ok { return }
    b, err := s.wallet.Balance(r.Context(), idx)
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusOK, balanceResponse{
        Index:        idx,
        Value:        b.Value.String(),
        Spendable:    b.Spendable.String(),
        ValueLux:     uint64(b.Value),
        SpendableLux: uint64(b.Spendable),
    })
}

func (s *Server) stakeInfo(w http.ResponseWriter, r *http.Request) {
    idx, ok := pathIndex(w, r)
    if !ok { return }
    st, err := s.wallet.StakeInfo(r.Context(), idx)
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusOK, toStakeResponse(idx, st))
}
