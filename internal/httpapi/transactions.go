package httpapi

import (
    "net/http"

    "github.com/grutesr1/DUSK-test/internal/dusk"
    "github.com/grutesr1/DUSK-test/internal/service/wallet"
)

func (g gas) fee() dusk.Fee { return wallet.Gas(g.GasLimit, dusk.Lux(g.GasPrice)) }

// parseAmount reads a decimal DUSK amount. Zero is passed on so the wallet
// can report it.
func parseAmount(w http.ResponseWriter, raw string) (dusk.Lux, bool) {
    amt, err := dusk.ParseDusk(raw)
    if err != nil {
        badRequest(w, "invalid amount: "+err.Error(), "invalid_amount")
        return 0, false
    }
    return amt, true
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
    var req transferRequest
    if !decodeJSON(w, r, &req, false) { return }
    amt, ok := parseAmount(w, req.Amount)
    if !ok { return }
    from := req.From
    if req.FromAddress != "" {
        idx, err := s.wallet.IndexOf(req.FromAddress)
        if err != nil { s.fail(w, r, err); return }
        from = idx
    }
    id, err := s.wallet.Transfer(r.Context(), from, req.To, amt, req.fee())
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusAccepted, txResponse{ID: id})
}

func (s *Server) stake(w http.ResponseWriter, r *http.Request) {
    var req stakeRequest
    if !decodeJSON(w, r, &req, false) { return }
    amt, ok := parseAmount(w, req.Amount)
    if !ok { return }
    id, err := s.wallet.Stake(r.Context(), req.Index, amt, req.fee())
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusAccepted, txResponse{ID: id})
}

func (s *Server) unstake(w http.ResponseWriter, r *http.Request) {
    idx, ok := pathIndex(w, r)
    if !ok { return }
    var req gas
    if !decodeJSON(w, r, &req, true) { return }
    id, err := s.wallet.Unstake(r.Context(), idx, req.fee())
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusAccepted, txResponse{ID: id})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
    idx, ok := pathIndex(w, r)
    if !ok { return }
    var req gas
    if !decodeJSON(w, r, &req, true) { return }
    id, err := s.wallet.Withdraw(r.Context(), idx, req.fee())
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusAccepted, txResponse{ID: id})
}
