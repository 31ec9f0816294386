package httpapi

import (
    "net/http"
)

func (s *Server) walletStatus(w http.ResponseWriter, r *http.Request) {
    exists, err := s.wallet.Exists()
    if err != nil { s.fail(w, r, err); return }
    open := s.wallet.IsOpen()
    toJSON(w, http.StatusOK, walletStatusResponse{
        Exists: exists,
        Open:   open,
        Online: open && s.wallet.IsOnline(r.Context()),
    })
}

func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
    var req createWalletRequest
    if !decodeJSON(w, r, &req, false) { return }
    phrase, err := s.wallet.Create(req.Password, req.Mnemonic)
    if err != nil { s.fail(w, r, err); return }
    toJSON(w, http.StatusCreated, createWalletResponse{Mnemonic: phrase})
}

func (s *Server) openWallet(w http.ResponseWriter, r *http.Request) {
    var req openWalletRequest
    if !decodeJSON(w, r, &req, false) { return }
    if err := s.wallet.Open(req.Password); err != nil { s.fail(w, r, err); return }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) closeWallet(w http.ResponseWriter, r *http.Request) {
    if err := s.wallet.Close(); err != nil { s.fail(w, r, err); return }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request) {
    if err := s.wallet.Connect(r.Context()); err != nil { s.fail(w, r, err); return }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) disconnectWallet(w http.ResponseWriter, r *http.Request) {
    if err := s.wallet.Disconnect(); err != nil { s.fail(w, r, err); return }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
    if err := s.wallet.Sync(r.Context()); err != nil { s.fail(w, r, err); return }
    w.WriteHeader(http.StatusNoContent)
}
