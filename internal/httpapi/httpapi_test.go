package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/grutesr1/DUSK-test/internal/dusk"
	"github.com/grutesr1/DUSK-test/internal/errs"
	"github.com/grutesr1/DUSK-test/internal/service/wallet"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// stubWallet returns whatever its fields say; unset operations succeed.
type stubWallet struct {
	open      bool
	online    bool
	err       error
	transfers int
	lastFrom  uint8
	lastTo    string
	lastFee   dusk.Fee
	balance   wallet.Balance

	// when release is set the first transfer signals entered and waits
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
}

func (w *stubWallet) Create(string, string) (string, error) { return "phrase", w.err }
func (w *stubWallet) Open(string) error { return w.err }
func (w *stubWallet) Close() error { return nil }
func (w *stubWallet) Exists() (bool, error) { return w.open, w.err }
func (w *stubWallet) IsOpen() bool { return w.open }
func (w *stubWallet) Connect(context.Context) error { return w.err }
func (w *stubWallet) Disconnect() error {
	w.online = false
	return w.err
}
func (w *stubWallet) IsOnline(context.Context) bool { return w.online }
func (w *stubWallet) Addresses() ([]dusk.Address, error) { return []dusk.Address{{1}}, w.err }
func (w *stubWallet) NewAddress() (uint8, dusk.Address, error) { return 1, dusk.Address{2}, w.err }
func (w *stubWallet) IndexOf(addr string) (uint8, error) {
	if addr != (dusk.Address{2}).String() {
		return 0, errs.WithOp("address index", errs.ErrAddressNotOwned)
	}
	return 1, w.err
}
func (w *stubWallet) Balance(context.Context, uint8) (wallet.Balance, error) {
	return w.balance, w.err
}
func (w *stubWallet) StakeInfo(context.Context, uint8) (dusk.Stake, error) {
	return dusk.Stake{Staked: true, Amount: dusk.Dusk(1000)}, w.err
}
func (w *stubWallet) Transfer(_ context.Context, from uint8, to string, _ dusk.Lux, fee dusk.Fee) (uuid.UUID, error) {
	w.mu.Lock()
	w.transfers++
	n := w.transfers
	w.lastFrom, w.lastTo, w.lastFee = from, to, fee
	w.mu.Unlock()
	if w.release != nil && n == 1 {
		w.entered <- struct{}{}
		<-w.release
	}
	if w.err != nil {
		return uuid.Nil, w.err
	}
	return uuid.New(), nil
}
func (w *stubWallet) Stake(context.Context, uint8, dusk.Lux, dusk.Fee) (uuid.UUID, error) {
	return uuid.New(), w.err
}
func (w *stubWallet) Unstake(context.Context, uint8, dusk.Fee) (uuid.UUID, error) {
	return uuid.New(), w.err
}
func (w *stubWallet) Withdraw(context.Context, uint8, dusk.Fee) (uuid.UUID, error) {
	return uuid.New(), w.err
}
func (w *stubWallet) Sync(context.Context) error { return w.err }

type readyFunc func(context.Context) error

func (f readyFunc) Ready(ctx context.Context) error { return f(ctx) }

type errResp struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Class     string `json:"class"`
	Retryable bool   `json:"retryable"`
}

func do(t *testing.T, h http.Handler, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			raw, _ := json.Marshal(b)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) errResp {
	t.Helper()
	var e errResp
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return e
}

func TestMapError(t *testing.T) {
	unavailable := errs.StateFailure(status.Error(codes.Unavailable, "node down"))
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{errs.NotEnoughBalance(1, 2), http.StatusUnprocessableEntity, "not_enough_balance"},
		{errs.ErrAddressNotOwned, http.StatusUnprocessableEntity, "address_not_owned"},
		{errs.ErrWalletFileNotExists, http.StatusUnprocessableEntity, "wallet_file_not_exists"},
		{errs.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errs.ErrOffline, http.StatusServiceUnavailable, "offline"},
		{errs.ErrStatusWalletConnected, http.StatusConflict, "status_wallet_connected"},
		{errs.ErrInvalidPassword, http.StatusUnauthorized, "invalid_credential"},
		{errs.ErrInvalidMnemonicPhrase, http.StatusUnauthorized, "invalid_credential"},
		{errs.ErrWalletFileCorrupted, http.StatusInternalServerError, "wallet_file_corrupted"},
		{errs.NotDirectory("/tmp/x"), http.StatusInternalServerError, "not_directory"},
		{unavailable, http.StatusServiceUnavailable, "state"},
		{errs.ProverFailure(errs.Rejected("spent")), http.StatusUnprocessableEntity, "prover"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		st, code, msg := mapError(tc.err)
		if st != tc.status || code != tc.code || msg == "" {
			t.Fatalf("%v: got (%d, %s, %q), want (%d, %s)", tc.err, st, code, msg, tc.status, tc.code)
		}
	}
}

func TestInsufficientBalanceEnvelope(t *testing.T) {
	w := &stubWallet{err: errs.WithOp("transfer", errs.NotEnoughBalance(uint64(dusk.Dusk(1)), 5_500_000_000))}
	h := New(w, nil, testLogger()).Handler()

	rr := do(t, h, http.MethodPost, "/v1/transfers", map[string]any{"from": 0, "to": "abc", "amount": "5"}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: %d %s", rr.Code, rr.Body.String())
	}
	e := decodeErr(t, rr)
	if e.Code != "not_enough_balance" || e.Class != "domain" || e.Retryable {
		t.Fatalf("envelope: %+v", e)
	}
	if !strings.Contains(e.Error, "available 1 DUSK, required 5.5 DUSK") {
		t.Fatalf("amounts missing from message: %q", e.Error)
	}
	if strings.Contains(e.Error, "transfer:") {
		t.Fatalf("operation leaked into public message: %q", e.Error)
	}
	if w.lastFee != wallet.Gas(0, 0) {
		t.Fatalf("default gas not applied: %+v", w.lastFee)
	}
}

func TestWrongPasswordIsGeneric(t *testing.T) {
	h := New(&stubWallet{err: errs.WithOp("open wallet", errs.ErrInvalidPassword)}, nil, testLogger()).Handler()
	rr := do(t, h, http.MethodPost, "/v1/wallet/open", map[string]string{"password": "nope"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rr.Code)
	}
	e := decodeErr(t, rr)
	if e.Error != "invalid credential" || e.Code != "invalid_credential" || e.Class != "security" {
		t.Fatalf("envelope: %+v", e)
	}
}

func TestTransientIsRetryable(t *testing.T) {
	err := errs.WithOp("sync", errs.StateFailure(status.Error(codes.Unavailable, "node restarting")))
	h := New(&stubWallet{err: err}, nil, testLogger()).Handler()
	rr := do(t, h, http.MethodPost, "/v1/sync", nil, nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", rr.Code)
	}
	e := decodeErr(t, rr)
	if !e.Retryable || e.Class != "transient" || e.Code != "state" {
		t.Fatalf("envelope: %+v", e)
	}
	if strings.Contains(e.Error, "node restarting") {
		t.Fatalf("remote detail leaked: %q", e.Error)
	}
}

func TestBadRequests(t *testing.T) {
	h := New(&stubWallet{open: true}, nil, testLogger()).Handler()

	rr := do(t, h, http.MethodPost, "/v1/transfers", `{"from":0,`, nil)
	if rr.Code != http.StatusBadRequest || decodeErr(t, rr).Code != "invalid_json" {
		t.Fatalf("broken json: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodPost, "/v1/transfers", map[string]any{"to": "x", "amount": "1", "extra": true}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field accepted: %d", rr.Code)
	}
	rr = do(t, h, http.MethodPost, "/v1/transfers", map[string]any{"to": "x", "amount": "0.0000000001"}, nil)
	if rr.Code != http.StatusBadRequest || decodeErr(t, rr).Code != "invalid_amount" {
		t.Fatalf("sub-lux amount: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodGet, "/v1/addresses/x/balance", nil, nil)
	if rr.Code != http.StatusBadRequest || decodeErr(t, rr).Code != "invalid_index" {
		t.Fatalf("bad index: %d", rr.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/wallet/open", strings.NewReader(`{"password":"x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content type: %d", rec.Code)
	}
}

func TestBalanceAndStake(t *testing.T) {
	w := &stubWallet{open: true, online: true, balance: wallet.Balance{Value: dusk.Lux(6_500_000_000), Spendable: dusk.Dusk(4)}}
	h := New(w, nil, testLogger()).Handler()

	rr := do(t, h, http.MethodGet, "/v1/addresses/0/balance", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	var b balanceResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &b)
	if b.Value != "6.5" || b.Spendable != "4" || b.ValueLux != 6_500_000_000 {
		t.Fatalf("balance: %+v", b)
	}
	rr = do(t, h, http.MethodGet, "/v1/addresses/0/stake", nil, nil)
	var st stakeResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &st)
	if rr.Code != http.StatusOK || !st.Staked || st.Amount != "1000" {
		t.Fatalf("stake: %d %+v", rr.Code, st)
	}
	rr = do(t, h, http.MethodPost, "/v1/stakes/0/withdraw", nil, nil)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("withdraw without body: %d %s", rr.Code, rr.Body.String())
	}
}

func TestIdempotentTransfer(t *testing.T) {
	w := &stubWallet{open: true, online: true}
	h := New(w, nil, testLogger()).Handler()
	body := map[string]any{"from": 0, "to": "abc", "amount": "1.5"}
	key := map[string]string{"Idempotency-Key": "k-1"}

	first := do(t, h, http.MethodPost, "/v1/transfers", body, key)
	second := do(t, h, http.MethodPost, "/v1/transfers", body, key)
	if first.Code != http.StatusAccepted || second.Code != http.StatusAccepted {
		t.Fatalf("status: %d %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() || w.transfers != 1 {
		t.Fatalf("transfer repeated: %d calls", w.transfers)
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay not flagged")
	}
	body["amount"] = "2"
	if rr := do(t, h, http.MethodPost, "/v1/transfers", body, key); rr.Code != http.StatusConflict {
		t.Fatalf("mismatched body: %d", rr.Code)
	}
}

func TestTransientFailureNotRemembered(t *testing.T) {
	w := &stubWallet{err: errs.StateFailure(status.Error(codes.Unavailable, "down"))}
	h := New(w, nil, testLogger()).Handler()
	body := map[string]any{"from": 0, "to": "abc", "amount": "1"}
	key := map[string]string{"Idempotency-Key": "k-2"}
	_ = do(t, h, http.MethodPost, "/v1/transfers", body, key)
	w.err = nil
	if rr := do(t, h, http.MethodPost, "/v1/transfers", body, key); rr.Code != http.StatusAccepted || w.transfers != 2 {
		t.Fatalf("retry after transient failure: %d, %d calls", rr.Code, w.transfers)
	}
}

func TestConcurrentIdempotentTransferRunsOnce(t *testing.T) {
	w := &stubWallet{open: true, online: true, entered: make(chan struct{}, 1), release: make(chan struct{})}
	h := New(w, nil, testLogger()).Handler()
	body := map[string]any{"from": 0, "to": "abc", "amount": "1"}
	key := map[string]string{"Idempotency-Key": "k-3"}

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- do(t, h, http.MethodPost, "/v1/transfers", body, key) }()
	<-w.entered

	dup := do(t, h, http.MethodPost, "/v1/transfers", body, key)
	if dup.Code != http.StatusConflict || decodeErr(t, dup).Code != "idempotency_in_progress" {
		t.Fatalf("duplicate while in flight: %d %s", dup.Code, dup.Body.String())
	}
	close(w.release)
	first := <-done
	if first.Code != http.StatusAccepted {
		t.Fatalf("first: %d %s", first.Code, first.Body.String())
	}
	replay := do(t, h, http.MethodPost, "/v1/transfers", body, key)
	if replay.Header().Get("Idempotent-Replayed") != "true" || replay.Body.String() != first.Body.String() {
		t.Fatalf("not replayed: %d %s", replay.Code, replay.Body.String())
	}
	if w.transfers != 1 {
		t.Fatalf("wallet.Transfer ran %d times for one key", w.transfers)
	}
}

func TestOnlySettledOutcomesRemembered(t *testing.T) {
	w := &stubWallet{err: errs.WithOp("transfer", errs.ErrUnauthorized)}
	h := New(w, nil, testLogger()).Handler()
	body := map[string]any{"from": 0, "to": "abc", "amount": "1"}
	key := map[string]string{"Idempotency-Key": "k-4"}

	if rr := do(t, h, http.MethodPost, "/v1/transfers", body, key); rr.Code != http.StatusUnauthorized {
		t.Fatalf("locked wallet: %d", rr.Code)
	}
	w.err = errs.WithOp("transfer", errs.NotEnoughBalance(1, 2))
	if rr := do(t, h, http.MethodPost, "/v1/transfers", body, key); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("after opening: %d", rr.Code)
	}
	w.err = nil
	rr := do(t, h, http.MethodPost, "/v1/transfers", body, key)
	if rr.Code != http.StatusUnprocessableEntity || rr.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("domain rejection should be replayed: %d", rr.Code)
	}
	if w.transfers != 2 {
		t.Fatalf("transfer calls: %d", w.transfers)
	}
}

func TestWalletStatusAndDisconnect(t *testing.T) {
	w := &stubWallet{open: true, online: true}
	h := New(w, nil, testLogger()).Handler()

	rr := do(t, h, http.MethodGet, "/v1/wallet", nil, nil)
	var st walletStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil || rr.Code != http.StatusOK {
		t.Fatalf("status: %d %v", rr.Code, err)
	}
	if !st.Exists || !st.Open || !st.Online {
		t.Fatalf("status: %+v", st)
	}
	if rr := do(t, h, http.MethodPost, "/v1/wallet/disconnect", nil, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("disconnect: %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/v1/wallet", nil, nil)
	_ = json.Unmarshal(rr.Body.Bytes(), &st)
	if !st.Open || st.Online {
		t.Fatalf("after disconnect: %+v", st)
	}
}

func TestTransferFromAddress(t *testing.T) {
	w := &stubWallet{open: true, online: true}
	h := New(w, nil, testLogger()).Handler()
	body := map[string]any{"from_address": (dusk.Address{2}).String(), "to": "abc", "amount": "1"}
	if rr := do(t, h, http.MethodPost, "/v1/transfers", body, nil); rr.Code != http.StatusAccepted || w.lastFrom != 1 {
		t.Fatalf("own address: %d from=%d", rr.Code, w.lastFrom)
	}
	body["from_address"] = (dusk.Address{9}).String()
	rr := do(t, h, http.MethodPost, "/v1/transfers", body, nil)
	if rr.Code != http.StatusUnprocessableEntity || decodeErr(t, rr).Code != "address_not_owned" {
		t.Fatalf("foreign address: %d %s", rr.Code, rr.Body.String())
	}
	if w.transfers != 1 {
		t.Fatalf("transfer ran for a foreign sender")
	}
}

func TestHealthAndReady(t *testing.T) {
	h := New(&stubWallet{}, nil, testLogger()).Handler()
	if rr := do(t, h, http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/readyz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rr.Code)
	}
	down := readyFunc(func(context.Context) error { return errors.New("db down") })
	h = New(&stubWallet{}, down, testLogger()).Handler()
	if rr := do(t, h, http.MethodGet, "/readyz", nil, nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with cache down: %d", rr.Code)
	}
	h = New(&stubWallet{open: true}, nil, testLogger()).Handler()
	if rr := do(t, h, http.MethodGet, "/readyz", nil, nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz while offline: %d", rr.Code)
	}
}

func TestErrorsCountedByKindAndClass(t *testing.T) {
	h := New(&stubWallet{err: errs.ErrNotEnoughGas}, nil, testLogger()).Handler()
	_ = do(t, h, http.MethodPost, "/v1/transfers", map[string]any{"to": "abc", "amount": "1"}, nil)
	rr := do(t, h, http.MethodGet, "/metrics", nil, nil)
	if !strings.Contains(rr.Body.String(), `wallet_errors_total{class="domain",kind="not_enough_gas"}`) {
		t.Fatalf("error metric missing")
	}
}

func TestWalletLifecycleOverHTTP(t *testing.T) {
	w := wallet.New(wallet.Config{Dir: t.TempDir(), Name: "http", Logger: testLogger()})
	h := New(w, nil, testLogger()).Handler()
	phrase := strings.Repeat("abandon ", 23) + "art"

	rr := do(t, h, http.MethodGet, "/v1/addresses", nil, nil)
	if rr.Code != http.StatusUnauthorized || decodeErr(t, rr).Code != "unauthorized" {
		t.Fatalf("locked: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodPost, "/v1/wallet", map[string]string{"password": "pw", "mnemonic": phrase}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodPost, "/v1/wallet", map[string]string{"password": "pw", "mnemonic": phrase}, nil)
	if rr.Code != http.StatusUnprocessableEntity || decodeErr(t, rr).Code != "wallet_file_exists" {
		t.Fatalf("create twice: %d %s", rr.Code, rr.Body.String())
	}
	if rr = do(t, h, http.MethodPost, "/v1/addresses", nil, nil); rr.Code != http.StatusCreated {
		t.Fatalf("new address: %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/v1/addresses/1/balance", nil, nil)
	if rr.Code != http.StatusServiceUnavailable || decodeErr(t, rr).Code != "offline" {
		t.Fatalf("offline balance: %d %s", rr.Code, rr.Body.String())
	}
	if rr = do(t, h, http.MethodPost, "/v1/wallet/close", nil, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("close: %d", rr.Code)
	}
	rr = do(t, h, http.MethodPost, "/v1/wallet/open", map[string]string{"password": "wrong"}, nil)
	if rr.Code != http.StatusUnauthorized || decodeErr(t, rr).Error != "invalid credential" {
		t.Fatalf("wrong password: %d %s", rr.Code, rr.Body.String())
	}
	if rr = do(t, h, http.MethodPost, "/v1/wallet/open", map[string]string{"password": "pw"}, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("open: %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/v1/addresses", nil, nil)
	var list struct {
		Addresses []addressResponse `json:"addresses"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if rr.Code != http.StatusOK || len(list.Addresses) != 2 {
		t.Fatalf("addresses after reopen: %d %s", rr.Code, rr.Body.String())
	}
}

func TestJWTAuth(t *testing.T) {
	t.Setenv("JWT_HS256_SECRET", "s3cret")
	t.Setenv("JWT_AUDIENCE", "walletd")
	h := New(&stubWallet{open: true, online: true}, nil, testLogger()).Handler()

	if rr := do(t, h, http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz must stay open: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/v1/addresses", nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", rr.Code)
	}
	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := time.Now().Add(time.Minute).Unix()
	good := sign("s3cret", jwt.MapClaims{"aud": "walletd", "exp": exp})
	if rr := do(t, h, http.MethodGet, "/v1/addresses", nil, map[string]string{"Authorization": "Bearer " + good}); rr.Code != http.StatusOK {
		t.Fatalf("valid token rejected: %d", rr.Code)
	}
	for _, bad := range []string{
		sign("other", jwt.MapClaims{"aud": "walletd", "exp": exp}),
		sign("s3cret", jwt.MapClaims{"aud": "someone-else", "exp": exp}),
		sign("s3cret", jwt.MapClaims{"aud": "walletd", "exp": time.Now().Add(-time.Minute).Unix()}),
	} {
		if rr := do(t, h, http.MethodGet, "/v1/addresses", nil, map[string]string{"Authorization": "Bearer " + bad}); rr.Code != http.StatusUnauthorized {
			t.Fatalf("bad token accepted: %d", rr.Code)
		}
	}
}
