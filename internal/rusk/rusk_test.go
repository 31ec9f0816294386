package rusk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/grutesr1/DUSK-test/internal/dusk"
	"github.com/grutesr1/DUSK-test/internal/errs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type mapCache struct {
	mu      sync.Mutex
	notes   map[dusk.ViewKey]map[uint64]dusk.Note
	heights map[dusk.ViewKey]uint64
	err     error
}

func newMapCache() *mapCache {
	return &mapCache{notes: map[dusk.ViewKey]map[uint64]dusk.Note{}, heights: map[dusk.ViewKey]uint64{}}
}

func (c *mapCache) Notes(_ context.Context, vk dusk.ViewKey) ([]dusk.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]dusk.Note, 0, len(c.notes[vk]))
	for _, n := range c.notes[vk] {
		out = append(out, n)
	}
	return out, nil
}

func (c *mapCache) PutNotes(_ context.Context, vk dusk.ViewKey, height uint64, notes []dusk.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.notes[vk] == nil {
		c.notes[vk] = map[uint64]dusk.Note{}
	}
	for _, n := range notes {
		c.notes[vk][n.Position] = n
	}
	c.heights[vk] = height
	return nil
}

func (c *mapCache) LastHeight(_ context.Context, vk dusk.ViewKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.heights[vk], nil
}

func serve(t *testing.T, node *DevNode, opts ...grpc.ServerOption) (*bufconn.Listener, *grpc.Server) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(append(ServerOptions(), opts...)...)
	RegisterStateServer(srv, node)
	RegisterProverServer(srv, node)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis, srv
}

func viaListener(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func connect(t *testing.T, lis *bufconn.Listener, cache Cache) *Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Connect(ctx, Config{
		NodeAddr:    "passthrough:///bufnet",
		Cache:       cache,
		Logger:      testLogger(),
		DialOptions: []grpc.DialOption{viaListener(lis)},
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStateCallsRoundTrip(t *testing.T) {
	node := NewDevNode()
	var addr dusk.Address
	addr[0] = 1
	vk := dusk.ViewKey{9}
	node.Register(addr, vk, 0)
	node.Mint(addr, dusk.Dusk(5))
	node.Mint(addr, dusk.Dusk(2))
	node.SetStake(addr, dusk.Stake{Staked: true, Amount: dusk.Dusk(1000)})

	lis, _ := serve(t, node)
	cache := newMapCache()
	s := connect(t, lis, cache)
	ctx := context.Background()

	h, err := s.State.Height(ctx)
	if err != nil || h != 2 {
		t.Fatalf("height: %d %v", h, err)
	}
	if err := s.State.Sync(ctx, vk); err != nil {
		t.Fatalf("sync: %v", err)
	}
	notes, err := s.State.Notes(ctx, vk)
	if err != nil || len(notes) != 2 {
		t.Fatalf("notes: %v %v", notes, err)
	}
	st, err := s.State.Stake(ctx, addr)
	if err != nil || !st.Staked || st.Amount != dusk.Dusk(1000) {
		t.Fatalf("stake: %+v %v", st, err)
	}
}

func TestRemoteStatusBecomesStateRusk(t *testing.T) {
	node := NewDevNode()
	lis, _ := serve(t, node)
	s := connect(t, lis, newMapCache())

	node.FailNext("Height", status.Error(codes.Unavailable, "node syncing"))
	_, err := s.State.Height(context.Background())
	var se errs.StateError
	if !errors.As(err, &se) || se.Kind() != errs.StateRusk {
		t.Fatalf("want StateRusk, got %T %v", err, err)
	}
	st, _ := se.Status()
	if st.Code != codes.Unavailable || st.Message != "node syncing" {
		t.Fatalf("status lost: %+v", st)
	}
	conv := errs.StateFailure(err)
	if !errs.Retryable(conv) {
		t.Fatalf("unavailable state call should be retryable: %v", conv)
	}
}

func TestUndecodableResponseIsCanon(t *testing.T) {
	node := NewDevNode()
	lis, _ := serve(t, node)
	s := connect(t, lis, newMapCache())

	node.SetStake(dusk.Address{}, dusk.Stake{Staked: true, Amount: 7})
	var wrong HeightResponse
	err := s.State.conn.invoke(context.Background(), methodStake, &StakeRequest{}, &wrong)
	if got := errs.NewStateError(err).Kind(); got != errs.StateCanon {
		t.Fatalf("want StateCanon, got %s (%v)", got, err)
	}
}

func TestCacheFailureIsStateCache(t *testing.T) {
	node := NewDevNode()
	lis, _ := serve(t, node)
	cache := newMapCache()
	s := connect(t, lis, cache)

	cache.err = errors.New("connection reset by peer")
	err := s.State.Sync(context.Background(), dusk.ViewKey{})
	var se errs.StateError
	if !errors.As(err, &se) || se.Kind() != errs.StateCache {
		t.Fatalf("want StateCache, got %v", err)
	}
}

func TestProverRejectionAndProof(t *testing.T) {
	node := NewDevNode()
	lis, _ := serve(t, node)
	s := connect(t, lis, newMapCache())
	ctx := context.Background()
	tx := dusk.Tx{ID: uuid.New(), Call: dusk.CallTransfer}

	proven, err := s.Prover.Prove(ctx, tx)
	if err != nil || len(proven.Proof) != 32 || proven.Tx.ID != tx.ID {
		t.Fatalf("prove: %+v %v", proven, err)
	}

	node.RejectProofs("inputs already spent")
	_, err = s.Prover.Prove(ctx, tx)
	var pe errs.ProverError
	if !errors.As(err, &pe) || pe.Kind() != errs.ProverTransaction {
		t.Fatalf("want ProverTransaction, got %v", err)
	}
	conv := errs.ProverFailure(err)
	if errors.Is(conv, errs.ErrState) || !errors.Is(conv, errs.ErrProver) {
		t.Fatalf("rejection crossed subsystems: %v", conv)
	}
}

func TestRequestIDAttached(t *testing.T) {
	node := NewDevNode()
	var mu sync.Mutex
	var seen []string
	capture := grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		mu.Lock()
		seen = append(seen, md.Get(RequestIDHeader)...)
		mu.Unlock()
		return h(ctx, req)
	})
	lis, _ := serve(t, node, capture)
	s := connect(t, lis, newMapCache())
	if _, err := s.State.Height(context.Background()); err != nil {
		t.Fatalf("height: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("want one request id, got %v", seen)
	}
	if _, err := uuid.Parse(seen[0]); err != nil {
		t.Fatalf("request id is not a uuid: %q", seen[0])
	}
}

func TestConnectFailureIsNotRetryable(t *testing.T) {
	lis := bufconn.Listen(1 << 10)
	_ = lis.Close()
	for _, tc := range []struct {
		role Role
		want *errs.Error
	}{
		{RoleNode, errs.ErrRuskConn},
		{RoleProver, errs.ErrProverConn},
	} {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		_, err := Dial(ctx, "passthrough:///bufnet", tc.role, viaListener(lis))
		cancel()
		if !errors.Is(err, tc.want) {
			t.Fatalf("role %d: want %v, got %v", tc.role, tc.want, err)
		}
		if errs.Retryable(err) {
			t.Fatalf("connect-phase failure must not be retryable: %v", err)
		}
	}
}

func TestLostConnectionIsNetwork(t *testing.T) {
	node := NewDevNode()
	lis, srv := serve(t, node)
	s := connect(t, lis, newMapCache())
	srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err := s.State.Check(ctx)
	if !errors.Is(err, errs.ErrNetwork) {
		t.Fatalf("want network error, got %v", err)
	}
	if !errs.Retryable(err) {
		t.Fatalf("in-flight loss should be retryable: %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	good := map[string]string{
		"localhost:8585":           "localhost:8585",
		"http://127.0.0.1:8585":    "127.0.0.1:8585",
		"http://localhost":         "localhost:80",
		"https://node.example.com": "node.example.com:443",
		"unix:///tmp/rusk.sock":    "unix:///tmp/rusk.sock",
		"passthrough:///bufnet":    "passthrough:///bufnet",
	}
	for in, want := range good {
		got, _, err := parseTarget(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %q %v, want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "localhost", "ftp://host:21", "http://[::1", "http://:8585"} {
		_, _, err := parseTarget(in)
		if !errors.Is(err, errs.ErrRuskURI) {
			t.Fatalf("%q: want rusk uri error, got %v", in, err)
		}
	}
	if _, secure, _ := parseTarget("https://node.example.com"); !secure {
		t.Fatalf("https should select TLS")
	}
}

func TestUnixSocketsOnWindows(t *testing.T) {
	prev := goos
	goos = "windows"
	defer func() { goos = prev }()
	_, err := Dial(context.Background(), "unix:///tmp/rusk.sock", RoleNode)
	if !errors.Is(err, errs.ErrSocketsNotSupported) {
		t.Fatalf("got %v", err)
	}
	if c, _ := errs.ClassOf(err); c != errs.ClassConfig {
		t.Fatalf("platform capability should be config class, got %s", c)
	}
}

func TestIsLocal(t *testing.T) {
	for addr, want := range map[string]bool{
		"localhost:8585":             true,
		"http://127.0.0.1:8585":      true,
		"http://[::1]:8585":          true,
		"unix:///tmp/rusk.sock":      true,
		"https://nodes.dusk.network": false,
		"10.1.2.3:8585":              false,
	} {
		if got := IsLocal(addr); got != want {
			t.Fatalf("%s: got %v", addr, got)
		}
	}
}
