package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/grutesr1/DUSK-test/internal/dusk"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func applyInitSQL(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
	b, err := os.ReadFile(filepath.Join(repoRoot, "db", "migrations", "0001_init.sql"))
	if err != nil {
		t.Fatalf("read init sql: %v", err)
	}
	if _, err := s.pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply init sql: %v", err)
	}
	if _, err := s.pool.Exec(ctx, `truncate notes, sync_heights`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func TestNotesRoundTrip(t *testing.T) {
	s := mustOpen(t, getTestDSN(t))
	applyInitSQL(t, s)
	ctx := context.Background()
	vk := dusk.ViewKey{7}

	if h, err := s.LastHeight(ctx, vk); err != nil || h != 0 {
		t.Fatalf("fresh height: %d %v", h, err)
	}
	in := []dusk.Note{
		{Position: 2, Value: dusk.Dusk(3), Owner: 1, Height: 4, Nullifier: [32]byte{2}},
		{Position: 1, Value: dusk.Dusk(1), Owner: 0, Height: 3, Nullifier: [32]byte{1}},
	}
	if err := s.PutNotes(ctx, vk, 4, in); err != nil {
		t.Fatalf("put: %v", err)
	}
	spent := in[1]
	spent.Spent = true
	if err := s.PutNotes(ctx, vk, 2, []dusk.Note{spent}); err != nil {
		t.Fatalf("put spent: %v", err)
	}
	got, err := s.Notes(ctx, vk)
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if len(got) != 2 || got[0].Position != 1 || !got[0].Spent || got[1].Value != dusk.Dusk(3) || got[1].Nullifier != in[0].Nullifier {
		t.Fatalf("unexpected notes: %+v", got)
	}
	if h, _ := s.LastHeight(ctx, vk); h != 4 {
		t.Fatalf("height should not regress, got %d", h)
	}
}
