package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/emit"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord enumerates and emits a session into a temp directory.
func createTestRecord(t *testing.T, sess *design.Session) Record {
	t.Helper()
	ctx := context.Background()

	res, err := enumerate.Run(ctx, sess, enumerate.WithLogger(testutil.QuietLogger()))
	if err != nil {
		t.Fatalf("enumerate.Run() failed: %v", err)
	}
	layout := emit.NewLayout(t.TempDir())
	m, err := emit.Write(ctx, layout, emit.InputFromSession(sess, res), emit.WithLogger(testutil.QuietLogger()))
	if err != nil {
		t.Fatalf("emit.Write() failed: %v", err)
	}
	hash, err := sess.Hash()
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	return Record{
		Design:     sess.Name(),
		DesignHash: hash,
		Layout:     layout,
		Result:     res,
		Manifest:   m,
	}
}
