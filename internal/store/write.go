package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/archgen/internal/emit"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
)

// Record is one generation run to be cataloged.
type Record struct {
	Design     string
	DesignHash string
	Layout     emit.Layout
	Result     *enumerate.Result
	Manifest   *emit.Manifest
}

// WriteSession records a generation run: the session row, every catalog
// entry, and every manifest row, in a single transaction. The session id
// comes from gen and seq is one past the largest recorded.
func (s *Store) WriteSession(ctx context.Context, gen IDGenerator, rec Record) (Session, error) {
	if rec.Result == nil || rec.Manifest == nil {
		return Session{}, fmt.Errorf("write session: result and manifest are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("write session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM sessions`).Scan(&seq); err != nil {
		return Session{}, fmt.Errorf("write session: next seq: %w", err)
	}

	sess := Session{
		ID:               gen.Generate(),
		Seq:              seq,
		Design:           rec.Design,
		DesignHash:       rec.DesignHash,
		OutputRoot:       rec.Layout.Root,
		Architectures:    len(rec.Result.Architectures),
		Workloads:        len(rec.Result.Workloads),
		Configurations:   len(rec.Manifest.Rows),
		Mixed:            rec.Result.Mixed,
		GeneratorVersion: ir.GeneratorVersion,
		SchemaVersion:    ir.SchemaVersion,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, seq, design, design_hash, output_root, architectures, workloads, configurations, mixed, generator_version, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.Seq,
		sess.Design,
		sess.DesignHash,
		sess.OutputRoot,
		sess.Architectures,
		sess.Workloads,
		sess.Configurations,
		sess.Mixed,
		sess.GeneratorVersion,
		sess.SchemaVersion,
	)
	if err != nil {
		return Session{}, fmt.Errorf("write session: insert session: %w", err)
	}

	for i, tree := range rec.Result.Architectures {
		if err := insertEntry(ctx, tx, "architectures", sess.ID, i, tree, ir.ArchitectureHash, rec.Layout.ArchitecturePath(i)); err != nil {
			return Session{}, fmt.Errorf("write session: architecture %d: %w", i, err)
		}
	}
	for j, tree := range rec.Result.Workloads {
		if err := insertEntry(ctx, tx, "workloads", sess.ID, j, tree, ir.WorkloadHash, rec.Layout.WorkloadPath(j)); err != nil {
			return Session{}, fmt.Errorf("write session: workload %d: %w", j, err)
		}
	}

	for k, row := range rec.Manifest.Rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO configurations
			(session_id, idx, architecture_idx, workload_idx, run_dir, checkpoint_path)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			sess.ID,
			k,
			row.ArchitectureIndex,
			row.WorkloadIndex,
			row.RunDir,
			row.CheckpointPath,
		)
		if err != nil {
			return Session{}, fmt.Errorf("write session: configuration %d: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("write session: commit: %w", err)
	}
	return sess, nil
}

// insertEntry writes one catalog entry. table is a fixed identifier, never input.
func insertEntry(
	ctx context.Context,
	tx *sql.Tx,
	table, sessionID string,
	idx int,
	tree ir.IRObject,
	hash func(ir.IRObject) (string, error),
	path string,
) error {
	h, err := hash(tree)
	if err != nil {
		return err
	}
	body, err := marshalBody(tree)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO "+table+" (session_id, idx, hash, body, path) VALUES (?, ?, ?, ?, ?)",
		sessionID, idx, h, body, path,
	)
	return err
}
