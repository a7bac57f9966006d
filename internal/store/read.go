package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/archgen/internal/ir"
)

// Session is one recorded generation run.
type Session struct {
	ID               string `json:"id"`
	Seq              int64  `json:"seq"`
	Design           string `json:"design"`
	DesignHash       string `json:"design_hash"`
	OutputRoot       string `json:"output_root"`
	Architectures    int    `json:"architectures"`
	Workloads        int    `json:"workloads"`
	Configurations   int    `json:"configurations"`
	Mixed            bool   `json:"mixed"`
	GeneratorVersion string `json:"generator_version"`
	SchemaVersion    string `json:"schema_version"`
}

// Entry is one recorded architecture or workload.
type Entry struct {
	Index int         `json:"index"`
	Hash  string      `json:"hash"`
	Body  ir.IRObject `json:"body"`
	Path  string      `json:"path"`
}

// Configuration is one recorded manifest row.
type Configuration struct {
	Index             int    `json:"index"`
	ArchitectureIndex int    `json:"architecture_index"`
	WorkloadIndex     int    `json:"workload_index"`
	RunDir            string `json:"run_dir"`
	CheckpointPath    string `json:"checkpoint_path"`
}

// EntryRef locates an entry inside a recorded session.
type EntryRef struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

const sessionColumns = `id, seq, design, design_hash, output_root, architectures, workloads, configurations, mixed, generator_version, schema_version`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var sess Session
	err := row.Scan(
		&sess.ID,
		&sess.Seq,
		&sess.Design,
		&sess.DesignHash,
		&sess.OutputRoot,
		&sess.Architectures,
		&sess.Workloads,
		&sess.Configurations,
		&sess.Mixed,
		&sess.GeneratorVersion,
		&sess.SchemaVersion,
	)
	return sess, err
}

// ReadSession returns one session by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every session ordered by seq.
// Returns an empty slice (not nil) for an empty catalog.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadArchitectures returns a session's architecture catalog by index.
func (s *Store) ReadArchitectures(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.readEntries(ctx, "architectures", sessionID)
}

// ReadWorkloads returns a session's workload catalog by index.
func (s *Store) ReadWorkloads(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.readEntries(ctx, "workloads", sessionID)
}

func (s *Store) readEntries(ctx context.Context, table, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT idx, hash, body, path FROM "+table+" WHERE session_id = ? ORDER BY idx ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var body string
		if err := rows.Scan(&e.Index, &e.Hash, &body, &e.Path); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		e.Body, err = unmarshalBody(body)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", table, e.Index, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return entries, nil
}

// ReadConfigurations returns a session's manifest rows by index.
func (s *Store) ReadConfigurations(ctx context.Context, sessionID string) ([]Configuration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, architecture_idx, workload_idx, run_dir, checkpoint_path
		FROM configurations
		WHERE session_id = ?
		ORDER BY idx ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query configurations: %w", err)
	}
	defer rows.Close()

	configs := []Configuration{}
	for rows.Next() {
		var c Configuration
		if err := rows.Scan(&c.Index, &c.ArchitectureIndex, &c.WorkloadIndex, &c.RunDir, &c.CheckpointPath); err != nil {
			return nil, fmt.Errorf("scan configuration: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configurations: %w", err)
	}
	return configs, nil
}

// FindArchitecture returns every recorded occurrence of an architecture
// hash, ordered by session seq.
func (s *Store) FindArchitecture(ctx context.Context, hash string) ([]EntryRef, error) {
	return s.findEntry(ctx, "architectures", hash)
}

// FindWorkload returns every recorded occurrence of a workload hash,
// ordered by session seq.
func (s *Store) FindWorkload(ctx context.Context, hash string) ([]EntryRef, error) {
	return s.findEntry(ctx, "workloads", hash)
}

func (s *Store) findEntry(ctx context.Context, table, hash string) ([]EntryRef, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT e.session_id, e.idx FROM "+table+" e JOIN sessions s ON e.session_id = s.id "+
			"WHERE e.hash = ? ORDER BY s.seq ASC, e.idx ASC",
		hash)
	if err != nil {
		return nil, fmt.Errorf("query %s by hash: %w", table, err)
	}
	defer rows.Close()

	refs := []EntryRef{}
	for rows.Next() {
		var r EntryRef
		if err := rows.Scan(&r.SessionID, &r.Index); err != nil {
			return nil, fmt.Errorf("scan %s ref: %w", table, err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s refs: %w", table, err)
	}
	return refs, nil
}
