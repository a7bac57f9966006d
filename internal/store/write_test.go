package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archgen/internal/emit"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
	"github.com/roach88/archgen/internal/testutil"
)

func TestWriteSession_RecordsEverything(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	rec := createTestRecord(t, testutil.ScenarioA(t))

	sess, err := s.WriteSession(ctx, testutil.NewFixedIDGenerator("session-a"), rec)
	require.NoError(t, err)

	assert.Equal(t, "session-a", sess.ID)
	assert.Equal(t, int64(1), sess.Seq)
	assert.Equal(t, "scenario-a", sess.Design)
	assert.Equal(t, 3, sess.Architectures)
	assert.Equal(t, 1, sess.Workloads)
	assert.Equal(t, 3, sess.Configurations)
	assert.False(t, sess.Mixed)
	assert.Equal(t, ir.GeneratorVersion, sess.GeneratorVersion)

	got, err := s.ReadSession(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	archs, err := s.ReadArchitectures(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, archs, 3)
	for i, e := range archs {
		assert.Equal(t, i, e.Index)
		assert.True(t, ir.Equal(rec.Result.Architectures[i], e.Body))
		assert.Equal(t, rec.Layout.ArchitecturePath(i), e.Path)

		want, err := ir.ArchitectureHash(rec.Result.Architectures[i])
		require.NoError(t, err)
		assert.Equal(t, want, e.Hash)
	}

	works, err := s.ReadWorkloads(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, works, 1)

	configs, err := s.ReadConfigurations(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	for k, c := range configs {
		row := rec.Manifest.Rows[k]
		assert.Equal(t, k, c.Index)
		assert.Equal(t, row.ArchitectureIndex, c.ArchitectureIndex)
		assert.Equal(t, row.WorkloadIndex, c.WorkloadIndex)
		assert.Equal(t, row.RunDir, c.RunDir)
		assert.Equal(t, row.CheckpointPath, c.CheckpointPath)
	}
}

func TestWriteSession_SeqIncreases(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	gen := testutil.NewFixedIDGenerator("first", "second")

	_, err := s.WriteSession(ctx, gen, createTestRecord(t, testutil.ScenarioA(t)))
	require.NoError(t, err)
	_, err = s.WriteSession(ctx, gen, createTestRecord(t, testutil.Mixed(t)))
	require.NoError(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "first", sessions[0].ID)
	assert.Equal(t, int64(1), sessions[0].Seq)
	assert.Equal(t, "second", sessions[1].ID)
	assert.Equal(t, int64(2), sessions[1].Seq)
	assert.True(t, sessions[1].Mixed)
}

func TestWriteSession_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	rec := createTestRecord(t, testutil.ScenarioC(t))

	// a manifest row pointing past the catalog violates the foreign key
	rec.Manifest = &emit.Manifest{Rows: append(rec.Manifest.Rows, emit.Row{ArchitectureIndex: 99})}

	_, err := s.WriteSession(ctx, testutil.NewFixedIDGenerator("broken"), rec)
	require.Error(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	archs, err := s.ReadArchitectures(ctx, "broken")
	require.NoError(t, err)
	assert.Empty(t, archs)
}

func TestWriteSession_InfeasibleRun(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec := Record{
		Design:   "empty",
		Layout:   emit.NewLayout(t.TempDir()),
		Result:   &enumerate.Result{},
		Manifest: &emit.Manifest{},
	}
	sess, err := s.WriteSession(ctx, testutil.NewFixedIDGenerator("none"), rec)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Configurations)

	configs, err := s.ReadConfigurations(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestWriteSession_RequiresResultAndManifest(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteSession(context.Background(), testutil.NewFixedIDGenerator(), Record{})
	require.Error(t, err)
}

func TestReadSession_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadSession(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListSessions_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestFindArchitecture_AcrossSessions(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	gen := testutil.NewFixedIDGenerator("run-1", "run-2")

	rec1 := createTestRecord(t, testutil.ScenarioA(t))
	_, err := s.WriteSession(ctx, gen, rec1)
	require.NoError(t, err)
	_, err = s.WriteSession(ctx, gen, createTestRecord(t, testutil.ScenarioA(t)))
	require.NoError(t, err)

	hash, err := ir.ArchitectureHash(rec1.Result.Architectures[1])
	require.NoError(t, err)

	refs, err := s.FindArchitecture(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []EntryRef{
		{SessionID: "run-1", Index: 1},
		{SessionID: "run-2", Index: 1},
	}, refs)

	none, err := s.FindWorkload(ctx, hash)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestMarshalBody_PreservesFloats(t *testing.T) {
	body := ir.IRObject{"voltage": ir.IRFloat(1), "lanes": ir.IRInt(1)}
	text, err := marshalBody(body)
	require.NoError(t, err)
	assert.Equal(t, `{"lanes":1,"voltage":1.0}`, text)

	back, err := unmarshalBody(text)
	require.NoError(t, err)
	assert.True(t, ir.Equal(body, back))
}
