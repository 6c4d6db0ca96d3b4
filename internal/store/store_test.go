package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := &Run{ID: "run-1", PropertyName: "12 Elm Street", RootDir: "data/runs/run-1"}
	require.NoError(t, s.CreateRun(ctx, run))
	assert.Equal(t, StatusPending, run.Status)
	assert.NotZero(t, run.CreatedAt)

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "12 Elm Street", got.PropertyName)
	assert.Equal(t, "data/runs/run-1", got.RootDir)
	assert.Equal(t, StatusPending, got.Status)
}

func TestGetRunNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, s.CreateRun(ctx, &Run{ID: id, RootDir: "data/" + id}))
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Creation happens within one millisecond here, so id breaks the tie.
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-a", runs[2].ID)
}

func TestSetRunStage(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, &Run{ID: "run-1", RootDir: "d"}))
	require.NoError(t, s.SetRunStage(ctx, "run-1", StageMerge, StatusRunning))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StageMerge, got.Stage)
	assert.Equal(t, StatusRunning, got.Status)

	assert.ErrorIs(t, s.SetRunStage(ctx, "missing", StageMerge, StatusRunning), ErrNotFound)
}

func TestFinishRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, &Run{ID: "run-1", RootDir: "d"}))
	require.NoError(t, s.FinishRun(ctx, "run-1", StatusFailed, "llm unreachable"))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "llm unreachable", got.Error)

	assert.ErrorIs(t, s.FinishRun(ctx, "missing", StatusDone, ""), ErrNotFound)
}

func TestAppendAndListEvents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, &Run{ID: "run-1", RootDir: "d"}))

	first := &RunEvent{RunID: "run-1", Stage: StageExtract, Status: StatusRunning}
	require.NoError(t, s.AppendEvent(ctx, first))
	assert.NotZero(t, first.ID)
	require.NoError(t, s.AppendEvent(ctx, &RunEvent{
		RunID: "run-1", Stage: StageExtract, Status: StatusDone, Detail: "5 pages",
	}))

	events, err := s.ListEvents(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, StatusRunning, events[0].Status)
	assert.Equal(t, "5 pages", events[1].Detail)

	empty, err := s.ListEvents(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEventsCascadeOnRunDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, &Run{ID: "run-1", RootDir: "d"}))
	require.NoError(t, s.AppendEvent(ctx, &RunEvent{RunID: "run-1", Stage: StageFacts, Status: StatusDone}))

	_, err := s.DB.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, "run-1")
	require.NoError(t, err)

	events, err := s.ListEvents(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, events)
}
