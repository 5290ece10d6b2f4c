package maze_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-mazerunner/pkg/maze"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/sim"
)

func TestSession_Run(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())

	var out bytes.Buffer
	var types []maze.EventType
	sess := maze.NewSession(maze.DefaultConfig(), s,
		maze.WithExport(&out),
		maze.WithObserver(maze.ObserverFunc(func(e maze.Event) {
			types = append(types, e.Type)
		})),
		maze.WithBeforeReplay(func(context.Context) error {
			s.Reset()
			return nil
		}),
	)
	assert.Equal(t, maze.PhaseIdle, sess.Snapshot().Phase)

	res, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sess.ID(), res.RunID)
	assert.Equal(t, "RLS", res.Path.String())
	assert.Equal(t, "RLS", out.String())
	require.NotNil(t, res.Replay)
	assert.True(t, res.Replay.Goal)

	snap := sess.Snapshot()
	assert.Equal(t, maze.PhaseDone, snap.Phase)
	assert.Equal(t, "RRUSS", snap.History)
	assert.Equal(t, "RLS", snap.Path)
	assert.Empty(t, snap.Error)

	assert.Contains(t, types, maze.EventGoal)
	assert.Contains(t, types, maze.EventOptimized)
	assert.Contains(t, types, maze.EventReplayEnd)
	assert.Equal(t, maze.EventFinished, types[len(types)-1])
}

func TestSession_ExploreOnly(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())
	sess := maze.NewSession(maze.DefaultConfig(), s, maze.WithReplay(false))

	res, err := sess.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Replay)
	assert.Equal(t, "RLS", res.Path.String())
}

func TestSession_Failure(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())
	cfg := maze.DefaultConfig()
	cfg.Capacity = 1
	sess := maze.NewSession(cfg, s)

	_, err := sess.Run(context.Background())
	require.ErrorIs(t, err, pathmem.ErrCapacityExceeded)

	snap := sess.Snapshot()
	assert.Equal(t, maze.PhaseFailed, snap.Phase)
	assert.NotEmpty(t, snap.Error)
}

func TestSession_BeforeReplayError(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())
	boom := errors.New("robot not on start")
	sess := maze.NewSession(maze.DefaultConfig(), s,
		maze.WithBeforeReplay(func(context.Context) error { return boom }))

	res, err := sess.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "RLS", res.Path.String())
}

func TestSession_UniqueIDs(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())
	a := maze.NewSession(maze.DefaultConfig(), s)
	b := maze.NewSession(maze.DefaultConfig(), s)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 36)
}

func TestSession_ReplayPath(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())
	sess := maze.NewSession(maze.DefaultConfig(), s)

	path, err := pathmem.ParsePath("RLS")
	require.NoError(t, err)
	res, err := sess.ReplayPath(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, res.Replay)
	assert.True(t, res.Replay.Goal)
	assert.Equal(t, 3, res.Replay.Consumed)
	assert.Empty(t, res.History)

	snap := sess.Snapshot()
	assert.Equal(t, maze.PhaseDone, snap.Phase)
	assert.Equal(t, "RLS", snap.Path)
	assert.Equal(t, maze.ModeReplay, snap.Mode)
}

func TestSession_ReplayPathRejectsUTurn(t *testing.T) {
	s := newSim(t, loopMaze, sim.DefaultConfig())
	sess := maze.NewSession(maze.DefaultConfig(), s)

	path, err := pathmem.ParsePath("RU")
	require.NoError(t, err)
	_, err = sess.ReplayPath(context.Background(), path)
	require.ErrorIs(t, err, pathmem.ErrIrreducible)
	assert.Equal(t, maze.PhaseFailed, sess.Snapshot().Phase)
	assert.Zero(t, s.Commands(), "robot never moved")
}
