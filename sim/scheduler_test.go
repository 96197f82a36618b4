package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gekko3d/groundmotion"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgent(t *testing.T, s *Scheduler, pos mgl32.Vec3) (*Body, *groundmotion.Controller) {
	t.Helper()
	player, err := s.World.Add(BodyDef{
		Name:        "player",
		Kind:        Dynamic,
		Position:    pos,
		HalfExtents: mgl32.Vec3{0.5, 1, 0.5},
		Mass:        1,
		Layer:       1,
	})
	require.NoError(t, err)

	cfg := groundmotion.DefaultConfig()
	cfg.ProbeDistance = 1.5
	cfg.GroundMask = groundmotion.LayerBit(0)
	ctrl, err := groundmotion.NewController(cfg, s.World)
	require.NoError(t, err)
	s.AddAgent(player, ctrl)
	return player, ctrl
}

func TestScheduler_AdvanceRunsFixedSteps(t *testing.T) {
	s := NewScheduler(NewWorld())
	assert.Equal(t, 20*time.Millisecond, s.FixedStep())

	assert.Equal(t, 5, s.Advance(100*time.Millisecond))
	assert.Equal(t, 0, s.Advance(10*time.Millisecond))
	assert.Equal(t, 1, s.Advance(10*time.Millisecond))
	assert.Equal(t, 0, s.Advance(0))

	assert.Equal(t, 8, s.Advance(time.Second))
	assert.Equal(t, 0, s.Advance(time.Millisecond))
	assert.Equal(t, uint64(14), s.Ticks())
}

func TestScheduler_LandingFiresOnce(t *testing.T) {
	s := NewScheduler(NewWorld())
	addFloor(t, s.World)
	player, ctrl := newAgent(t, s, mgl32.Vec3{0, 3, 0})

	landings := 0
	ctrl.OnGrounded(func() { landings++ })

	for i := 0; i < 100; i++ {
		s.Tick()
	}

	assert.Equal(t, 1, landings)
	assert.True(t, ctrl.IsGrounded())
	assert.InDelta(t, 1, player.Position().Y(), 0.01)
}

func TestScheduler_WalkAndJump(t *testing.T) {
	s := NewScheduler(NewWorld())
	addFloor(t, s.World)
	player, ctrl := newAgent(t, s, mgl32.Vec3{0, 1, 0})

	landings := 0
	ctrl.OnGrounded(func() { landings++ })

	ctrl.Move(mgl32.Vec3{3, 0, 0}, 30)
	for i := 0; i < 20; i++ {
		s.Tick()
	}
	require.True(t, ctrl.IsGrounded())
	assert.InDelta(t, 3, player.Velocity().X(), 1e-4)
	assert.Greater(t, player.Position().X(), float32(0.5))
	// Starting on the floor is not a landing.
	assert.Equal(t, 0, landings)

	var jumped groundmotion.StepResult
	s.OnStep = func(tick uint64, a Agent, res groundmotion.StepResult) {
		if res.Jumped {
			jumped = res
		}
	}
	ctrl.Jump(1)
	s.Tick()
	require.True(t, jumped.Jumped)
	assert.InDelta(t, math.Sqrt(2*9.81), player.Velocity().Y(), 1e-3)

	for i := 0; i < 100; i++ {
		s.Tick()
	}
	assert.Equal(t, 1, landings)
	assert.True(t, ctrl.IsGrounded())
}

func TestScheduler_PlatformCarriesAgent(t *testing.T) {
	s := NewScheduler(NewWorld())
	platform, err := s.World.Add(BodyDef{
		Name:        "platform",
		Kind:        Kinematic,
		Position:    mgl32.Vec3{0, -0.5, 0},
		HalfExtents: mgl32.Vec3{2, 0.5, 2},
		Velocity:    mgl32.Vec3{1, 0, 0},
		Mass:        100,
	})
	require.NoError(t, err)
	player, ctrl := newAgent(t, s, mgl32.Vec3{0, 1, 0})
	ctrl.Move(mgl32.Vec3{}, 100)

	for i := 0; i < 50; i++ {
		s.Tick()
	}

	assert.True(t, ctrl.IsGrounded())
	assert.InDelta(t, 1, player.Velocity().X(), 1e-3)
	assert.InDelta(t, platform.Position().X(), player.Position().X(), 0.1)
}

func TestScheduler_SkipsRemovedAgents(t *testing.T) {
	s := NewScheduler(NewWorld())
	addFloor(t, s.World)
	player, _ := newAgent(t, s, mgl32.Vec3{0, 1, 0})
	steps := 0
	s.OnStep = func(uint64, Agent, groundmotion.StepResult) { steps++ }

	s.Tick()
	s.World.Remove(player)
	s.Tick()
	assert.Equal(t, 1, steps)
}

func TestScheduler_RunStopsWithContext(t *testing.T) {
	s := NewScheduler(NewWorld())
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	calls := 0
	err := s.Run(ctx, func() { calls++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, calls, 0)
}
