package sim

import (
	"context"
	"math"
	"time"

	"github.com/gekko3d/groundmotion"
)

// Agent pairs a dynamic body with the controller that steers it.
type Agent struct {
	Body       *Body
	Controller *groundmotion.Controller
}

// Scheduler owns the fixed-step loop. Every tick runs the world's collision
// phase first, so each controller has all of the tick's contacts before its
// Step is called.
type Scheduler struct {
	World            *World
	MaxStepsPerFrame int

	// OnStep, when set, is called after each agent's Step.
	OnStep func(tick uint64, agent Agent, res groundmotion.StepResult)

	agents      []Agent
	accumulated time.Duration
	ticks       uint64
}

func NewScheduler(world *World) *Scheduler {
	return &Scheduler{
		World:            world,
		MaxStepsPerFrame: 8,
	}
}

// AddAgent registers ctrl as the contact sink of body and steps it every tick.
func (s *Scheduler) AddAgent(body *Body, ctrl *groundmotion.Controller) Agent {
	a := Agent{Body: body, Controller: ctrl}
	s.World.SetContactSink(body, ctrl)
	s.agents = append(s.agents, a)
	return a
}

func (s *Scheduler) Agents() []Agent { return s.agents }
func (s *Scheduler) Ticks() uint64   { return s.ticks }

func (s *Scheduler) FixedStep() time.Duration {
	return time.Duration(math.Round(float64(time.Second) * float64(s.World.FixedDelta())))
}

// Tick runs exactly one fixed step.
func (s *Scheduler) Tick() {
	dt := s.World.FixedDelta()
	s.World.Simulate(dt)
	s.ticks++
	for _, a := range s.agents {
		if !a.Body.Valid() {
			continue
		}
		res := a.Controller.Step(a.Body, dt, s.World.Gravity)
		if s.OnStep != nil {
			s.OnStep(s.ticks, a, res)
		}
	}
}

// Advance accumulates frame time and runs as many fixed steps as fit, at
// most MaxStepsPerFrame. Time beyond the cap is dropped.
func (s *Scheduler) Advance(frame time.Duration) int {
	if frame <= 0 {
		return 0
	}
	step := s.FixedStep()
	s.accumulated += frame

	n := 0
	for s.accumulated >= step {
		if s.MaxStepsPerFrame > 0 && n >= s.MaxStepsPerFrame {
			s.accumulated = 0
			break
		}
		s.accumulated -= step
		s.Tick()
		n++
	}
	return n
}

// Run ticks in real time on the calling goroutine until ctx is done.
// beforeTick, when set, runs ahead of every tick and is where callers issue
// Move, Stop and Jump.
func (s *Scheduler) Run(ctx context.Context, beforeTick func()) error {
	ticker := time.NewTicker(s.FixedStep())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if beforeTick != nil {
				beforeTick()
			}
			s.Advance(now.Sub(last))
			last = now
		}
	}
}
