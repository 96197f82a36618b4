// Command groundmotion-demo runs a scripted walk across a small scene: the
// player walks forward, jumps once, and rides whatever it lands on. Every
// landing is logged and the final state is printed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gekko3d/groundmotion"
	"github.com/gekko3d/groundmotion/sim"
	"github.com/go-gl/mathgl/mgl32"
)

const defaultScene = `
gravity: [0, -9.81, 0]
frequency: 50
bodies:
  - name: floor
    kind: static
    position: [0, -0.5, 0]
    half_extents: [20, 0.5, 20]
  - name: ramp
    kind: static
    position: [0, 0.4, 12]
    rotation: [-15, 0, 0]
    half_extents: [2, 0.5, 4]
  - name: platform
    kind: kinematic
    position: [0, 0.25, 7]
    half_extents: [1.5, 0.25, 1.5]
    velocity: [0.5, 0, 0]
    mass: 100
  - name: player
    kind: dynamic
    position: [0, 1.2, 0]
    half_extents: [0.4, 1, 0.4]
    mass: 1
    layer: 1
`

func main() {
	configPath := flag.String("config", "", "Controller config YAML file (empty = defaults)")
	scenePath := flag.String("scene", "", "Scene YAML file (empty = built-in scene)")
	playerName := flag.String("player", "player", "Name of the dynamic body to drive")
	seconds := flag.Float64("seconds", 5, "Simulated duration in seconds")
	jumpAt := flag.Float64("jump-at", 1.5, "Time of the single jump in seconds (negative = never)")
	jumpHeight := flag.Float64("jump-height", 1, "Jump height in meters")
	speed := flag.Float64("speed", 4, "Forward walking speed")
	accel := flag.Float64("accel", 20, "Maximum velocity change per second")
	realtime := flag.Bool("realtime", false, "Tick against the wall clock instead of as fast as possible")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := groundmotion.NewDefaultLogger("demo", *debug)

	cfg := groundmotion.DefaultConfig()
	cfg.ProbeDistance = 1.5
	cfg.GroundMask = groundmotion.LayerBit(0)
	if *configPath != "" {
		loaded, err := groundmotion.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	scene, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("failed to load scene: %v", err)
	}
	world, named, err := scene.Build()
	if err != nil {
		log.Fatalf("failed to build scene: %v", err)
	}
	world.SetLogger(logger)

	player, ok := named[*playerName]
	if !ok || player.Kind() != sim.Dynamic {
		log.Fatalf("scene has no dynamic body named %q", *playerName)
	}

	ctrl, err := groundmotion.NewController(cfg, world, groundmotion.WithLogger(logger))
	if err != nil {
		log.Fatalf("failed to create controller: %v", err)
	}

	sched := sim.NewScheduler(world)
	sched.AddAgent(player, ctrl)

	ticksPerSecond := max(uint64(world.UpdateFrequency), 1)
	jumpTick := uint64(0)
	if *jumpAt >= 0 {
		jumpTick = uint64(*jumpAt*float64(world.UpdateFrequency)) + 1
	}
	ctrl.OnGrounded(func() {
		p := player.Position()
		logger.Infof("landed at tick %d, position (%.2f, %.2f, %.2f)", sched.Ticks(), p.X(), p.Y(), p.Z())
	})
	sched.OnStep = func(tick uint64, _ sim.Agent, res groundmotion.StepResult) {
		if res.Jumped {
			logger.Infof("jumped at tick %d", tick)
		}
		if logger.DebugEnabled() && tick%ticksPerSecond == 0 {
			logger.Debugf("tick %d: %s, contacts %d/%d, platform velocity %v",
				tick, res.State, res.GroundContacts, res.SteepContacts, res.ConnectionVelocity)
		}
	}

	ctrl.Move(mgl32.Vec3{0, 0, float32(*speed)}, float32(*accel))
	jumpQueued := false
	beforeTick := func() {
		if jumpTick > 0 && !jumpQueued && sched.Ticks()+1 >= jumpTick {
			ctrl.Jump(float32(*jumpHeight))
			jumpQueued = true
		}
	}

	duration := time.Duration(*seconds * float64(time.Second))
	if *realtime {
		ctx, cancel := context.WithTimeout(context.Background(), duration)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err = sched.Run(ctx, beforeTick)
		stop()
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			log.Fatalf("run failed: %v", err)
		}
	} else {
		total := uint64(duration / sched.FixedStep())
		for sched.Ticks() < total {
			beforeTick()
			sched.Tick()
		}
	}

	p, v := player.Position(), player.Velocity()
	fmt.Printf("ticks:    %d\n", sched.Ticks())
	fmt.Printf("state:    %s\n", ctrl.State())
	fmt.Printf("position: (%.3f, %.3f, %.3f)\n", p.X(), p.Y(), p.Z())
	fmt.Printf("velocity: (%.3f, %.3f, %.3f)\n", v.X(), v.Y(), v.Z())
}

func loadScene(path string) (*sim.Scene, error) {
	if path == "" {
		return sim.ParseScene([]byte(defaultScene))
	}
	return sim.LoadScene(path)
}
