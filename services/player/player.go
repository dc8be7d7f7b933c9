// Package player replays stored skills through a joint sink as a strict
// state machine: Idle, Approaching, Running, Returning, Idle. The arm
// always ends at the rest pose: cancellation and sink faults during
// playback divert into the Returning phase rather than stopping the arm
// mid-motion.
package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"skillcode-go/bus"
	"skillcode-go/config"
	"skillcode-go/errcode"
	"skillcode-go/types"
	"skillcode-go/x/mathx"
	"skillcode-go/x/retry"
	"skillcode-go/x/timex"
)

// Phase is the player state, published retained on play/state.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseApproaching Phase = "approaching"
	PhaseRunning     Phase = "running"
	PhaseReturning   Phase = "returning"
)

// State is the payload published on play/state.
type State struct {
	Skill string `json:"skill"`
	Phase Phase  `json:"phase"`
}

// Options assembles a player.
type Options struct {
	Source types.JointSource
	Sink   types.JointSink
	Conn   *bus.Connection
	Config config.Robot
	Gains  types.Gains  // running gains, selected per target
	Retry  retry.Policy // source read retries during approach; zero uses DefaultPolicy
	Log    *slog.Logger
	Sleep  func(ctx context.Context, d time.Duration) error // injectable for tests
}

// Player drives one arm. A single Player never runs two skills at once;
// concurrent Play calls fail fast with player_busy.
type Player struct {
	source types.JointSource
	sink   types.JointSink
	conn   *bus.Connection
	cfg    config.Robot
	gains  types.Gains
	retry  retry.Policy
	log    *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	busy   atomic.Bool
	mu     sync.Mutex
	cancel context.CancelFunc
	// last commanded pose, the starting point for the return leg
	lastCmd map[string]float64
}

func New(o Options) (*Player, error) {
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = retry.DefaultPolicy()
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Sleep == nil {
		o.Sleep = func(ctx context.Context, d time.Duration) error {
			if !timex.Sleep(d, ctx.Done()) {
				return ctx.Err()
			}
			return nil
		}
	}
	return &Player{
		source: o.Source,
		sink:   o.Sink,
		conn:   o.Conn,
		cfg:    o.Config,
		gains:  o.Gains,
		retry:  o.Retry,
		log:    o.Log,
		sleep:  o.Sleep,
	}, nil
}

// Busy reports whether a skill is currently playing.
func (p *Player) Busy() bool { return p.busy.Load() }

// Stop requests cooperative termination. The active Play call diverts
// into Returning at the next tick boundary and returns once the arm is
// back at rest. Stopping an idle player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Watch maps stop commands on play/command to Stop. It runs until ctx
// ends, so one watcher can serve many Play calls.
func (p *Player) Watch(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(bus.TopicPlayCommand)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.Channel():
				if cmd, ok := msg.Payload.(types.Command); ok && cmd.Op == types.OpStop {
					p.Stop()
				}
			}
		}
	}()
}

// Play replays a skill. It returns once the arm is back at the rest
// pose, whatever happened in between. An operator stop is a clean
// outcome and returns nil; a sink fault is surfaced after the return
// leg completes.
func (p *Player) Play(ctx context.Context, skill types.Skill) error {
	if !p.busy.CompareAndSwap(false, true) {
		return errcode.New(errcode.PlayerBusy, "player", skill.Name)
	}
	defer p.busy.Store(false)

	if err := skill.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.mu.Lock()
	p.cancel = cancel
	p.lastCmd = nil
	p.mu.Unlock()

	joints := skillJoints(skill)
	if err := p.sink.SetTorque(ctx, joints, true); err != nil {
		return err
	}
	p.log.Info("player: starting", "skill", skill.Name, "frames", len(skill.Frames))

	playErr := p.approach(ctx, skill)
	if playErr == nil {
		playErr = p.run(ctx, skill)
	}

	// The return leg runs even after cancellation or a sink fault; the
	// arm never parks mid-skill.
	retErr := p.ret(context.WithoutCancel(ctx), skill.Name, joints)
	p.publish(skill.Name, PhaseIdle)

	switch {
	case playErr == nil:
		return retErr
	case errors.Is(playErr, context.Canceled):
		p.log.Info("player: stopped by operator", "skill", skill.Name)
		return retErr
	default:
		p.log.Error("player: playback failed", "skill", skill.Name, "err", playErr)
		return playErr
	}
}

// approach eases the arm from wherever it is onto the skill's first
// frame under gentle gains, looping until the pose is within tolerance
// or the approach budget runs out (with a warning, not an error).
func (p *Player) approach(ctx context.Context, skill types.Skill) error {
	p.publish(skill.Name, PhaseApproaching)

	target := skill.Frames[0].Positions
	joints := skillJoints(skill)
	steps := p.cfg.Player.ApproachSteps
	period := timex.PeriodFromHz(p.cfg.Player.Hz)
	deadline := time.Now().Add(time.Duration(p.cfg.Player.ApproachTimeoutMS) * time.Millisecond)

	for {
		var cur map[string]float64
		err := p.retry.Do(ctx, func(ctx context.Context) error {
			var rerr error
			cur, rerr = p.source.ReadState(ctx, joints)
			return rerr
		})
		if err != nil {
			return err
		}

		if withinTolerance(cur, target, p.cfg.Player.ToleranceDeg) {
			return nil
		}
		if time.Now().After(deadline) {
			p.log.Warn("player: approach tolerance not reached, proceeding",
				"skill", skill.Name, "tolerance_deg", p.cfg.Player.ToleranceDeg)
			return nil
		}

		for i := 1; i <= steps; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := mathx.EaseInOut(float64(i) / float64(steps))
			if err := p.write(ctx, interpolate(cur, target, t), p.cfg.GentleGains); err != nil {
				return err
			}
			if err := p.sleep(ctx, period); err != nil {
				return err
			}
		}
	}
}

// run replays the frames pairwise with cosine easing. A segment whose
// implied velocity exceeds the limit is stretched in time, never
// clipped in position. The stretch budgets for the ease's peak slope,
// so the cap holds tick by tick, not just on segment average.
func (p *Player) run(ctx context.Context, skill types.Skill) error {
	p.publish(skill.Name, PhaseRunning)

	hz := p.cfg.Player.Hz
	for i := 1; i < len(skill.Frames); i++ {
		a, b := skill.Frames[i-1], skill.Frames[i]

		dur := mathx.Max(b.Delay, mathx.EasePeakRate*segDelta(a, b)/p.cfg.MaxVelocity)
		steps := int(dur * hz)
		if steps < 1 {
			steps = 1
		}
		stepDur := time.Duration(dur / float64(steps) * float64(time.Second))

		for s := 1; s <= steps; s++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := mathx.EaseInOut(float64(s) / float64(steps))
			if err := p.write(ctx, interpolate(a.Positions, b.Positions, t), p.gains); err != nil {
				return err
			}
			if err := p.sleep(ctx, stepDur); err != nil {
				return err
			}
		}
	}
	return nil
}

// ret eases the arm from the last commanded pose to the rest pose (all
// joints at zero). It runs under an uncancellable context; a sink fault
// here is fatal.
func (p *Player) ret(ctx context.Context, name string, joints []string) error {
	p.publish(name, PhaseReturning)

	p.mu.Lock()
	start := p.lastCmd
	p.mu.Unlock()
	if start == nil {
		// Nothing was commanded; the arm never moved.
		return nil
	}

	rest := make(map[string]float64, len(joints))
	for _, j := range joints {
		rest[j] = 0
	}

	steps := p.cfg.Player.ReturnSteps
	period := timex.PeriodFromHz(p.cfg.Player.Hz)
	for i := 1; i <= steps; i++ {
		t := mathx.EaseInOut(float64(i) / float64(steps))
		if err := p.write(ctx, interpolate(start, rest, t), p.cfg.GentleGains); err != nil {
			return err
		}
		if err := p.sleep(ctx, period); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) write(ctx context.Context, positions map[string]float64, g types.Gains) error {
	if err := p.sink.WriteCommand(ctx, positions, g); err != nil {
		return err
	}
	p.mu.Lock()
	p.lastCmd = positions
	p.mu.Unlock()
	return nil
}

func (p *Player) publish(skill string, phase Phase) {
	if p.conn == nil {
		return
	}
	p.conn.Publish(p.conn.NewMessage(bus.TopicPlayState, State{Skill: skill, Phase: phase}, true))
}

// --- helpers ---

func skillJoints(skill types.Skill) []string {
	names := make([]string, 0, len(skill.Frames[0].Positions))
	for j := range skill.Frames[0].Positions {
		names = append(names, j)
	}
	return names
}

func withinTolerance(cur, target map[string]float64, tol float64) bool {
	for j, want := range target {
		if mathx.Abs(cur[j]-want) > tol {
			return false
		}
	}
	return true
}

// interpolate blends two poses at parameter t in [0,1].
func interpolate(from, to map[string]float64, t float64) map[string]float64 {
	out := make(map[string]float64, len(to))
	for j, b := range to {
		out[j] = mathx.Lerp(from[j], b, t)
	}
	return out
}

// segDelta is the largest per-joint move between consecutive frames.
func segDelta(a, b types.Frame) float64 {
	d := 0.0
	for j, pos := range b.Positions {
		d = mathx.Max(d, mathx.Abs(pos-a.Positions[j]))
	}
	return d
}
