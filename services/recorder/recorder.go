// Package recorder runs a skill capture session: a fixed-rate sampling
// loop that reads joint feedback, filters it through the motion
// detector, and accumulates composite frames. Operator commands arrive
// over the bus and are drained at most one per tick, so a pending save
// never stalls sampling.
package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"skillcode-go/bus"
	"skillcode-go/config"
	"skillcode-go/errcode"
	"skillcode-go/optimize"
	"skillcode-go/store"
	"skillcode-go/types"
	"skillcode-go/x/retry"
	"skillcode-go/x/timex"
)

// State is the payload published retained on record/state.
type State struct {
	Session string `json:"session"`
	Skill   string `json:"skill"`
	Status  string `json:"status"` // recording, saved, stopped, aborted
	Frames  int    `json:"frames"`
	Manual  bool   `json:"manual"`
}

// Options assembles a capture session.
type Options struct {
	Skill  string // may be empty; a save command can name it later
	Source types.JointSource
	Sink   types.JointSink
	Conn   *bus.Connection
	Store  *store.Store
	Config config.Robot
	Log    *slog.Logger
	Now    func() time.Time // injectable for tests; default time.Now
}

// Session owns the frame buffer for one capture run. Create with
// NewSession, drive with Run; the zero value is not usable.
type Session struct {
	id     string
	cfg    config.Robot
	joints *types.JointSet
	source types.JointSource
	sink   types.JointSink
	conn   *bus.Connection
	store  *store.Store
	opt    optimize.Params
	log    *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	name   string
	buffer []types.Frame

	det        *Detector
	manual     bool
	lastAccept time.Time
	failures   *retry.Counter
	saves      sync.WaitGroup
}

func NewSession(o Options) (*Session, error) {
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}
	joints, err := o.Config.JointSet()
	if err != nil {
		return nil, err
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Session{
		id:       uuid.NewString(),
		cfg:      o.Config,
		joints:   joints,
		source:   o.Source,
		sink:     o.Sink,
		conn:     o.Conn,
		store:    o.Store,
		opt:      optimize.FromConfig(o.Config),
		log:      o.Log,
		now:      o.Now,
		name:     o.Skill,
		det:      NewDetector(o.Config.Recorder.Capture),
		manual:   true,
		failures: retry.NewCounter(o.Config.Recorder.MaxFailures),
	}, nil
}

// ID returns the session identifier used for recovered skill names.
func (s *Session) ID() string { return s.id }

// Frames returns the current buffer length.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Run executes the sampling loop until a stop command, an aborting
// failure streak, or context cancellation. Captured frames are flushed
// on every exit path; partial motion is never discarded.
func (s *Session) Run(ctx context.Context) error {
	sub := s.conn.Subscribe(bus.TopicRecordCommand)
	defer sub.Unsubscribe()

	// Sessions open in manual mode so the operator can pose the arm
	// by hand, the way a capture run starts on the real robot.
	if err := s.sink.SetTorque(ctx, s.joints.Names(), false); err != nil {
		return err
	}
	s.publish("recording")
	s.log.Info("recorder: session started", "session", s.id, "skill", s.name, "hz", s.cfg.Recorder.Hz)

	// A timer reset after each tick, not a ticker: a source read that
	// stalls to its timeout must not be followed by a burst of
	// catch-up samples with misleading delays.
	period := timex.PeriodFromHz(s.cfg.Recorder.Hz)
	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			err := s.flush(s.flushName())
			s.saves.Wait()
			s.publish("stopped")
			if err != nil && !errors.Is(err, errcode.EmptySkill) {
				return err
			}
			return ctx.Err()
		case <-timer.C:
			done, err := s.tick(ctx, sub)
			if err != nil || done {
				s.saves.Wait()
				return err
			}
			timex.ResetTimer(timer, period)
		}
	}
}

// tick runs one sampling iteration. Exposed within the package so the
// tests can drive the loop deterministically.
func (s *Session) tick(ctx context.Context, sub *bus.Subscription) (done bool, err error) {
	if msg, ok := sub.TryRecv(); ok {
		if stop, err := s.command(ctx, msg); stop || err != nil {
			return stop, err
		}
	}

	rctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Recorder.SourceTimeoutMS)*time.Millisecond)
	positions, err := s.source.ReadState(rctx, s.joints.Names())
	cancel()
	if err != nil {
		return s.sourceFailure(err)
	}
	s.failures.OK()

	s.sample(positions)
	return false, nil
}

// sample routes one feedback reading through the detector and appends a
// composite frame when at least one joint moved.
func (s *Session) sample(positions map[string]float64) {
	accepted := false
	for _, j := range s.joints.Names() {
		if s.det.Accept(j, positions[j]) {
			accepted = true
		}
	}
	if !accepted {
		return
	}

	now := s.now()
	delay := 0.0
	if !s.lastAccept.IsZero() {
		delay = now.Sub(s.lastAccept).Seconds()
	}
	s.lastAccept = now

	s.mu.Lock()
	s.buffer = append(s.buffer, types.Frame{Positions: s.det.Snapshot(), Delay: delay})
	s.mu.Unlock()
}

// command applies one operator command. Returns stop=true when the
// session should end.
func (s *Session) command(ctx context.Context, msg *bus.Message) (stop bool, err error) {
	cmd, ok := msg.Payload.(types.Command)
	if !ok {
		s.log.Warn("recorder: dropping malformed command", "payload", msg.Payload)
		return false, nil
	}
	switch cmd.Op {
	case types.OpSave:
		if cmd.Name != "" {
			s.mu.Lock()
			s.name = cmd.Name
			s.mu.Unlock()
		}
		s.saveAsync(s.flushName())
	case types.OpStop:
		err := s.flush(s.flushName())
		s.publish("stopped")
		s.log.Info("recorder: session stopped", "session", s.id, "frames", s.Frames())
		if err != nil && !errors.Is(err, errcode.EmptySkill) {
			return true, err
		}
		return true, nil
	case types.OpManual:
		// Async saves publish state concurrently, so the flag stays
		// under the buffer lock.
		s.mu.Lock()
		s.manual = !s.manual
		manual := s.manual
		s.mu.Unlock()
		if err := s.sink.SetTorque(ctx, s.joints.Names(), !manual); err != nil {
			return false, err
		}
		s.publish("recording")
		s.log.Info("recorder: manual mode", "session", s.id, "manual", manual)
	default:
		s.log.Warn("recorder: unknown command", "op", string(cmd.Op))
	}
	return false, nil
}

// sourceFailure counts a rejected tick and aborts the session once the
// consecutive failure budget is spent, flushing whatever was captured.
func (s *Session) sourceFailure(cause error) (bool, error) {
	if !s.failures.Fail() {
		s.log.Warn("recorder: source read failed", "session", s.id, "failures", s.failures.Failures(), "err", cause)
		return false, nil
	}
	s.log.Error("recorder: aborting session, source unavailable", "session", s.id, "err", cause)
	if err := s.flush(s.flushName()); err != nil && !errors.Is(err, errcode.EmptySkill) {
		s.log.Error("recorder: abort flush failed", "session", s.id, "err", err)
	}
	s.publish("aborted")
	return true, errcode.Wrap(errcode.SessionAborted, "recorder", cause)
}

// flushName is the skill name saves run under; unnamed sessions persist
// recoverable captures under the session id.
func (s *Session) flushName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name != "" {
		return s.name
	}
	return "recovered-" + s.id
}

// saveAsync copies the buffer under the lock and optimizes + persists
// on its own goroutine. The buffer is not reset: recording continues
// and a later stop persists the whole session.
func (s *Session) saveAsync(name string) {
	s.mu.Lock()
	frames := make([]types.Frame, len(s.buffer))
	copy(frames, s.buffer)
	s.mu.Unlock()

	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		if err := s.persist(name, frames); err != nil {
			return
		}
		s.publish("saved")
	}()
}

// flush optimizes and persists the buffer synchronously.
func (s *Session) flush(name string) error {
	s.mu.Lock()
	frames := make([]types.Frame, len(s.buffer))
	copy(frames, s.buffer)
	s.mu.Unlock()
	return s.persist(name, frames)
}

func (s *Session) persist(name string, frames []types.Frame) error {
	skill, err := s.opt.Optimize(name, frames)
	if err != nil {
		if errors.Is(err, errcode.EmptySkill) {
			s.log.Warn("recorder: nothing to save", "session", s.id, "skill", name)
		} else {
			s.log.Error("recorder: optimize failed", "session", s.id, "err", err)
		}
		return err
	}
	if err := s.store.Save(skill); err != nil {
		s.log.Error("recorder: save failed", "session", s.id, "skill", name, "err", err)
		return err
	}
	s.log.Info("recorder: skill saved", "session", s.id, "skill", name, "frames", len(skill.Frames))
	return nil
}

func (s *Session) publish(status string) {
	s.mu.Lock()
	st := State{
		Session: s.id,
		Skill:   s.name,
		Status:  status,
		Frames:  len(s.buffer),
		Manual:  s.manual,
	}
	s.mu.Unlock()
	s.conn.Publish(s.conn.NewMessage(bus.TopicRecordState, st, true))
}
