package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Transport.
	SourceUnavailable Code = "source_unavailable" // feedback read failed; transient, counted
	SinkError         Code = "sink_error"         // command write failed; forces safe return
	Timeout           Code = "timeout"

	// Capture.
	SessionAborted Code = "session_aborted" // consecutive source failures exhausted

	// Skills.
	CorruptSkill Code = "corrupt_skill" // load-time invariant violation
	EmptySkill   Code = "empty_skill"   // optimization retained zero frames
	NoSuchSkill  Code = "no_such_skill"

	// Playback.
	PlayerBusy Code = "player_busy" // a playback invocation is already driving the joints

	// Configuration.
	UnknownJoint  Code = "unknown_joint"
	InvalidConfig Code = "invalid_config"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New builds an *E with no cause.
func New(c Code, op, msg string) *E {
	return &E{C: c, Op: op, Msg: msg}
}

// Wrap attaches a code and operation to a cause.
func Wrap(c Code, op string, err error) *E {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
