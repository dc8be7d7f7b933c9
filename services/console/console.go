// Package console turns operator input lines into bus commands for the
// capture session. Parsing happens on its own goroutine; the sampling
// loop never waits on a human typing.
package console

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/google/shlex"

	"skillcode-go/bus"
	"skillcode-go/errcode"
	"skillcode-go/types"
)

// Commands accepted during a session.
//
//	save <name>   flush the buffer to a named skill, keep recording
//	stop          flush and end the session
//	manual        toggle torque-off manual mode
//
// Skill names with spaces are quoted: save "left wave".

// Parse tokenizes one input line. An empty line yields ok=false.
func Parse(line string) (cmd types.Command, ok bool, err error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return types.Command{}, false, errcode.Wrap(errcode.Error, "console", err)
	}
	if len(tokens) == 0 {
		return types.Command{}, false, nil
	}

	switch strings.ToLower(tokens[0]) {
	case "save":
		if len(tokens) != 2 || tokens[1] == "" {
			return types.Command{}, false, errcode.New(errcode.Error, "console", "usage: save <name>")
		}
		return types.Command{Op: types.OpSave, Name: tokens[1]}, true, nil
	case "stop":
		return types.Command{Op: types.OpStop}, true, nil
	case "manual":
		return types.Command{Op: types.OpManual}, true, nil
	default:
		return types.Command{}, false, errcode.New(errcode.Error, "console", "unknown command "+tokens[0])
	}
}

// Console publishes parsed operator commands on record/command.
type Console struct {
	conn *bus.Connection
	log  *slog.Logger
}

func New(conn *bus.Connection, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{conn: conn, log: log}
}

// Run reads lines until EOF, a read error, or a stop command. Bad input
// is logged and dropped; it never ends the session.
func (c *Console) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		cmd, ok, err := Parse(sc.Text())
		if err != nil {
			c.log.Warn("console: ignoring input", "err", err)
			continue
		}
		if !ok {
			continue
		}
		c.conn.Publish(c.conn.NewMessage(bus.TopicRecordCommand, cmd, false))
		if cmd.Op == types.OpStop {
			return nil
		}
	}
	return sc.Err()
}
