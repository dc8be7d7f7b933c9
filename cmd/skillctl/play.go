package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skillcode-go/bus"
	"skillcode-go/drivers/simbot"
	"skillcode-go/services/monitor"
	"skillcode-go/services/player"
)

func newPlayCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "play <name>",
		Short: "Replay a stored skill; Ctrl-C returns the arm to rest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.checkTarget(); err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			skill, err := st.Load(args[0])
			if err != nil {
				return err
			}

			joints, err := cfg.JointSet()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := bus.New(64)
			log := slog.Default()
			monitor.New(log).Start(ctx, b.NewConnection("monitor"))

			robot := simbot.New(joints.Names(), simbot.Config{MaxVelocity: cfg.MaxVelocity})

			p, err := player.New(player.Options{
				Source: robot,
				Sink:   robot,
				Conn:   b.NewConnection("player"),
				Config: cfg,
				Gains:  cfg.Gains(opts.sim),
				Log:    log,
			})
			if err != nil {
				return err
			}
			p.Watch(ctx, b.NewConnection("playctl"))
			return p.Play(ctx, skill)
		},
	}
}
