package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skillcode-go/bus"
	"skillcode-go/drivers/simbot"
	svcconfig "skillcode-go/services/config"
	"skillcode-go/services/console"
	"skillcode-go/services/monitor"
	"skillcode-go/services/recorder"
)

func newRecordCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "record [name]",
		Short: "Start a capture session; type save/stop/manual on stdin",
		Args:  cobra.MaximumNArgs(1),
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

			joints, err := cfg.JointSet()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := bus.New(64)
			log := slog.Default()

			if err := svcconfig.New(cfg, log).Publish(b.NewConnection("config")); err != nil {
				return err
			}
			monitor.New(log).Start(ctx, b.NewConnection("monitor"))

			robot := simbot.New(joints.Names(), simbot.Config{MaxVelocity: cfg.MaxVelocity})

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			sess, err := recorder.NewSession(recorder.Options{
				Skill:  name,
				Source: robot,
				Sink:   robot,
				Conn:   b.NewConnection("recorder"),
				Store:  st,
				Config: cfg,
				Log:    log,
			})
			if err != nil {
				return err
			}

			done := make(chan error, 1)
			go func() { done <- sess.Run(ctx) }()

			fmt.Fprintln(cmd.OutOrStdout(), "recording; commands: save <name>, stop, manual")
			go func() {
				if err := console.New(b.NewConnection("console"), log).Run(cmd.InOrStdin()); err != nil {
					log.Warn("skillctl: console ended", "err", err)
				}
			}()

			return <-done
		},
	}
}
