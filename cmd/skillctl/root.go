package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"skillcode-go/config"
	"skillcode-go/errcode"
	"skillcode-go/store"
)

// rootOpts are the persistent flags shared by every subcommand.
type rootOpts struct {
	configPath string
	storeDir   string
	sim        bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "skillctl",
		Short: "Capture robot skills by demonstration and play them back",
		Long: `skillctl records joint motion into compact skill files and replays
them through a staged, velocity-bounded player.

Examples:
  skillctl record wave
  skillctl play wave
  skillctl list
  skillctl show wave --versions
  skillctl delete wave`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			lvl := slog.LevelInfo
			if opts.verbose {
				lvl = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "robot config YAML (built-in defaults if empty)")
	pf.StringVarP(&opts.storeDir, "store", "s", "skills", "skill store directory")
	pf.BoolVar(&opts.sim, "sim", true, "use the simulated twin as the joint transport")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newRecordCmd(opts))
	cmd.AddCommand(newPlayCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))

	return cmd
}

func (o *rootOpts) loadConfig() (config.Robot, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

func (o *rootOpts) openStore() (*store.Store, error) {
	return store.Open(o.storeDir)
}

// transport guards the only target this build wires in.
func (o *rootOpts) checkTarget() error {
	if !o.sim {
		return errcode.New(errcode.InvalidConfig, "skillctl",
			"no physical transport configured in this build; run with --sim")
	}
	return nil
}
