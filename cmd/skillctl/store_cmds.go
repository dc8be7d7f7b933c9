package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newShowCmd(opts *rootOpts) *cobra.Command {
	var versions bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a skill's frames, or its version history with --versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			out := cmd.OutOrStdout()

			if versions {
				vs, err := st.Versions(args[0])
				if err != nil {
					return err
				}
				for _, v := range vs {
					fmt.Fprintf(out, "v%d  %d frames  %s  %s\n", v.Version, v.Frames, v.CreatedAt.Format(time.RFC3339), v.ID)
				}
				return nil
			}

			skill, err := st.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d frames\n", skill.Name, len(skill.Frames))
			for i, f := range skill.Frames {
				fmt.Fprintf(out, "%4d  +%.3fs  %v\n", i, f.Delay, f.Positions)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&versions, "versions", false, "list version history instead of frames")
	return cmd
}

func newDeleteCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a skill and its version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(args[0])
		},
	}
}
