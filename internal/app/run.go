package app

import (
	"github.com/spf13/cobra"

	"github.com/benz9527/xtree/internal/workload"
)

func newRunCommand(root *rootCmd) *cobra.Command {
	dir := "."
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Replay a YAML workload script and validate the tree after each mutation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := workload.Load(dir, args[0])
			if err != nil {
				return err
			}
			report, err := workload.Run(cmd.Context(), script, root.logger)
			if report != nil {
				report.Print(cmd.OutOrStdout())
			}
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", dir, "the scripts are opened beneath this directory only")
	return cmd
}
