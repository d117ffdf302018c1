package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/combo"
)

// NewRelaxCmd создаёт команду структурной релаксации.
func NewRelaxCmd(outputFn func() *Output) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "relax",
		Short: "Structure relaxation under external pressure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), cfg, combo.Groups{}, opts.interactive, outputFn())
		},
	}

	opts.bind(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}
