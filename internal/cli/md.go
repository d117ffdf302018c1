package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/combo"
)

// NewMDCmd создаёт команду молекулярной динамики.
func NewMDCmd(outputFn func() *Output) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "md",
		Short: "Molecular dynamics after relaxation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), cfg, combo.Groups{MD: true}, opts.interactive, outputFn())
		},
	}

	opts.bind(cmd)
	opts.bindMD(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}
