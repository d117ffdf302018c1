package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/combo"
)

// NewPhononCmd создаёт команду фононного расчёта.
func NewPhononCmd(outputFn func() *Output) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "phonon",
		Short: "Phonon calculation after relaxation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), cfg, combo.Groups{Phonon: true}, opts.interactive, outputFn())
		},
	}

	opts.bind(cmd)
	opts.bindPhonon(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}
