package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/combo"
)

// NewComboCmd создаёт команду составного расчёта: релаксация как
// предпосылка, затем конкурентные ветки перечисленных стадий.
func NewComboCmd(outputFn func() *Output) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "combo STAGE...",
		Short: "Run several stages behind a shared relaxation",
		Example: `  crucible combo relax phonon dos -i POSCAR --submit
  crucible combo scf dos band -i structures/ -p 0,50,100`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			groups, err := combo.Partition(args)
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), cfg, groups, opts.interactive, outputFn())
		},
	}

	opts.bind(cmd)
	opts.bindPhonon(cmd)
	opts.bindMD(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}
