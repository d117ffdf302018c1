package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/combo"
	"github.com/shaiso/Crucible/internal/domain"
)

// propertyCommands — команды электронных свойств. Каждая выполняет
// релаксацию, общий SCF и целевую стадию.
var propertyCommands = []struct {
	use   string
	short string
	stage string
}{
	{"scf", "Self-consistent charge density", domain.StageSCF},
	{"dos", "Density of states", domain.StageDOS},
	{"band", "Band structure", domain.StageBand},
	{"elf", "Electron localization function", domain.StageELF},
	{"cohp", "Crystal orbital Hamilton population inputs", domain.StageCOHP},
	{"bader", "Bader charge analysis inputs", domain.StageBader},
	{"fermisurface", "Fermi surface inputs", domain.StageFermi},
}

// NewPropertyCmds создаёт команды всех электронных свойств.
func NewPropertyCmds(outputFn func() *Output) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(propertyCommands))
	for _, pc := range propertyCommands {
		cmds = append(cmds, newPropertyCmd(pc.use, pc.short, pc.stage, outputFn))
	}
	return cmds
}

func newPropertyCmd(use, short, stage string, outputFn func() *Output) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			groups, err := combo.Partition([]string{stage})
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), cfg, groups, opts.interactive, outputFn())
		},
	}

	opts.bind(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}
