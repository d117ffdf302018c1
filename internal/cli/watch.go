package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/combo"
	"github.com/shaiso/Crucible/internal/config"
	"github.com/shaiso/Crucible/internal/watch"
)

// NewWatchCmd создаёт команду периодических проходов: развёртка
// повторяется по cron-выражению или фиксированному интервалу, а
// чекпоинты пропускают уже завершённые шаги.
func NewWatchCmd(outputFn func() *Output) *cobra.Command {
	opts := &options{}
	var cronExpr string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "watch STAGE...",
		Short: "Re-run a sweep on a schedule, resuming from checkpoints",
		Example: `  crucible watch relax -i structures/ --cron "0 2 * * *" --submit
  crucible watch scf dos -i structures/ --every 2h --submit`,
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

			w, err := watch.New(watch.Config{
				CronExpr: cronExpr,
				Interval: every,
			}, sweepFunc(cfg, groups, opts.interactive, outputFn))
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	opts.bind(cmd)
	opts.bindPhonon(cmd)
	opts.bindMD(cmd)
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron schedule, standard five-field format")
	cmd.Flags().DurationVar(&every, "every", time.Hour, "Fixed interval between sweeps when --cron is not set")
	cmd.MarkFlagRequired("input")

	return cmd
}

// sweepFunc адаптирует развёртку к контракту watch.Sweep.
func sweepFunc(cfg config.Config, groups combo.Groups, interactive bool, outputFn func() *Output) watch.Sweep {
	return func(ctx context.Context) error {
		return runSweep(ctx, cfg, groups, interactive, outputFn())
	}
}
