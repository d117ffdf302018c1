// Crucible CLI — запуск многостадийных расчётных конвейеров
// по матрице задач (структуры × давления).
//
// Использование:
//
//	crucible [--json-output] <command> [flags]
//
// Команды:
//
//	relax                    Структурная релаксация
//	scf, dos, band, elf,
//	cohp, bader,
//	fermisurface             Электронные свойства
//	phonon                   Фононный расчёт
//	md                       Молекулярная динамика
//	combo STAGE...           Несколько стадий за одной релаксацией
//	watch STAGE...           Повторные проходы по расписанию
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/cli"
	"github.com/shaiso/Crucible/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	telemetry.SetupLogger()

	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "crucible",
		Short:         "Crucible — pipeline engine for multi-stage simulation jobs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json-output", false, "Output results in JSON format")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRelaxCmd(outputFn),
		cli.NewPhononCmd(outputFn),
		cli.NewMDCmd(outputFn),
		cli.NewComboCmd(outputFn),
		cli.NewWatchCmd(outputFn),
	)
	rootCmd.AddCommand(cli.NewPropertyCmds(outputFn)...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
