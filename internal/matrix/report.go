package matrix

import (
	"fmt"
	"os"
	"strings"

	"github.com/shaiso/Crucible/internal/domain"
)

// SummaryFilename — имя файла сводного отчёта пакетного запуска.
const SummaryFilename = "batch_summary.txt"

// WriteSummary пишет текстовый отчёт по результатам пакетного запуска.
func WriteSummary(path string, results []domain.Result) error {
	var b strings.Builder
	line := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	summary := domain.Summarize(results)

	b.WriteString(line + "\n")
	b.WriteString("Batch calculation summary\n")
	b.WriteString(line + "\n\n")
	fmt.Fprintf(&b, "Total units: %d\n", summary.Total)
	fmt.Fprintf(&b, "Succeeded:   %d\n", summary.Succeeded)
	fmt.Fprintf(&b, "Failed:      %d\n\n", summary.Failed)

	b.WriteString(thin + "\n")
	b.WriteString("Details:\n")
	b.WriteString(thin + "\n\n")

	for i := range results {
		r := &results[i]
		status := "FAILED"
		if r.Success {
			status = "SUCCESS"
		}

		fmt.Fprintf(&b, "%d. %s @ %s\n", i+1, r.Name, domain.PressureLabel(r.Pressure))
		fmt.Fprintf(&b, "   Work dir: %s\n", r.WorkDir)
		fmt.Fprintf(&b, "   Status:   %s\n", status)
		if r.Energy != nil {
			fmt.Fprintf(&b, "   Energy:   %.6f eV\n", *r.Energy)
		}
		if r.Error != "" {
			fmt.Fprintf(&b, "   Error:    %s\n", r.Error)
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
