package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shaiso/Crucible/internal/domain"
)

// Resources — ресурсы и команда для скрипта задания.
type Resources struct {
	// JobName — имя задания в очереди и суффикс имени скрипта.
	JobName string

	// Launcher — префикс запуска (например "mpirun -np 16");
	// пустое значение запускает команду напрямую.
	Launcher string

	// Command — команда расчёта. Обязательна.
	Command string

	// Partition — очередь/партиция планировщика; пустая не пишется.
	Partition string

	// Nodes — число узлов; значения меньше 1 означают 1.
	Nodes int

	// Tasks — число процессов; значения меньше 1 означают 1.
	Tasks int

	// WallTime — лимит времени в формате планировщика; пустой не пишется.
	WallTime string
}

func (r Resources) nodes() int {
	if r.Nodes < 1 {
		return 1
	}
	return r.Nodes
}

func (r Resources) tasks() int {
	if r.Tasks < 1 {
		return 1
	}
	return r.Tasks
}

// WriteScript генерирует скрипт задания в workDir и возвращает его путь.
//
// Заголовок скрипта определяется backend'ом (#SBATCH, #PBS, #BSUB);
// bash и remote получают чистый shell-скрипт. Неизвестный backend —
// ошибка, а не скрипт без заголовка.
func (d *Dispatcher) WriteScript(workDir string, res Resources) (string, error) {
	if res.Command == "" {
		return "", fmt.Errorf("script command is required")
	}
	if res.JobName == "" {
		res.JobName = "job"
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")

	switch d.backend {
	case domain.BackendBash, domain.BackendRemote:
		// Без заголовка планировщика.

	case domain.BackendSlurm:
		fmt.Fprintf(&b, "#SBATCH --job-name=%s\n", res.JobName)
		fmt.Fprintf(&b, "#SBATCH --nodes=%d\n", res.nodes())
		fmt.Fprintf(&b, "#SBATCH --ntasks=%d\n", res.tasks())
		if res.Partition != "" {
			fmt.Fprintf(&b, "#SBATCH --partition=%s\n", res.Partition)
		}
		if res.WallTime != "" {
			fmt.Fprintf(&b, "#SBATCH --time=%s\n", res.WallTime)
		}

	case domain.BackendPBS:
		fmt.Fprintf(&b, "#PBS -N %s\n", res.JobName)
		fmt.Fprintf(&b, "#PBS -l nodes=%d:ppn=%d\n", res.nodes(), res.tasks())
		if res.Partition != "" {
			fmt.Fprintf(&b, "#PBS -q %s\n", res.Partition)
		}
		if res.WallTime != "" {
			fmt.Fprintf(&b, "#PBS -l walltime=%s\n", res.WallTime)
		}
		b.WriteString("cd $PBS_O_WORKDIR\n")

	case domain.BackendLSF:
		fmt.Fprintf(&b, "#BSUB -J %s\n", res.JobName)
		fmt.Fprintf(&b, "#BSUB -n %d\n", res.tasks())
		if res.Partition != "" {
			fmt.Fprintf(&b, "#BSUB -q %s\n", res.Partition)
		}
		if res.WallTime != "" {
			fmt.Fprintf(&b, "#BSUB -W %s\n", res.WallTime)
		}

	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownBackend, d.backend)
	}

	b.WriteString("\n")
	if res.Launcher != "" {
		fmt.Fprintf(&b, "%s %s > %s.log 2>&1\n", res.Launcher, res.Command, res.JobName)
	} else {
		fmt.Fprintf(&b, "%s > %s.log 2>&1\n", res.Command, res.JobName)
	}

	path := filepath.Join(workDir, fmt.Sprintf("job_%s.sh", res.JobName))
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		return "", fmt.Errorf("write job script: %w", err)
	}
	return path, nil
}
