package domain

import (
	"errors"
	"fmt"
)

// Backend — система запуска внешних вычислительных заданий.
type Backend string

const (
	// BackendBash — прямое синхронное выполнение скрипта на текущей машине.
	BackendBash Backend = "bash"

	// BackendSlurm — очередь SLURM (sbatch/squeue).
	BackendSlurm Backend = "slurm"

	// BackendPBS — очередь PBS/Torque (qsub/qstat).
	BackendPBS Backend = "pbs"

	// BackendLSF — очередь LSF (bsub/bjobs).
	BackendLSF Backend = "lsf"

	// BackendRemote — публикация скрипта в RabbitMQ для выполнения
	// агентом crucible-agent на машине с общей файловой системой.
	BackendRemote Backend = "remote"
)

// ErrUnknownBackend — неизвестная система очередей.
var ErrUnknownBackend = errors.New("unknown queue backend")

// Backends возвращает список поддерживаемых backend'ов.
func Backends() []Backend {
	return []Backend{BackendBash, BackendSlurm, BackendPBS, BackendLSF, BackendRemote}
}

// ParseBackend парсит строку в Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendBash, BackendSlurm, BackendPBS, BackendLSF, BackendRemote:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// IsQueue возвращает true, если backend — внешняя очередь,
// требующая периодического опроса состояния.
func (b Backend) IsQueue() bool {
	return b == BackendSlurm || b == BackendPBS || b == BackendLSF || b == BackendRemote
}
