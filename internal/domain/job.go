package domain

// JobHandle — идентификатор отправленного внешнего задания.
//
// Handle создаётся при отправке скрипта и отбрасывается после того,
// как ожидание завершилось (или не начиналось — prepare-only режим).
type JobHandle struct {
	// ID — идентификатор задания в очереди. Для bash — локальная метка,
	// для очередей — ID, распарсенный из вывода команды отправки.
	ID string `json:"id"`

	// Backend — система очередей, в которую отправлено задание.
	Backend Backend `json:"backend"`

	// Script — путь к отправленному скрипту.
	Script string `json:"script"`

	// ExitError — текст ошибки синхронного выполнения (только bash).
	// Пустая строка означает нулевой код выхода.
	ExitError string `json:"exit_error,omitempty"`

	// prepared — сентинел "скрипт сгенерирован, но не отправлен".
	prepared bool
}

// PreparedHandle возвращает сентинел-handle для prepare-only режима:
// скрипт сгенерирован, отправки и опроса не будет.
func PreparedHandle(script string, backend Backend) JobHandle {
	return JobHandle{ID: "prepare-only", Backend: backend, Script: script, prepared: true}
}

// Prepared возвращает true, если это сентинел prepare-only режима.
func (h JobHandle) Prepared() bool {
	return h.prepared
}
