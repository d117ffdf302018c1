package domain

// StepStatus — статус шага внутри pipeline.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCESS
//	                  ↘ FAILED
//	PENDING → SKIPPED (только при resume, если чекпоинт уже содержит SUCCESS)
//
// RUNNING никогда не переживает рестарт процесса: при повторном запуске
// любой шаг, не достигший SUCCESS, выполняется заново с PENDING.
type StepStatus string

const (
	// StepStatusPending — шаг ещё не выполнялся.
	StepStatusPending StepStatus = "PENDING"

	// StepStatusRunning — шаг выполняется прямо сейчас.
	StepStatusRunning StepStatus = "RUNNING"

	// StepStatusSuccess — шаг успешно завершён.
	StepStatusSuccess StepStatus = "SUCCESS"

	// StepStatusFailed — шаг завершился с ошибкой.
	StepStatusFailed StepStatus = "FAILED"

	// StepStatusSkipped — шаг пропущен, потому что чекпоинт
	// уже содержит SUCCESS от предыдущего запуска.
	StepStatusSkipped StepStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус финальный.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusSuccess, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// ParseStepStatus парсит строку в StepStatus.
// Неизвестные значения трактуются как PENDING — это безопасный вариант:
// шаг просто выполнится заново.
func ParseStepStatus(s string) StepStatus {
	switch StepStatus(s) {
	case StepStatusRunning, StepStatusSuccess, StepStatusFailed, StepStatusSkipped:
		return StepStatus(s)
	default:
		return StepStatusPending
	}
}

// JobState — состояние внешнего задания в очереди.
//
// Жизненный цикл:
//
//	SUBMITTED → (QUEUED|RUNNING)* → COMPLETED
//	                              ↘ FAILED
//	                              ↘ TIMED_OUT
//
// TIMED_OUT означает, что ожидание превысило таймаут; само внешнее
// задание при этом не отменяется (известное ограничение).
type JobState string

const (
	// JobStateSubmitted — скрипт отправлен в очередь.
	JobStateSubmitted JobState = "SUBMITTED"

	// JobStateQueued — задание ждёт ресурсов в очереди.
	JobStateQueued JobState = "QUEUED"

	// JobStateRunning — задание выполняется.
	JobStateRunning JobState = "RUNNING"

	// JobStateCompleted — задание покинуло очередь без ошибки ожидания.
	// Фактический успех стадии определяется маркерами в выходных файлах.
	JobStateCompleted JobState = "COMPLETED"

	// JobStateFailed — задание завершилось с ошибкой.
	JobStateFailed JobState = "FAILED"

	// JobStateTimedOut — ожидание задания превысило таймаут.
	JobStateTimedOut JobState = "TIMED_OUT"
)

// IsTerminal возвращает true, если состояние финальное.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateCompleted, JobStateFailed, JobStateTimedOut:
		return true
	default:
		return false
	}
}
