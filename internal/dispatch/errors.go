package dispatch

import "errors"

// Ошибки диспетчера заданий.
var (
	// ErrBackendNotConfigured — backend требует инфраструктуры,
	// которая не была сконфигурирована (remote без соединения с брокером).
	ErrBackendNotConfigured = errors.New("backend not configured")

	// ErrSubmitFailed — команда отправки завершилась с ошибкой.
	ErrSubmitFailed = errors.New("job submission failed")

	// ErrNoJobID — из вывода команды отправки не удалось извлечь
	// идентификатор задания.
	ErrNoJobID = errors.New("no job id in submission output")

	// ErrWaitTimeout — задание не завершилось за отведённое время.
	// Само задание не отменяется: оно продолжает жить в очереди.
	ErrWaitTimeout = errors.New("job wait timed out")

	// ErrJobFailed — задание завершилось неуспешно.
	ErrJobFailed = errors.New("job failed")
)
