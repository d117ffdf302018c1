package history

import "errors"

// Ошибки журнала запусков.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")
)
