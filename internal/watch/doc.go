// Package watch повторяет проходы пакетного запуска по расписанию:
// cron-выражение или фиксированный интервал. Идемпотентность проходов
// обеспечивают чекпоинты pipeline.
package watch
