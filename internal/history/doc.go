// Package history — опциональный журнал пакетных запусков в PostgreSQL.
//
// Таблицы:
//   - batches      — пакетные запуски с итогами
//   - unit_results — результаты единиц работы
//
// Журнал включается переменной окружения CRUCIBLE_DB_URL; без неё CLI
// пишет только файловый отчёт.
package history
