// Package domain содержит основные типы предметной области Crucible.
//
// Ключевые сущности:
//   - WorkUnit — единица работы: пара (структура, давление) с собственным
//     рабочим каталогом
//   - Result — неизменяемый итог обработки одной WorkUnit
//   - StepStatus / JobState — статусы шагов pipeline и внешних заданий
//   - Backend — система запуска внешних заданий (bash/slurm/pbs/lsf/remote)
//   - JobHandle — идентификатор отправленного задания
//
// Пакет не зависит от других пакетов проекта.
package domain
