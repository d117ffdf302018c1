// Package agent — удалённый исполнитель заданий для бэкенда remote.
//
// Агент работает на машинах с доступом к общей файловой системе:
// получает пути скриптов из очереди jobs.ready, выполняет их через
// bash и отчитывается в jobs.completed.
package agent
