// Package dispatch отправляет вычислительные задания во внешние
// системы запуска: bash, SLURM, PBS, LSF и удалённые агенты через
// RabbitMQ.
//
// Структура:
//   - script.go     — генерация скриптов с заголовками планировщиков
//   - dispatcher.go — отправка, разбор идентификаторов, цикл ожидания
//
// Диспетчер не отменяет задания: превышение таймаута ожидания
// оставляет задание жить в очереди и возвращает ошибку вызывающему.
package dispatch
