// Package remote — транспорт заданий через RabbitMQ для бэкенда remote.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация заданий и отчётов о завершении
//   - consumer.go   — потребление сообщений из очередей
//   - tracker.go    — накопление отчётов для цикла ожидания диспетчера
//
// Типы сообщений:
//   - job.ready     — скрипт готов к исполнению агентом
//   - job.completed — агент отчитался о завершении
//
// Exchanges:
//   - crucible.jobs — события заданий
//   - crucible.dlq  — dead letter queue
//
// Скрипты и рабочие каталоги лежат на общей файловой системе;
// по очереди передаются только пути и идентификаторы.
package remote
