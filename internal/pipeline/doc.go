// Package pipeline реализует чекпоинтированную машину состояний шагов.
//
// # Обзор
//
// Pipeline выполняет упорядоченный список именованных шагов для одной
// единицы работы. Шаги — это данные: конфигурация задаёт список имён,
// а Registry сопоставляет имя исполнителю (интерфейс Executor).
// Неизвестные имена отклоняются при конструировании.
//
// # Resume
//
// Финальный статус каждого шага сохраняется в чекпоинт (пакет
// checkpoint). При повторном запуске шаги со статусом SUCCESS
// помечаются SKIPPED и их исполнители не вызываются; все остальные
// выполняются заново с PENDING. RUNNING живёт только в памяти и
// на диск не записывается.
//
// # Семантика провала
//
// Первый провалившийся шаг останавливает pipeline: ни один последующий
// шаг не выполняется. Повтор — это внешний перезапуск, который
// пропустит выполненное и попробует заново только упавший шаг.
// Паника исполнителя перехватывается и трактуется как провал шага.
//
// # Prepare-only
//
// PrepareOnly — флаг всего pipeline, а не отдельного шага: исполнители,
// отправляющие задания, в этом режиме только генерируют входные файлы и
// скрипты, сообщая об успехе, так что Run возвращает nil за один проход
// без единого внешнего задания.
package pipeline
