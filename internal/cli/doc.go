// Package cli реализует инструмент командной строки Crucible.
//
// # Обзор
//
// CLI разворачивает матрицу задач (структуры × давления) и запускает
// вычислительные pipeline'ы через планировщик. Команды организованы
// по видам расчёта:
//   - relax: структурная релаксация
//   - scf, dos, band, elf, cohp, bader, fermisurface: электронные
//     свойства (релаксация и общий SCF выполняются автоматически)
//   - phonon, md: фононы и молекулярная динамика
//   - combo: несколько стадий за одной релаксацией
//   - watch: повторные проходы по расписанию
//
// # Конфигурация
//
// Три источника в порядке приоритета: флаги команды, JSON-файл
// (--json), значения по умолчанию. Флаг попадает в конфигурацию,
// только если был задан явно (cmd.Flags().Changed), поэтому JSON-файл
// не затирается нулевыми значениями флагов.
//
// # Вывод
//
// Данные выводятся в stdout таблицей (text/tabwriter) или в JSON
// с флагом --json-output; сообщения Success/Error — в stderr.
// Это позволяет использовать pipe: crucible relax ... --json-output | jq .
//
// Без флага --submit команды готовят входные файлы и скрипты, ничего
// не отправляя в очередь.
package cli
