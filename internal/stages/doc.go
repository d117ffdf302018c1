// Package stages — исполнители вычислительных стадий.
//
// Каждая стадия проходит общий цикл: каталог стадии, POSCAR из лучшей
// доступной структуры, INCAR и KPOINTS, POTCAR из кэша, скрипт
// задания, отправка и ожидание. Специализация стадий:
//   - relax.go      — релаксация ячейки, публикация CONTCAR и симметрии
//   - properties.go — электронные свойства с переносом CHGCAR из SCF
//   - dynamics.go   — фононы и молекулярная динамика
//   - registry.go   — сборка реестра исполнителей для pipeline
package stages
