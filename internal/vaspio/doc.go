// Package vaspio читает и пишет файлы VASP.
//
// Включает:
//   - poscar.go — работа со структурами: копирование в POSCAR,
//     элементы, перевод KSPACING в сетку k-точек
//   - outcar.go — маркеры завершения и извлечение энергии из OUTCAR
//   - potcar.go — сборка POTCAR через кэш псевдопотенциалов
//   - scan.go — поиск файлов структур для пакетного режима
package vaspio
