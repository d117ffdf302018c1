// Package inputs генерирует входные файлы расчётов.
//
// Включает:
//   - incar.go — INCAR по имени стадии с общим электронным блоком
//   - kpoints.go — KPOINTS из KSPACING с фолбэком на гамма-точку
package inputs
