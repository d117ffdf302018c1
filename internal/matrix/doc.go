// Package matrix разворачивает матрицу задач (структуры × давления)
// и выполняет единицы работы ограниченным пулом с изоляцией провалов.
package matrix
