package matrix

import (
	"github.com/shaiso/Crucible/internal/domain"
)

// Expand разворачивает матрицу задач в плоский список единиц работы.
//
// Внешний цикл — структуры, внутренний — давления: порядок единиц
// детерминирован и совпадает с порядком аргументов. Пустой список
// давлений означает одно нулевое давление.
func Expand(structures []string, pressures []float64, workRoot string) []domain.WorkUnit {
	if len(pressures) == 0 {
		pressures = []float64{0}
	}

	units := make([]domain.WorkUnit, 0, len(structures)*len(pressures))
	for _, structure := range structures {
		for _, pressure := range pressures {
			units = append(units, domain.NewWorkUnit(structure, pressure, workRoot))
		}
	}
	return units
}
