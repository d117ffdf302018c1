package vaspio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Маркеры нормального завершения расчёта в OUTCAR.
//
// Релаксация пишет "reached required accuracy", статические расчёты
// заканчиваются записью волновых функций.
var completionMarkers = []string{
	"reached required accuracy",
	"writing wavefunctions",
}

// IsStageComplete проверяет, что расчёт в каталоге завершился нормально.
//
// Отсутствующий или нечитаемый OUTCAR трактуется как незавершённый
// расчёт, а не как ошибка: вызывающий код решает, провал это или
// просто ещё не готово.
func IsStageComplete(workDir string) bool {
	data, err := os.ReadFile(filepath.Join(workDir, "OUTCAR"))
	if err != nil {
		return false
	}

	content := string(data)
	for _, marker := range completionMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// FinalEnergy извлекает последнюю энергию из OUTCAR каталога расчёта.
//
// Берётся последняя строка "energy  without entropy"; её последнее
// поле — энергия в эВ.
func FinalEnergy(workDir string) (float64, error) {
	data, err := os.ReadFile(filepath.Join(workDir, "OUTCAR"))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNoOutcar, workDir)
	}

	lines := strings.Split(string(data), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.Contains(lines[i], "energy  without entropy") {
			continue
		}
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			continue
		}
		energy, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse energy %q: %w", fields[len(fields)-1], err)
		}
		return energy, nil
	}

	return 0, ErrNoEnergy
}
