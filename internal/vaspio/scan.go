package vaspio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanStructures находит файлы структур в каталоге по списку расширений.
//
// Для "vasp" дополнительно ищутся файлы *.POSCAR и POSCAR*. Результат
// дедуплицируется и сортируется для детерминированного порядка обхода.
func ScanStructures(dir string, exts []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("structures directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("structures path %s is not a directory", dir)
	}

	if len(exts) == 0 {
		exts = []string{"vasp"}
	}

	var patterns []string
	for _, ext := range exts {
		switch strings.ToLower(ext) {
		case "vasp":
			patterns = append(patterns, "*.vasp", "*.POSCAR", "POSCAR*")
		default:
			patterns = append(patterns, "*."+strings.ToLower(ext))
		}
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			fi, err := os.Stat(m)
			if err != nil || fi.IsDir() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStructures, dir)
	}

	sort.Strings(files)
	return files, nil
}

// DetectBatchMode определяет режим по входному пути: каталог означает
// пакетный режим, файл — одиночный расчёт.
func DetectBatchMode(input string) (bool, error) {
	info, err := os.Stat(input)
	if err != nil {
		return false, fmt.Errorf("input path %s: %w", input, err)
	}
	return info.IsDir(), nil
}
