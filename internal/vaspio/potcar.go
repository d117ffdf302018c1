package vaspio

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Resolver выбирает один POTCAR из нескольких кандидатов для элемента.
//
// Стратегия выбора инжектируется, чтобы пакетный режим не зависал на
// вводе пользователя.
type Resolver interface {
	Choose(element string, candidates []string) (string, error)
}

// FirstCandidate — резолвер по умолчанию: всегда берёт первого кандидата.
type FirstCandidate struct{}

// Choose возвращает первого кандидата из списка.
func (FirstCandidate) Choose(_ string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidateChosen
	}
	return candidates[0], nil
}

// Interactive — резолвер с выбором через терминал.
//
// Пустой ввод означает первого кандидата; некорректный номер — отказ.
type Interactive struct {
	// In — источник ввода; nil заменяется на os.Stdin.
	In io.Reader
	// Out — вывод подсказки; nil заменяется на os.Stdout.
	Out io.Writer
}

// Choose печатает кандидатов и читает номер выбранного.
func (r Interactive) Choose(element string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidateChosen
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	in := r.In
	if in == nil {
		in = os.Stdin
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "\nSelect POTCAR for element %s (enter number, empty for 1):\n", element)
	for i, c := range candidates {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c)
	}
	fmt.Fprint(out, "Choice: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read choice: %w", err)
	}

	choice := strings.TrimSpace(line)
	if choice == "" {
		return candidates[0], nil
	}

	num, err := strconv.Atoi(choice)
	if err != nil || num < 1 || num > len(candidates) {
		return "", fmt.Errorf("%w: invalid choice %q for %s", ErrNoCandidateChosen, choice, element)
	}
	return candidates[num-1], nil
}

// PotcarLibrary готовит POTCAR из кэша выбранных псевдопотенциалов.
//
// Выбранный для элемента POTCAR копируется в кэш (Root/Element), и все
// последующие расчёты берут его оттуда без повторного выбора.
type PotcarLibrary struct {
	// Root — каталог кэша; пустое значение — potcar_lib в текущем каталоге.
	Root string

	// SourceDir — исходная библиотека псевдопотенциалов. Может быть
	// пустым: тогда используются только элементы, уже лежащие в кэше.
	SourceDir string

	// Type — тип псевдопотенциала (PBE, LDA, PW91); задаёт
	// дополнительный подкаталог поиска SourceDir/Type.
	Type string

	// Resolver — стратегия выбора из нескольких кандидатов;
	// nil заменяется на FirstCandidate.
	Resolver Resolver

	// Logger — логгер; nil заменяется на slog.Default().
	Logger *slog.Logger
}

// Prepare собирает POTCAR для элементов из POSCAR и пишет его в outputPath.
func (l *PotcarLibrary) Prepare(poscarPath, outputPath string) error {
	elements, err := Elements(poscarPath)
	if err != nil {
		return fmt.Errorf("resolve elements: %w", err)
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := l.Resolver
	if resolver == nil {
		resolver = FirstCandidate{}
	}
	root := l.Root
	if root == "" {
		root = "potcar_lib"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create potcar cache %s: %w", root, err)
	}

	logger.Debug("resolving POTCAR", "elements", strings.Join(elements, " "))

	var parts []string
	for _, element := range elements {
		cached := locateCached(root, element)
		if cached != "" {
			data, err := os.ReadFile(cached)
			if err != nil {
				return fmt.Errorf("read cached POTCAR %s: %w", cached, err)
			}
			parts = append(parts, string(data))
			continue
		}

		if l.SourceDir == "" {
			return fmt.Errorf("%w: element %s missing from cache %s and no source library configured",
				ErrPotcarNotFound, element, root)
		}

		candidates := searchCandidates(l.SourceDir, element, l.Type)
		if len(candidates) == 0 {
			return fmt.Errorf("%w: element %s in %s", ErrPotcarNotFound, element, l.SourceDir)
		}

		chosen, err := resolver.Choose(element, candidates)
		if err != nil {
			return fmt.Errorf("choose POTCAR for %s: %w", element, err)
		}

		dest := filepath.Join(root, element)
		if err := copyFile(chosen, dest); err != nil {
			return fmt.Errorf("cache POTCAR for %s: %w", element, err)
		}
		logger.Info("POTCAR cached for reuse", "element", element, "source", chosen, "cache", dest)

		data, err := os.ReadFile(dest)
		if err != nil {
			return fmt.Errorf("read cached POTCAR %s: %w", dest, err)
		}
		parts = append(parts, string(data))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create directory for POTCAR: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(strings.Join(parts, "")), 0o644); err != nil {
		return fmt.Errorf("write POTCAR: %w", err)
	}
	return nil
}

// locateCached ищет POTCAR элемента в кэше: сначала Element/POTCAR,
// затем файл Element.
func locateCached(root, element string) string {
	nested := filepath.Join(root, element, "POTCAR")
	if fileExists(nested) {
		return nested
	}
	flat := filepath.Join(root, element)
	if fileExists(flat) {
		return flat
	}
	return ""
}

// searchCandidates ищет кандидатов в исходной библиотеке: каталоги,
// имя которых начинается с символа элемента и которые содержат POTCAR.
func searchCandidates(sourceDir, element, potcarType string) []string {
	roots := []string{sourceDir}
	if potcarType != "" {
		roots = append(roots, filepath.Join(sourceDir, potcarType))
	}

	prefix := strings.ToLower(element)
	var candidates []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasPrefix(strings.ToLower(entry.Name()), prefix) {
				continue
			}
			path := filepath.Join(root, entry.Name(), "POTCAR")
			if fileExists(path) {
				candidates = append(candidates, path)
			}
		}
	}
	return candidates
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
