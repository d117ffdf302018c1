package combo

import (
	"fmt"

	"github.com/shaiso/Crucible/internal/domain"
)

// Имена файлов чекпоинтов по pipeline внутри рабочего каталога единицы.
//
// Каждый pipeline ведёт собственный чекпоинт, поэтому повторный запуск
// combo возобновляет каждую ветку независимо.
const (
	RelaxCheckpoint      = "relax_checkpoint.json"
	ElectronicCheckpoint = "electronic_checkpoint.json"
	PhononCheckpoint     = "phonon_checkpoint.json"
	MDCheckpoint         = "md_checkpoint.json"
)

// Groups — разбиение стадий combo на ветки за релаксацией.
type Groups struct {
	// Phonon — запускать фононную ветку.
	Phonon bool

	// Properties — стадии электронных свойств в порядке перечисления.
	Properties []string

	// MD — запускать ветку молекулярной динамики.
	MD bool
}

// Empty возвращает true, если за релаксацией не следует ни одна ветка.
func (g Groups) Empty() bool {
	return !g.Phonon && !g.MD && len(g.Properties) == 0
}

// Partition разбирает список стадий на ветки combo.
//
// Релаксация — всегда предпосылка, явное "relax" в списке допускается
// и не создаёт отдельной ветки. Непустая ветка свойств всегда
// начинается с SCF: зарядовая плотность нужна всем стадиям свойств,
// поэтому недостающая зависимость дописывается автоматически.
// Неизвестная стадия — ошибка. Дубликаты схлопываются с сохранением
// порядка.
func Partition(tasks []string) (Groups, error) {
	var g Groups
	seen := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		if seen[task] {
			continue
		}
		seen[task] = true

		switch {
		case task == domain.StageRelax:
			// Предпосылка, выполняется всегда.
		case task == domain.StagePhonon:
			g.Phonon = true
		case task == domain.StageMD:
			g.MD = true
		case task == domain.StageSCF:
			// SCF встаёт в начало ветки при нормализации ниже.
		case domain.IsPropertyStage(task):
			g.Properties = append(g.Properties, task)
		default:
			return Groups{}, fmt.Errorf("%w: %s", domain.ErrUnknownStage, task)
		}
	}

	if seen[domain.StageSCF] || len(g.Properties) > 0 {
		g.Properties = append([]string{domain.StageSCF}, g.Properties...)
	}

	return g, nil
}
