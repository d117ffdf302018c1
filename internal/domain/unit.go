package domain

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// WorkUnit — единица работы: пара (файл структуры, давление).
//
// WorkUnit создаётся планировщиком при развёртке матрицы задач
// (структуры × давления) и после этого не изменяется. Каждая единица
// владеет собственным рабочим каталогом, путь к которому выводится
// детерминированно: <корень>/<имя структуры без суффикса>/<метка давления>.
type WorkUnit struct {
	// ID — уникальный идентификатор единицы работы.
	ID uuid.UUID `json:"id"`

	// Structure — путь к исходному файлу структуры.
	Structure string `json:"structure"`

	// Name — имя структуры (имя файла без суффикса).
	Name string `json:"name"`

	// Pressure — внешнее давление в ГПа.
	Pressure float64 `json:"pressure"`

	// WorkDir — рабочий каталог единицы. Каталоги разных единиц
	// не пересекаются, поэтому блокировки между ними не нужны.
	WorkDir string `json:"work_dir"`
}

// NewWorkUnit создаёт WorkUnit и выводит его рабочий каталог.
func NewWorkUnit(structure string, pressure float64, workRoot string) WorkUnit {
	name := StructureStem(structure)
	return WorkUnit{
		ID:        uuid.New(),
		Structure: structure,
		Name:      name,
		Pressure:  pressure,
		WorkDir:   filepath.Join(workRoot, name, PressureLabel(pressure)),
	}
}

// PressureLabel возвращает метку каталога для давления, например "0_GPa"
// или "12.5_GPa".
func PressureLabel(pressure float64) string {
	return strconv.FormatFloat(pressure, 'g', -1, 64) + "_GPa"
}

// StructureStem возвращает имя файла структуры без суффикса.
func StructureStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
