package domain

import "errors"

// ErrUnknownStage — имя стадии не входит в известный набор.
var ErrUnknownStage = errors.New("unknown stage")

// Имена стадий вычислительного процесса. Стадии — это данные:
// pipeline конфигурируется упорядоченным списком имён, а реестр
// сопоставляет имя исполнителю.
const (
	StageRelax   = "relax"
	StageSCF     = "scf"
	StageDOS     = "dos"
	StageBand    = "band"
	StageELF     = "elf"
	StageCOHP    = "cohp"
	StageBader   = "bader"
	StageFermi   = "fermisurface"
	StagePhonon  = "phonon"
	StageMD      = "md"
)

// Stages возвращает все известные стадии в каноническом порядке.
func Stages() []string {
	return []string{
		StageRelax,
		StagePhonon,
		StageMD,
		StageSCF,
		StageDOS,
		StageBand,
		StageELF,
		StageCOHP,
		StageBader,
		StageFermi,
	}
}

// propertyStages — электронные свойства, вычисляемые в одном
// properties-pipeline после общего SCF.
var propertyStages = map[string]bool{
	StageSCF:   true,
	StageDOS:   true,
	StageBand:  true,
	StageELF:   true,
	StageCOHP:  true,
	StageBader: true,
	StageFermi: true,
}

// IsPropertyStage возвращает true для стадий электронных свойств.
func IsPropertyStage(name string) bool {
	return propertyStages[name]
}

// IsKnownStage возвращает true, если имя стадии известно.
func IsKnownStage(name string) bool {
	if propertyStages[name] {
		return true
	}
	return name == StageRelax || name == StagePhonon || name == StageMD
}
