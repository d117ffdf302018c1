package domain

import (
	"time"

	"github.com/google/uuid"
)

// Result — итог обработки одной WorkUnit.
//
// Result создаётся планировщиком ровно один раз на единицу работы
// и после создания не изменяется.
type Result struct {
	// UnitID — идентификатор единицы работы.
	UnitID uuid.UUID `json:"unit_id"`

	// Structure — путь к исходному файлу структуры.
	Structure string `json:"structure"`

	// Name — имя структуры.
	Name string `json:"name"`

	// Pressure — давление в ГПа.
	Pressure float64 `json:"pressure"`

	// WorkDir — рабочий каталог единицы.
	WorkDir string `json:"work_dir"`

	// Success — завершилась ли единица успешно.
	Success bool `json:"success"`

	// Energy — итоговая энергия из выходных файлов (эВ).
	// Nil, если извлечь не удалось или единица провалилась.
	Energy *float64 `json:"energy,omitempty"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// StartedAt — время начала обработки.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения обработки.
	FinishedAt time.Time `json:"finished_at"`
}

// NewResult создаёт Result для единицы работы.
func NewResult(unit WorkUnit) *Result {
	return &Result{
		UnitID:    unit.ID,
		Structure: unit.Structure,
		Name:      unit.Name,
		Pressure:  unit.Pressure,
		WorkDir:   unit.WorkDir,
		StartedAt: time.Now(),
	}
}

// MarkSucceeded помечает результат успешным.
func (r *Result) MarkSucceeded() {
	r.Success = true
	r.FinishedAt = time.Now()
}

// MarkFailed помечает результат неуспешным с текстом ошибки.
func (r *Result) MarkFailed(err string) {
	r.Success = false
	r.Error = err
	r.FinishedAt = time.Now()
}

// Duration возвращает продолжительность обработки.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary — сводка по набору результатов.
type Summary struct {
	// Total — общее количество единиц работы.
	Total int `json:"total"`

	// Succeeded — количество успешных.
	Succeeded int `json:"succeeded"`

	// Failed — количество неуспешных.
	Failed int `json:"failed"`
}

// Summarize подсчитывает сводку по результатам.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for i := range results {
		if results[i].Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
