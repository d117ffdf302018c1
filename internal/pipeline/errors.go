package pipeline

import "errors"

// Ошибки pipeline.
var (
	// ErrNoSteps — pipeline сконфигурирован без шагов.
	ErrNoSteps = errors.New("pipeline has no steps")

	// ErrDuplicateStep — несколько шагов с одинаковым именем.
	ErrDuplicateStep = errors.New("duplicate step name")

	// ErrUnknownStep — для имени шага нет исполнителя в реестре.
	// Проверяется при конструировании, а не в середине запуска.
	ErrUnknownStep = errors.New("unknown step name")

	// ErrStepFailed — шаг завершился с ошибкой; остаток pipeline не выполняется.
	ErrStepFailed = errors.New("step failed")

	// ErrStepPanicked — исполнитель шага запаниковал; паника перехвачена
	// на границе pipeline и трактуется как провал шага.
	ErrStepPanicked = errors.New("step executor panicked")
)
