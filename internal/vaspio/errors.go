package vaspio

import "errors"

// Ошибки работы с файлами VASP.
var (
	// ErrUnsupportedFormat — формат структуры не поддерживается
	// для преобразования в POSCAR.
	ErrUnsupportedFormat = errors.New("unsupported structure format")

	// ErrMalformedPOSCAR — файл POSCAR не удалось разобрать.
	ErrMalformedPOSCAR = errors.New("malformed POSCAR")

	// ErrNoElements — строка элементов POSCAR отсутствует или содержит
	// только числа (старый формат без символов элементов).
	ErrNoElements = errors.New("POSCAR has no element symbols")

	// ErrNoOutcar — файл OUTCAR отсутствует в каталоге расчёта.
	ErrNoOutcar = errors.New("OUTCAR not found")

	// ErrNoEnergy — в OUTCAR не найдено ни одной строки с энергией.
	ErrNoEnergy = errors.New("no energy found in OUTCAR")

	// ErrPotcarNotFound — для элемента не найден ни один кандидат POTCAR.
	ErrPotcarNotFound = errors.New("no POTCAR candidate found")

	// ErrNoCandidateChosen — резолвер не выбрал кандидата.
	ErrNoCandidateChosen = errors.New("no POTCAR candidate chosen")

	// ErrNoStructures — в каталоге не найдено ни одного файла структуры.
	ErrNoStructures = errors.New("no structure files found")
)
