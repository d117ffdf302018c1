package pipeline

import "sync"

// State — общее состояние pipeline, доступное исполнителям шагов.
//
// Исполнители никогда не обращаются к глобальному состоянию: всё, что
// им нужно (путь к структуре, данные предыдущих шагов, prepare-only
// флаг), они получают через State.
type State struct {
	// WorkDir — рабочий каталог единицы работы.
	WorkDir string

	// Structure — путь к исходному файлу структуры.
	Structure string

	// PrepareOnly — режим "только подготовка": шаги генерируют входные
	// файлы и скрипты, но не отправляют задания и не ждут их.
	PrepareOnly bool

	mu   sync.Mutex
	data map[string]string
	// produced — данные, записанные текущим шагом; pipeline сохраняет
	// их в чекпоинт вместе со статусом шага.
	produced map[string]string
}

// Ключи данных, записываемых стадиями.
const (
	// DataRelaxed — путь к структуре после релаксации (CONTCAR).
	DataRelaxed = "relaxed_structure"

	// DataPrimitive — путь к примитивной ячейке после анализа симметрии.
	DataPrimitive = "primitive_structure"

	// DataConventional — путь к стандартной ячейке.
	DataConventional = "conventional_structure"

	// DataSpacegroup — метка пространственной группы.
	DataSpacegroup = "spacegroup"
)

// NewState создаёт State для pipeline.
func NewState(workDir, structure string, prepareOnly bool) *State {
	return &State{
		WorkDir:     workDir,
		Structure:   structure,
		PrepareOnly: prepareOnly,
		data:        make(map[string]string),
		produced:    make(map[string]string),
	}
}

// Set записывает значение в общее состояние и помечает его как
// произведённое текущим шагом.
func (s *State) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.produced[key] = value
}

// Get возвращает значение по ключу (пустая строка, если его нет).
func (s *State) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

// BestStructure возвращает лучшую доступную структуру для зависимых
// стадий: примитивную ячейку, затем релаксированную, затем исходную.
func (s *State) BestStructure() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.data[DataPrimitive]; p != "" {
		return p
	}
	if r := s.data[DataRelaxed]; r != "" {
		return r
	}
	return s.Structure
}

// seed загружает данные шага из чекпоинта, не помечая их произведёнными.
func (s *State) seed(data map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range data {
		s.data[k] = v
	}
}

// takeProduced возвращает данные, произведённые с момента прошлого
// вызова, и сбрасывает накопитель.
func (s *State) takeProduced() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.produced) == 0 {
		return nil
	}
	out := s.produced
	s.produced = make(map[string]string)
	return out
}
