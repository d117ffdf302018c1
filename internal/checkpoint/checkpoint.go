package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shaiso/Crucible/internal/domain"
)

// DefaultFilename — имя файла чекпоинта по умолчанию.
const DefaultFilename = "checkpoint.json"

// Entry — запись о состоянии одного шага.
type Entry struct {
	// Status — последний известный статус шага.
	Status domain.StepStatus `json:"status"`

	// Data — дополнительные данные, произведённые шагом
	// (например, пути к производным структурам).
	Data map[string]string `json:"data,omitempty"`

	// UpdatedAt — время последнего обновления записи.
	UpdatedAt time.Time `json:"updated_at"`
}

// Record — содержимое чекпоинта: отображение имени шага в его запись.
type Record struct {
	// Steps — состояние шагов по имени.
	Steps map[string]Entry `json:"steps"`
}

// Status возвращает статус шага. Для неизвестного шага — PENDING.
func (r Record) Status(step string) domain.StepStatus {
	if e, ok := r.Steps[step]; ok {
		return domain.ParseStepStatus(string(e.Status))
	}
	return domain.StepStatusPending
}

// Data возвращает дополнительные данные шага (nil, если их нет).
func (r Record) Data(step string) map[string]string {
	if e, ok := r.Steps[step]; ok {
		return e.Data
	}
	return nil
}

// Store — файловое хранилище чекпоинта одной единицы работы.
//
// Один Store принадлежит ровно одной WorkUnit; разные единицы никогда
// не разделяют чекпоинт, поэтому межпроцессные блокировки не нужны.
// Повреждённый или отсутствующий файл трактуется как пустой чекпоинт:
// порча деградирует до "начать заново", а не до падения процесса.
type Store struct {
	path string
}

// NewStore создаёт Store для чекпоинта в каталоге workDir.
// Пустое filename заменяется на DefaultFilename.
func NewStore(workDir, filename string) *Store {
	if filename == "" {
		filename = DefaultFilename
	}
	return &Store{path: filepath.Join(workDir, filename)}
}

// Path возвращает путь к файлу чекпоинта.
func (s *Store) Path() string {
	return s.path
}

// Load читает чекпоинт с диска. Отсутствующий или повреждённый файл
// возвращается как пустая запись — это никогда не фатально.
func (s *Store) Load() Record {
	rec := Record{Steps: make(map[string]Entry)}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return rec
	}

	var loaded Record
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return rec
	}
	if loaded.Steps != nil {
		rec.Steps = loaded.Steps
	}
	return rec
}

// Save атомарно обновляет запись одного шага, не трогая остальные.
// Запись выполняется через временный файл с fsync и rename, чтобы
// прерывание процесса не оставило полузаписанный чекпоинт.
func (s *Store) Save(step string, status domain.StepStatus, data map[string]string) error {
	rec := s.Load()
	rec.Steps[step] = Entry{
		Status:    status,
		Data:      data,
		UpdatedAt: time.Now(),
	}

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
