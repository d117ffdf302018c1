package inputs

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shaiso/Crucible/internal/vaspio"
)

// WriteKPOINTS пишет гамма-центрированную сетку k-точек, рассчитанную
// из KSPACING по решётке из POSCAR.
//
// Если ячейку не удалось разобрать, вместо ошибки пишется сетка 1×1×1
// с предупреждением в лог: подготовка входов не должна падать из-за
// нестандартного POSCAR.
func WriteKPOINTS(path, poscarPath string, kspacing float64, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mesh, err := vaspio.KMesh(poscarPath, kspacing)
	if err != nil {
		logger.Warn("failed to derive k-mesh, falling back to gamma point",
			"poscar", poscarPath, "error", err)
		mesh = vaspio.Mesh{1, 1, 1}
	}

	content := fmt.Sprintf("Automatic mesh\n0\nGamma\n%d %d %d\n0 0 0\n",
		mesh[0], mesh[1], mesh[2])
	return os.WriteFile(path, []byte(content), 0o644)
}
