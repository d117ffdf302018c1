package vaspio

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnsurePOSCAR копирует файл структуры в dest как POSCAR.
//
// Поддерживаются файлы в формате VASP: расширения .vasp, .poscar и
// имена, начинающиеся с POSCAR. Остальные форматы возвращают
// ErrUnsupportedFormat.
func EnsurePOSCAR(src, dest string) error {
	if !isVaspNative(src) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(src))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory for POSCAR: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open structure %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create POSCAR %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy structure to POSCAR: %w", err)
	}
	return out.Close()
}

// isVaspNative проверяет, что файл уже в формате POSCAR.
func isVaspNative(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".vasp" || ext == ".poscar" {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(filepath.Base(path)), "POSCAR")
}

// Elements возвращает символы элементов из шестой строки POSCAR.
//
// Если строка состоит из одних чисел (формат VASP 4 без символов),
// возвращается ErrNoElements.
func Elements(poscarPath string) ([]string, error) {
	data, err := os.ReadFile(poscarPath)
	if err != nil {
		return nil, fmt.Errorf("read POSCAR: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 6 {
		return nil, fmt.Errorf("%w: fewer than 6 lines", ErrMalformedPOSCAR)
	}

	symbols := strings.Fields(lines[5])
	if len(symbols) == 0 {
		return nil, ErrNoElements
	}

	allNumeric := true
	for _, s := range symbols {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		return nil, ErrNoElements
	}
	return symbols, nil
}

// Mesh — сетка k-точек по трём направлениям.
type Mesh [3]int

// KMesh переводит KSPACING в сетку Monkhorst-Pack по решётке из POSCAR:
// N_i = max(1, ceil(|b_i| / kspacing)), где b_i — векторы обратной
// решётки с множителем 2π.
func KMesh(poscarPath string, kspacing float64) (Mesh, error) {
	if kspacing <= 0 {
		return Mesh{}, fmt.Errorf("kspacing must be positive, got %g", kspacing)
	}

	data, err := os.ReadFile(poscarPath)
	if err != nil {
		return Mesh{}, fmt.Errorf("read POSCAR: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 5 {
		return Mesh{}, fmt.Errorf("%w: fewer than 5 lines", ErrMalformedPOSCAR)
	}

	scaleFields := strings.Fields(lines[1])
	if len(scaleFields) == 0 {
		return Mesh{}, fmt.Errorf("%w: missing scale line", ErrMalformedPOSCAR)
	}
	scale, err := strconv.ParseFloat(scaleFields[0], 64)
	if err != nil {
		return Mesh{}, fmt.Errorf("%w: bad scale %q", ErrMalformedPOSCAR, scaleFields[0])
	}

	var lat [3][3]float64
	for i := 0; i < 3; i++ {
		fields := strings.Fields(lines[2+i])
		if len(fields) < 3 {
			return Mesh{}, fmt.Errorf("%w: bad lattice line %d", ErrMalformedPOSCAR, i+3)
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return Mesh{}, fmt.Errorf("%w: bad lattice value %q", ErrMalformedPOSCAR, fields[j])
			}
			lat[i][j] = v * scale
		}
	}

	vol := dot(lat[0], cross(lat[1], lat[2]))
	if math.Abs(vol) < 1e-8 {
		return Mesh{}, fmt.Errorf("%w: degenerate cell volume", ErrMalformedPOSCAR)
	}

	factor := 2 * math.Pi / vol
	recip := [3][3]float64{
		mulScalar(cross(lat[1], lat[2]), factor),
		mulScalar(cross(lat[2], lat[0]), factor),
		mulScalar(cross(lat[0], lat[1]), factor),
	}

	var mesh Mesh
	for i := 0; i < 3; i++ {
		n := int(math.Ceil(norm(recip[i]) / kspacing))
		if n < 1 {
			n = 1
		}
		mesh[i] = n
	}
	return mesh, nil
}

func cross(u, v [3]float64) [3]float64 {
	return [3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
}

func dot(u, v [3]float64) float64 {
	return u[0]*v[0] + u[1]*v[1] + u[2]*v[2]
}

func norm(u [3]float64) float64 {
	return math.Sqrt(dot(u, u))
}

func mulScalar(u [3]float64, s float64) [3]float64 {
	return [3]float64{u[0] * s, u[1] * s, u[2] * s}
}
