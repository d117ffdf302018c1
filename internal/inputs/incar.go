package inputs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shaiso/Crucible/internal/domain"
)

// Значения по умолчанию для электронных параметров.
const (
	DefaultEncut = 520.0
	DefaultEdiff = 1e-6
	DefaultSigma = 0.05

	// DefaultMDNsw — число шагов молекулярной динамики.
	DefaultMDNsw = 5000
	// DefaultMDPotim — шаг по времени, фс.
	DefaultMDPotim = 1.0
	// DefaultMDTemp — температура термостата, К.
	DefaultMDTemp = 300.0
)

// Методы расчёта фононов.
const (
	PhononDisp = "disp"
	PhononDFPT = "dfpt"
)

// Params — параметры генерации INCAR.
//
// Нулевые значения электронных параметров заменяются на значения по
// умолчанию; давление в нуле остаётся нулём.
type Params struct {
	// Encut — обрезка плоских волн, эВ.
	Encut float64

	// Ediff — критерий электронной сходимости.
	Ediff float64

	// Sigma — размытие, эВ.
	Sigma float64

	// Pressure — внешнее давление, ГПа.
	Pressure float64

	// NSW — число ионных шагов (MD).
	NSW int

	// Potim — шаг по времени для MD, фс.
	Potim float64

	// Tebeg, Teend — начальная и конечная температуры MD, К.
	Tebeg float64
	Teend float64

	// PhononMethod — метод фононного расчёта: disp или dfpt.
	PhononMethod string
}

// Pstress переводит давление из ГПа в кбар для INCAR.
func (p Params) Pstress() float64 {
	return p.Pressure * 10
}

func (p Params) encut() float64 {
	if p.Encut > 0 {
		return p.Encut
	}
	return DefaultEncut
}

func (p Params) ediff() float64 {
	if p.Ediff > 0 {
		return p.Ediff
	}
	return DefaultEdiff
}

func (p Params) sigma() float64 {
	if p.Sigma > 0 {
		return p.Sigma
	}
	return DefaultSigma
}

// WriteINCAR генерирует INCAR для стадии и пишет его в path.
//
// Общий электронный блок одинаков для всех стадий; стадийный блок
// задаёт режим: релаксация ячейки, статический расчёт, свойства,
// фононы или молекулярная динамика.
func WriteINCAR(path, stage string, p Params) error {
	var b strings.Builder

	fmt.Fprintf(&b, "SYSTEM = %s\n\n", stage)
	b.WriteString("PREC = Accurate\n")
	fmt.Fprintf(&b, "ENCUT = %s\n", ftoa(p.encut()))
	fmt.Fprintf(&b, "EDIFF = %s\n", ftoa(p.ediff()))
	b.WriteString("ISMEAR = 0\n")
	fmt.Fprintf(&b, "SIGMA = %s\n\n", ftoa(p.sigma()))

	switch stage {
	case domain.StageRelax:
		b.WriteString("IBRION = 2\n")
		b.WriteString("ISIF = 3\n")
		b.WriteString("NSW = 200\n")
		b.WriteString("EDIFFG = -0.01\n")
		fmt.Fprintf(&b, "PSTRESS = %s\n", ftoa(p.Pstress()))

	case domain.StageSCF:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("LCHARG = .TRUE.\n")
		b.WriteString("LWAVE = .TRUE.\n")

	case domain.StageDOS:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("ICHARG = 11\n")
		b.WriteString("LORBIT = 11\n")
		b.WriteString("NEDOS = 2000\n")

	case domain.StageBand:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("ICHARG = 11\n")
		b.WriteString("LORBIT = 11\n")

	case domain.StageELF:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("LELF = .TRUE.\n")
		b.WriteString("LCHARG = .TRUE.\n")

	case domain.StageCOHP:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("ISYM = -1\n")
		b.WriteString("LWAVE = .TRUE.\n")

	case domain.StageBader:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("LAECHG = .TRUE.\n")
		b.WriteString("LCHARG = .TRUE.\n")

	case domain.StageFermi:
		b.WriteString("IBRION = -1\n")
		b.WriteString("NSW = 0\n")
		b.WriteString("ICHARG = 11\n")

	case domain.StagePhonon:
		if p.PhononMethod == PhononDFPT {
			b.WriteString("IBRION = 8\n")
		} else {
			b.WriteString("IBRION = 6\n")
		}
		b.WriteString("NSW = 1\n")
		b.WriteString("POTIM = 0.015\n")
		b.WriteString("IALGO = 38\n")

	case domain.StageMD:
		b.WriteString("IBRION = 0\n")
		b.WriteString("MDALGO = 2\n")
		fmt.Fprintf(&b, "NSW = %d\n", intOr(p.NSW, DefaultMDNsw))
		fmt.Fprintf(&b, "POTIM = %s\n", ftoa(floatOr(p.Potim, DefaultMDPotim)))
		fmt.Fprintf(&b, "TEBEG = %s\n", ftoa(floatOr(p.Tebeg, DefaultMDTemp)))
		fmt.Fprintf(&b, "TEEND = %s\n", ftoa(floatOr(p.Teend, DefaultMDTemp)))
		b.WriteString("SMASS = 0\n")
		fmt.Fprintf(&b, "PSTRESS = %s\n", ftoa(p.Pstress()))
		b.WriteString("LWAVE = .FALSE.\n")
		b.WriteString("LCHARG = .FALSE.\n")

	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownStage, stage)
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func intOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func floatOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
