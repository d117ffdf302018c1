package matrix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shaiso/Crucible/internal/domain"
)

func TestExpandOrderAndLayout(t *testing.T) {
	structures := []string{"structs/mgsio3.vasp", "structs/feo.vasp"}
	pressures := []float64{0, 50}

	units := Expand(structures, pressures, "work")
	if len(units) != 4 {
		t.Fatalf("Expand() produced %d units, want 4", len(units))
	}

	// Структуры — внешний цикл, давления — внутренний.
	wantDirs := []string{
		filepath.Join("work", "mgsio3", "0_GPa"),
		filepath.Join("work", "mgsio3", "50_GPa"),
		filepath.Join("work", "feo", "0_GPa"),
		filepath.Join("work", "feo", "50_GPa"),
	}
	for i, want := range wantDirs {
		if units[i].WorkDir != want {
			t.Errorf("units[%d].WorkDir = %q, want %q", i, units[i].WorkDir, want)
		}
	}

	// Идентификаторы уникальны.
	seen := make(map[string]bool)
	for _, u := range units {
		if seen[u.ID.String()] {
			t.Errorf("duplicate unit id %s", u.ID)
		}
		seen[u.ID.String()] = true
	}
}

func TestExpandEmptyPressures(t *testing.T) {
	units := Expand([]string{"a.vasp"}, nil, "work")
	if len(units) != 1 || units[0].Pressure != 0 {
		t.Errorf("Expand() = %+v, want single zero-pressure unit", units)
	}
}

func TestSchedulerRunsAllUnits(t *testing.T) {
	units := Expand([]string{"a.vasp", "b.vasp", "c.vasp"}, []float64{0, 10}, "work")

	var calls int32
	s := NewScheduler(2, nil)
	results := s.Run(context.Background(), units, func(_ context.Context, unit domain.WorkUnit) *domain.Result {
		atomic.AddInt32(&calls, 1)
		r := domain.NewResult(unit)
		r.MarkSucceeded()
		return r
	})

	if calls != 6 {
		t.Errorf("unit function called %d times, want 6", calls)
	}
	if len(results) != 6 {
		t.Fatalf("got %d results, want 6", len(results))
	}
	// Результаты в порядке единиц.
	for i := range results {
		if results[i].UnitID != units[i].ID {
			t.Errorf("results[%d] belongs to unit %s, want %s", i, results[i].UnitID, units[i].ID)
		}
	}
}

func TestSchedulerLimitsConcurrency(t *testing.T) {
	units := Expand([]string{"a.vasp", "b.vasp", "c.vasp", "d.vasp"}, []float64{0}, "work")

	var mu sync.Mutex
	active, peak := 0, 0
	gate := make(chan struct{})

	s := NewScheduler(2, nil)
	done := make(chan []domain.Result, 1)
	go func() {
		done <- s.Run(context.Background(), units, func(_ context.Context, unit domain.WorkUnit) *domain.Result {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			<-gate

			mu.Lock()
			active--
			mu.Unlock()

			r := domain.NewResult(unit)
			r.MarkSucceeded()
			return r
		})
	}()

	close(gate)
	<-done

	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	units := Expand([]string{"a.vasp", "b.vasp", "c.vasp"}, []float64{0}, "work")

	s := NewScheduler(3, nil)
	results := s.Run(context.Background(), units, func(_ context.Context, unit domain.WorkUnit) *domain.Result {
		switch unit.Name {
		case "a":
			panic("relax exploded")
		case "b":
			r := domain.NewResult(unit)
			r.MarkFailed("scf diverged")
			return r
		default:
			r := domain.NewResult(unit)
			r.MarkSucceeded()
			return r
		}
	})

	if !strings.Contains(results[0].Error, "panic") {
		t.Errorf("panicked unit error = %q", results[0].Error)
	}
	if results[1].Success || results[1].Error != "scf diverged" {
		t.Errorf("failed unit result = %+v", results[1])
	}
	if !results[2].Success {
		t.Errorf("healthy unit marked failed: %+v", results[2])
	}
}

func TestWriteSummary(t *testing.T) {
	units := Expand([]string{"mgsio3.vasp"}, []float64{0, 50}, "work")

	energy := -102.52
	results := []domain.Result{
		func() domain.Result {
			r := domain.NewResult(units[0])
			r.Energy = &energy
			r.MarkSucceeded()
			return *r
		}(),
		func() domain.Result {
			r := domain.NewResult(units[1])
			r.MarkFailed("relax did not converge")
			return *r
		}(),
	}

	path := filepath.Join(t.TempDir(), SummaryFilename)
	if err := WriteSummary(path, results); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"Total units: 2",
		"Succeeded:   1",
		"Failed:      1",
		"1. mgsio3 @ 0_GPa",
		fmt.Sprintf("Energy:   %.6f eV", energy),
		"2. mgsio3 @ 50_GPa",
		"Error:    relax did not converge",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
