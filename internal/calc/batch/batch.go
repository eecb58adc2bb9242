// Package batch evaluates candidate tank designs end to end: wall stresses,
// ply failure indices and liner permeation.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/calc/composite"
	"H2Tank/internal/calc/permeation"
	"H2Tank/internal/calc/vessel"
	"H2Tank/internal/materials"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultFibre            = "T700S/epoxy"
	DefaultLiner            = "HDPE"
	DefaultLinerThicknessMM = 5.0
)

// Design is one candidate tank. Zero values pick the package defaults.
type Design struct {
	Name             string  `json:"name"`
	RadiusMM         float64 `json:"radius_mm" validate:"gt=0"`
	LengthMM         float64 `json:"length_mm" validate:"gte=0"`
	ThicknessMM      float64 `json:"thickness_mm" validate:"gt=0"`
	PressureBar      float64 `json:"pressure_bar" validate:"gt=0"`
	WindingAngleDeg  float64 `json:"winding_angle_deg" validate:"gte=0,lt=90"`
	Liner            string  `json:"liner"`
	Fibre            string  `json:"fibre"`
	LinerThicknessMM float64 `json:"liner_thickness_mm" validate:"gte=0"`
	// LimitNmLhrL overrides the permeation limit; 0 keeps the default.
	LimitNmLhrL float64 `json:"limit_nml_hr_l,omitempty" validate:"gte=0"`
}

func (d Design) withDefaults() Design {
	if d.WindingAngleDeg == 0 {
		d.WindingAngleDeg = vessel.NettingTheoryAngle()
	}
	if d.Fibre == "" {
		d.Fibre = DefaultFibre
	}
	if d.Liner == "" {
		d.Liner = DefaultLiner
	}
	if d.LinerThicknessMM == 0 {
		d.LinerThicknessMM = DefaultLinerThicknessMM
	}
	return d
}

// Layup is the ±winding angle helical pair plus the hoop ply.
func (d Design) Layup() []float64 {
	return composite.Layup(d.WindingAngleDeg)
}

type Result struct {
	Name       string            `json:"name"`
	Design     Design            `json:"design"`
	Stress     vessel.Result     `json:"stress"`
	Composite  composite.Result  `json:"composite"`
	Permeation permeation.Result `json:"permeation"`
	Passed     bool              `json:"passed"`
	Error      string            `json:"error,omitempty"`
}

// EvaluateDesign runs one design through every calculator. A design passes
// when no ply fails and the permeation rate is within the limit.
func EvaluateDesign(d Design, lib *materials.Library) (Result, error) {
	if lib == nil {
		return Result{}, fmt.Errorf("%w: material library required", calcerr.ErrInvalidInput)
	}
	d = d.withDefaults()
	res := Result{Name: d.Name, Design: d}

	stress, err := vessel.Calculate(vessel.Input{
		PressureMPa: d.PressureBar / 10,
		RadiusM:     d.RadiusMM / 1000,
		ThicknessM:  d.ThicknessMM / 1000,
	})
	if err != nil {
		return Result{}, fmt.Errorf("stress: %w", err)
	}
	res.Stress = stress

	comp, err := composite.Calculate(composite.Input{
		HoopMPa:   stress.HoopMPa,
		AxialMPa:  stress.AxialMPa,
		PlyAngles: d.Layup(),
		Fibre:     d.Fibre,
	}, lib)
	if err != nil {
		return Result{}, fmt.Errorf("composite: %w", err)
	}
	res.Composite = comp

	perm, err := permeation.Calculate(permeation.Input{
		Liner:            d.Liner,
		LinerThicknessMM: d.LinerThicknessMM,
		RadiusMM:         d.RadiusMM,
		LengthMM:         d.LengthMM,
		PressureBar:      d.PressureBar,
		LimitNmLhrL:      d.LimitNmLhrL,
	}, lib)
	if err != nil {
		return Result{}, fmt.Errorf("permeation: %w", err)
	}
	res.Permeation = perm

	res.Passed = !comp.Failed && perm.Compliance.Compliant
	return res, nil
}

type Summary struct {
	Count   int      `json:"count"`
	Passed  int      `json:"passed"`
	Errored int      `json:"errored"`
	Results []Result `json:"results"`
}

// Evaluate runs every design concurrently and returns the results in input
// order. A design that cannot be evaluated is reported in its Result.Error
// and does not stop the others.
func Evaluate(ctx context.Context, designs []Design, lib *materials.Library) (Summary, error) {
	if len(designs) == 0 {
		return Summary{}, fmt.Errorf("%w: no designs", calcerr.ErrInvalidInput)
	}
	results := make([]Result, len(designs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range designs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := EvaluateDesign(d, lib)
			if err != nil {
				res = Result{Name: d.Name, Design: d, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	sum := Summary{Count: len(results), Results: results}
	for _, r := range results {
		switch {
		case r.Error != "":
			sum.Errored++
		case r.Passed:
			sum.Passed++
		}
	}
	return sum, nil
}
