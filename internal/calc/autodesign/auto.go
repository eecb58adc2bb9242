// Package autodesign sizes the composite wall and liner of a tank for a
// working pressure.
package autodesign

import (
	"fmt"
	"math"

	"H2Tank/internal/calc/batch"
	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/calc/composite"
	"H2Tank/internal/calc/permeation"
	"H2Tank/internal/calc/reliability"
	"H2Tank/internal/calc/vessel"
	"H2Tank/internal/materials"
)

// wallTolerance is the bisection stop width, m.
const wallTolerance = 1e-6

type Input struct {
	Name            string  `json:"name"`
	RadiusMM        float64 `json:"radius_mm" validate:"gt=0"`
	LengthMM        float64 `json:"length_mm" validate:"gte=0"`
	PressureBar     float64 `json:"pressure_bar" validate:"gt=0"`
	WindingAngleDeg float64 `json:"winding_angle_deg" validate:"gte=0,lt=90"`
	Fibre           string  `json:"fibre"`
	Liner           string  `json:"liner"`
	// BurstRatio scales the working pressure to the sizing pressure;
	// 0 selects reliability.MinBurstRatio.
	BurstRatio  float64 `json:"burst_ratio" validate:"gte=0"`
	LimitNmLhrL float64 `json:"limit_nml_hr_l" validate:"gte=0"`
}

type Result struct {
	BurstPressureMPa float64        `json:"burst_pressure_mpa"`
	Netting          vessel.Netting `json:"netting"`
	WallMM           float64        `json:"wall_mm"`
	// GoverningMode is the Hashin mode of the governing ply at WallMM.
	GoverningMode string       `json:"governing_mode"`
	LinerMM       float64      `json:"liner_mm"`
	Check         batch.Result `json:"check"`
	Notes         string       `json:"notes"`
}

// Size picks the thinnest wall whose plies all survive the burst pressure,
// and the thinnest liner that meets the permeation limit at working pressure.
// The resulting design is then evaluated at working pressure.
func Size(in Input, lib *materials.Library) (Result, error) {
	if lib == nil {
		return Result{}, fmt.Errorf("%w: material library required", calcerr.ErrInvalidInput)
	}
	if in.RadiusMM <= 0 || in.PressureBar <= 0 {
		return Result{}, fmt.Errorf("%w: radius and pressure must be positive", calcerr.ErrInvalidInput)
	}
	if in.WindingAngleDeg == 0 {
		in.WindingAngleDeg = vessel.NettingTheoryAngle()
	}
	if in.Fibre == "" {
		in.Fibre = batch.DefaultFibre
	}
	if in.Liner == "" {
		in.Liner = batch.DefaultLiner
	}
	if in.BurstRatio == 0 {
		in.BurstRatio = reliability.MinBurstRatio
	}

	fibre, err := lib.Fibre(in.Fibre)
	if err != nil {
		return Result{}, err
	}
	burst := in.PressureBar / 10 * in.BurstRatio
	radius := in.RadiusMM / 1000

	net, err := vessel.NettingThickness(burst, radius, fibre.Strengths.Xt, in.WindingAngleDeg)
	if err != nil {
		return Result{}, err
	}

	layup := batch.Design{WindingAngleDeg: in.WindingAngleDeg}.Layup()
	survives := func(t float64) (bool, string, error) {
		hoop, err := vessel.HoopStress(burst, radius, t)
		if err != nil {
			return false, "", err
		}
		axial, err := vessel.AxialStress(burst, radius, t)
		if err != nil {
			return false, "", err
		}
		plies, gov, err := composite.AnalyzeLayup(hoop, axial, layup, fibre.Strengths, composite.DefaultInteraction)
		if err != nil {
			return false, "", err
		}
		for _, p := range plies {
			if p.Failed {
				return false, plies[gov].HashinMode, nil
			}
		}
		return true, plies[gov].HashinMode, nil
	}

	// Grow from the netting estimate until the layup survives, then bisect.
	hi := net.TotalM
	if hi <= 0 {
		hi = wallTolerance
	}
	lo := 0.0
	for i := 0; ; i++ {
		ok, _, err := survives(hi)
		if err != nil {
			return Result{}, err
		}
		if ok {
			break
		}
		if i == 60 {
			return Result{}, fmt.Errorf("%w: no wall thickness survives %g MPa", calcerr.ErrInvalidGeometry, burst)
		}
		lo, hi = hi, hi*2
	}
	for hi-lo > wallTolerance {
		mid := (lo + hi) / 2
		ok, _, err := survives(mid)
		if err != nil {
			return Result{}, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	_, mode, err := survives(hi)
	if err != nil {
		return Result{}, err
	}

	// The required thickness does not depend on the trial thickness.
	perm, err := permeation.Calculate(permeation.Input{
		Liner:            in.Liner,
		LinerThicknessMM: batch.DefaultLinerThicknessMM,
		RadiusMM:         in.RadiusMM,
		LengthMM:         in.LengthMM,
		PressureBar:      in.PressureBar,
		LimitNmLhrL:      in.LimitNmLhrL,
	}, lib)
	if err != nil {
		return Result{}, err
	}
	// Liners are specified to 0.01 mm.
	liner := math.Ceil(perm.RequiredThicknessMM*100) / 100

	check, err := batch.EvaluateDesign(batch.Design{
		Name:             in.Name,
		RadiusMM:         in.RadiusMM,
		LengthMM:         in.LengthMM,
		ThicknessMM:      hi * 1000,
		PressureBar:      in.PressureBar,
		WindingAngleDeg:  in.WindingAngleDeg,
		Liner:            in.Liner,
		Fibre:            in.Fibre,
		LinerThicknessMM: liner,
		LimitNmLhrL:      in.LimitNmLhrL,
	}, lib)
	if err != nil {
		return Result{}, err
	}

	return Result{
		BurstPressureMPa: burst,
		Netting:          net,
		WallMM:           hi * 1000,
		GoverningMode:    mode,
		LinerMM:          liner,
		Check:            check,
		Notes:            fmt.Sprintf("Wall sized for no ply failure at %.2f x working pressure.", in.BurstRatio),
	}, nil
}
