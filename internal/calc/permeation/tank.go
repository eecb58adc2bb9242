package permeation

import (
	"fmt"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/materials"
)

type Input struct {
	Liner            string   `json:"liner"`
	Permeability     float64  `json:"permeability" validate:"gte=0"`
	LinerThicknessMM float64  `json:"liner_thickness_mm" validate:"gt=0"`
	RadiusMM         float64  `json:"radius_mm" validate:"gt=0"`
	LengthMM         float64  `json:"length_mm" validate:"gte=0"`
	PressureBar      float64  `json:"pressure_bar" validate:"gte=0"`
	TemperatureC     *float64 `json:"temperature_c" validate:"omitempty,gt=-273.15"`
	LimitNmLhrL      float64  `json:"limit_nml_hr_l" validate:"gte=0"`
}

type Result struct {
	Liner               string     `json:"liner"`
	Permeability        float64    `json:"permeability"`
	AreaM2              float64    `json:"area_m2"`
	VolumeL             float64    `json:"volume_l"`
	TemperatureFactor   float64    `json:"temperature_factor"`
	RateMolS            float64    `json:"rate_mol_s"`
	RateNmLhrL          float64    `json:"rate_nml_hr_l"`
	Compliance          Compliance `json:"compliance"`
	RequiredThicknessMM float64    `json:"required_thickness_mm"`
	Notes               string     `json:"notes"`
}

// Calculate resolves the liner permeability (explicit coefficient first, then
// the named liner, HDPE by default) and runs the tank estimate.
func Calculate(in Input, lib *materials.Library) (Result, error) {
	temp := ReferenceTempC
	if in.TemperatureC != nil {
		temp = *in.TemperatureC
	}
	if in.Liner == "" {
		in.Liner = "HDPE"
	}
	perm := in.Permeability
	if perm == 0 {
		if lib == nil {
			return Result{}, fmt.Errorf("%w: permeability or liner required", calcerr.ErrInvalidInput)
		}
		l, err := lib.Liner(in.Liner)
		if err != nil {
			return Result{}, err
		}
		perm = l.Permeability
	}

	if in.RadiusMM <= 0 || in.LengthMM < 0 {
		return Result{}, fmt.Errorf("%w: radius %g mm, length %g mm", calcerr.ErrInvalidInput, in.RadiusMM, in.LengthMM)
	}
	area, volume := Geometry(in.RadiusMM, in.LengthMM)
	factor := TemperatureFactor(temp)
	molS, err := PermeationRate(perm*factor, area, in.PressureBar*1e5, in.LinerThicknessMM/1000)
	if err != nil {
		return Result{}, err
	}
	rate, err := ConvertPermeationUnits(molS, volume)
	if err != nil {
		return Result{}, err
	}
	comp := CheckCompliance(rate, in.LimitNmLhrL)

	// Largest mol/s the limit allows for this tank volume.
	maxMolS := comp.Limit * volume / (MolarVolumeNmL * 3600)
	reqMM := 0.0
	if in.PressureBar > 0 {
		req, err := RequiredLinerThickness(perm*factor, area, in.PressureBar*1e5, maxMolS)
		if err != nil {
			return Result{}, err
		}
		reqMM = req * 1000
	}

	return Result{
		Liner:               in.Liner,
		Permeability:        perm,
		AreaM2:              area,
		VolumeL:             volume,
		TemperatureFactor:   factor,
		RateMolS:            molS,
		RateNmLhrL:          rate,
		Compliance:          comp,
		RequiredThicknessMM: reqMM,
		Notes:               "Steady-state Fick's law through the liner; composite overwrap resistance ignored.",
	}, nil
}

type LossInput struct {
	InitialBar   float64  `json:"initial_bar" validate:"gte=0"`
	MinBar       float64  `json:"min_bar" validate:"gte=0"`
	RateNmLhrL   float64  `json:"rate_nml_hr_l" validate:"gte=0"`
	Hours        float64  `json:"hours" validate:"gte=0"`
	TemperatureC *float64 `json:"temperature_c" validate:"omitempty,gt=-273.15"`
}

type LossResult struct {
	PressureBar float64  `json:"pressure_bar"`
	DropBar     float64  `json:"drop_bar"`
	HoursToMin  *float64 `json:"hours_to_min,omitempty"`
	Notes       string   `json:"notes"`
}

func CalculateLoss(in LossInput) (LossResult, error) {
	temp := ReferenceTempC
	if in.TemperatureC != nil {
		temp = *in.TemperatureC
	}
	p, err := PressureLossOverTime(in.InitialBar, in.RateNmLhrL, in.Hours, temp)
	if err != nil {
		return LossResult{}, err
	}
	res := LossResult{
		PressureBar: p,
		DropBar:     in.InitialBar - p,
		Notes:       "Ideal-gas mole balance with a constant permeation rate.",
	}
	if in.MinBar > 0 && in.RateNmLhrL > 0 {
		h, err := TimeToMinPressure(in.InitialBar, in.MinBar, in.RateNmLhrL, temp)
		if err != nil {
			return LossResult{}, err
		}
		res.HoursToMin = &h
	}
	return res, nil
}
