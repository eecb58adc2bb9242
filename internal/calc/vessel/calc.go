package vessel

import (
	"fmt"
	"math"

	"H2Tank/internal/calc/calcerr"
)

// ThinWallLimit is the t/r ratio above which thin-wall stresses are flagged.
const ThinWallLimit = 0.1

// HoopStress returns the circumferential stress p·r/t of a thin-walled cylinder.
// Units follow the inputs: MPa with metres gives MPa.
func HoopStress(pressureMPa, radiusM, thicknessM float64) (float64, error) {
	if err := checkWall(pressureMPa, radiusM, thicknessM); err != nil {
		return 0, err
	}
	return pressureMPa * radiusM / thicknessM, nil
}

// AxialStress returns the longitudinal stress p·r/(2t) of a closed thin-walled cylinder.
func AxialStress(pressureMPa, radiusM, thicknessM float64) (float64, error) {
	if err := checkWall(pressureMPa, radiusM, thicknessM); err != nil {
		return 0, err
	}
	return pressureMPa * radiusM / (2 * thicknessM), nil
}

// RadialStress is the through-thickness stress at the inner surface.
func RadialStress(pressureMPa float64) float64 {
	return -pressureMPa
}

// NettingTheoryAngle is the helical angle at which a netting-theory cylinder
// carries the 2:1 hoop/axial load ratio with a single fibre family.
func NettingTheoryAngle() float64 {
	return math.Atan(math.Sqrt2) * 180 / math.Pi
}

func checkWall(pressure, radius, thickness float64) error {
	if thickness == 0 {
		return calcerr.ErrDivisionByZero
	}
	if thickness < 0 {
		return fmt.Errorf("%w: thickness %g", calcerr.ErrInvalidInput, thickness)
	}
	if radius <= 0 {
		return fmt.Errorf("%w: radius %g", calcerr.ErrInvalidInput, radius)
	}
	if pressure < 0 {
		return fmt.Errorf("%w: pressure %g", calcerr.ErrInvalidInput, pressure)
	}
	return nil
}

type Input struct {
	PressureMPa float64 `json:"pressure_mpa" validate:"gte=0"`
	RadiusM     float64 `json:"radius_m" validate:"gt=0"`
	ThicknessM  float64 `json:"thickness_m" validate:"gt=0"`
}

type Result struct {
	HoopMPa   float64 `json:"hoop_mpa"`
	AxialMPa  float64 `json:"axial_mpa"`
	RadialMPa float64 `json:"radial_mpa"`
	ThinWall  bool    `json:"thin_wall"`
	Notes     string  `json:"notes"`
}

func Calculate(in Input) (Result, error) {
	hoop, err := HoopStress(in.PressureMPa, in.RadiusM, in.ThicknessM)
	if err != nil {
		return Result{}, err
	}
	axial, err := AxialStress(in.PressureMPa, in.RadiusM, in.ThicknessM)
	if err != nil {
		return Result{}, err
	}
	thin := in.ThicknessM/in.RadiusM <= ThinWallLimit
	notes := "Thin-wall membrane stresses (closed-end cylinder)."
	if !thin {
		notes = fmt.Sprintf("t/r = %.3f exceeds %.1f; thin-wall stresses underestimate the inner-surface hoop stress.",
			in.ThicknessM/in.RadiusM, ThinWallLimit)
	}
	return Result{
		HoopMPa:   hoop,
		AxialMPa:  axial,
		RadialMPa: RadialStress(in.PressureMPa),
		ThinWall:  thin,
		Notes:     notes,
	}, nil
}

// Netting is the fibre wall split of a netting-theory cylinder.
type Netting struct {
	HelicalM float64 `json:"helical_m"`
	HoopM    float64 `json:"hoop_m"`
	TotalM   float64 `json:"total_m"`
}

// NettingThickness sizes helical and hoop layers so the fibres alone carry
// the pressure load. At or above the netting angle the helical layer already
// carries the hoop share and no hoop layer is needed.
func NettingThickness(pressureMPa, radiusM, fibreStrengthMPa, angleDeg float64) (Netting, error) {
	if pressureMPa < 0 || radiusM <= 0 {
		return Netting{}, calcerr.ErrInvalidInput
	}
	if fibreStrengthMPa <= 0 {
		return Netting{}, fmt.Errorf("%w: fibre strength %g", calcerr.ErrInvalidStrengthTable, fibreStrengthMPa)
	}
	if angleDeg <= 0 || angleDeg >= 90 {
		return Netting{}, fmt.Errorf("%w: winding angle %g outside (0, 90)", calcerr.ErrInvalidInput, angleDeg)
	}
	a := angleDeg * math.Pi / 180
	c := math.Cos(a)
	base := pressureMPa * radiusM / (2 * fibreStrengthMPa)
	helical := base / (c * c)
	hoop := base * (2 - math.Tan(a)*math.Tan(a))
	if hoop < 0 {
		hoop = 0
	}
	return Netting{HelicalM: helical, HoopM: hoop, TotalM: helical + hoop}, nil
}
