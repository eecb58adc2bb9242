// Package permeation estimates hydrogen permeation through polymer liners.
//
// Rates are reported in NmL/hr/L (normal millilitres per hour per litre of
// water capacity), the unit used by the hydrogen tank regulations.
package permeation

import (
	"fmt"
	"math"

	"H2Tank/internal/calc/calcerr"
)

const (
	// MolarVolumeNmL is the molar volume of an ideal gas at STP.
	MolarVolumeNmL = 22400.0
	// GasConstant in J/(mol·K).
	GasConstant = 8.314
	// DefaultLimit is the allowable steady-state permeation rate, NmL/hr/L.
	DefaultLimit = 6.0
	// ReferenceTempC is the temperature the permeability coefficients are quoted at.
	ReferenceTempC = 20.0
	// TempCoefficient is the exponent of the temperature correction, 1/°C.
	TempCoefficient = 0.05

	zeroCelsius = 273.15
)

// PermeationRate applies Fick's law J = P·A·Δp/L and returns mol/s.
func PermeationRate(permeability, area, pressureDiff, thickness float64) (float64, error) {
	if !(thickness > 0) {
		return 0, fmt.Errorf("%w: %g m", calcerr.ErrInvalidThickness, thickness)
	}
	if permeability < 0 || area < 0 || pressureDiff < 0 {
		return 0, fmt.Errorf("%w: negative permeation parameter", calcerr.ErrInvalidInput)
	}
	return permeability * area * pressureDiff / thickness, nil
}

// ConvertPermeationUnits converts mol/s into NmL/hr per litre of tank volume.
func ConvertPermeationUnits(molPerSec, tankVolumeL float64) (float64, error) {
	if !(tankVolumeL > 0) {
		return 0, fmt.Errorf("%w: tank volume %g L", calcerr.ErrInvalidInput, tankVolumeL)
	}
	return molPerSec * MolarVolumeNmL * 3600 / tankVolumeL, nil
}

// TemperatureFactor scales a 20 °C rate to temperatureC.
func TemperatureFactor(temperatureC float64) float64 {
	return math.Exp(TempCoefficient * (temperatureC - ReferenceTempC))
}

// Geometry returns the liner surface (m²) and water volume (L) of a cylinder
// with two hemispherical ends, from millimetre dimensions.
func Geometry(radiusMM, lengthMM float64) (areaM2, volumeL float64) {
	r := radiusMM / 1000
	l := lengthMM / 1000
	areaM2 = 2*math.Pi*r*l + 4*math.Pi*r*r
	volumeL = (math.Pi*r*r*l + 4.0/3.0*math.Pi*r*r*r) * 1000
	return areaM2, volumeL
}

// TankPermeation estimates the permeation rate of a full tank in NmL/hr/L.
// permeability is the liner coefficient at 20 °C in mol·m/(m²·s·Pa).
func TankPermeation(permeability, linerThicknessMM, radiusMM, lengthMM, pressureBar, temperatureC float64) (float64, error) {
	if radiusMM <= 0 || lengthMM < 0 {
		return 0, fmt.Errorf("%w: radius %g mm, length %g mm", calcerr.ErrInvalidInput, radiusMM, lengthMM)
	}
	area, volume := Geometry(radiusMM, lengthMM)
	rate, err := PermeationRate(permeability*TemperatureFactor(temperatureC), area, pressureBar*1e5, linerThicknessMM/1000)
	if err != nil {
		return 0, err
	}
	return ConvertPermeationUnits(rate, volume)
}

// PressureLossOverTime returns the pressure left after hours of permeation at
// rateNmLhrL, treating the gas as ideal in one litre of capacity. The result
// never goes below zero.
func PressureLossOverTime(initialBar, rateNmLhrL, hours, temperatureC float64) (float64, error) {
	if initialBar < 0 || rateNmLhrL < 0 || hours < 0 {
		return 0, fmt.Errorf("%w: negative pressure, rate or time", calcerr.ErrInvalidInput)
	}
	if temperatureC <= -zeroCelsius {
		return 0, fmt.Errorf("%w: temperature %g °C", calcerr.ErrInvalidInput, temperatureC)
	}
	return math.Max(0, initialBar-pressureDropBar(rateNmLhrL*hours, temperatureC)), nil
}

// TimeToMinPressure inverts the linear mole balance of PressureLossOverTime.
// It does not integrate the pressure-dependent rate, so it underestimates the
// time when the rate falls as the tank empties.
func TimeToMinPressure(initialBar, minBar, rateNmLhrL, temperatureC float64) (float64, error) {
	if initialBar < 0 || minBar < 0 {
		return 0, fmt.Errorf("%w: negative pressure", calcerr.ErrInvalidInput)
	}
	if temperatureC <= -zeroCelsius {
		return 0, fmt.Errorf("%w: temperature %g °C", calcerr.ErrInvalidInput, temperatureC)
	}
	if minBar >= initialBar {
		return 0, nil
	}
	if !(rateNmLhrL > 0) {
		return 0, fmt.Errorf("%w: permeation rate %g", calcerr.ErrDivisionByZero, rateNmLhrL)
	}
	perNmL := pressureDropBar(1, temperatureC)
	return (initialBar - minBar) / perNmL / rateNmLhrL, nil
}

// pressureDropBar is the ideal-gas pressure drop in a 1 L volume after
// losing lostNmL normal millilitres.
func pressureDropBar(lostNmL, temperatureC float64) float64 {
	mol := lostNmL / MolarVolumeNmL
	pa := mol * GasConstant * (temperatureC + zeroCelsius) / 1e-3
	return pa / 1e5
}

type Compliance struct {
	Compliant     bool    `json:"compliant"`
	MarginPercent float64 `json:"margin_percent"`
	Limit         float64 `json:"limit_nml_hr_l"`
}

// CheckCompliance compares a rate with limit; limit <= 0 selects DefaultLimit.
// A positive margin is headroom below the limit.
func CheckCompliance(rateNmLhrL, limit float64) Compliance {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Compliance{
		Compliant:     rateNmLhrL <= limit,
		MarginPercent: (limit - rateNmLhrL) / limit * 100,
		Limit:         limit,
	}
}

// RequiredLinerThickness solves Fick's law for the thickness (m) that keeps
// the rate at or below maxRate (mol/s). The result is rounded up by one ulp
// so PermeationRate at that thickness never exceeds maxRate.
func RequiredLinerThickness(permeability, area, pressureDiff, maxRate float64) (float64, error) {
	if !(maxRate > 0) {
		return 0, fmt.Errorf("%w: max rate %g", calcerr.ErrDivisionByZero, maxRate)
	}
	if !(permeability > 0) || !(area > 0) || !(pressureDiff > 0) {
		return 0, fmt.Errorf("%w: permeability, area and pressure must be positive", calcerr.ErrInvalidInput)
	}
	t := permeability * area * pressureDiff / maxRate
	return math.Nextafter(t, math.Inf(1)), nil
}
