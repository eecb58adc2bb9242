package vessel

import (
	"fmt"
	"math"

	"H2Tank/internal/calc/calcerr"
)

// substeps per station interval for the midpoint rule; the slope is
// singular (but integrable) at the cylinder junction.
const domeSubsteps = 64

type Point struct {
	R             float64 `json:"r"`
	Z             float64 `json:"z"`
	FibreAngleDeg float64 `json:"fibre_angle_deg"`
}

type DomeProfile struct {
	Points []Point `json:"points"`
	// GeodesicAngleDeg is the helical angle on the cylinder that a geodesic
	// path tangent to the boss arrives with.
	GeodesicAngleDeg float64 `json:"geodesic_angle_deg"`
	NettingAngleDeg  float64 `json:"netting_angle_deg"`
	// AngleMismatchDeg is NettingAngleDeg - GeodesicAngleDeg. A non-zero value
	// means the cylinder layup needs friction or hoop layers to close.
	AngleMismatchDeg float64 `json:"angle_mismatch_deg"`
	HeightM          float64 `json:"height_m"`
}

// GenerateIsotensoidDome discretises the meridian of a geodesic isotensoid
// dome from the boss (first point) to the cylinder junction (last point, z=0).
//
// With ρ = r/R and ρ0 = bossRadius/R, netting equilibrium of a geodesically
// wound membrane gives sin φ = ρ³·√(1-ρ0²)/√(ρ²-ρ0²), φ being the angle between
// the shell normal and the axis, so dz/dr = -tan φ. In the narrow band next to
// the boss where that expression exceeds one the fibres are turning around and
// the meridian is held flat.
func GenerateIsotensoidDome(cylinderRadius, nettingAngle, bossRadius float64, pointCount int) (DomeProfile, error) {
	if cylinderRadius <= 0 || bossRadius <= 0 {
		return DomeProfile{}, fmt.Errorf("%w: radii must be positive", calcerr.ErrInvalidInput)
	}
	if bossRadius >= cylinderRadius {
		return DomeProfile{}, fmt.Errorf("%w: boss radius %g not below cylinder radius %g",
			calcerr.ErrInvalidGeometry, bossRadius, cylinderRadius)
	}
	if nettingAngle <= 0 || nettingAngle >= 90 {
		return DomeProfile{}, fmt.Errorf("%w: netting angle %g outside (0, 90)", calcerr.ErrInvalidInput, nettingAngle)
	}
	if pointCount < 2 {
		return DomeProfile{}, fmt.Errorf("%w: point count %d below 2", calcerr.ErrInvalidInput, pointCount)
	}

	rho0 := bossRadius / cylinderRadius
	k := math.Sqrt(1 - rho0*rho0)
	slope := func(rho float64) float64 {
		d := rho*rho - rho0*rho0
		if d <= 0 {
			return 0
		}
		s := rho * rho * rho * k / math.Sqrt(d)
		if s >= 1 {
			return 0
		}
		return s / math.Sqrt(1-s*s)
	}

	n := pointCount
	rho := make([]float64, n)
	step := (1 - rho0) / float64(n-1)
	for i := range rho {
		rho[i] = rho0 + float64(i)*step
	}
	rho[n-1] = 1

	z := make([]float64, n)
	for i := n - 2; i >= 0; i-- {
		a, b := rho[i], rho[i+1]
		h := (b - a) / domeSubsteps
		seg := 0.0
		for j := 0; j < domeSubsteps; j++ {
			seg += slope(a + (float64(j)+0.5)*h)
		}
		z[i] = z[i+1] + seg*h*cylinderRadius
	}

	pts := make([]Point, n)
	for i := range pts {
		r := rho[i] * cylinderRadius
		if i == 0 {
			r = bossRadius
		}
		if i == n-1 {
			r = cylinderRadius
		}
		pts[i] = Point{
			R:             r,
			Z:             z[i],
			FibreAngleDeg: math.Asin(math.Min(1, rho0/rho[i])) * 180 / math.Pi,
		}
	}

	geo := math.Asin(rho0) * 180 / math.Pi
	return DomeProfile{
		Points:           pts,
		GeodesicAngleDeg: geo,
		NettingAngleDeg:  nettingAngle,
		AngleMismatchDeg: nettingAngle - geo,
		HeightM:          z[0],
	}, nil
}

type DomeInput struct {
	CylinderRadiusM float64 `json:"cylinder_radius_m" validate:"gt=0"`
	BossRadiusM     float64 `json:"boss_radius_m" validate:"gt=0"`
	NettingAngleDeg float64 `json:"netting_angle_deg" validate:"gte=0,lt=90"`
	Points          int     `json:"points" validate:"gte=0,lte=2000"`
}

// CalculateDome fills request defaults before generating the profile.
func CalculateDome(in DomeInput) (DomeProfile, error) {
	if in.NettingAngleDeg == 0 {
		in.NettingAngleDeg = NettingTheoryAngle()
	}
	if in.Points == 0 {
		in.Points = 50
	}
	return GenerateIsotensoidDome(in.CylinderRadiusM, in.NettingAngleDeg, in.BossRadiusM, in.Points)
}
