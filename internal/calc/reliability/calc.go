// Package reliability estimates failure probabilities and burst-pressure
// distributions by Monte-Carlo sampling of normal stress and strength.
package reliability

import (
	"fmt"
	"math"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/calc/vessel"
)

// maxBeta bounds the reported reliability index; Φ(-38) is already subnormal.
const maxBeta = 38.0

const (
	SourceMonteCarlo  = "monte_carlo"
	SourcePrecomputed = "precomputed"
)

// MinResolvedFailures is the failure count below which a Monte-Carlo
// estimate is considered unresolved.
const MinResolvedFailures = 10

// Estimate is the raw outcome of a stress-strength Monte-Carlo run.
type Estimate struct {
	PFailure float64 `json:"p_failure"`
	Samples  int     `json:"samples"`
	Failures int     `json:"failures"`
}

// CalculateReliability draws numSamples independent strength and stress
// pairs, strength ~ N(materialStrength, materialStrength·strengthCOV) and
// stress ~ N(designStress, designStress·stressCOV), and counts stress > strength.
//
// A run of n samples cannot resolve probabilities much below 1/n; use
// AnalyticPFailure or a precomputed value for the tail.
func CalculateReliability(designStress, materialStrength, strengthCOV, stressCOV float64, numSamples int, s *Sampler) (Estimate, error) {
	if numSamples <= 0 {
		return Estimate{}, fmt.Errorf("%w: %d", calcerr.ErrInvalidSampleCount, numSamples)
	}
	if designStress < 0 || materialStrength <= 0 {
		return Estimate{}, fmt.Errorf("%w: stress %g, strength %g", calcerr.ErrInvalidInput, designStress, materialStrength)
	}
	if strengthCOV < 0 || stressCOV < 0 {
		return Estimate{}, fmt.Errorf("%w: negative coefficient of variation", calcerr.ErrInvalidInput)
	}
	strengthStd := materialStrength * strengthCOV
	stressStd := designStress * stressCOV

	failures := 0
	for i := 0; i < numSamples; i++ {
		strength := s.Gaussian(materialStrength, strengthStd)
		stress := s.Gaussian(designStress, stressStd)
		if stress > strength {
			failures++
		}
	}
	return Estimate{
		PFailure: float64(failures) / float64(numSamples),
		Samples:  numSamples,
		Failures: failures,
	}, nil
}

// AnalyticPFailure is the closed-form normal-normal interference probability
// Φ(-β) with β = (μR - μS)/√(σR² + σS²). It returns β alongside, clamped to ±38.
func AnalyticPFailure(designStress, materialStrength, strengthCOV, stressCOV float64) (p, beta float64) {
	sr := materialStrength * strengthCOV
	ss := designStress * stressCOV
	den := math.Sqrt(sr*sr + ss*ss)
	diff := materialStrength - designStress
	switch {
	case den > 0:
		beta = diff / den
	case diff > 0:
		beta = maxBeta
	case diff < 0:
		beta = -maxBeta
	}
	beta = math.Max(-maxBeta, math.Min(maxBeta, beta))
	return 0.5 * math.Erfc(beta/math.Sqrt2), beta
}

// Interpret turns a failure probability into the wording shown next to it.
func Interpret(p float64) string {
	switch {
	case p <= 1e-6:
		return "Excellent: failure probability at or below 1e-6"
	case p <= 1e-4:
		return "High reliability: failure probability at or below 1e-4"
	case p <= 1e-2:
		return "Moderate reliability: review safety margins"
	default:
		return "Low reliability: redesign required"
	}
}

type Input struct {
	DesignStressMPa     float64 `json:"design_stress_mpa" validate:"gte=0"`
	MaterialStrengthMPa float64 `json:"material_strength_mpa" validate:"gt=0"`
	// Nil COVs select DefaultCOV; an explicit 0 is a deterministic variable.
	StrengthCOV         *float64 `json:"strength_cov,omitempty" validate:"omitempty,gte=0,lte=1"`
	StressCOV           *float64 `json:"stress_cov,omitempty" validate:"omitempty,gte=0,lte=1"`
	Samples             int      `json:"samples" validate:"gte=0"`
	PrecomputedPFailure *float64 `json:"precomputed_p_failure" validate:"omitempty,gte=0,lte=1"`
	Seed                *uint64  `json:"seed"`
}

// Result keeps the Monte-Carlo estimate and any precomputed figure side by
// side; ReportedSource names the one ReportedPFailure was taken from. The
// precomputed figure is reported only while the estimate is unresolved.
type Result struct {
	DesignStressMPa     float64  `json:"design_stress_mpa"`
	PFailure            float64  `json:"p_failure"`
	Samples             int      `json:"samples"`
	Failures            int      `json:"failures"`
	Resolved            bool     `json:"resolved"`
	AnalyticPFailure    float64  `json:"analytic_p_failure"`
	ReliabilityIndex    float64  `json:"reliability_index"`
	PrecomputedPFailure *float64 `json:"precomputed_p_failure,omitempty"`
	ReportedPFailure    float64  `json:"reported_p_failure"`
	ReportedSource      string   `json:"reported_source"`
	Interpretation      string   `json:"interpretation"`
}

// DefaultSamples is used when a request leaves the sample count at zero.
const DefaultSamples = 100000

// DefaultCOV is the coefficient of variation used when none is given.
const DefaultCOV = 0.05

func covOrDefault(cov *float64) float64 {
	if cov == nil {
		return DefaultCOV
	}
	return *cov
}

func Calculate(in Input, s *Sampler) (Result, error) {
	if in.Samples == 0 {
		in.Samples = DefaultSamples
	}
	strengthCOV := covOrDefault(in.StrengthCOV)
	stressCOV := covOrDefault(in.StressCOV)
	if p := in.PrecomputedPFailure; p != nil && (*p < 0 || *p > 1) {
		return Result{}, fmt.Errorf("%w: precomputed probability %g", calcerr.ErrInvalidInput, *p)
	}
	if s == nil {
		if in.Seed != nil {
			s = NewSeededSampler(*in.Seed)
		} else {
			s = NewSampler(nil)
		}
	}
	est, err := CalculateReliability(in.DesignStressMPa, in.MaterialStrengthMPa, strengthCOV, stressCOV, in.Samples, s)
	if err != nil {
		return Result{}, err
	}
	pa, beta := AnalyticPFailure(in.DesignStressMPa, in.MaterialStrengthMPa, strengthCOV, stressCOV)

	res := Result{
		DesignStressMPa:     in.DesignStressMPa,
		PFailure:            est.PFailure,
		Samples:             est.Samples,
		Failures:            est.Failures,
		Resolved:            est.Failures >= MinResolvedFailures,
		AnalyticPFailure:    pa,
		ReliabilityIndex:    beta,
		PrecomputedPFailure: in.PrecomputedPFailure,
		ReportedPFailure:    est.PFailure,
		ReportedSource:      SourceMonteCarlo,
	}
	// A resolved Monte-Carlo estimate outranks a precomputed figure.
	if in.PrecomputedPFailure != nil && !res.Resolved {
		res.ReportedPFailure = *in.PrecomputedPFailure
		res.ReportedSource = SourcePrecomputed
	}
	res.Interpretation = Interpret(res.ReportedPFailure)
	return res, nil
}

type DesignInput struct {
	PressureMPa float64 `json:"pressure_mpa" validate:"gte=0"`
	RadiusM     float64 `json:"radius_m" validate:"gte=0"`
	ThicknessM  float64 `json:"thickness_m" validate:"gte=0"`
	Input
}

// DesignReliability derives the design stress as the wall hoop stress and
// runs the stress-strength estimate on it.
func DesignReliability(in DesignInput, s *Sampler) (Result, error) {
	hoop, err := vessel.HoopStress(in.PressureMPa, in.RadiusM, in.ThicknessM)
	if err != nil {
		return Result{}, err
	}
	in.Input.DesignStressMPa = hoop
	return Calculate(in.Input, s)
}
