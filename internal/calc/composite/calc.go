// Package composite evaluates ply-level failure criteria for filament-wound laminates.
package composite

import (
	"fmt"
	"math"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/calc/vessel"
)

// MaxStrengthRatio caps the reported strength ratio of lightly loaded plies.
const MaxStrengthRatio = 1e6

// DefaultInteraction is the normalised Tsai-Wu interaction term f12* used
// when no calibrated value is available: F12 = f12*·√(F11·F22).
const DefaultInteraction = -0.5

// HoopPlyAngleDeg is the near-circumferential ply added to every layup.
const HoopPlyAngleDeg = 89.0

// Layup is the ±angleDeg helical pair plus the hoop ply.
func Layup(angleDeg float64) []float64 {
	return []float64{angleDeg, -angleDeg, HoopPlyAngleDeg}
}

// DefaultLayup winds the helical pair at the netting angle.
func DefaultLayup() []float64 {
	return Layup(vessel.NettingTheoryAngle())
}

// PlyStress holds stresses in the ply material axes, MPa.
type PlyStress struct {
	Sigma1 float64 `json:"sigma1_mpa"`
	Sigma2 float64 `json:"sigma2_mpa"`
	Tau12  float64 `json:"tau12_mpa"`
}

// StrengthTable holds orthotropic ply strengths as positive magnitudes, MPa.
type StrengthTable struct {
	Xt float64 `json:"xt" yaml:"xt"`
	Xc float64 `json:"xc" yaml:"xc"`
	Yt float64 `json:"yt" yaml:"yt"`
	Yc float64 `json:"yc" yaml:"yc"`
	S  float64 `json:"s" yaml:"s"`
}

func (t StrengthTable) Validate() error {
	vals := []struct {
		name string
		v    float64
	}{{"Xt", t.Xt}, {"Xc", t.Xc}, {"Yt", t.Yt}, {"Yc", t.Yc}, {"S", t.S}}
	for _, f := range vals {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s = %g", calcerr.ErrInvalidStrengthTable, f.name, f.v)
		}
	}
	return nil
}

// TransformStresses rotates the vessel-wall stresses into a ply wound at
// plyAngleDeg from the vessel axis. Axial stress lies along the axis and hoop
// stress along the circumference; there is no in-plane shear in the wall.
func TransformStresses(hoop, axial, plyAngleDeg float64) PlyStress {
	a := plyAngleDeg * math.Pi / 180
	c, s := math.Cos(a), math.Sin(a)
	return PlyStress{
		Sigma1: axial*c*c + hoop*s*s,
		Sigma2: axial*s*s + hoop*c*c,
		Tau12:  (hoop - axial) * s * c,
	}
}

// TsaiWuIndex evaluates the quadratic Tsai-Wu polynomial. interaction is the
// normalised f12* coefficient; pass DefaultInteraction without test data.
func TsaiWuIndex(st PlyStress, t StrengthTable, interaction float64) (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	lin, quad := tsaiWuTerms(st, t, interaction)
	return lin + quad, nil
}

// tsaiWuTerms splits the Tsai-Wu polynomial into its linear and quadratic parts.
func tsaiWuTerms(st PlyStress, t StrengthTable, interaction float64) (lin, quad float64) {
	f1 := 1/t.Xt - 1/t.Xc
	f2 := 1/t.Yt - 1/t.Yc
	f11 := 1 / (t.Xt * t.Xc)
	f22 := 1 / (t.Yt * t.Yc)
	f66 := 1 / (t.S * t.S)
	f12 := interaction * math.Sqrt(f11*f22)

	s1, s2, t12 := st.Sigma1, st.Sigma2, st.Tau12
	lin = f1*s1 + f2*s2
	quad = f11*s1*s1 + f22*s2*s2 + f66*t12*t12 + 2*f12*s1*s2
	return lin, quad
}

// Hashin holds the four Hashin mode indices. Only the mode matching the sign
// of σ1 (fibre) and σ2 (matrix) is non-zero.
type Hashin struct {
	FiberTension      float64 `json:"fiber_tension"`
	FiberCompression  float64 `json:"fiber_compression"`
	MatrixTension     float64 `json:"matrix_tension"`
	MatrixCompression float64 `json:"matrix_compression"`
}

// Max returns the largest index and its mode name.
func (h Hashin) Max() (float64, string) {
	best, mode := h.FiberTension, "fiber_tension"
	for _, m := range []struct {
		v    float64
		name string
	}{
		{h.FiberCompression, "fiber_compression"},
		{h.MatrixTension, "matrix_tension"},
		{h.MatrixCompression, "matrix_compression"},
	} {
		if m.v > best {
			best, mode = m.v, m.name
		}
	}
	return best, mode
}

// HashinIndices evaluates the plane-stress Hashin (1980) criteria. Transverse
// shear strength is taken equal to S in the matrix compression mode.
func HashinIndices(st PlyStress, t StrengthTable) (Hashin, error) {
	if err := t.Validate(); err != nil {
		return Hashin{}, err
	}
	var h Hashin
	shear := (st.Tau12 / t.S) * (st.Tau12 / t.S)
	if st.Sigma1 >= 0 {
		h.FiberTension = sq(st.Sigma1/t.Xt) + shear
	} else {
		h.FiberCompression = sq(st.Sigma1 / t.Xc)
	}
	if st.Sigma2 >= 0 {
		h.MatrixTension = sq(st.Sigma2/t.Yt) + shear
	} else {
		h.MatrixCompression = sq(st.Sigma2/(2*t.S)) +
			(sq(t.Yc/(2*t.S))-1)*st.Sigma2/t.Yc + shear
	}
	return h, nil
}

func sq(x float64) float64 { return x * x }

// PlyResult is the failure summary of one ply in a layup.
type PlyResult struct {
	AngleDeg      float64   `json:"angle_deg"`
	Stress        PlyStress `json:"stress"`
	TsaiWu        float64   `json:"tsai_wu"`
	Hashin        Hashin    `json:"hashin"`
	HashinMax     float64   `json:"hashin_max"`
	HashinMode    string    `json:"hashin_mode"`
	Failed        bool      `json:"failed"`
	StrengthRatio float64   `json:"strength_ratio"`
}

// AnalyzeLayup evaluates every ply angle under the same wall stresses and
// returns the per-ply results with the index of the governing ply.
func AnalyzeLayup(hoop, axial float64, angles []float64, t StrengthTable, interaction float64) ([]PlyResult, int, error) {
	if len(angles) == 0 {
		return nil, -1, fmt.Errorf("%w: no ply angles", calcerr.ErrInvalidInput)
	}
	if err := t.Validate(); err != nil {
		return nil, -1, err
	}
	out := make([]PlyResult, 0, len(angles))
	governing, worst := -1, math.Inf(-1)
	for i, a := range angles {
		st := TransformStresses(hoop, axial, a)
		tw, err := TsaiWuIndex(st, t, interaction)
		if err != nil {
			return nil, -1, err
		}
		hs, err := HashinIndices(st, t)
		if err != nil {
			return nil, -1, err
		}
		hmax, mode := hs.Max()
		res := PlyResult{
			AngleDeg:      a,
			Stress:        st,
			TsaiWu:        tw,
			Hashin:        hs,
			HashinMax:     hmax,
			HashinMode:    mode,
			Failed:        tw >= 1 || hmax >= 1,
			StrengthRatio: math.Min(StrengthRatio(st, t, interaction), MaxStrengthRatio),
		}
		if g := math.Max(tw, hmax); g > worst {
			worst, governing = g, i
		}
		out = append(out, res)
	}
	return out, governing, nil
}

// StrengthRatio is the load multiplier R at which the Tsai-Wu polynomial
// reaches one: a·R² + b·R - 1 = 0 with a the quadratic and b the linear part.
// A zero stress state returns +Inf. Strengths must already be validated.
func StrengthRatio(st PlyStress, t StrengthTable, interaction float64) float64 {
	b, a := tsaiWuTerms(st, t, interaction)
	switch {
	case a == 0 && b <= 0:
		return math.Inf(1)
	case a == 0:
		return 1 / b
	}
	d := b*b + 4*a
	if d < 0 {
		return math.Inf(1)
	}
	return (-b + math.Sqrt(d)) / (2 * a)
}
