package composite

import (
	"math"
	"math/rand/v2"
	"testing"

	"H2Tank/internal/calc/calcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t700 = StrengthTable{Xt: 2450, Xc: 1470, Yt: 55, Yc: 200, S: 90}

func TestTransformStresses(t *testing.T) {
	st := TransformStresses(500, 250, 0)
	assert.InDelta(t, 250, st.Sigma1, 1e-12)
	assert.InDelta(t, 500, st.Sigma2, 1e-12)
	assert.InDelta(t, 0, st.Tau12, 1e-12)

	st = TransformStresses(500, 250, 90)
	assert.InDelta(t, 500, st.Sigma1, 1e-9)
	assert.InDelta(t, 250, st.Sigma2, 1e-9)
	assert.InDelta(t, 0, st.Tau12, 1e-9)

	// At atan(√2): cos² = 1/3, sin² = 2/3.
	angle := math.Atan(math.Sqrt2) * 180 / math.Pi
	st = TransformStresses(500, 250, angle)
	assert.InDelta(t, 250*5.0/3, st.Sigma1, 1e-9)
	assert.InDelta(t, 250*4.0/3, st.Sigma2, 1e-9)
	assert.InDelta(t, 250*math.Sqrt2/3, st.Tau12, 1e-9)

	// The invariant σ1+σ2 is preserved by rotation.
	for _, a := range []float64{-60, -15, 10, 33, 77} {
		st := TransformStresses(500, 250, a)
		assert.InDelta(t, 750, st.Sigma1+st.Sigma2, 1e-9)
	}
}

func TestTsaiWu_ZeroStress(t *testing.T) {
	idx, err := TsaiWuIndex(PlyStress{}, t700, DefaultInteraction)
	require.NoError(t, err)
	assert.Equal(t, 0.0, idx)
}

func TestTsaiWu_UniaxialStrengthsReachOne(t *testing.T) {
	cases := []PlyStress{
		{Sigma1: t700.Xt},
		{Sigma1: -t700.Xc},
		{Sigma2: t700.Yt},
		{Sigma2: -t700.Yc},
		{Tau12: t700.S},
		{Tau12: -t700.S},
	}
	for _, st := range cases {
		idx, err := TsaiWuIndex(st, t700, DefaultInteraction)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, idx, 1e-12, "%+v", st)
	}
}

func TestTsaiWu_QuadraticForm(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		tbl := StrengthTable{
			Xt: 500 + rng.Float64()*3000,
			Xc: 500 + rng.Float64()*2000,
			Yt: 20 + rng.Float64()*80,
			Yc: 80 + rng.Float64()*200,
			S:  40 + rng.Float64()*100,
		}
		st := PlyStress{
			Sigma1: (rng.Float64() - 0.5) * 4000,
			Sigma2: (rng.Float64() - 0.5) * 300,
			Tau12:  (rng.Float64() - 0.5) * 200,
		}
		neg := PlyStress{Sigma1: -st.Sigma1, Sigma2: -st.Sigma2, Tau12: -st.Tau12}

		pos, err := TsaiWuIndex(st, tbl, DefaultInteraction)
		require.NoError(t, err)
		flipped, err := TsaiWuIndex(neg, tbl, DefaultInteraction)
		require.NoError(t, err)

		f11 := 1 / (tbl.Xt * tbl.Xc)
		f22 := 1 / (tbl.Yt * tbl.Yc)
		quad := f11*st.Sigma1*st.Sigma1 + f22*st.Sigma2*st.Sigma2 +
			st.Tau12*st.Tau12/(tbl.S*tbl.S) -
			math.Sqrt(f11*f22)*st.Sigma1*st.Sigma2
		lin := (1/tbl.Xt-1/tbl.Xc)*st.Sigma1 + (1/tbl.Yt-1/tbl.Yc)*st.Sigma2

		assert.InDelta(t, 2*quad, pos+flipped, 1e-9*math.Max(1, math.Abs(quad)))
		assert.InDelta(t, 2*lin, pos-flipped, 1e-9*math.Max(1, math.Abs(lin)))
	}
}

func TestTsaiWu_ShearSignOnly(t *testing.T) {
	a, err := TsaiWuIndex(PlyStress{Sigma1: 800, Sigma2: 20, Tau12: 30}, t700, DefaultInteraction)
	require.NoError(t, err)
	b, err := TsaiWuIndex(PlyStress{Sigma1: 800, Sigma2: 20, Tau12: -30}, t700, DefaultInteraction)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTsaiWu_InteractionIsConfigurable(t *testing.T) {
	st := PlyStress{Sigma1: 1000, Sigma2: 30}
	none, err := TsaiWuIndex(st, t700, 0)
	require.NoError(t, err)
	def, err := TsaiWuIndex(st, t700, DefaultInteraction)
	require.NoError(t, err)
	assert.Less(t, def, none, "negative f12* relieves biaxial tension")
}

func TestInvalidStrengthTable(t *testing.T) {
	bad := []StrengthTable{
		{Xt: 0, Xc: 1, Yt: 1, Yc: 1, S: 1},
		{Xt: 1, Xc: -1, Yt: 1, Yc: 1, S: 1},
		{Xt: 1, Xc: 1, Yt: 1, Yc: 1, S: 0},
		{Xt: math.NaN(), Xc: 1, Yt: 1, Yc: 1, S: 1},
	}
	for _, tbl := range bad {
		_, err := TsaiWuIndex(PlyStress{Sigma1: 1}, tbl, DefaultInteraction)
		assert.ErrorIs(t, err, calcerr.ErrInvalidStrengthTable)
		_, err = HashinIndices(PlyStress{Sigma1: 1}, tbl)
		assert.ErrorIs(t, err, calcerr.ErrInvalidStrengthTable)
	}
}

func TestHashin_ModeSelection(t *testing.T) {
	h, err := HashinIndices(PlyStress{Sigma1: t700.Xt, Sigma2: 10}, t700)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, h.FiberTension, 1e-12)
	assert.Zero(t, h.FiberCompression)
	assert.InDelta(t, (10/t700.Yt)*(10/t700.Yt), h.MatrixTension, 1e-12)
	assert.Zero(t, h.MatrixCompression)

	h, err = HashinIndices(PlyStress{Sigma1: -t700.Xc, Sigma2: -t700.Yc}, t700)
	require.NoError(t, err)
	assert.Zero(t, h.FiberTension)
	assert.InDelta(t, 1.0, h.FiberCompression, 1e-12)
	assert.Zero(t, h.MatrixTension)
	assert.InDelta(t, 1.0, h.MatrixCompression, 1e-12)

	worst, mode := Hashin{MatrixTension: 0.7, FiberTension: 0.2}.Max()
	assert.Equal(t, 0.7, worst)
	assert.Equal(t, "matrix_tension", mode)
}

func TestStrengthRatio(t *testing.T) {
	st := TransformStresses(500, 250, 54.74)
	r := StrengthRatio(st, t700, DefaultInteraction)
	require.False(t, math.IsInf(r, 0))

	scaled := PlyStress{Sigma1: st.Sigma1 * r, Sigma2: st.Sigma2 * r, Tau12: st.Tau12 * r}
	idx, err := TsaiWuIndex(scaled, t700, DefaultInteraction)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, idx, 1e-9)

	assert.True(t, math.IsInf(StrengthRatio(PlyStress{}, t700, DefaultInteraction), 1))
}

func TestAnalyzeLayup(t *testing.T) {
	plies, gov, err := AnalyzeLayup(500, 250, []float64{54.74, -54.74, 89}, t700, DefaultInteraction)
	require.NoError(t, err)
	require.Len(t, plies, 3)
	require.GreaterOrEqual(t, gov, 0)

	for _, p := range plies {
		assert.LessOrEqual(t, math.Max(p.TsaiWu, p.HashinMax), math.Max(plies[gov].TsaiWu, plies[gov].HashinMax))
		assert.LessOrEqual(t, p.StrengthRatio, MaxStrengthRatio)
	}

	_, _, err = AnalyzeLayup(500, 250, nil, t700, DefaultInteraction)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)

	plies, _, err = AnalyzeLayup(0, 0, []float64{0}, t700, DefaultInteraction)
	require.NoError(t, err)
	assert.Equal(t, MaxStrengthRatio, plies[0].StrengthRatio)
	assert.False(t, plies[0].Failed)
}

func TestLayup(t *testing.T) {
	assert.Equal(t, []float64{30, -30, HoopPlyAngleDeg}, Layup(30))

	def := DefaultLayup()
	require.Len(t, def, 3)
	assert.InDelta(t, 54.7356, def[0], 1e-4)
	assert.Equal(t, -def[0], def[1])
	assert.Equal(t, HoopPlyAngleDeg, def[2])
}
