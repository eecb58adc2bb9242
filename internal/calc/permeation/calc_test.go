package permeation

import (
	"math"
	"testing"

	"H2Tank/internal/calc/calcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermeationRate_Scaling(t *testing.T) {
	base, err := PermeationRate(3.5e-13, 2.5, 7e7, 0.005)
	require.NoError(t, err)
	assert.InEpsilon(t, 3.5e-13*2.5*7e7/0.005, base, 1e-12)

	doubleArea, err := PermeationRate(3.5e-13, 5.0, 7e7, 0.005)
	require.NoError(t, err)
	assert.Equal(t, 2*base, doubleArea)

	triplePressure, err := PermeationRate(3.5e-13, 2.5, 21e7, 0.005)
	require.NoError(t, err)
	assert.InEpsilon(t, 3*base, triplePressure, 1e-12)

	doubleThickness, err := PermeationRate(3.5e-13, 2.5, 7e7, 0.010)
	require.NoError(t, err)
	assert.InEpsilon(t, base/2, doubleThickness, 1e-12)
}

func TestPermeationRate_InvalidThickness(t *testing.T) {
	for _, th := range []float64{0, -0.001, math.NaN()} {
		_, err := PermeationRate(3.5e-13, 2.5, 7e7, th)
		assert.ErrorIs(t, err, calcerr.ErrInvalidThickness)
		assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
	}
}

func TestConvertPermeationUnits(t *testing.T) {
	v, err := ConvertPermeationUnits(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 22400.0*3600, v)

	v, err = ConvertPermeationUnits(1e-6, 150)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-6*22400*3600/150, v, 1e-12)

	_, err = ConvertPermeationUnits(1, 0)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestRequiredLinerThickness_RoundTrip(t *testing.T) {
	for _, maxRate := range []float64{1e-9, 3.3e-7, 1e-5, 0.1, 7, 12345.678} {
		th, err := RequiredLinerThickness(3.5e-13, 2.5, 7e7, maxRate)
		require.NoError(t, err)
		got, err := PermeationRate(3.5e-13, 2.5, 7e7, th)
		require.NoError(t, err)
		assert.LessOrEqual(t, got, maxRate, "maxRate=%g", maxRate)
		assert.InEpsilon(t, maxRate, got, 1e-12)
	}

	_, err := RequiredLinerThickness(3.5e-13, 2.5, 7e7, 0)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestTankPermeation(t *testing.T) {
	area, volume := Geometry(175, 1500)
	assert.InDelta(t, 2*math.Pi*0.175*1.5+4*math.Pi*0.175*0.175, area, 1e-12)
	assert.InDelta(t, (math.Pi*0.175*0.175*1.5+4.0/3*math.Pi*math.Pow(0.175, 3))*1000, volume, 1e-9)

	rate, err := TankPermeation(3.5e-19, 5, 175, 1500, 700, 20)
	require.NoError(t, err)
	want := 3.5e-19 * area * 7e7 / 0.005 * 22400 * 3600 / volume
	assert.InEpsilon(t, want, rate, 1e-12)
	assert.True(t, CheckCompliance(rate, 0).Compliant)

	hot, err := TankPermeation(3.5e-19, 5, 175, 1500, 700, 30)
	require.NoError(t, err)
	assert.InEpsilon(t, rate*math.Exp(0.5), hot, 1e-12)

	_, err = TankPermeation(3.5e-19, 0, 175, 1500, 700, 20)
	assert.ErrorIs(t, err, calcerr.ErrInvalidThickness)
}

func TestPressureLossOverTime(t *testing.T) {
	p, err := PressureLossOverTime(700, 0, 1000, 20)
	require.NoError(t, err)
	assert.Equal(t, 700.0, p)

	p, err = PressureLossOverTime(700, 6, 1000, 20)
	require.NoError(t, err)
	// 6000 NmL in 1 L: 6000/22400 mol · 8.314 · 293.15 K / 1e-3 m³ = 6.53 bar.
	assert.InDelta(t, 700-6.528, p, 0.01)

	p, err = PressureLossOverTime(10, 1e6, 1e6, 20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	_, err = PressureLossOverTime(700, -1, 10, 20)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestTimeToMinPressure_InvertsLoss(t *testing.T) {
	h, err := TimeToMinPressure(700, 20, 6, 15)
	require.NoError(t, err)
	require.Greater(t, h, 0.0)

	p, err := PressureLossOverTime(700, 6, h, 15)
	require.NoError(t, err)
	assert.InDelta(t, 20, p, 1e-6)

	h, err = TimeToMinPressure(10, 20, 6, 15)
	require.NoError(t, err)
	assert.Zero(t, h)

	_, err = TimeToMinPressure(700, 20, 0, 15)
	assert.ErrorIs(t, err, calcerr.ErrDivisionByZero)
}

func TestCheckCompliance(t *testing.T) {
	c := CheckCompliance(3, 0)
	assert.True(t, c.Compliant)
	assert.InDelta(t, 50, c.MarginPercent, 1e-12)
	assert.Equal(t, DefaultLimit, c.Limit)

	c = CheckCompliance(9, 6)
	assert.False(t, c.Compliant)
	assert.InDelta(t, -50, c.MarginPercent, 1e-12)

	assert.True(t, CheckCompliance(6, 6).Compliant)
}
