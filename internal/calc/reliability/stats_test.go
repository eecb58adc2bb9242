package reliability

import (
	"math"
	"testing"

	"H2Tank/internal/calc/calcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDistributionStats_Synthetic(t *testing.T) {
	samples := []float64{300, 100, 500, 200, 400}
	st, err := CalculateDistributionStats(samples)
	require.NoError(t, err)

	assert.Equal(t, 300.0, st.Mean)
	assert.InDelta(t, math.Sqrt(25000), st.Std, 1e-12)
	assert.Equal(t, st.Std/st.Mean, st.COV)
	assert.InDelta(t, 120, st.Percentile5, 1e-12)
	assert.InDelta(t, 480, st.Percentile95, 1e-12)
	assert.Equal(t, 100.0, st.Min)
	assert.Equal(t, 500.0, st.Max)
	assert.Equal(t, []float64{300, 100, 500, 200, 400}, samples, "input is left unsorted")
}

func TestCalculateDistributionStats_Edges(t *testing.T) {
	_, err := CalculateDistributionStats(nil)
	assert.ErrorIs(t, err, calcerr.ErrInvalidSampleCount)

	st, err := CalculateDistributionStats([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, st.Percentile5)
	assert.Equal(t, 0.0, st.Std)

	st, err = CalculateDistributionStats([]float64{-1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.COV)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 40.0, Percentile(sorted, 100))
	assert.InDelta(t, 25, Percentile(sorted, 50), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestHistogram(t *testing.T) {
	bins, err := Histogram([]float64{10.1, 1.2, 2.6, 9.9, 1.4}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Bin{
		{BinCenter: 1, Count: 2},
		{BinCenter: 3, Count: 1},
		{BinCenter: 10, Count: 2},
	}, bins)

	bins, err = Histogram([]float64{172, 176, 181}, 5)
	require.NoError(t, err)
	assert.Equal(t, []Bin{{170, 1}, {175, 1}, {180, 1}}, bins)

	bins, err = Histogram(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, bins)

	_, err = Histogram([]float64{1}, 0)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestHistogram_RejectsUnbinnableSamples(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300, -1e300} {
		_, err := Histogram([]float64{170, v}, 5)
		assert.ErrorIs(t, err, calcerr.ErrInvalidInput, "%g", v)
	}

	bins, err := Histogram([]float64{-7.4, -2.6}, 5)
	require.NoError(t, err)
	assert.Equal(t, []Bin{{-5, 2}}, bins)
}

func TestBurst_ZeroCOVIsDeterministic(t *testing.T) {
	res, err := Burst(BurstInput{MeanBurstMPa: 175, COV: ptr(0), Samples: 500}, NewSeededSampler(1))
	require.NoError(t, err)
	assert.Equal(t, 175.0, res.Stats.Min)
	assert.Equal(t, 175.0, res.Stats.Max)
	assert.Equal(t, 0.0, res.Stats.Std)
	assert.Equal(t, []Bin{{175, 500}}, res.Histogram)

	def, err := Burst(BurstInput{MeanBurstMPa: 175, Samples: 5000}, NewSeededSampler(1))
	require.NoError(t, err)
	assert.InDelta(t, DefaultCOV, def.Stats.COV, 0.005)
}

func TestGenerateBurstDistribution(t *testing.T) {
	samples, err := GenerateBurstDistribution(175, 0.05, 50000, NewSeededSampler(11))
	require.NoError(t, err)
	require.Len(t, samples, 50000)

	st, err := CalculateDistributionStats(samples)
	require.NoError(t, err)
	assert.InDelta(t, 175, st.Mean, 0.2)
	assert.InDelta(t, 0.05, st.COV, 0.002)
	assert.InDelta(t, 175*(1-1.6449*0.05), st.Percentile5, 0.5)

	_, err = GenerateBurstDistribution(175, 0.05, 0, NewSeededSampler(1))
	assert.ErrorIs(t, err, calcerr.ErrInvalidSampleCount)
	_, err = GenerateBurstDistribution(0, 0.05, 10, NewSeededSampler(1))
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestBurst(t *testing.T) {
	seed := uint64(4)
	res, err := Burst(BurstInput{MeanBurstMPa: 175, COV: ptr(0.05), Samples: 20000, NominalWorkingMPa: 70, Seed: &seed}, nil)
	require.NoError(t, err)

	total := 0
	for i, b := range res.Histogram {
		total += b.Count
		if i > 0 {
			assert.Greater(t, b.BinCenter, res.Histogram[i-1].BinCenter)
		}
	}
	assert.Equal(t, 20000, total)

	require.NotNil(t, res.Assessment)
	assert.Equal(t, 157.5, res.Assessment.RequiredMPa)
	assert.True(t, res.Assessment.Pass)

	weak, err := Burst(BurstInput{MeanBurstMPa: 160, COV: ptr(0.1), Samples: 5000, NominalWorkingMPa: 70, Seed: &seed}, nil)
	require.NoError(t, err)
	assert.False(t, weak.Assessment.Pass)

	noNWP, err := Burst(BurstInput{MeanBurstMPa: 160, Samples: 100, Seed: &seed}, nil)
	require.NoError(t, err)
	assert.Nil(t, noNWP.Assessment)
}

func TestAssessBurst_Invalid(t *testing.T) {
	_, err := AssessBurst(Stats{}, 0, 2.25)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}
