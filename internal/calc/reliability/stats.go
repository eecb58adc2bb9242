package reliability

import (
	"fmt"
	"math"
	"slices"

	"H2Tank/internal/calc/calcerr"
)

// MinBurstRatio is the minimum burst-to-working-pressure ratio for
// carbon-fibre hydrogen containers.
const MinBurstRatio = 2.25

// GenerateBurstDistribution draws numSamples burst pressures from
// N(meanBurst, meanBurst·cov).
func GenerateBurstDistribution(meanBurst, cov float64, numSamples int, s *Sampler) ([]float64, error) {
	if numSamples <= 0 {
		return nil, fmt.Errorf("%w: %d", calcerr.ErrInvalidSampleCount, numSamples)
	}
	if meanBurst <= 0 || cov < 0 {
		return nil, fmt.Errorf("%w: mean %g, cov %g", calcerr.ErrInvalidInput, meanBurst, cov)
	}
	std := meanBurst * cov
	out := make([]float64, numSamples)
	for i := range out {
		out[i] = s.Gaussian(meanBurst, std)
	}
	return out, nil
}

type Stats struct {
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	COV          float64 `json:"cov"`
	Percentile5  float64 `json:"percentile_5"`
	Percentile95 float64 `json:"percentile_95"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Count        int     `json:"count"`
}

// CalculateDistributionStats returns the sample mean, the n-1 standard
// deviation, cov = std/mean (0 when the mean is 0) and percentiles by linear
// interpolation between closest ranks. samples is not modified.
func CalculateDistributionStats(samples []float64) (Stats, error) {
	n := len(samples)
	if n == 0 {
		return Stats{}, fmt.Errorf("%w: empty sample set", calcerr.ErrInvalidSampleCount)
	}
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(n)

	std := 0.0
	if n > 1 {
		ss := 0.0
		for _, v := range samples {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}
	cov := 0.0
	if mean != 0 {
		cov = std / mean
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return Stats{
		Mean:         mean,
		Std:          std,
		COV:          cov,
		Percentile5:  Percentile(sorted, 5),
		Percentile95: Percentile(sorted, 95),
		Min:          sorted[0],
		Max:          sorted[n-1],
		Count:        n,
	}, nil
}

// Percentile interpolates linearly at rank p/100·(n-1) of an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := math.Max(0, math.Min(1, p/100)) * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

type Bin struct {
	BinCenter float64 `json:"bin_center"`
	Count     int     `json:"count"`
}

// maxBinIndex keeps bin indices exact in float64 and inside int64.
const maxBinIndex = 1 << 53

// Histogram buckets samples at round(x/binWidth)·binWidth and returns the
// populated bins in ascending order.
func Histogram(samples []float64, binWidth float64) ([]Bin, error) {
	if !(binWidth > 0) {
		return nil, fmt.Errorf("%w: bin width %g", calcerr.ErrInvalidInput, binWidth)
	}
	counts := make(map[int64]int)
	for i, v := range samples {
		k := math.Round(v / binWidth)
		if math.IsNaN(k) || math.Abs(k) > maxBinIndex {
			return nil, fmt.Errorf("%w: sample %d (%g) cannot be binned at width %g", calcerr.ErrInvalidInput, i, v, binWidth)
		}
		counts[int64(k)]++
	}
	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	bins := make([]Bin, len(keys))
	for i, k := range keys {
		bins[i] = Bin{BinCenter: float64(k) * binWidth, Count: counts[k]}
	}
	return bins, nil
}

type BurstAssessment struct {
	NominalWorkingMPa float64 `json:"nominal_working_mpa"`
	Ratio             float64 `json:"ratio"`
	RequiredMPa       float64 `json:"required_mpa"`
	Percentile5MPa    float64 `json:"percentile_5_mpa"`
	MeanRatio         float64 `json:"mean_ratio"`
	Pass              bool    `json:"pass"`
}

// AssessBurst checks the 5th percentile burst pressure against ratio times
// the nominal working pressure. ratio <= 0 selects MinBurstRatio.
func AssessBurst(st Stats, nominalWorkingMPa, ratio float64) (BurstAssessment, error) {
	if nominalWorkingMPa <= 0 {
		return BurstAssessment{}, fmt.Errorf("%w: working pressure %g", calcerr.ErrInvalidInput, nominalWorkingMPa)
	}
	if ratio <= 0 {
		ratio = MinBurstRatio
	}
	req := ratio * nominalWorkingMPa
	return BurstAssessment{
		NominalWorkingMPa: nominalWorkingMPa,
		Ratio:             ratio,
		RequiredMPa:       req,
		Percentile5MPa:    st.Percentile5,
		MeanRatio:         st.Mean / nominalWorkingMPa,
		Pass:              st.Percentile5 >= req,
	}, nil
}

type BurstInput struct {
	MeanBurstMPa float64 `json:"mean_burst_mpa" validate:"gt=0"`
	// Nil selects DefaultCOV.
	COV               *float64 `json:"cov,omitempty" validate:"omitempty,gte=0,lte=1"`
	Samples           int      `json:"samples" validate:"gte=0"`
	BinWidthMPa       float64  `json:"bin_width_mpa" validate:"gte=0"`
	NominalWorkingMPa float64  `json:"nominal_working_mpa" validate:"gte=0"`
	MinBurstRatio     float64  `json:"min_burst_ratio" validate:"gte=0"`
	Seed              *uint64  `json:"seed"`
}

type BurstResult struct {
	Stats      Stats            `json:"stats"`
	Histogram  []Bin            `json:"histogram"`
	Assessment *BurstAssessment `json:"assessment,omitempty"`
}

// DefaultBurstSamples is used when a burst request leaves the count at zero.
const DefaultBurstSamples = 10000

func Burst(in BurstInput, s *Sampler) (BurstResult, error) {
	if in.Samples == 0 {
		in.Samples = DefaultBurstSamples
	}
	if in.BinWidthMPa == 0 {
		in.BinWidthMPa = 5
	}
	if s == nil {
		if in.Seed != nil {
			s = NewSeededSampler(*in.Seed)
		} else {
			s = NewSampler(nil)
		}
	}
	samples, err := GenerateBurstDistribution(in.MeanBurstMPa, covOrDefault(in.COV), in.Samples, s)
	if err != nil {
		return BurstResult{}, err
	}
	st, err := CalculateDistributionStats(samples)
	if err != nil {
		return BurstResult{}, err
	}
	hist, err := Histogram(samples, in.BinWidthMPa)
	if err != nil {
		return BurstResult{}, err
	}
	res := BurstResult{Stats: st, Histogram: hist}
	if in.NominalWorkingMPa > 0 {
		a, err := AssessBurst(st, in.NominalWorkingMPa, in.MinBurstRatio)
		if err != nil {
			return BurstResult{}, err
		}
		res.Assessment = &a
	}
	return res, nil
}
