package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinGroupSamples is the smallest group the estimator is trusted with.
const MinGroupSamples = 30

// CharacteristicTime fits a Normal to samples by sample mean and sample standard deviation,
// then returns the sample with the highest log-density under that fit. The result is always
// an observed duration, never the mean itself. On equal densities the earlier sample wins.
func CharacteristicTime(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, errEmptyGroup
	}

	mean, stdDev := stat.MeanStdDev(samples, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		// Every sample sits on the mean (or there is only one); the density is undefined.
		return samples[0], nil
	}

	fit := distuv.Normal{Mu: mean, Sigma: stdDev}
	best := samples[0]
	bestLogLik := math.Inf(-1)
	for _, x := range samples {
		if ll := fit.LogProb(x); ll > bestLogLik {
			bestLogLik = ll
			best = x
		}
	}
	return best, nil
}
