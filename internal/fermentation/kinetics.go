package fermentation

import (
	"math"

	"github.com/sells-group/brew-cli/internal/model"
)

// Kinetic model constants.
const (
	LagHours        = 12
	GrowthHours     = 96
	lagDrop         = 0.0002
	completeEpsilon = 0.0001
	finishEpsilon   = 0.001
	coldCrashTemp   = 5.0

	q10            = 2.5
	referenceTemp  = 20.0
	coldActivity   = 0.15
	killMargin     = 5.0
	growthRate     = 0.025
	stationaryRate = 0.008
)

// TempActivity scales yeast activity with temperature using a Q10 model.
// Activity drops to 15% below the yeast's range and to zero once the
// temperature is more than five degrees above it.
func TempActivity(y model.Yeast, temp float64) float64 {
	activity := math.Pow(q10, (temp-referenceTemp)/10)
	switch {
	case temp < y.MinTemp:
		activity *= coldActivity
	case temp > y.MaxTemp+killMargin:
		activity = 0
	}
	return activity
}

// RateConstant is the fraction of remaining sugar consumed per hour at
// reference activity: fast during growth, slow once stationary.
func RateConstant(hour int) float64 {
	if hour < GrowthHours {
		return growthRate
	}
	return stationaryRate
}

// HourlyDrop returns the gravity points consumed during hour. The result is
// never negative and never exceeds the sugar left above target.
func HourlyDrop(hour int, gravity, target, temp float64, y model.Yeast) float64 {
	remaining := gravity - target
	if remaining <= completeEpsilon {
		return 0
	}

	if hour < LagHours {
		return math.Min(lagDrop, remaining)
	}

	drop := remaining * RateConstant(hour) * TempActivity(y, temp)
	return math.Max(0, math.Min(drop, remaining))
}

// ClassifyPhase labels the state of the brew from the current values alone.
func ClassifyPhase(hour int, gravity, target, temp float64) model.Phase {
	switch {
	case hour < 0:
		return model.PhaseBrewhouse
	case hour < LagHours:
		return model.PhaseLag
	case math.Abs(gravity-target) < finishEpsilon:
		if temp < coldCrashTemp {
			return model.PhaseColdCrash
		}
		return model.PhaseFinished
	default:
		return model.PhaseFermenting
	}
}
