// Package brew implements the closed-form brewing formulas: gravity,
// bitterness, color, attenuation and alcohol.
package brew

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brew-cli/internal/model"
)

// Unit conversions and empirical constants.
const (
	poundsPerKg     = 2.20462
	gallonsPerLiter = 0.264172

	abvFactor = 131.25

	// Tinseth bitterness model.
	bignessCoeff   = 1.65
	bignessBase    = 0.000125
	boilTimeRate   = 0.04
	boilTimeDivide = 4.15

	// Morey color model.
	moreyCoeff    = 1.4922
	moreyExponent = 0.6859
)

// Calculator computes recipe predictions. It holds no state; every method is
// a pure function of its inputs.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// OriginalGravity returns the pre-fermentation specific gravity of the wort.
func (c *Calculator) OriginalGravity(r *model.Recipe) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, eris.Wrap(err, "brew: original gravity")
	}

	var totalPoints float64
	for _, item := range r.Grains() {
		pointsPerKg := (item.Grain.Potential - 1) * 1000
		totalPoints += pointsPerKg * item.WeightKg * r.Efficiency
	}

	return 1 + totalPoints/(r.BatchLiters*1000), nil
}

// Bitterness returns the recipe's IBU using the Tinseth model.
func (c *Calculator) Bitterness(r *model.Recipe) (float64, error) {
	og, err := c.OriginalGravity(r)
	if err != nil {
		return 0, eris.Wrap(err, "brew: bitterness")
	}

	var total float64
	for _, item := range r.Hops() {
		util := Utilization(item.BoilMinutes, og)
		total += item.Grams * item.Hop.AlphaAcid * 10 * util / r.BatchLiters
	}
	return total, nil
}

// Utilization is the Tinseth alpha-acid utilization for a hop boiled for
// minutes in wort of the given gravity. Zero for non-positive boil times.
func Utilization(minutes int, og float64) float64 {
	if minutes <= 0 {
		return 0
	}
	bigness := bignessCoeff * math.Pow(bignessBase, og-1)
	boilTime := (1 - math.Exp(-boilTimeRate*float64(minutes))) / boilTimeDivide
	return bigness * boilTime
}

// Color returns the beer color in SRM using the Morey model.
func (c *Calculator) Color(r *model.Recipe) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, eris.Wrap(err, "brew: color")
	}

	gallons := r.BatchLiters * gallonsPerLiter
	var mcu float64
	for _, item := range r.Grains() {
		mcu += item.WeightKg * poundsPerKg * item.Grain.Color / gallons
	}

	// The fractional power is undefined for negative bases.
	if mcu <= 0 {
		return 0, nil
	}
	return moreyCoeff * math.Pow(mcu, moreyExponent), nil
}

// TemperatureStress is how far temp lies outside the yeast's viable range,
// or zero inside it.
func TemperatureStress(y model.Yeast, temp float64) float64 {
	switch {
	case temp < y.MinTemp:
		return y.MinTemp - temp
	case temp > y.MaxTemp:
		return temp - y.MaxTemp
	default:
		return 0
	}
}

// Attenuation returns the stress-adjusted attenuation of y at temp. The
// result is not clamped and may leave [0,1] under extreme stress.
func Attenuation(y model.Yeast, temp float64) float64 {
	return y.Attenuation - TemperatureStress(y, temp)*y.Sensitivity
}

// FinalGravity returns the post-fermentation gravity at fermentTemp.
// mashTemp is accepted for callers that track the mash schedule; the
// attenuation model does not use it yet.
func (c *Calculator) FinalGravity(r *model.Recipe, fermentTemp, mashTemp float64) (float64, error) {
	y, err := r.RequireYeast()
	if err != nil {
		return 0, eris.Wrap(err, "brew: final gravity")
	}
	og, err := c.OriginalGravity(r)
	if err != nil {
		return 0, eris.Wrap(err, "brew: final gravity")
	}

	att := Attenuation(y.Yeast, fermentTemp)
	return 1 + (og-1)*(1-att), nil
}

// ABV returns alcohol by volume (percent) for a gravity drop.
func ABV(og, fg float64) float64 {
	return (og - fg) * abvFactor
}

// ABV is the method form of the package-level ABV for callers holding a Calculator.
func (c *Calculator) ABV(og, fg float64) float64 {
	return ABV(og, fg)
}
