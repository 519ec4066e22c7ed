package brew

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brew-cli/internal/flavor"
	"github.com/sells-group/brew-cli/internal/model"
)

const (
	coldEsterScore     = 5.0
	lagerDiacetylBonus = 40.0
	maxDiacetylRisk    = 100.0
)

// PredictFlavorProfile estimates yeast-derived esters, diacetyl and
// descriptive tags for fermentation at fermentTemp.
func (c *Calculator) PredictFlavorProfile(r *model.Recipe, fermentTemp float64) (model.FlavorProfile, error) {
	item, err := r.RequireYeast()
	if err != nil {
		return model.FlavorProfile{}, eris.Wrap(err, "brew: flavor profile")
	}
	y := item.Yeast

	ester := EsterScore(y, fermentTemp)
	diacetyl := DiacetylRisk(y, fermentTemp)

	return model.FlavorProfile{
		EsterScore:   ester,
		DiacetylRisk: diacetyl,
		Tags:         yeastTags(y, fermentTemp, ester, diacetyl),
	}, nil
}

// EsterScore maps temp to its position in the yeast's range, scaled by
// sensitivity. Above MaxTemp the score exceeds 100.
func EsterScore(y model.Yeast, temp float64) float64 {
	if temp < y.MinTemp {
		return coldEsterScore
	}
	position := (temp - y.MinTemp) / (y.MaxTemp - y.MinTemp)
	return math.Max(0, position*100*(1+y.Sensitivity))
}

// DiacetylRisk scores the chance of buttery off-flavors on a 0–100 scale.
func DiacetylRisk(y model.Yeast, temp float64) float64 {
	var risk float64
	if y.Type == model.YeastTypeLager && temp < y.MinTemp+2 {
		risk += lagerDiacetylBonus
	}
	if !y.InRange(temp) {
		risk += math.Abs(temp-y.Midpoint()) * y.Sensitivity * 10
	}
	return math.Min(maxDiacetylRisk, math.Max(0, risk))
}

func yeastTags(y model.Yeast, temp, ester, diacetyl float64) []string {
	var tags []string

	switch {
	case ester > 90:
		tags = append(tags, "Strong Esters", "Banana", "Tropical")
	case ester > 60:
		tags = append(tags, "Fruity", "Red Apple", "Pear")
	case ester < 20:
		tags = append(tags, "Clean", "Neutral")
	}

	switch {
	case diacetyl > 70:
		tags = append(tags, "Diacetyl Alert", "Buttery", "Slick Mouthfeel")
	case diacetyl > 40:
		tags = append(tags, "Creamy")
	}

	if temp > y.MaxTemp+3 {
		tags = append(tags, "Fusel Alcohols", "Hot/Alcoholic", "Solvent-like")
	}
	if temp < y.MinTemp {
		tags = append(tags, "Sulphury", "Stuck Fermentation Risk")
	}

	if y.Type == model.YeastTypeLager && ester < 15 {
		tags = append(tags, "Crisp", "Authentic Lager", "Refined")
	}
	if y.Type == model.YeastTypeWheat && ester > 50 {
		tags = append(tags, "Clove-like", "Bubblegum", "Classic Weizen")
	}

	return flavor.Dedupe(tags, 0)
}

// Prediction bundles the design targets for a recipe.
type Prediction struct {
	OriginalGravity float64             `json:"og"`
	FinalGravity    float64             `json:"fg"`
	Bitterness      float64             `json:"ibu"`
	Color           float64             `json:"srm"`
	ABV             float64             `json:"abv"`
	FermentTemp     float64             `json:"ferment_temp"`
	MashTemp        float64             `json:"mash_temp"`
	Profile         model.FlavorProfile `json:"profile"`
	HopTags         []string            `json:"hop_tags"`
	Tags            []string            `json:"tags"`
}

// Predict computes every design target for r at the given temperatures.
// Tags merges the yeast profile tags with the hop-derived tags.
func (c *Calculator) Predict(r *model.Recipe, fermentTemp, mashTemp float64) (*Prediction, error) {
	og, err := c.OriginalGravity(r)
	if err != nil {
		return nil, err
	}
	fg, err := c.FinalGravity(r, fermentTemp, mashTemp)
	if err != nil {
		return nil, err
	}
	ibu, err := c.Bitterness(r)
	if err != nil {
		return nil, err
	}
	srm, err := c.Color(r)
	if err != nil {
		return nil, err
	}
	profile, err := c.PredictFlavorProfile(r, fermentTemp)
	if err != nil {
		return nil, err
	}

	hopTags := flavor.NewAnalyzer().Analyze(r, profile.EsterScore, profile.DiacetylRisk)

	return &Prediction{
		OriginalGravity: og,
		FinalGravity:    fg,
		Bitterness:      ibu,
		Color:           srm,
		ABV:             c.ABV(og, fg),
		FermentTemp:     fermentTemp,
		MashTemp:        mashTemp,
		Profile:         profile,
		HopTags:         hopTags,
		Tags:            flavor.Merge(profile.Tags, hopTags),
	}, nil
}
