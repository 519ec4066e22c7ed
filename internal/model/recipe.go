package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// GrainItem is a weighed grain addition.
type GrainItem struct {
	Grain    Grain   `json:"grain"`
	WeightKg float64 `json:"weight_kg"`
}

// HopItem is a hop addition with its time in the boil.
type HopItem struct {
	Hop         Hop     `json:"hop"`
	Grams       float64 `json:"grams"`
	BoilMinutes int     `json:"boil_minutes"`
}

// YeastItem is the yeast pitch for a recipe.
type YeastItem struct {
	Yeast      Yeast     `json:"yeast"`
	Amount     float64   `json:"amount"` // grams for dry, millilitres for liquid
	Form       YeastForm `json:"form"`
	Generation int       `json:"generation"`
	AgeMonths  int       `json:"age_months"`
	Secondary  bool      `json:"secondary"`
}

// Recipe aggregates ingredient quantities and batch parameters.
//
// A Recipe is assembled with AddGrain, AddHop and SetYeast and must not be
// changed after it is handed to the calculator or simulator. Grains and Hops
// return copies so readers cannot alter the ingredient lists.
type Recipe struct {
	BatchLiters float64 `json:"batch_liters"`
	Efficiency  float64 `json:"efficiency"`

	grains []GrainItem
	hops   []HopItem
	yeast  *YeastItem
}

// NewRecipe creates an empty recipe for the given batch volume and mash efficiency.
func NewRecipe(batchLiters, efficiency float64) *Recipe {
	return &Recipe{BatchLiters: batchLiters, Efficiency: efficiency}
}

// AddGrain appends a grain addition.
func (r *Recipe) AddGrain(g Grain, weightKg float64) *Recipe {
	r.grains = append(r.grains, GrainItem{Grain: g, WeightKg: weightKg})
	return r
}

// AddHop appends a hop addition.
func (r *Recipe) AddHop(h Hop, grams float64, boilMinutes int) *Recipe {
	r.hops = append(r.hops, HopItem{Hop: h, Grams: grams, BoilMinutes: boilMinutes})
	return r
}

// SetYeast sets (or replaces) the yeast pitch.
func (r *Recipe) SetYeast(item YeastItem) *Recipe {
	r.yeast = &item
	return r
}

// Grains returns a copy of the grain bill in insertion order.
func (r *Recipe) Grains() []GrainItem {
	out := make([]GrainItem, len(r.grains))
	copy(out, r.grains)
	return out
}

// Hops returns a copy of the hop schedule in insertion order.
func (r *Recipe) Hops() []HopItem {
	out := make([]HopItem, len(r.hops))
	copy(out, r.hops)
	return out
}

// Yeast returns the yeast pitch and whether one is set.
func (r *Recipe) Yeast() (YeastItem, bool) {
	if r.yeast == nil {
		return YeastItem{}, false
	}
	return *r.yeast, true
}

// Validate checks the batch parameters. It does not require yeast.
func (r *Recipe) Validate() error {
	if r == nil {
		return eris.Wrap(ErrInvalidRecipe, "recipe is nil")
	}
	if r.BatchLiters <= 0 {
		return eris.Wrapf(ErrInvalidRecipe, "batch volume must be positive, got %g L", r.BatchLiters)
	}
	if r.Efficiency <= 0 || r.Efficiency > 1 {
		return eris.Wrapf(ErrInvalidRecipe, "efficiency must be in (0,1], got %g", r.Efficiency)
	}
	return nil
}

// RequireYeast returns the yeast pitch or a wrapped ErrMissingYeast.
func (r *Recipe) RequireYeast() (YeastItem, error) {
	if err := r.Validate(); err != nil {
		return YeastItem{}, err
	}
	y, ok := r.Yeast()
	if !ok {
		return YeastItem{}, eris.Wrap(ErrMissingYeast, "yeast-dependent calculation")
	}
	return y, nil
}

// MarshalJSON includes the ingredient lists, which are not exported fields.
func (r *Recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		BatchLiters float64     `json:"batch_liters"`
		Efficiency  float64     `json:"efficiency"`
		Grains      []GrainItem `json:"grains"`
		Hops        []HopItem   `json:"hops"`
		Yeast       *YeastItem  `json:"yeast,omitempty"`
	}{r.BatchLiters, r.Efficiency, r.Grains(), r.Hops(), r.yeast})
}
