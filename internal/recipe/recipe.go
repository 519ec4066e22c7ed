// Package recipe reads recipe files that name their ingredients and resolves
// them against a catalog.
package recipe

import (
	"bytes"
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/brew-cli/internal/catalog"
	"github.com/sells-group/brew-cli/internal/model"
	"github.com/sells-group/brew-cli/internal/schedule"
)

// DefaultMashTemp is used when a file does not set mash_temp.
const DefaultMashTemp = 65.0

// GrainLine is a grain bill entry.
type GrainLine struct {
	Name string  `json:"name" yaml:"name"`
	Kg   float64 `json:"kg" yaml:"kg"`
}

// HopLine is a hop addition.
type HopLine struct {
	Name    string  `json:"name" yaml:"name"`
	Grams   float64 `json:"grams" yaml:"grams"`
	Minutes int     `json:"minutes" yaml:"minutes"`
}

// YeastLine is the yeast pitch.
type YeastLine struct {
	Name       string          `json:"name" yaml:"name"`
	Amount     float64         `json:"amount" yaml:"amount"`
	Form       model.YeastForm `json:"form,omitempty" yaml:"form,omitempty"`
	Generation int             `json:"generation,omitempty" yaml:"generation,omitempty"`
	AgeMonths  int             `json:"age_months,omitempty" yaml:"age_months,omitempty"`
	Secondary  bool            `json:"secondary,omitempty" yaml:"secondary,omitempty"`
}

// File is a recipe as written by a brewer. It doubles as the request body of
// the predict and simulate API endpoints.
type File struct {
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	BatchLiters float64        `json:"batch_liters" yaml:"batch_liters"`
	Efficiency  float64        `json:"efficiency" yaml:"efficiency"`
	Grains      []GrainLine    `json:"grains" yaml:"grains"`
	Hops        []HopLine      `json:"hops,omitempty" yaml:"hops,omitempty"`
	Yeast       *YeastLine     `json:"yeast,omitempty" yaml:"yeast,omitempty"`
	FermentTemp *float64       `json:"ferment_temp,omitempty" yaml:"ferment_temp,omitempty"`
	MashTemp    *float64       `json:"mash_temp,omitempty" yaml:"mash_temp,omitempty"`
	Schedule    *schedule.Spec `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Days        int            `json:"days,omitempty" yaml:"days,omitempty"`
}

// Parse decodes a YAML recipe. Unknown fields are rejected.
func Parse(b []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	f := &File{}
	if err := dec.Decode(f); err != nil {
		return nil, eris.Wrap(err, "recipe: decode yaml")
	}
	return f, nil
}

// Load parses the recipe file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "recipe: read %s", path)
	}
	return Parse(b)
}

// Build resolves every ingredient through cat and assembles a Recipe.
// Catalog errors are returned as-is so callers can match
// model.ErrIngredientNotFound.
func (f *File) Build(ctx context.Context, cat catalog.Catalog) (*model.Recipe, error) {
	r := model.NewRecipe(f.BatchLiters, f.Efficiency)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	for _, line := range f.Grains {
		if line.Kg < 0 {
			return nil, eris.Wrapf(model.ErrInvalidRecipe, "grain %q weight must be non-negative", line.Name)
		}
		g, err := cat.Grain(ctx, line.Name)
		if err != nil {
			return nil, err
		}
		r.AddGrain(g, line.Kg)
	}

	for _, line := range f.Hops {
		if line.Grams < 0 || line.Minutes < 0 {
			return nil, eris.Wrapf(model.ErrInvalidRecipe, "hop %q needs non-negative grams and minutes", line.Name)
		}
		h, err := cat.Hop(ctx, line.Name)
		if err != nil {
			return nil, err
		}
		r.AddHop(h, line.Grams, line.Minutes)
	}

	if f.Yeast != nil {
		y, err := cat.Yeast(ctx, f.Yeast.Name)
		if err != nil {
			return nil, err
		}
		form := f.Yeast.Form
		switch form {
		case "":
			form = model.YeastFormDry
		case model.YeastFormDry, model.YeastFormLiquid:
		default:
			return nil, eris.Wrapf(model.ErrInvalidRecipe, "unknown yeast form %q", form)
		}
		r.SetYeast(model.YeastItem{
			Yeast:      y,
			Amount:     f.Yeast.Amount,
			Form:       form,
			Generation: f.Yeast.Generation,
			AgeMonths:  f.Yeast.AgeMonths,
			Secondary:  f.Yeast.Secondary,
		})
	}
	return r, nil
}

// FermentTempFor returns the declared fermentation temperature, falling back
// to the schedule's initial temperature and then to the yeast midpoint.
func (f *File) FermentTempFor(y model.Yeast) float64 {
	switch {
	case f.FermentTemp != nil:
		return *f.FermentTemp
	case f.Schedule != nil:
		return f.Schedule.Initial
	default:
		return y.Midpoint()
	}
}

// MashTempOrDefault returns mash_temp or DefaultMashTemp.
func (f *File) MashTempOrDefault() float64 {
	if f.MashTemp != nil {
		return *f.MashTemp
	}
	return DefaultMashTemp
}

// TemperatureSchedule builds the declared schedule, or a constant schedule at
// FermentTempFor(y) when none is declared.
func (f *File) TemperatureSchedule(y model.Yeast) (*schedule.Schedule, error) {
	if f.Schedule == nil {
		return schedule.Constant(f.FermentTempFor(y)), nil
	}
	return f.Schedule.Build()
}

// DaysOr returns days, or fallback when the file does not set it.
func (f *File) DaysOr(fallback int) int {
	if f.Days > 0 {
		return f.Days
	}
	return fallback
}
