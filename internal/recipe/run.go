package recipe

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brew-cli/internal/brew"
	"github.com/sells-group/brew-cli/internal/catalog"
	"github.com/sells-group/brew-cli/internal/fermentation"
	"github.com/sells-group/brew-cli/internal/model"
)

// Predict builds the recipe and computes its design targets at the file's
// fermentation and mash temperatures.
func (f *File) Predict(ctx context.Context, cat catalog.Catalog, calc *brew.Calculator) (*brew.Prediction, error) {
	r, err := f.Build(ctx, cat)
	if err != nil {
		return nil, err
	}
	y, err := r.RequireYeast()
	if err != nil {
		return nil, err
	}
	return calc.Predict(r, f.FermentTempFor(y.Yeast), f.MashTempOrDefault())
}

// Simulate builds the recipe and runs it through sim for the file's days, or
// defaultDays when the file does not set them.
func (f *File) Simulate(ctx context.Context, cat catalog.Catalog, sim *fermentation.Simulator, defaultDays int) (*fermentation.Run, error) {
	r, err := f.Build(ctx, cat)
	if err != nil {
		return nil, err
	}
	y, err := r.RequireYeast()
	if err != nil {
		return nil, err
	}
	temps, err := f.TemperatureSchedule(y.Yeast)
	if err != nil {
		return nil, err
	}
	if f.Days < 0 {
		return nil, eris.Wrapf(model.ErrInvalidRecipe, "days must be non-negative, got %d", f.Days)
	}
	return sim.Simulate(r, temps, f.DaysOr(defaultDays))
}
