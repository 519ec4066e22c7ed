package model

import "github.com/rotisserie/eris"

// Sentinel errors shared by the calculator, simulator and catalogs.
// Compare with errors.Is; callers wrap them with eris for context.
var (
	ErrInvalidRecipe      = eris.New("invalid recipe")
	ErrMissingYeast       = eris.New("recipe has no yeast")
	ErrIngredientNotFound = eris.New("ingredient not found")
)
