package model

// YeastType classifies a yeast strain. The set is closed.
type YeastType string

const (
	YeastTypeAle    YeastType = "ale"
	YeastTypeLager  YeastType = "lager"
	YeastTypeWheat  YeastType = "wheat"
	YeastTypeHybrid YeastType = "hybrid"
)

// Valid reports whether t is one of the known yeast types.
func (t YeastType) Valid() bool {
	switch t {
	case YeastTypeAle, YeastTypeLager, YeastTypeWheat, YeastTypeHybrid:
		return true
	}
	return false
}

// YeastForm describes how a yeast pitch is packaged.
type YeastForm string

const (
	YeastFormDry    YeastForm = "dry"
	YeastFormLiquid YeastForm = "liquid"
)

// Grain is a fermentable malt record.
type Grain struct {
	Name      string  `json:"name" yaml:"name"`
	Potential float64 `json:"potential" yaml:"potential"` // specific gravity per kg/L, e.g. 1.037
	Color     float64 `json:"color" yaml:"color"`         // degrees Lovibond
}

// Hop is a hop variety record.
type Hop struct {
	Name      string   `json:"name" yaml:"name"`
	AlphaAcid float64  `json:"alpha_acid" yaml:"alpha_acid"` // percent, e.g. 14.0
	Flavors   []string `json:"flavors" yaml:"flavors"`
}

// Yeast is a yeast strain record. Temperatures are in degrees Celsius.
type Yeast struct {
	Name        string    `json:"name" yaml:"name"`
	Type        YeastType `json:"type" yaml:"type"`
	MinTemp     float64   `json:"min_temp" yaml:"min_temp"`
	MaxTemp     float64   `json:"max_temp" yaml:"max_temp"`
	Attenuation float64   `json:"attenuation" yaml:"attenuation"`
	Sensitivity float64   `json:"sensitivity" yaml:"sensitivity"`
}

// Midpoint returns the center of the yeast's viable temperature range.
func (y Yeast) Midpoint() float64 {
	return (y.MinTemp + y.MaxTemp) / 2
}

// InRange reports whether temp lies within [MinTemp, MaxTemp].
func (y Yeast) InRange(temp float64) bool {
	return temp >= y.MinTemp && temp <= y.MaxTemp
}
