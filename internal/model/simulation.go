package model

// Phase labels a fermentation lifecycle stage.
type Phase string

const (
	PhaseBrewhouse  Phase = "Brewhouse"
	PhaseLag        Phase = "Lag Phase"
	PhaseFermenting Phase = "Fermenting"
	PhaseFinished   Phase = "Finished / Conditioning"
	PhaseColdCrash  Phase = "Cold Crashing / Lagering"
)

// Done reports whether the phase means fermentation reached its target.
func (p Phase) Done() bool {
	return p == PhaseFinished || p == PhaseColdCrash
}

// FlavorProfile is a predicted sensory profile at one fermentation temperature.
type FlavorProfile struct {
	EsterScore   float64  `json:"ester_score"`   // >= 0, exceeds 100 above the yeast's range
	DiacetylRisk float64  `json:"diacetyl_risk"` // clamped to [0,100]
	Tags         []string `json:"tags"`
}

// LogEntry is one point on a simulated brew timeline.
//
// Fermentation entries count hours from pitching. Brewhouse entries precede
// pitching and carry negative offsets in minutes, the way boil times are
// quoted; Event names the brewhouse step.
type LogEntry struct {
	Hour         int      `json:"hour"`
	Temperature  float64  `json:"temperature"`
	Gravity      float64  `json:"gravity"`
	ABV          float64  `json:"abv"`
	Phase        Phase    `json:"phase"`
	Event        string   `json:"event,omitempty"`
	Tags         []string `json:"tags"`
	EsterScore   float64  `json:"ester_score"`
	DiacetylRisk float64  `json:"diacetyl_risk"`
}
