// Package fermentation simulates a brew from mash to the end of fermentation,
// hour by hour, under a temperature schedule.
package fermentation

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brew-cli/internal/brew"
	"github.com/sells-group/brew-cli/internal/model"
	"github.com/sells-group/brew-cli/internal/schedule"
)

// Defaults for Simulator options.
const (
	DefaultSnapshotHours     = 24
	DefaultReferenceMashTemp = 65.0
)

// TemperatureSource yields the active temperature for a simulated hour.
type TemperatureSource interface {
	TempAt(hour int) float64
}

var _ TemperatureSource = (*schedule.Schedule)(nil)

// Simulator runs fermentation simulations. It is safe for concurrent use;
// each call to Simulate works on its own state.
type Simulator struct {
	calc          *brew.Calculator
	snapshotHours int
	mashTemp      float64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSnapshotHours sets how often a fresh flavor profile is computed.
// Non-positive values are ignored.
func WithSnapshotHours(h int) Option {
	return func(s *Simulator) {
		if h > 0 {
			s.snapshotHours = h
		}
	}
}

// WithReferenceMashTemp sets the mash temperature passed to the final
// gravity formula when computing the run's target.
func WithReferenceMashTemp(t float64) Option {
	return func(s *Simulator) { s.mashTemp = t }
}

// New creates a Simulator.
func New(calc *brew.Calculator, opts ...Option) *Simulator {
	if calc == nil {
		calc = brew.NewCalculator()
	}
	s := &Simulator{
		calc:          calc,
		snapshotHours: DefaultSnapshotHours,
		mashTemp:      DefaultReferenceMashTemp,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run is the result of one simulation.
type Run struct {
	ID            string           `json:"id"`
	Days          int              `json:"days"`
	StartGravity  float64          `json:"start_gravity"`
	TargetGravity float64          `json:"target_gravity"`
	Brewhouse     []model.LogEntry `json:"brewhouse"`
	Fermentation  []model.LogEntry `json:"fermentation"`
}

// Entries returns the brewhouse timeline followed by the fermentation
// timeline. Brewhouse Hour values are minutes before pitching, so only the
// fermentation part is strictly increasing. Hour 0 can appear up to three
// times in a row: a zero-minute hop addition, the pitch entry, then the
// first fermentation hour.
func (r *Run) Entries() []model.LogEntry {
	out := make([]model.LogEntry, 0, len(r.Brewhouse)+len(r.Fermentation))
	out = append(out, r.Brewhouse...)
	return append(out, r.Fermentation...)
}

// Simulate runs r under temps for days full days. Fermentation entries cover
// hours 0 through days*24 inclusive, preceded by the brewhouse timeline.
//
// Flavor profiles are recomputed at hour 0, every snapshot interval and at
// the final hour; hours in between carry the latest profile. Each entry owns
// its Tags slice.
func (s *Simulator) Simulate(r *model.Recipe, temps TemperatureSource, days int) (*Run, error) {
	if temps == nil {
		return nil, eris.New("fermentation: temperature schedule is required")
	}
	if days < 0 {
		return nil, eris.Errorf("fermentation: days must be non-negative, got %d", days)
	}
	item, err := r.RequireYeast()
	if err != nil {
		return nil, eris.Wrap(err, "fermentation: simulate")
	}
	yeast := item.Yeast

	og, err := s.calc.OriginalGravity(r)
	if err != nil {
		return nil, eris.Wrap(err, "fermentation: start gravity")
	}
	target, err := s.calc.FinalGravity(r, yeast.MaxTemp, s.mashTemp)
	if err != nil {
		return nil, eris.Wrap(err, "fermentation: target gravity")
	}

	run := &Run{
		ID:            uuid.New().String(),
		Days:          days,
		StartGravity:  og,
		TargetGravity: target,
		Brewhouse:     brewhouse(r, og, temps.TempAt(0)),
	}

	log := zap.L().With(zap.String("run_id", run.ID), zap.String("yeast", yeast.Name))
	log.Debug("fermentation: starting run",
		zap.Int("days", days),
		zap.Float64("og", og),
		zap.Float64("target_fg", target),
	)

	totalHours := days * 24
	run.Fermentation = make([]model.LogEntry, 0, totalHours+1)

	gravity := og
	var snapshot model.FlavorProfile
	for hour := 0; hour <= totalHours; hour++ {
		temp := temps.TempAt(hour)

		gravity -= HourlyDrop(hour, gravity, target, temp, yeast)
		if gravity > og {
			gravity = og
		}

		if hour%s.snapshotHours == 0 || hour == totalHours {
			snapshot, err = s.calc.PredictFlavorProfile(r, temp)
			if err != nil {
				return nil, eris.Wrapf(err, "fermentation: flavor snapshot at hour %d", hour)
			}
		}

		run.Fermentation = append(run.Fermentation, model.LogEntry{
			Hour:         hour,
			Temperature:  temp,
			Gravity:      gravity,
			ABV:          s.calc.ABV(og, gravity),
			Phase:        ClassifyPhase(hour, gravity, target, temp),
			Tags:         append([]string(nil), snapshot.Tags...),
			EsterScore:   snapshot.EsterScore,
			DiacetylRisk: snapshot.DiacetylRisk,
		})
	}

	log.Debug("fermentation: run complete",
		zap.Float64("final_gravity", gravity),
		zap.Int("entries", len(run.Fermentation)),
	)
	return run, nil
}
