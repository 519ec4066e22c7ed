// Package schedule models a piecewise-constant fermentation temperature plan.
package schedule

import (
	"sort"

	"github.com/rotisserie/eris"
)

// ErrStepOrder is returned when a step does not come strictly after the previous one.
var ErrStepOrder = eris.New("schedule: steps must be added in ascending hour order")

// Step switches the target temperature at Hour.
type Step struct {
	Hour int     `json:"hour" yaml:"hour"`
	Temp float64 `json:"temp" yaml:"temp"`
}

// Schedule maps a simulated hour to the active temperature.
// Steps are append-only and kept in strictly ascending hour order.
type Schedule struct {
	initial float64
	steps   []Step
}

// New creates a schedule that holds initial until the first step.
func New(initial float64) *Schedule {
	return &Schedule{initial: initial}
}

// Constant creates a schedule with a single temperature for the whole run.
func Constant(temp float64) *Schedule {
	return New(temp)
}

// AddStep appends a step. Hours must be non-negative and strictly greater
// than the previous step's hour.
func (s *Schedule) AddStep(hour int, temp float64) error {
	if hour < 0 {
		return eris.Wrapf(ErrStepOrder, "negative hour %d", hour)
	}
	if n := len(s.steps); n > 0 && hour <= s.steps[n-1].Hour {
		return eris.Wrapf(ErrStepOrder, "hour %d after hour %d", hour, s.steps[n-1].Hour)
	}
	s.steps = append(s.steps, Step{Hour: hour, Temp: temp})
	return nil
}

// TempAt returns the temperature of the last step at or before hour, or the
// initial temperature when no step has started yet.
func (s *Schedule) TempAt(hour int) float64 {
	// First step strictly after hour; the one before it is active.
	i := sort.Search(len(s.steps), func(i int) bool { return s.steps[i].Hour > hour })
	if i == 0 {
		return s.initial
	}
	return s.steps[i-1].Temp
}

// Steps returns a copy of the steps.
func (s *Schedule) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Spec is the serializable form of a schedule, as found in recipe files and
// API requests.
type Spec struct {
	Initial float64 `json:"initial" yaml:"initial"`
	Steps   []Step  `json:"steps" yaml:"steps"`
}

// Build validates the steps and returns a Schedule.
func (sp Spec) Build() (*Schedule, error) {
	s := New(sp.Initial)
	for _, st := range sp.Steps {
		if err := s.AddStep(st.Hour, st.Temp); err != nil {
			return nil, err
		}
	}
	return s, nil
}
