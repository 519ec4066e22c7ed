package fermentation

import "github.com/sells-group/brew-cli/internal/model"

// Transition records a phase change between consecutive fermentation hours.
type Transition struct {
	Hour int         `json:"hour"`
	From model.Phase `json:"from"`
	To   model.Phase `json:"to"`
}

// Summary condenses a run into its headline numbers.
type Summary struct {
	StartGravity        float64      `json:"start_gravity"`
	TargetGravity       float64      `json:"target_gravity"`
	FinalGravity        float64      `json:"final_gravity"`
	FinalABV            float64      `json:"final_abv"`
	ApparentAttenuation float64      `json:"apparent_attenuation"`
	FinishedHour        int          `json:"finished_hour"` // -1 if never finished
	Transitions         []Transition `json:"transitions"`
}

// Summary reports final values, the first hour the brew reached a finished
// phase and every phase change.
func (r *Run) Summary() Summary {
	s := Summary{
		StartGravity:  r.StartGravity,
		TargetGravity: r.TargetGravity,
		FinalGravity:  r.StartGravity,
		FinishedHour:  -1,
	}
	if len(r.Fermentation) == 0 {
		return s
	}

	last := r.Fermentation[len(r.Fermentation)-1]
	s.FinalGravity = last.Gravity
	s.FinalABV = last.ABV
	if r.StartGravity > 1 {
		s.ApparentAttenuation = (r.StartGravity - last.Gravity) / (r.StartGravity - 1)
	}

	for i, e := range r.Fermentation {
		if s.FinishedHour < 0 && e.Phase.Done() {
			s.FinishedHour = e.Hour
		}
		if i > 0 && r.Fermentation[i-1].Phase != e.Phase {
			s.Transitions = append(s.Transitions, Transition{
				Hour: e.Hour,
				From: r.Fermentation[i-1].Phase,
				To:   e.Phase,
			})
		}
	}
	return s
}

// Milestones returns the entries worth showing in a condensed timeline: every
// brewhouse entry, the first and last fermentation hours, hours that are a
// multiple of every, and hours where the phase changed. A non-positive every
// disables the periodic entries.
func (r *Run) Milestones(every int) []model.LogEntry {
	out := append([]model.LogEntry(nil), r.Brewhouse...)
	for i, e := range r.Fermentation {
		switch {
		case i == 0, i == len(r.Fermentation)-1:
		case every > 0 && e.Hour%every == 0:
		case r.Fermentation[i-1].Phase != e.Phase:
		default:
			continue
		}
		out = append(out, e)
	}
	return out
}
