package fermentation

import (
	"fmt"
	"math"
	"sort"

	"github.com/sells-group/brew-cli/internal/model"
)

// Brewhouse timings in minutes before pitching, and step temperatures in °C.
const (
	standardBoilMinutes = 60
	mashOutLead         = 30
	mashInLead          = 60

	mashTemp    = 65.0
	mashOutTemp = 75.0
	boilTemp    = 100.0

	mashGravityShare = 0.82
	mashOutGain      = 0.002
	boilGain         = 0.005
)

// brewhouse builds the pre-fermentation timeline: mash-in, mash-out, boil
// start, each hop addition (longest boil first) and pitching at hour 0.
// Timestamps are minutes before pitching. Gravities ramp from the mash
// estimate toward og across the boil and never exceed og.
func brewhouse(r *model.Recipe, og, pitchTemp float64) []model.LogEntry {
	hops := r.Hops()
	sort.SliceStable(hops, func(i, j int) bool {
		return hops[i].BoilMinutes > hops[j].BoilMinutes
	})

	boilLength := standardBoilMinutes
	if len(hops) > 0 && hops[0].BoilMinutes > boilLength {
		boilLength = hops[0].BoilMinutes
	}

	mash := 1 + (og-1)*mashGravityShare
	boil := mash + boilGain
	capped := func(g float64) float64 { return math.Min(g, og) }

	entries := []model.LogEntry{
		brewhouseEntry(-(boilLength + mashInLead), mashTemp, capped(mash), "Mashing Start", "Starch Conversion"),
		brewhouseEntry(-(boilLength + mashOutLead), mashOutTemp, capped(mash+mashOutGain), "Mash Out", "Enzyme Denature"),
		brewhouseEntry(-boilLength, boilTemp, capped(boil), "Boil Start", "Sterilization"),
	}

	for _, h := range hops {
		minutes := max(h.BoilMinutes, 0)
		elapsed := float64(boilLength-minutes) / float64(boilLength)
		gravity := boil + (og-boil)*elapsed
		entries = append(entries, brewhouseEntry(
			-minutes, boilTemp, capped(gravity),
			"Hop Addition: "+h.Hop.Name,
			fmt.Sprintf("%gg added", h.Grams),
		))
	}

	return append(entries, brewhouseEntry(0, pitchTemp, og, "Fermenter In", "Oxygenation"))
}

func brewhouseEntry(minutes int, temp, gravity float64, event, tag string) model.LogEntry {
	return model.LogEntry{
		Hour:        minutes,
		Temperature: temp,
		Gravity:     gravity,
		Phase:       ClassifyPhase(minutes, gravity, 0, temp),
		Event:       event,
		Tags:        []string{tag},
	}
}
