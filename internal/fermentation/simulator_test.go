package fermentation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brew-cli/internal/brew"
	"github.com/sells-group/brew-cli/internal/model"
	"github.com/sells-group/brew-cli/internal/schedule"
)

var (
	pilsner = model.Grain{Name: "Pilsner", Potential: 1.037, Color: 2.0}
	vienna  = model.Grain{Name: "Vienna", Potential: 1.035, Color: 4.0}
	magnum  = model.Hop{Name: "Magnum", AlphaAcid: 14.0, Flavors: []string{"Clean bittering"}}
	cascade = model.Hop{Name: "Cascade", AlphaAcid: 7.0, Flavors: []string{"Floral", "Citrus"}}
)

func paleAle() *model.Recipe {
	return model.NewRecipe(20, 0.72).
		AddGrain(pilsner, 5.0).
		AddGrain(vienna, 0.5).
		AddHop(cascade, 30, 15).
		AddHop(magnum, 10, 60).
		SetYeast(model.YeastItem{Yeast: aleYeast, Amount: 11.5, Form: model.YeastFormDry})
}

func aleSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	s := schedule.New(18)
	require.NoError(t, s.AddStep(72, 21))
	require.NoError(t, s.AddStep(168, 22))
	return s
}

func TestSimulate_Shape(t *testing.T) {
	t.Parallel()

	run, err := New(nil).Simulate(paleAle(), aleSchedule(t), 14)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 14, run.Days)
	require.Len(t, run.Fermentation, 14*24+1)
	assert.Equal(t, 0, run.Fermentation[0].Hour)
	assert.Equal(t, 14*24, run.Fermentation[len(run.Fermentation)-1].Hour)
	assert.InDelta(t, 1.00729, run.StartGravity, 1e-6)
	assert.InDelta(t, 1+0.00729*0.2, run.TargetGravity, 1e-9)
	assert.Len(t, run.Entries(), len(run.Brewhouse)+len(run.Fermentation))
}

func TestSimulate_Invariants(t *testing.T) {
	t.Parallel()

	run, err := New(nil).Simulate(paleAle(), aleSchedule(t), 14)
	require.NoError(t, err)

	start := run.Fermentation[0].Gravity
	for i, e := range run.Fermentation {
		assert.LessOrEqual(t, e.Gravity, start, "hour %d", e.Hour)
		assert.GreaterOrEqual(t, e.Gravity, run.TargetGravity-1e-12, "hour %d", e.Hour)
		assert.NotEqual(t, model.PhaseBrewhouse, e.Phase)
		assert.Equal(t, brew.ABV(run.StartGravity, e.Gravity), e.ABV)
		if i == 0 {
			continue
		}
		prev := run.Fermentation[i-1]
		assert.Greater(t, e.Hour, prev.Hour)
		assert.LessOrEqual(t, e.Gravity, prev.Gravity, "hour %d", e.Hour)
	}

	for _, e := range run.Entries() {
		if e.Phase == model.PhaseBrewhouse {
			assert.Less(t, e.Hour, 0, e.Event)
		}
	}
}

func TestSimulate_PhasesProgress(t *testing.T) {
	t.Parallel()

	run, err := New(nil).Simulate(paleAle(), aleSchedule(t), 14)
	require.NoError(t, err)

	for _, e := range run.Fermentation[:LagHours] {
		assert.Equal(t, model.PhaseLag, e.Phase)
	}
	assert.Equal(t, model.PhaseFermenting, run.Fermentation[LagHours].Phase)
	assert.Equal(t, model.PhaseFinished, run.Fermentation[len(run.Fermentation)-1].Phase)

	sum := run.Summary()
	assert.Greater(t, sum.FinishedHour, LagHours)
	assert.Less(t, sum.FinishedHour, 14*24)
	require.Len(t, sum.Transitions, 2)
	assert.Equal(t, Transition{Hour: LagHours, From: model.PhaseLag, To: model.PhaseFermenting}, sum.Transitions[0])
	assert.Equal(t, model.PhaseFinished, sum.Transitions[1].To)
	assert.Equal(t, sum.FinishedHour, sum.Transitions[1].Hour)
	assert.Greater(t, sum.ApparentAttenuation, 0.6)
	assert.Less(t, sum.ApparentAttenuation, 0.8)
}

func TestSimulate_KillOff(t *testing.T) {
	t.Parallel()

	// Max viable 22°C, held at 30°C: past the 27°C kill threshold.
	run, err := New(nil).Simulate(paleAle(), schedule.Constant(30), 14)
	require.NoError(t, err)

	atTwelve := run.Fermentation[LagHours].Gravity
	assert.InDelta(t, run.StartGravity-LagHours*0.0002, atTwelve, 1e-12)

	for _, e := range run.Fermentation[LagHours:] {
		assert.Equal(t, atTwelve, e.Gravity, "hour %d", e.Hour)
		assert.NotEqual(t, model.PhaseFinished, e.Phase)
		assert.NotEqual(t, model.PhaseColdCrash, e.Phase)
	}
	assert.Equal(t, atTwelve, run.Summary().FinalGravity)
	assert.Equal(t, -1, run.Summary().FinishedHour)
}

func TestSimulate_ColdCrash(t *testing.T) {
	t.Parallel()

	s := schedule.New(18)
	require.NoError(t, s.AddStep(240, 2))

	run, err := New(nil).Simulate(paleAle(), s, 12)
	require.NoError(t, err)

	assert.Equal(t, model.PhaseFinished, run.Fermentation[239].Phase)
	assert.Equal(t, model.PhaseColdCrash, run.Fermentation[240].Phase)
	assert.Equal(t, model.PhaseColdCrash, run.Fermentation[len(run.Fermentation)-1].Phase)
}

func TestSimulate_FlavorSnapshotCadence(t *testing.T) {
	t.Parallel()

	s := schedule.New(18)
	require.NoError(t, s.AddStep(30, 24))

	run, err := New(nil).Simulate(paleAle(), s, 3)
	require.NoError(t, err)

	at18 := brew.EsterScore(aleYeast, 18)
	at24 := brew.EsterScore(aleYeast, 24)

	byHour := func(h int) model.LogEntry { return run.Fermentation[h] }
	assert.InDelta(t, at18, byHour(0).EsterScore, 1e-9)
	assert.InDelta(t, at18, byHour(24).EsterScore, 1e-9)
	// Temperature changed at 30 but the snapshot carries until hour 48.
	assert.Equal(t, 24.0, byHour(30).Temperature)
	assert.InDelta(t, at18, byHour(30).EsterScore, 1e-9)
	assert.InDelta(t, at18, byHour(47).EsterScore, 1e-9)
	assert.InDelta(t, at24, byHour(48).EsterScore, 1e-9)
	assert.InDelta(t, at24, byHour(72).EsterScore, 1e-9)
	assert.Contains(t, byHour(48).Tags, "Strong Esters")
	assert.NotContains(t, byHour(47).Tags, "Strong Esters")
}

func TestSimulate_FinalHourSnapshot(t *testing.T) {
	t.Parallel()

	s := schedule.New(18)
	require.NoError(t, s.AddStep(22, 24))

	run, err := New(nil, WithSnapshotHours(10)).Simulate(paleAle(), s, 1)
	require.NoError(t, err)

	at18 := brew.EsterScore(aleYeast, 18)
	assert.InDelta(t, at18, run.Fermentation[20].EsterScore, 1e-9)
	assert.InDelta(t, at18, run.Fermentation[23].EsterScore, 1e-9)
	assert.InDelta(t, brew.EsterScore(aleYeast, 24), run.Fermentation[24].EsterScore, 1e-9)
}

func TestSimulate_ZeroDays(t *testing.T) {
	t.Parallel()

	run, err := New(nil).Simulate(paleAle(), schedule.Constant(18), 0)
	require.NoError(t, err)
	require.Len(t, run.Fermentation, 1)
	assert.Equal(t, model.PhaseLag, run.Fermentation[0].Phase)
	assert.InDelta(t, run.StartGravity-0.0002, run.Fermentation[0].Gravity, 1e-12)
}

func TestSimulate_ReferenceMashTempDoesNotMoveTarget(t *testing.T) {
	t.Parallel()

	a, err := New(nil).Simulate(paleAle(), schedule.Constant(18), 1)
	require.NoError(t, err)
	b, err := New(nil, WithReferenceMashTemp(70)).Simulate(paleAle(), schedule.Constant(18), 1)
	require.NoError(t, err)
	assert.Equal(t, a.TargetGravity, b.TargetGravity)
}

func TestSimulate_Errors(t *testing.T) {
	t.Parallel()
	sim := New(nil)

	noYeast := model.NewRecipe(20, 0.72).AddGrain(pilsner, 5)
	_, err := sim.Simulate(noYeast, schedule.Constant(18), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingYeast))

	bad := model.NewRecipe(0, 0.72).SetYeast(model.YeastItem{Yeast: aleYeast})
	_, err = sim.Simulate(bad, schedule.Constant(18), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRecipe))

	_, err = sim.Simulate(paleAle(), schedule.Constant(18), -1)
	require.Error(t, err)

	_, err = sim.Simulate(paleAle(), nil, 7)
	require.Error(t, err)
}

func TestSimulate_IndependentRuns(t *testing.T) {
	t.Parallel()
	sim := New(nil)

	a, err := sim.Simulate(paleAle(), aleSchedule(t), 5)
	require.NoError(t, err)
	b, err := sim.Simulate(paleAle(), aleSchedule(t), 5)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Fermentation, b.Fermentation)
}

func TestMilestones(t *testing.T) {
	t.Parallel()

	run, err := New(nil).Simulate(paleAle(), aleSchedule(t), 14)
	require.NoError(t, err)

	ms := run.Milestones(24)
	var hours []int
	for _, e := range ms[len(run.Brewhouse):] {
		hours = append(hours, e.Hour)
	}

	assert.Equal(t, run.Brewhouse, ms[:len(run.Brewhouse)])
	assert.Contains(t, hours, 0)
	assert.Contains(t, hours, LagHours)
	assert.Contains(t, hours, 14*24)
	assert.Contains(t, hours, run.Summary().FinishedHour)
	assert.NotContains(t, hours, 25)
}

func TestSimulate_EntryTagsNotShared(t *testing.T) {
	t.Parallel()

	// 30°C is far above the yeast range, so the snapshot carries several tags.
	run, err := New(nil).Simulate(paleAle(), schedule.Constant(30), 1)
	require.NoError(t, err)

	want := append([]string(nil), run.Fermentation[5].Tags...)
	require.NotEmpty(t, want)
	require.Equal(t, want, run.Fermentation[0].Tags)

	run.Fermentation[0].Tags[0] = "changed"
	assert.Equal(t, want, run.Fermentation[5].Tags)
	assert.NotContains(t, run.Fermentation[23].Tags, "changed")
}

func TestEntries_HourZeroOrder(t *testing.T) {
	t.Parallel()

	r := paleAle().AddHop(cascade, 20, 0)
	run, err := New(nil).Simulate(r, schedule.Constant(18), 1)
	require.NoError(t, err)

	entries := run.Entries()
	n := len(run.Brewhouse)
	require.Len(t, entries, n+len(run.Fermentation))

	tail := entries[n-2 : n+1]
	assert.Equal(t, "Hop Addition: Cascade", tail[0].Event)
	assert.Equal(t, "Fermenter In", tail[1].Event)
	assert.Empty(t, tail[2].Event)
	for _, e := range tail {
		assert.Equal(t, 0, e.Hour)
		assert.Equal(t, model.PhaseLag, e.Phase)
	}
}
