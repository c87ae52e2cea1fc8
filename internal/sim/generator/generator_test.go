package generator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/progression"
)

func newGen(seed int64) *Generator {
	return New(catalogs.MustDefault(), ids.NewAllocator(seed))
}

func TestAgent_WellFormed(t *testing.T) {
	g := newGen(1)
	src := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		level := model.AllLevels()[i%len(model.AllLevels())]
		a := g.Agent(level, 3, src)
		require.True(t, ids.Valid(ids.PrefixAgent, a.ID))
		assert.True(t, a.Race.Valid())
		assert.True(t, a.Class.Valid())
		assert.Equal(t, level, a.Level)
		assert.Equal(t, model.ConditionHealthy, a.Condition)
		assert.Equal(t, uint64(3), a.HiredWeek)
		assert.Equal(t, progression.RecomputeWage(&a), a.Wage)
		assert.Len(t, strings.Fields(a.Name), 2)
		for _, attr := range model.AllAttributes() {
			v := a.Attributes.Get(attr)
			require.GreaterOrEqual(t, v, model.AttrMin)
			require.LessOrEqual(t, v, model.AttrMax)
		}
	}
}

func TestAgent_HigherLevelsAreStronger(t *testing.T) {
	g := newGen(2)
	src := rand.New(rand.NewSource(2))
	var lo, hi float64
	for i := 0; i < 50; i++ {
		a := g.Agent(model.LevelApprentice, 0, src)
		b := g.Agent(model.LevelMaster, 0, src)
		lo += a.Attributes.Average()
		hi += b.Attributes.Average()
	}
	assert.Greater(t, hi, lo)
}

func TestGenerator_Deterministic(t *testing.T) {
	a, b := newGen(9), newGen(9)
	sa, sb := rand.New(rand.NewSource(4)), rand.New(rand.NewSource(4))
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Recruit(1, sa), b.Recruit(1, sb))
		require.Equal(t, a.Mission(1, sa), b.Mission(1, sb))
	}
}

func TestMission_Bounds(t *testing.T) {
	g := newGen(3)
	src := rand.New(rand.NewSource(3))
	seen := map[model.Stakes]bool{}
	for i := 0; i < 300; i++ {
		m := g.Mission(5, src)
		seen[m.Stakes] = true
		require.True(t, ids.Valid(ids.PrefixMission, m.ID))
		assert.Equal(t, model.StatusAvailable, m.Status)
		assert.Equal(t, uint64(5), m.PostedWeek)
		lo, hi := LevelBand(m.Stakes)
		assert.GreaterOrEqual(t, m.RecommendedLevel, lo)
		assert.LessOrEqual(t, m.RecommendedLevel, hi)
		pmin, pmax := PartyBounds(m.Stakes)
		assert.Equal(t, pmin, m.MinParty)
		assert.Equal(t, pmax, m.MaxParty)
		assert.GreaterOrEqual(t, m.DurationWeeks, 1)
		assert.LessOrEqual(t, m.DurationWeeks, 4)
		assert.Positive(t, m.BaseGold)
		assert.Positive(t, m.BaseExperience)
		assert.NotContains(t, m.Name, "%")
		assert.Nil(t, m.Result)
	}
	assert.Len(t, seen, 4)
}

func TestStaffAndPatrons(t *testing.T) {
	g := newGen(4)
	src := rand.New(rand.NewSource(4))
	s, ok := g.Staff("healer", 2, src)
	require.True(t, ok)
	assert.Equal(t, 30, s.Salary)
	assert.True(t, ids.Valid(ids.PrefixStaff, s.ID))
	_, ok = g.Staff("jester", 2, src)
	assert.False(t, ok)

	ps := g.Patrons(src)
	require.NotEmpty(t, ps)
	for _, p := range ps {
		assert.GreaterOrEqual(t, p.Influence, 1)
		assert.LessOrEqual(t, p.Influence, 5)
	}
}
