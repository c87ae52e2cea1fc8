package progression

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/dice/dicetest"
	"guildsim.dev/internal/sim/model"
)

func apprentice() *model.Agent {
	a := &model.Agent{
		ID:         "agt_1",
		Class:      model.ClassWarrior,
		Level:      model.LevelApprentice,
		Attributes: model.NewAttributes(10),
		Condition:  model.ConditionHealthy,
	}
	a.Wage = RecomputeWage(a)
	return a
}

func TestAwardExperience_BelowThresholdNoLevelUp(t *testing.T) {
	cats := catalogs.MustDefault()
	a := apprentice()
	a.Experience = 40

	res := AwardExperience(50, a, cats, rand.New(rand.NewSource(1)))
	assert.Nil(t, res)
	assert.Equal(t, model.LevelApprentice, a.Level)
	assert.Equal(t, 90, a.Experience)
	assert.Equal(t, 50, a.LifetimeExperience)
}

func TestAwardExperience_ExactlyOneLevelUp(t *testing.T) {
	cats := catalogs.MustDefault()
	a := apprentice()
	a.Experience = 99
	oldWage := a.Wage

	res := AwardExperience(50, a, cats, rand.New(rand.NewSource(1)))
	require.NotNil(t, res)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, model.LevelApprentice, res.From)
	assert.Equal(t, model.LevelJourneyman, res.To)
	assert.Equal(t, 49, a.Experience)
	assert.Greater(t, a.Wage, oldWage)
	assert.Equal(t, oldWage, res.OldWage)
	assert.Equal(t, a.Wage, res.NewWage)

	total := 0
	for _, g := range res.Gains {
		total += g
	}
	assert.GreaterOrEqual(t, total, 2)
	assert.LessOrEqual(t, total, 4)
}

func TestAwardExperience_ChainedLevelUps(t *testing.T) {
	cats := catalogs.MustDefault()
	a := apprentice()

	// 100 + 250 + 500 = 850 clears three ranks.
	res := AwardExperience(860, a, cats, rand.New(rand.NewSource(3)))
	require.NotNil(t, res)
	assert.Equal(t, 3, res.LevelsGained)
	assert.Equal(t, model.LevelExpert, a.Level)
	assert.Equal(t, 10, a.Experience)

	total := 0
	for _, g := range res.Gains {
		total += g
	}
	assert.GreaterOrEqual(t, total, 6)
	assert.LessOrEqual(t, total, 12)
}

func TestAwardExperience_PrimaryAlwaysRaised(t *testing.T) {
	cats := catalogs.MustDefault()
	primaries := cats.Primaries(model.ClassMage)
	for seed := int64(0); seed < 50; seed++ {
		a := apprentice()
		a.Class = model.ClassMage
		res := AwardExperience(100, a, cats, rand.New(rand.NewSource(seed)))
		require.NotNil(t, res)
		hit := false
		for _, p := range primaries {
			if res.Gains[p] > 0 {
				hit = true
			}
		}
		assert.True(t, hit, "seed %d: no primary attribute raised", seed)
	}
}

func TestAwardExperience_GainsCappedAt20(t *testing.T) {
	cats := catalogs.MustDefault()
	a := apprentice()
	a.Attributes = model.NewAttributes(20)
	res := AwardExperience(100, a, cats, &dicetest.Script{Ints: []int{2, 1, 0}})
	require.NotNil(t, res)
	assert.Empty(t, res.Gains)
	for _, attr := range model.AllAttributes() {
		assert.Equal(t, 20, a.Attributes.Get(attr))
	}
}

func TestAwardExperience_TerminalLevelRetainsExperience(t *testing.T) {
	cats := catalogs.MustDefault()
	a := apprentice()
	a.Level = model.LevelLegendary
	assert.Nil(t, AwardExperience(100000, a, cats, rand.New(rand.NewSource(1))))
	assert.Equal(t, 100000, a.Experience)
	_, ok := ExperienceToNext(a)
	assert.False(t, ok)
}

func TestAwardExperience_NoOps(t *testing.T) {
	cats := catalogs.MustDefault()
	a := apprentice()
	assert.Nil(t, AwardExperience(0, a, cats, rand.New(rand.NewSource(1))))
	assert.Nil(t, AwardExperience(-5, a, cats, rand.New(rand.NewSource(1))))
	assert.Equal(t, 0, a.Experience)

	a.Condition = model.ConditionDeceased
	assert.Nil(t, AwardExperience(500, a, cats, rand.New(rand.NewSource(1))))
	assert.Equal(t, 0, a.LifetimeExperience)
}

func TestRecomputeWage(t *testing.T) {
	a := apprentice()
	a.Stats.MissionsCompleted = 3
	// 10 + 0.5*10 + 2*3
	assert.Equal(t, 21, RecomputeWage(a))
}
