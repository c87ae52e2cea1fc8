package loot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
)

func mission(s model.Stakes, t model.MissionType) model.Mission {
	return model.Mission{ID: "msn_1", Type: t, Stakes: s}
}

func TestTier_Ladder(t *testing.T) {
	assert.Equal(t, model.TierModest, Tier(model.StakesLow, model.OutcomeSuccess))
	assert.Equal(t, model.TierScraps, Tier(model.StakesLow, model.OutcomePartialSuccess))
	assert.Equal(t, model.TierValuable, Tier(model.StakesLow, model.OutcomePerfectVictory))
	assert.Equal(t, model.TierHoard, Tier(model.StakesCritical, model.OutcomePerfectVictory), "clamped at the top")
	assert.Equal(t, model.TierTreasure, Tier(model.StakesCritical, model.OutcomePartialSuccess))
}

func TestGenerate_FailureYieldsNothing(t *testing.T) {
	cats := catalogs.MustDefault()
	rng := rand.New(rand.NewSource(5))
	for _, s := range model.AllStakes() {
		for _, o := range []model.Outcome{model.OutcomeFailure, model.OutcomeCatastrophicFailure} {
			items := Generate(mission(s, model.MissionCombat), o, cats, nil, rng)
			require.NotNil(t, items)
			assert.Empty(t, items)
		}
	}
}

func TestGenerate_DropCountWithinRange(t *testing.T) {
	cats := catalogs.MustDefault()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		items := Generate(mission(model.StakesHigh, model.MissionExploration), model.OutcomeSuccess, cats, nil, rng)
		assert.GreaterOrEqual(t, len(items), 2)
		assert.LessOrEqual(t, len(items), 4)

		items = Generate(mission(model.StakesLow, model.MissionExploration), model.OutcomePartialSuccess, cats, nil, rng)
		assert.LessOrEqual(t, len(items), 1)
		for _, it := range items {
			assert.Equal(t, model.TierScraps, it.Tier)
		}
	}
}

func TestGenerate_PerfectVictoryBonusIsWeaponOrAccessory(t *testing.T) {
	cats := catalogs.MustDefault()
	rng := rand.New(rand.NewSource(17))
	for i := 0; i < 100; i++ {
		items := Generate(mission(model.StakesMedium, model.MissionDiplomacy), model.OutcomePerfectVictory, cats, nil, rng)
		require.GreaterOrEqual(t, len(items), 3, "1-3 base drops, +1 modifier, +1 bonus")
		bonus := items[len(items)-1]
		assert.Contains(t, []model.ItemCategory{model.CategoryWeapon, model.CategoryAccessory}, bonus.Category)
		assert.Equal(t, model.TierHoard, bonus.Tier)
	}
}

func TestGenerate_CriticalWorthMoreThanLow(t *testing.T) {
	cats := catalogs.MustDefault()
	rng := rand.New(rand.NewSource(23))
	const trials = 50
	low, crit := 0, 0
	for i := 0; i < trials; i++ {
		low += TotalValue(Generate(mission(model.StakesLow, model.MissionCombat), model.OutcomeSuccess, cats, nil, rng))
		crit += TotalValue(Generate(mission(model.StakesCritical, model.MissionCombat), model.OutcomeSuccess, cats, nil, rng))
	}
	assert.Greater(t, crit, low)
}

func TestGenerate_DeterministicUnderSeed(t *testing.T) {
	cats := catalogs.MustDefault()
	m := mission(model.StakesCritical, model.MissionRetrieval)
	a := Generate(m, model.OutcomePerfectVictory, cats, ids.NewAllocator(1), rand.New(rand.NewSource(99)))
	b := Generate(m, model.OutcomePerfectVictory, cats, ids.NewAllocator(1), rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
	for _, it := range a {
		assert.True(t, ids.Valid(ids.PrefixItem, it.ID), it.ID)
		assert.Equal(t, "msn_1", it.Source)
		assert.GreaterOrEqual(t, it.Value, 1)
	}
}

func TestGenerate_ValueScalesWithRarity(t *testing.T) {
	cats := catalogs.MustDefault()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		for _, it := range Generate(mission(model.StakesCritical, model.MissionCombat), model.OutcomeSuccess, cats, nil, rng) {
			maxBase := 0
			for _, b := range cats.ItemBases(it.Category) {
				if b.Value > maxBase {
					maxBase = b.Value
				}
			}
			assert.LessOrEqual(t, float64(it.Value), float64(maxBase)*it.Rarity.ValueMultiplier()*1.2+1)
		}
	}
}
