// Package loot generates the items a concluded mission pays out.
package loot

import (
	"math"
	"strings"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
)

// Catalog is the slice of the reference catalogs loot generation reads.
type Catalog interface {
	CategoryWeights(t model.MissionType) []dice.Option[model.ItemCategory]
	RarityWeights(t model.LootTier) []dice.Option[model.Rarity]
	ItemBases(cat model.ItemCategory) []catalogs.ItemBase
}

// IDSource mints item IDs. A nil IDSource leaves IDs empty.
type IDSource interface {
	New(prefix string) string
}

// BaseTier maps stakes to the loot ladder before the outcome shift.
func BaseTier(s model.Stakes) model.LootTier {
	switch s {
	case model.StakesLow:
		return model.TierModest
	case model.StakesMedium:
		return model.TierValuable
	case model.StakesHigh:
		return model.TierTreasure
	case model.StakesCritical:
		return model.TierHoard
	default:
		return model.TierScraps
	}
}

// Tier applies the outcome shift: perfect victory one up, partial success
// one down, clamped at both ends.
func Tier(s model.Stakes, o model.Outcome) model.LootTier {
	t := BaseTier(s)
	switch o {
	case model.OutcomePerfectVictory:
		return t.Shift(1)
	case model.OutcomePartialSuccess:
		return t.Shift(-1)
	case model.OutcomeSuccess, model.OutcomeFailure, model.OutcomeCatastrophicFailure:
		return t
	default:
		return t
	}
}

// DropRange is the inclusive base drop count for the stakes tier.
func DropRange(s model.Stakes) (lo, hi int) {
	switch s {
	case model.StakesLow:
		return 1, 2
	case model.StakesMedium:
		return 1, 3
	case model.StakesHigh:
		return 2, 4
	case model.StakesCritical:
		return 3, 5
	default:
		return 0, 0
	}
}

func dropModifier(o model.Outcome) int {
	switch o {
	case model.OutcomePerfectVictory:
		return 1
	case model.OutcomePartialSuccess:
		return -1
	case model.OutcomeSuccess, model.OutcomeFailure, model.OutcomeCatastrophicFailure:
		return 0
	default:
		return 0
	}
}

// Generate returns the items for a mission concluded with outcome o. Only
// the success family yields loot; every other outcome returns an empty,
// non-nil slice.
func Generate(m model.Mission, o model.Outcome, cat Catalog, idsrc IDSource, src dice.Source) []model.Item {
	out := []model.Item{}
	if !o.IsSuccess() {
		return out
	}
	tier := Tier(m.Stakes, o)

	lo, hi := DropRange(m.Stakes)
	n := dice.IntRange(src, lo, hi) + dropModifier(o)
	if n < 0 {
		n = 0
	}
	categories := cat.CategoryWeights(m.Type)
	for i := 0; i < n; i++ {
		c, ok := dice.Pick(src, categories)
		if !ok {
			break
		}
		if it, ok := synthesize(c, tier, cat, src); ok {
			out = append(out, it)
		}
	}

	if o == model.OutcomePerfectVictory {
		if c, ok := dice.Pick(src, bonusCategories(categories)); ok {
			if it, ok := synthesize(c, tier.Shift(1), cat, src); ok {
				out = append(out, it)
			}
		}
	}

	for i := range out {
		out[i].Source = m.ID
		if idsrc != nil {
			out[i].ID = idsrc.New(ids.PrefixItem)
		}
	}
	return out
}

// bonusCategories restricts the mission weights to weapons and accessories.
// A mission type that weights neither falls back to an even split.
func bonusCategories(all []dice.Option[model.ItemCategory]) []dice.Option[model.ItemCategory] {
	out := make([]dice.Option[model.ItemCategory], 0, 2)
	for _, o := range all {
		if o.Value == model.CategoryWeapon || o.Value == model.CategoryAccessory {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = append(out,
			dice.Option[model.ItemCategory]{Value: model.CategoryWeapon, Weight: 1},
			dice.Option[model.ItemCategory]{Value: model.CategoryAccessory, Weight: 1},
		)
	}
	return out
}

func synthesize(c model.ItemCategory, tier model.LootTier, cat Catalog, src dice.Source) (model.Item, bool) {
	rarity, ok := dice.Pick(src, cat.RarityWeights(tier))
	if !ok {
		return model.Item{}, false
	}
	bases := cat.ItemBases(c)
	if len(bases) == 0 {
		return model.Item{}, false
	}
	base := bases[src.Intn(len(bases))]
	value := int(math.Round(float64(base.Value) * rarity.ValueMultiplier() * dice.Between(src, 0.8, 1.2)))
	if value < 1 {
		value = 1
	}
	name := base.Name
	if p := rarity.Prefix(); p != "" {
		name = strings.TrimSpace(p + " " + base.Name)
	}
	return model.Item{
		Name:     name,
		Category: c,
		Rarity:   rarity,
		Tier:     tier,
		Value:    value,
	}, true
}

// TotalValue sums item values.
func TotalValue(items []model.Item) int {
	sum := 0
	for _, it := range items {
		sum += it.Value
	}
	return sum
}
