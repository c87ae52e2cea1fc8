package model

type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

var rarityNames = []string{"common", "uncommon", "rare", "epic", "legendary"}

func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}
}

func (r Rarity) String() string { return tagOf(rarityNames, int(r)) }
func (r Rarity) Valid() bool    { return validTag(rarityNames, int(r)) }

func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rarity) UnmarshalText(b []byte) error {
	i, err := parseTag("rarity", rarityNames, string(b))
	if err != nil {
		return err
	}
	*r = Rarity(i)
	return nil
}

func (r Rarity) ValueMultiplier() float64 {
	switch r {
	case RarityCommon:
		return 1
	case RarityUncommon:
		return 2
	case RarityRare:
		return 4
	case RarityEpic:
		return 8
	case RarityLegendary:
		return 16
	default:
		return 1
	}
}

// Prefix is prepended to the base item name. Common items carry none.
func (r Rarity) Prefix() string {
	switch r {
	case RarityCommon:
		return ""
	case RarityUncommon:
		return "Fine"
	case RarityRare:
		return "Masterwork"
	case RarityEpic:
		return "Enchanted"
	case RarityLegendary:
		return "Legendary"
	default:
		return ""
	}
}

type ItemCategory int

const (
	CategoryWeapon ItemCategory = iota
	CategoryArmor
	CategoryAccessory
	CategoryConsumable
	CategoryValuable
)

var itemCategoryNames = []string{"weapon", "armor", "accessory", "consumable", "valuable"}

func AllItemCategories() []ItemCategory {
	return []ItemCategory{CategoryWeapon, CategoryArmor, CategoryAccessory, CategoryConsumable, CategoryValuable}
}

func (c ItemCategory) String() string { return tagOf(itemCategoryNames, int(c)) }
func (c ItemCategory) Valid() bool    { return validTag(itemCategoryNames, int(c)) }

func (c ItemCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ItemCategory) UnmarshalText(b []byte) error {
	i, err := parseTag("item category", itemCategoryNames, string(b))
	if err != nil {
		return err
	}
	*c = ItemCategory(i)
	return nil
}

// LootTier is the ordered reward ladder.
type LootTier int

const (
	TierScraps LootTier = iota
	TierModest
	TierValuable
	TierTreasure
	TierHoard
)

var lootTierNames = []string{"scraps", "modest", "valuable", "treasure", "hoard"}

func AllLootTiers() []LootTier {
	return []LootTier{TierScraps, TierModest, TierValuable, TierTreasure, TierHoard}
}

func (t LootTier) String() string { return tagOf(lootTierNames, int(t)) }
func (t LootTier) Valid() bool    { return validTag(lootTierNames, int(t)) }

func (t LootTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *LootTier) UnmarshalText(b []byte) error {
	i, err := parseTag("loot tier", lootTierNames, string(b))
	if err != nil {
		return err
	}
	*t = LootTier(i)
	return nil
}

// Shift moves along the ladder and clamps at both ends.
func (t LootTier) Shift(delta int) LootTier {
	n := int(t) + delta
	if n < int(TierScraps) {
		n = int(TierScraps)
	}
	if n > int(TierHoard) {
		n = int(TierHoard)
	}
	return LootTier(n)
}

// Item is a generated reward held in the guild vault.
type Item struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category ItemCategory `json:"category"`
	Rarity   Rarity       `json:"rarity"`
	Tier     LootTier     `json:"tier"`
	Value    int          `json:"value"`
	// Source is the mission that produced the item.
	Source string `json:"source,omitempty"`
}
