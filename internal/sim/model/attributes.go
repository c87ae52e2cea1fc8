package model

import (
	"encoding/json"
	"fmt"
)

const (
	AttrMin = 1
	AttrMax = 20
)

type Attribute int

const (
	// physical
	AttrStrength Attribute = iota
	AttrConstitution
	AttrAgility
	AttrDexterity
	AttrEndurance
	AttrSpeed
	AttrReflexes
	AttrVitality
	AttrBalance
	AttrStealth
	AttrPerception
	AttrResilience
	// mental
	AttrIntellect
	AttrWisdom
	AttrWillpower
	AttrFocus
	AttrMemory
	AttrLogic
	AttrCreativity
	AttrIntuition
	AttrArcana
	AttrLore
	AttrTactics
	AttrInsight
	// social
	AttrCharisma
	AttrLeadership
	AttrPersuasion
	AttrDeception
	AttrIntimidation
	AttrEmpathy
	AttrEtiquette
	AttrNegotiation
	AttrPerformance
	AttrComposure
	AttrReputation
	AttrLoyalty
	// martial
	AttrSwordsmanship
	AttrAxemanship
	AttrArchery
	AttrPolearms
	AttrBrawling
	AttrShieldwork
	AttrDualWielding
	AttrParrying
	AttrSpellcasting
	AttrHealing
	AttrWarding
	AttrAmbush
	// craft
	AttrTracking
	AttrSurvival
	AttrNavigation
	AttrClimbing
	AttrSwimming
	AttrRiding
	AttrHerbalism
	AttrAlchemy
	AttrSmithing
	AttrLockpicking
	AttrTrapcraft
	AttrCartography

	AttributeCount
)

var attributeNames = []string{
	"strength", "constitution", "agility", "dexterity", "endurance", "speed",
	"reflexes", "vitality", "balance", "stealth", "perception", "resilience",
	"intellect", "wisdom", "willpower", "focus", "memory", "logic",
	"creativity", "intuition", "arcana", "lore", "tactics", "insight",
	"charisma", "leadership", "persuasion", "deception", "intimidation", "empathy",
	"etiquette", "negotiation", "performance", "composure", "reputation", "loyalty",
	"swordsmanship", "axemanship", "archery", "polearms", "brawling", "shieldwork",
	"dual_wielding", "parrying", "spellcasting", "healing", "warding", "ambush",
	"tracking", "survival", "navigation", "climbing", "swimming", "riding",
	"herbalism", "alchemy", "smithing", "lockpicking", "trapcraft", "cartography",
}

func (a Attribute) String() string { return tagOf(attributeNames, int(a)) }
func (a Attribute) Valid() bool    { return a >= 0 && a < AttributeCount }

func (a Attribute) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Attribute) UnmarshalText(b []byte) error {
	i, err := parseTag("attribute", attributeNames, string(b))
	if err != nil {
		return err
	}
	*a = Attribute(i)
	return nil
}

func ParseAttribute(s string) (Attribute, error) {
	var a Attribute
	err := a.UnmarshalText([]byte(s))
	return a, err
}

func AllAttributes() []Attribute {
	out := make([]Attribute, AttributeCount)
	for i := range out {
		out[i] = Attribute(i)
	}
	return out
}

// Attributes is the fixed attribute record of an agent. Values are only
// written through Set, which clamps to [AttrMin, AttrMax].
type Attributes struct {
	v [AttributeCount]int
}

func ClampAttr(v int) int {
	if v < AttrMin {
		return AttrMin
	}
	if v > AttrMax {
		return AttrMax
	}
	return v
}

// NewAttributes returns a record with every attribute set to base.
func NewAttributes(base int) Attributes {
	var out Attributes
	for i := range out.v {
		out.Set(Attribute(i), base)
	}
	return out
}

func (s *Attributes) Get(a Attribute) int {
	if !a.Valid() {
		return 0
	}
	// A zero record (never written) still reads inside the range.
	if s.v[a] == 0 {
		return AttrMin
	}
	return s.v[a]
}

func (s *Attributes) Set(a Attribute, v int) {
	if !a.Valid() {
		return
	}
	s.v[a] = ClampAttr(v)
}

func (s *Attributes) Add(a Attribute, delta int) {
	s.Set(a, s.Get(a)+delta)
}

// Average is the mean over the given attributes, or over all of them when
// none are given.
func (s *Attributes) Average(attrs ...Attribute) float64 {
	if len(attrs) == 0 {
		attrs = AllAttributes()
	}
	sum, n := 0, 0
	for _, a := range attrs {
		if !a.Valid() {
			continue
		}
		sum += s.Get(a)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func (s Attributes) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, AttributeCount)
	for i := range s.v {
		m[attributeNames[i]] = s.Get(Attribute(i))
	}
	return json.Marshal(m)
}

func (s *Attributes) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := NewAttributes(AttrMin)
	for k, v := range m {
		a, err := ParseAttribute(k)
		if err != nil {
			return fmt.Errorf("attributes: %w", err)
		}
		out.Set(a, v)
	}
	*s = out
	return nil
}
