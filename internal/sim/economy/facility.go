package economy

import "guildsim.dev/internal/sim/model"

const (
	MinRating        = 1
	MaxRating        = 7
	MaxCondition     = 100
	conditionPerStep = 25
)

type Facility struct {
	Kind      model.FacilityKind `json:"kind"`
	Rating    int                `json:"rating"`
	Condition int                `json:"condition"`
}

// EffectiveRating discounts one rating step per 25 points of lost
// condition, never below 1.
func EffectiveRating(rating, condition int) int {
	if condition > MaxCondition {
		condition = MaxCondition
	}
	if condition < 0 {
		condition = 0
	}
	eff := rating - (MaxCondition-condition)/conditionPerStep
	if eff < MinRating {
		return MinRating
	}
	return eff
}

func (f Facility) Effective() int { return EffectiveRating(f.Rating, f.Condition) }

// UpgradeCost is perRating x (rating + 1).
func UpgradeCost(rating, perRating int) int { return perRating * (rating + 1) }

func Maintenance(rating, perRating int) int { return rating * perRating }

func (f *Facility) Decay(amount int) {
	f.Condition -= amount
	if f.Condition < 0 {
		f.Condition = 0
	}
}

// Upgrade raises the rating and restores condition. It reports false at
// the cap.
func (f *Facility) Upgrade() bool {
	if f.Rating >= MaxRating {
		return false
	}
	f.Rating++
	f.Condition = MaxCondition
	return true
}

// RosterCapacity is 4 + 2 x effective barracks rating.
func RosterCapacity(barracksEffective int) int { return 4 + 2*barracksEffective }

// DefaultFacilities returns all seven facilities at rating 1 and full
// condition.
func DefaultFacilities() []Facility {
	out := make([]Facility, 0, model.FacilityCount)
	for _, k := range model.AllFacilities() {
		out = append(out, Facility{Kind: k, Rating: MinRating, Condition: MaxCondition})
	}
	return out
}
