// Package progression turns earned experience into levels, attribute
// growth and wages.
package progression

import (
	"math"

	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/model"
)

// PrimarySource supplies class primary attributes.
type PrimarySource interface {
	Primaries(class model.Class) []model.Attribute
}

type LevelUpResult struct {
	AgentID      string                  `json:"agent_id"`
	From         model.Level             `json:"from"`
	To           model.Level             `json:"to"`
	LevelsGained int                     `json:"levels_gained"`
	Gains        map[model.Attribute]int `json:"gains"`
	OldWage      int                     `json:"old_wage"`
	NewWage      int                     `json:"new_wage"`
}

// AwardExperience adds amount to the agent and performs every level-up the
// new total pays for. It returns nil when no level was gained.
func AwardExperience(amount int, a *model.Agent, cat PrimarySource, src dice.Source) *LevelUpResult {
	if a == nil || amount <= 0 || a.Deceased() {
		return nil
	}
	a.Experience += amount
	a.LifetimeExperience += amount
	a.Stats.ExperienceEarned += amount

	res := &LevelUpResult{
		AgentID: a.ID,
		From:    a.Level,
		Gains:   map[model.Attribute]int{},
		OldWage: a.Wage,
	}
	for {
		threshold, ok := a.Level.Threshold()
		if !ok || a.Experience < threshold {
			break
		}
		next, ok := a.Level.Next()
		if !ok {
			break
		}
		a.Experience -= threshold
		a.Level = next
		res.LevelsGained++
		growAttributes(a, cat.Primaries(a.Class), src, res.Gains)
	}
	if res.LevelsGained == 0 {
		return nil
	}
	res.To = a.Level
	a.Wage = RecomputeWage(a)
	res.NewWage = a.Wage
	return res
}

// growAttributes raises 2-4 attributes by one point: 1-2 distinct class
// primaries, the rest drawn uniformly from every attribute.
func growAttributes(a *model.Agent, primaries []model.Attribute, src dice.Source, gains map[model.Attribute]int) {
	count := dice.IntRange(src, 2, 4)
	fromPrimary := dice.IntRange(src, 1, 2)
	if fromPrimary > len(primaries) {
		fromPrimary = len(primaries)
	}

	pool := append([]model.Attribute(nil), primaries...)
	for i := 0; i < fromPrimary; i++ {
		j := src.Intn(len(pool))
		raise(a, pool[j], gains)
		pool = append(pool[:j], pool[j+1:]...)
	}
	for i := fromPrimary; i < count; i++ {
		raise(a, model.Attribute(src.Intn(int(model.AttributeCount))), gains)
	}
}

func raise(a *model.Agent, attr model.Attribute, gains map[model.Attribute]int) {
	before := a.Attributes.Get(attr)
	a.Attributes.Add(attr, 1)
	if d := a.Attributes.Get(attr) - before; d > 0 {
		gains[attr] += d
	}
}

// RecomputeWage is base(level) + 0.5 x overall attribute average + 2 x
// missions completed, rounded.
func RecomputeWage(a *model.Agent) int {
	w := float64(a.Level.BaseWage()) + 0.5*a.Attributes.Average() + 2*float64(a.Stats.MissionsCompleted)
	return int(math.Round(w))
}

// ExperienceToNext reports how far the agent is from the next rank.
// Terminal agents report ok=false.
func ExperienceToNext(a *model.Agent) (remaining int, ok bool) {
	t, ok := a.Level.Threshold()
	if !ok {
		return 0, false
	}
	if a.Experience >= t {
		return 0, true
	}
	return t - a.Experience, true
}
