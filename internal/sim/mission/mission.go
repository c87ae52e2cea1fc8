// Package mission resolves a party against a mission: power, difficulty,
// outcome, rewards, injuries and performance.
//
// Every function here is total. Side effects (ledger, stats, injuries,
// experience) are applied by the caller.
package mission

import (
	"math"

	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/model"
)

const (
	unfitPenalty = 0.7

	probFloor = 0.05
	probCeil  = 0.95

	// Outcome band shares. See SampleOutcome.
	perfectShare = 0.3
	partialShare = 0.4
	failureShare = 0.85 * 0.6
)

// Catalog supplies the relevant attributes per mission type.
type Catalog interface {
	Relevant(t model.MissionType) []model.Attribute
}

// Synergy is the party-size multiplier, flat from six members up.
func Synergy(members int) float64 {
	switch {
	case members <= 1:
		return 1.0
	case members == 2:
		return 1.05
	case members == 3:
		return 1.10
	case members == 4:
		return 1.15
	case members == 5:
		return 1.20
	default:
		return 1.25
	}
}

// AgentPower is one member's contribution before synergy. The deceased
// contribute nothing.
func AgentPower(a *model.Agent, relevant []model.Attribute) float64 {
	if a == nil || a.Deceased() {
		return 0
	}
	p := a.Attributes.Average(relevant...) * a.Level.Power()
	if !a.FitForDuty() {
		p *= unfitPenalty
	}
	return p
}

func PartyPower(m model.Mission, party []model.Agent, cat Catalog) float64 {
	relevant := cat.Relevant(m.Type)
	sum := 0.0
	living := 0
	for i := range party {
		if party[i].Deceased() {
			continue
		}
		living++
		sum += AgentPower(&party[i], relevant)
	}
	return sum * Synergy(living)
}

// Difficulty is stakes base x recommended-level power x enemy strength.
func Difficulty(m model.Mission, diff model.DifficultySettings) float64 {
	return m.Stakes.BaseDifficulty() * m.RecommendedLevel.Power() * diff.EnemyStrength
}

// SuccessProbability maps the power/difficulty ratio onto [0.05, 0.95]; a
// ratio of 1 gives 0.6. A non-positive difficulty gives the ceiling.
func SuccessProbability(power, difficulty float64) float64 {
	if difficulty <= 0 || math.IsNaN(difficulty) {
		return probCeil
	}
	p := 0.6 + (power/difficulty-1.0)*0.4
	if math.IsNaN(p) {
		return probFloor
	}
	return clamp(p, probFloor, probCeil)
}

// SampleOutcome discretizes one uniform roll in [0,1) into five ordered
// bands: the lowest 30% of the success mass is a perfect victory, the rest
// of it a success; of the failure mass f the next 40% is a partial
// success, the next 85% of the remaining 60% a failure, and the residue a
// catastrophe.
func SampleOutcome(p, roll float64) model.Outcome {
	f := 1 - p
	switch {
	case roll < perfectShare*p:
		return model.OutcomePerfectVictory
	case roll < p:
		return model.OutcomeSuccess
	case roll < p+partialShare*f:
		return model.OutcomePartialSuccess
	case roll < p+partialShare*f+failureShare*f:
		return model.OutcomeFailure
	default:
		return model.OutcomeCatastrophicFailure
	}
}

// BandWidths returns the probability of each outcome for success chance p,
// indexed by model.Outcome.
func BandWidths(p float64) [5]float64 {
	f := 1 - p
	var w [5]float64
	w[model.OutcomePerfectVictory] = perfectShare * p
	w[model.OutcomeSuccess] = (1 - perfectShare) * p
	w[model.OutcomePartialSuccess] = partialShare * f
	w[model.OutcomeFailure] = failureShare * f
	w[model.OutcomeCatastrophicFailure] = f - partialShare*f - failureShare*f
	return w
}

// Rewards are base x stakes x outcome x difficulty, rounded.
func Rewards(m model.Mission, o model.Outcome, diff model.DifficultySettings) (gold, experience int) {
	mult := m.Stakes.RewardMultiplier() * o.RewardMultiplier() * diff.Reward
	return int(math.Round(float64(m.BaseGold) * mult)), int(math.Round(float64(m.BaseExperience) * mult))
}

// InjuryChance is the per-member injury probability for the outcome.
func InjuryChance(o model.Outcome, s model.Stakes, diff model.DifficultySettings) float64 {
	return clamp(o.InjuryBase()*s.RiskMultiplier()*5*diff.InjuryRate, 0, 1)
}

var severityTable = []dice.Option[model.Severity]{
	{Value: model.SeverityMinor, Weight: model.SeverityMinor.Weight()},
	{Value: model.SeverityModerate, Weight: model.SeverityModerate.Weight()},
	{Value: model.SeveritySevere, Weight: model.SeveritySevere.Weight()},
	{Value: model.SeverityMortal, Weight: model.SeverityMortal.Weight()},
}

// RollInjury draws severity from the ladder and type uniformly.
func RollInjury(src dice.Source) model.Injury {
	sev, _ := dice.Pick(src, severityTable)
	types := model.AllInjuryTypes()
	typ := types[src.Intn(len(types))]
	return model.Injury{Type: typ, Severity: sev, WeeksRemaining: sev.RecoveryWeeks()}
}

// Performance is the outcome base plus uniform noise in [-1,1], clamped to
// [1,10].
func Performance(o model.Outcome, src dice.Source) float64 {
	return clamp(o.PerformanceBase()+dice.Between(src, -1, 1), 1, 10)
}

// Resolve runs the whole pipeline with a single draw sequence: the outcome
// roll, then injuries in party order, then performance in party order.
// Loot and the resolved week are left for the caller.
func Resolve(m model.Mission, party []model.Agent, diff model.DifficultySettings, cat Catalog, src dice.Source) model.MissionResult {
	power := PartyPower(m, party, cat)
	difficulty := Difficulty(m, diff)
	p := SuccessProbability(power, difficulty)
	roll := src.Float64()
	o := SampleOutcome(p, roll)
	gold, xp := Rewards(m, o, diff)

	res := model.MissionResult{
		Outcome:            o,
		SuccessProbability: p,
		Roll:               roll,
		PartyPower:         power,
		Difficulty:         difficulty,
		Gold:               gold,
		Experience:         xp,
	}

	chance := InjuryChance(o, m.Stakes, diff)
	for i := range party {
		a := &party[i]
		if a.Deceased() {
			continue
		}
		if !dice.Chance(src, chance) {
			continue
		}
		inj := RollInjury(src)
		res.Injuries = append(res.Injuries, model.AgentInjury{AgentID: a.ID, Injury: inj})
		if inj.Severity == model.SeverityMortal {
			res.Deaths = append(res.Deaths, a.ID)
		}
	}
	for i := range party {
		a := &party[i]
		if a.Deceased() {
			continue
		}
		res.Performance = append(res.Performance, model.AgentPerformance{AgentID: a.ID, Rating: Performance(o, src)})
	}
	return res
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
