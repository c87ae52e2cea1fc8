package mission

import (
	"math"

	"guildsim.dev/internal/sim/model"
)

// Preview is the read-only forecast shown before a party is committed.
type Preview struct {
	MissionID          string     `json:"mission_id"`
	PartyPower         float64    `json:"party_power"`
	Difficulty         float64    `json:"difficulty"`
	SuccessProbability float64    `json:"success_probability"`
	Bands              [5]float64 `json:"bands"`
	InjuryChance       float64    `json:"injury_chance"`
	ExpectedGold       int        `json:"expected_gold"`
	ExpectedExperience int        `json:"expected_experience"`
	// Rating is a coarse label for the odds.
	Rating string `json:"rating"`
}

// Forecast computes the preview without drawing randomness.
func Forecast(m model.Mission, party []model.Agent, diff model.DifficultySettings, cat Catalog) Preview {
	power := PartyPower(m, party, cat)
	difficulty := Difficulty(m, diff)
	p := SuccessProbability(power, difficulty)
	bands := BandWidths(p)

	var gold, xp, injury float64
	for _, o := range model.AllOutcomes() {
		g, x := Rewards(m, o, diff)
		gold += bands[o] * float64(g)
		xp += bands[o] * float64(x)
		injury += bands[o] * InjuryChance(o, m.Stakes, diff)
	}
	return Preview{
		MissionID:          m.ID,
		PartyPower:         power,
		Difficulty:         difficulty,
		SuccessProbability: p,
		Bands:              bands,
		InjuryChance:       injury,
		ExpectedGold:       int(math.Round(gold)),
		ExpectedExperience: int(math.Round(xp)),
		Rating:             rating(p),
	}
}

func rating(p float64) string {
	switch {
	case p >= 0.85:
		return "favorable"
	case p >= 0.65:
		return "good"
	case p >= 0.45:
		return "even"
	case p >= 0.25:
		return "risky"
	default:
		return "dire"
	}
}
