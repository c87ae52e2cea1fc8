// Package generator creates agents, missions and staff from the reference
// catalogs. Every draw comes from the Source it is handed.
package generator

import (
	"fmt"
	"math"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/progression"
)

type Generator struct {
	cat *catalogs.Catalogs
	ids *ids.Allocator
}

func New(cat *catalogs.Catalogs, alloc *ids.Allocator) *Generator {
	return &Generator{cat: cat, ids: alloc}
}

var recruitLevels = []dice.Option[model.Level]{
	{Value: model.LevelApprentice, Weight: 55},
	{Value: model.LevelJourneyman, Weight: 30},
	{Value: model.LevelAdept, Weight: 12},
	{Value: model.LevelExpert, Weight: 3},
}

var stakesWeights = []dice.Option[model.Stakes]{
	{Value: model.StakesLow, Weight: 40},
	{Value: model.StakesMedium, Weight: 35},
	{Value: model.StakesHigh, Weight: 18},
	{Value: model.StakesCritical, Weight: 7},
}

// Name draws "Given Family".
func (g *Generator) Name(src dice.Source) string {
	n := g.cat.Names
	return pickString(n.Given, src) + " " + pickString(n.Family, src)
}

// AttributeBase is the centre of a fresh agent's attribute spread.
func AttributeBase(l model.Level) int { return 5 + 2*int(l) }

// Agent rolls a healthy agent at the given level. Attributes spread
// around AttributeBase, class primaries get +2, then racial modifiers
// apply. Wage follows the standard wage formula.
func (g *Generator) Agent(level model.Level, week uint64, src dice.Source) model.Agent {
	races := model.AllRaces()
	classes := model.AllClasses()
	a := model.Agent{
		ID:        g.ids.New(ids.PrefixAgent),
		Name:      g.Name(src),
		Race:      races[src.Intn(len(races))],
		Class:     classes[src.Intn(len(classes))],
		Level:     level,
		Condition: model.ConditionHealthy,
		HiredWeek: week,
	}
	base := AttributeBase(level)
	for _, attr := range model.AllAttributes() {
		a.Attributes.Set(attr, base+dice.IntRange(src, -2, 2))
	}
	for _, attr := range g.cat.Primaries(a.Class) {
		a.Attributes.Add(attr, 2)
	}
	g.cat.ApplyRace(a.Race, &a.Attributes)
	a.Wage = progression.RecomputeWage(&a)
	return a
}

// Recruit rolls a candidate for the hiring pool.
func (g *Generator) Recruit(week uint64, src dice.Source) model.Agent {
	level, _ := dice.Pick(src, recruitLevels)
	return g.Agent(level, week, src)
}

func (g *Generator) RecruitPool(n int, week uint64, src dice.Source) []model.Agent {
	out := make([]model.Agent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Recruit(week, src))
	}
	return out
}

// LevelBand is the recommended-level range posted for a stakes tier.
func LevelBand(s model.Stakes) (lo, hi model.Level) {
	switch s {
	case model.StakesLow:
		return model.LevelApprentice, model.LevelJourneyman
	case model.StakesMedium:
		return model.LevelJourneyman, model.LevelAdept
	case model.StakesHigh:
		return model.LevelAdept, model.LevelExpert
	case model.StakesCritical:
		return model.LevelExpert, model.LevelMaster
	default:
		return model.LevelApprentice, model.LevelApprentice
	}
}

// PartyBounds is the (min, max) party size for a stakes tier.
func PartyBounds(s model.Stakes) (lo, hi int) {
	switch s {
	case model.StakesLow:
		return 1, 3
	case model.StakesMedium:
		return 2, 4
	case model.StakesHigh:
		return 3, 5
	case model.StakesCritical:
		return 4, 6
	default:
		return 1, 3
	}
}

// Mission rolls an available posting. The caller decides whether it
// starts locked.
func (g *Generator) Mission(week uint64, src dice.Source) model.Mission {
	types := model.AllMissionTypes()
	t := types[src.Intn(len(types))]
	stakes, _ := dice.Pick(src, stakesWeights)
	lo, hi := LevelBand(stakes)
	level := model.Level(dice.IntRange(src, int(lo), int(hi)))
	minParty, maxParty := PartyBounds(stakes)

	duration := dice.IntRange(src, 1, 3)
	if stakes >= model.StakesHigh {
		duration++
	}
	return model.Mission{
		ID:               g.ids.New(ids.PrefixMission),
		Name:             g.missionName(t, src),
		Type:             t,
		Stakes:           stakes,
		RecommendedLevel: level,
		Status:           model.StatusAvailable,
		MinParty:         minParty,
		MaxParty:         maxParty,
		BaseGold:         60 + 40*int(level) + dice.IntRange(src, 0, 40),
		BaseExperience:   int(math.Round(40*level.Power())) + dice.IntRange(src, 0, 20),
		DurationWeeks:    duration,
		PostedWeek:       week,
	}
}

func (g *Generator) missionName(t model.MissionType, src dice.Source) string {
	place := pickString(g.cat.Names.Places, src)
	titles := g.cat.MissionTitles(t)
	if len(titles) == 0 {
		return fmt.Sprintf("%s at %s", t, place)
	}
	return fmt.Sprintf(titles[src.Intn(len(titles))], place)
}

// Staff builds a staff member for a catalog role. ok is false for an
// unknown role.
func (g *Generator) Staff(role string, week uint64, src dice.Source) (economy.Staff, bool) {
	r, ok := g.cat.Staff.ByRole[role]
	if !ok {
		return economy.Staff{}, false
	}
	return economy.Staff{
		ID:        g.ids.New(ids.PrefixStaff),
		Name:      g.Name(src),
		Role:      r.Role,
		Salary:    r.Salary,
		HiredWeek: week,
	}, true
}

// Patrons seats every catalog patron with an influence of 1-5.
func (g *Generator) Patrons(src dice.Source) []economy.Patron {
	out := make([]economy.Patron, 0, len(g.cat.Names.Patrons))
	for _, name := range g.cat.Names.Patrons {
		out = append(out, economy.Patron{Name: name, Influence: dice.IntRange(src, 1, 5)})
	}
	return out
}

func (g *Generator) GuildName(src dice.Source) string {
	return "The Company of " + pickString(g.cat.Names.Places, src)
}

func pickString(xs []string, src dice.Source) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[src.Intn(len(xs))]
}
