// Package autopilot plans a week of commands from what the guild can see:
// the board, the roster, the recruit pool and the books. It never draws
// randomness, so the same state always yields the same plan.
package autopilot

import (
	"sort"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/mission"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
	"guildsim.dev/internal/sim/world"
)

// World is the read side the planner needs.
type World interface {
	Roster() []model.Agent
	Recruits() []model.Agent
	Missions(statuses ...model.MissionStatus) []model.Mission
	Preview(missionID string, party []string) (mission.Preview, model.OpResult)
	FinancialSummary() world.FinancialSummary
	HiringFee(a model.Agent) int
	Guild() *economy.Guild
	Tuning() tuning.Tuning
	Catalogs() *catalogs.Catalogs
	Dismissed() bool
}

type Policy struct {
	// MinSuccess is the lowest forecast success probability worth sending
	// a party for.
	MinSuccess float64
	// ReserveWeeks of projected burn are kept back from any spending.
	ReserveWeeks int
	// Floor is the least treasury a one-off spend may leave behind.
	Floor int
	// TargetRoster is the roster size hiring aims for.
	TargetRoster int
	// LoanBelow triggers a loan when the treasury drops under it.
	LoanBelow     int
	LoanPrincipal int
	LoanWeeks     int
	// Upgrades are considered in this order, one per week.
	Upgrades []model.FacilityKind
	// Staff roles to sign once the books allow, in order.
	Staff []string
}

func Default() Policy {
	return Policy{
		MinSuccess:    0.65,
		ReserveWeeks:  12,
		Floor:         600,
		TargetRoster:  6,
		LoanBelow:     300,
		LoanPrincipal: 1000,
		LoanWeeks:     10,
		Upgrades: []model.FacilityKind{
			model.FacilityTavern,
			model.FacilityTrainingGrounds,
			model.FacilityInfirmary,
			model.FacilityBarracks,
			model.FacilityArmory,
		},
		Staff: []string{"healer", "trainer"},
	}
}

// budget is what the week's plan may still commit: a one-off amount out
// of the treasury and a recurring amount out of the fixed weekly net.
type budget struct {
	spendable int
	margin    int
}

// Plan returns this week's commands in the order they should be applied.
func (p Policy) Plan(w World) []world.Command {
	if w.Dismissed() {
		return nil
	}
	fs := w.FinancialSummary()
	burn := 0
	if fs.ProjectedNet < 0 {
		burn = -fs.ProjectedNet
	}
	reserve := p.ReserveWeeks * burn
	if reserve < p.Floor {
		reserve = p.Floor
	}
	b := budget{spendable: fs.Treasury - reserve, margin: p.recurringMargin(w, fs)}

	var cmds []world.Command
	if fs.Treasury < p.LoanBelow && fs.ActiveLoans < w.Tuning().Economy.MaxActiveLoans && p.LoanPrincipal > 0 {
		cmds = append(cmds, world.Command{Type: world.CmdTakeLoan, Principal: p.LoanPrincipal, Weeks: p.LoanWeeks})
	}

	cmds = append(cmds, p.planMissions(w)...)

	if c, ok := p.planUpgrade(w, &b); ok {
		cmds = append(cmds, c)
	}
	if c, ok := p.planHire(w, &b); ok {
		cmds = append(cmds, c)
	}
	if c, ok := p.planStaff(w, &b); ok {
		cmds = append(cmds, c)
	}
	return cmds
}

// recurringMargin is the fixed weekly net left for new wages, salaries
// and upkeep. The tavern loses a rating step as it wears, so that step is
// never counted on.
func (p Policy) recurringMargin(w World, fs world.FinancialSummary) int {
	m := fs.ProjectedNet
	if w.Guild().EffectiveRating(model.FacilityTavern) > economy.MinRating {
		m -= w.Tuning().Economy.TavernIncomePerRating
	}
	return m
}

// planMissions staffs the most lucrative postings first, each with the
// smallest strongest party that clears MinSuccess.
func (p Policy) planMissions(w World) []world.Command {
	var free []model.Agent
	for _, a := range w.Roster() {
		if a.Available() && a.FitForDuty() {
			free = append(free, a)
		}
	}
	sort.SliceStable(free, func(i, j int) bool {
		if free[i].Level != free[j].Level {
			return free[i].Level > free[j].Level
		}
		return free[i].ID < free[j].ID
	})

	board := w.Missions(model.StatusAvailable)
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].BaseGold != board[j].BaseGold {
			return board[i].BaseGold > board[j].BaseGold
		}
		return board[i].ID < board[j].ID
	})

	var cmds []world.Command
	for _, m := range board {
		if len(free) < m.MinParty {
			continue
		}
		maxN := m.MaxParty
		if maxN > len(free) {
			maxN = len(free)
		}
		for n := m.MinParty; n <= maxN; n++ {
			party := ids(free[:n])
			pv, r := w.Preview(m.ID, party)
			if !r.OK || pv.SuccessProbability < p.MinSuccess {
				continue
			}
			cmds = append(cmds, world.Command{Type: world.CmdAcceptMission, ID: m.ID, Party: party})
			free = append([]model.Agent{}, free[n:]...)
			break
		}
	}
	return cmds
}

func (p Policy) planHire(w World, b *budget) (world.Command, bool) {
	g := w.Guild()
	if len(g.Roster) >= p.TargetRoster || len(g.Roster) >= g.RosterCapacity() {
		return world.Command{}, false
	}
	recs := w.Recruits()
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Level != recs[j].Level {
			return recs[i].Level > recs[j].Level
		}
		return recs[i].Wage < recs[j].Wage
	})
	for _, r := range recs {
		fee := w.HiringFee(r)
		if fee <= b.spendable && r.Wage <= b.margin {
			b.spendable -= fee
			b.margin -= r.Wage
			return world.Command{Type: world.CmdHire, ID: r.ID}, true
		}
	}
	return world.Command{}, false
}

func (p Policy) planStaff(w World, b *budget) (world.Command, bool) {
	have := map[string]bool{}
	for _, s := range w.Guild().Staff {
		have[s.Role] = true
	}
	for _, role := range p.Staff {
		if have[role] {
			continue
		}
		def, ok := w.Catalogs().Staff.ByRole[role]
		if !ok {
			continue
		}
		// The first salary is paid on signing.
		if def.Salary > b.spendable || def.Salary > b.margin {
			return world.Command{}, false
		}
		b.spendable -= def.Salary
		b.margin -= def.Salary
		return world.Command{Type: world.CmdHireStaff, Role: role}, true
	}
	return world.Command{}, false
}

// planUpgrade takes the first facility in rank order that is worth
// raising. A tavern upgrade pays for itself; anything else adds upkeep
// the margin has to carry.
func (p Policy) planUpgrade(w World, b *budget) (world.Command, bool) {
	g := w.Guild()
	econ := w.Tuning().Economy
	for _, kind := range p.Upgrades {
		f := g.Facility(kind)
		if f == nil || f.Rating >= economy.MaxRating {
			continue
		}
		if kind == model.FacilityBarracks && len(g.Roster) < g.RosterCapacity() {
			continue
		}
		upkeep := econ.UpkeepPerRating
		if kind != model.FacilityTavern && upkeep > b.margin {
			continue
		}
		cost := economy.UpgradeCost(f.Rating, econ.UpgradeCostPerRating)
		if cost > b.spendable {
			// Upgrades are ranked; never skip ahead to a cheaper one.
			return world.Command{}, false
		}
		b.spendable -= cost
		b.margin -= upkeep
		return world.Command{Type: world.CmdUpgradeFacility, Facility: kind.String()}, true
	}
	return world.Command{}, false
}

func ids(agents []model.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}
