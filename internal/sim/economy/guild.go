package economy

import (
	"guildsim.dev/internal/sim/model"
)

type Staff struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Salary    int    `json:"salary"`
	HiredWeek uint64 `json:"hired_week"`
}

type Finances struct {
	StartingTreasury int `json:"starting_treasury"`
	// Treasury may go negative. It is never clamped.
	Treasury       int `json:"treasury"`
	SeasonBudget   int `json:"season_budget"`
	SeasonIncome   int `json:"season_income"`
	SeasonExpenses int `json:"season_expenses"`
}

type Guild struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Roster     []string     `json:"roster"`
	Staff      []Staff      `json:"staff"`
	Facilities []Facility   `json:"facilities"`
	Finances   Finances     `json:"finances"`
	Ledger     *Ledger      `json:"ledger"`
	Loans      []Loan       `json:"loans"`
	Council    Council      `json:"council"`
	Vault      []model.Item `json:"vault"`
}

func NewGuild(id, name string, treasury, seasonBudget, confidence int, patrons []Patron) *Guild {
	return &Guild{
		ID:         id,
		Name:       name,
		Roster:     []string{},
		Staff:      []Staff{},
		Facilities: DefaultFacilities(),
		Finances: Finances{
			StartingTreasury: treasury,
			Treasury:         treasury,
			SeasonBudget:     seasonBudget,
		},
		Ledger:  NewLedger(),
		Loans:   []Loan{},
		Council: Council{Patrons: patrons, Confidence: confidence},
		Vault:   []model.Item{},
	}
}

// Post is the only path that moves the treasury: it records the ledger
// entry and updates the season counters in one step.
func (g *Guild) Post(week uint64, amount int, cat model.TxCategory, memo string, link *Link) Transaction {
	tx := g.Ledger.Record(week, amount, cat, memo, link)
	g.Finances.Treasury += amount
	if amount > 0 {
		g.Finances.SeasonIncome += amount
	} else {
		g.Finances.SeasonExpenses -= amount
	}
	return tx
}

// Facility returns the facility record for kind, or nil.
func (g *Guild) Facility(kind model.FacilityKind) *Facility {
	for i := range g.Facilities {
		if g.Facilities[i].Kind == kind {
			return &g.Facilities[i]
		}
	}
	return nil
}

// EffectiveRating of a facility the guild lacks is the floor.
func (g *Guild) EffectiveRating(kind model.FacilityKind) int {
	if f := g.Facility(kind); f != nil {
		return f.Effective()
	}
	return MinRating
}

func (g *Guild) RosterCapacity() int {
	return RosterCapacity(g.EffectiveRating(model.FacilityBarracks))
}

func (g *Guild) OnRoster(agentID string) bool {
	for _, id := range g.Roster {
		if id == agentID {
			return true
		}
	}
	return false
}

func (g *Guild) AddToRoster(agentID string) {
	if !g.OnRoster(agentID) {
		g.Roster = append(g.Roster, agentID)
	}
}

func (g *Guild) RemoveFromRoster(agentID string) bool {
	for i, id := range g.Roster {
		if id == agentID {
			g.Roster = append(g.Roster[:i], g.Roster[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Guild) StaffSalaries() int {
	sum := 0
	for _, s := range g.Staff {
		sum += s.Salary
	}
	return sum
}

// MaintenanceBill is rating x perRating summed over facilities.
func (g *Guild) MaintenanceBill(perRating int) int {
	sum := 0
	for _, f := range g.Facilities {
		sum += Maintenance(f.Rating, perRating)
	}
	return sum
}

func (g *Guild) Debt() int {
	sum := 0
	for _, l := range g.Loans {
		sum += l.RemainingBalance
	}
	return sum
}

func (g *Guild) LoanPayments() int {
	sum := 0
	for _, l := range g.Loans {
		p := l.WeeklyPayment
		if p > l.RemainingBalance {
			p = l.RemainingBalance
		}
		sum += p
	}
	return sum
}

// ResetSeason clears the seasonal counters and restores the budget.
func (g *Guild) ResetSeason(budget int) {
	g.Finances.SeasonIncome = 0
	g.Finances.SeasonExpenses = 0
	g.Finances.SeasonBudget = budget
}
