package world

import (
	"guildsim.dev/internal/sim/mission"
	"guildsim.dev/internal/sim/model"
)

// Preview forecasts a mission for a proposed party without touching any
// state. It validates the same way AcceptMission does, except that a
// mission already in progress may be previewed with its own party.
func (w *World) Preview(missionID string, party []string) (mission.Preview, model.OpResult) {
	m := w.missions[missionID]
	if m == nil {
		return mission.Preview{}, model.Reject(model.ErrNotFound, "no such mission")
	}
	if m.Status.Concluded() {
		return mission.Preview{}, model.Reject(model.ErrMissionUnavailable, "mission is "+m.Status.String())
	}
	if len(party) == 0 && m.Status == model.StatusInProgress {
		party = m.Party
	}
	agents := make([]model.Agent, 0, len(party))
	for _, id := range party {
		if !w.guild.OnRoster(id) {
			return mission.Preview{}, model.Reject(model.ErrNotOnRoster, "not on roster: "+id)
		}
		agents = append(agents, w.agents[id].Clone())
	}
	return mission.Forecast(*m, agents, w.tun.Settings(), w.cats), model.Ok(m.ID)
}

// FinancialSummary reports the books and the projected cost of next week.
func (w *World) FinancialSummary() FinancialSummary {
	g := w.guild
	econ := w.tun.Economy
	s := FinancialSummary{
		Treasury:       g.Finances.Treasury,
		SeasonBudget:   g.Finances.SeasonBudget,
		SeasonIncome:   g.Finances.SeasonIncome,
		SeasonExpenses: g.Finances.SeasonExpenses,

		WageBill:      w.wageBill(),
		StaffSalaries: g.StaffSalaries(),
		Maintenance:   g.MaintenanceBill(econ.UpkeepPerRating),
		TavernIncome:  g.EffectiveRating(model.FacilityTavern) * econ.TavernIncomePerRating,
		LoanPayments:  g.LoanPayments(),

		Debt:        g.Debt(),
		ActiveLoans: len(g.Loans),

		TotalIncome:   g.Ledger.TotalIncome(),
		TotalExpenses: g.Ledger.TotalExpenses(),
		NetBalance:    g.Ledger.NetBalance(),
		ByCategory:    g.Ledger.ByCategory(),

		Confidence: g.Council.Confidence,
		Band:       g.Council.Band(),
		Ultimatum:  g.Council.Ultimatum != nil,
	}
	s.ProjectedNet = s.TavernIncome - s.WageBill - s.StaffSalaries - s.Maintenance - s.LoanPayments
	return s
}
