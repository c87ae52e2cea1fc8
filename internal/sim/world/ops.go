package world

import (
	"fmt"

	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/ids"
	"guildsim.dev/internal/sim/model"
)

// Caller-facing operations. Each either applies fully and returns OK, or
// rejects with a stable code and leaves the world untouched.

func (w *World) guardDismissed() (model.OpResult, bool) {
	if w.guild.Council.Dismissed {
		return model.Reject(model.ErrDismissed, "the council has dismissed the guild's leadership"), true
	}
	return model.OpResult{}, false
}

// HiringFee is what signing a recruit costs up front.
func (w *World) HiringFee(a model.Agent) int {
	return w.tun.Economy.HiringFeeWages * a.Wage
}

func (w *World) Hire(recruitID string) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	idx := -1
	for i := range w.recruits {
		if w.recruits[i].ID == recruitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Reject(model.ErrNotFound, "no such recruit")
	}
	if len(w.guild.Roster) >= w.guild.RosterCapacity() {
		return model.Reject(model.ErrRosterFull, fmt.Sprintf("roster is at capacity %d", w.guild.RosterCapacity()))
	}
	rec := w.recruits[idx]
	fee := w.HiringFee(rec)
	if w.guild.Finances.Treasury < fee {
		return model.Reject(model.ErrInsufficientFunds, fmt.Sprintf("hiring fee %d exceeds treasury %d", fee, w.guild.Finances.Treasury))
	}

	w.recruits = append(w.recruits[:idx], w.recruits[idx+1:]...)
	rec.HiredWeek = w.cal.Week
	w.enlist(rec)
	if fee > 0 {
		w.guild.Post(w.cal.Week, -fee, model.TxHiringFee, rec.Name, &economy.Link{Kind: "agent", ID: rec.ID})
	}
	w.unlockMissions()
	return model.Ok(rec.ID)
}

func (w *World) Dismiss(agentID string) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	if !w.guild.OnRoster(agentID) {
		return model.Reject(model.ErrNotOnRoster, "agent is not on the roster")
	}
	if a := w.agents[agentID]; a != nil && a.OnMission != "" {
		return model.Reject(model.ErrAgentOnMission, "agent is deployed on "+a.OnMission)
	}
	w.guild.RemoveFromRoster(agentID)
	return model.Ok(agentID)
}

func (w *World) UpgradeFacility(kind model.FacilityKind) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	f := w.guild.Facility(kind)
	if !kind.Valid() || f == nil {
		return model.Reject(model.ErrBadRequest, "unknown facility")
	}
	if f.Rating >= economy.MaxRating {
		return model.Reject(model.ErrFacilityMaxed, fmt.Sprintf("%s is already rated %d", kind, f.Rating))
	}
	cost := economy.UpgradeCost(f.Rating, w.tun.Economy.UpgradeCostPerRating)
	if w.guild.Finances.Treasury < cost {
		return model.Reject(model.ErrInsufficientFunds, fmt.Sprintf("upgrade costs %d", cost))
	}
	f.Upgrade()
	w.guild.Post(w.cal.Week, -cost, model.TxFacilityUpgrade, fmt.Sprintf("%s to %d", kind, f.Rating), &economy.Link{Kind: "facility", ID: kind.String()})
	return model.Ok(kind.String())
}

// AcceptMission assigns a party and starts the mission. It resolves at the
// end of week accepted + duration - 1.
func (w *World) AcceptMission(missionID string, party []string) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	m := w.missions[missionID]
	if m == nil {
		return model.Reject(model.ErrNotFound, "no such mission")
	}
	if m.Status != model.StatusAvailable {
		return model.Reject(model.ErrMissionUnavailable, "mission is "+m.Status.String())
	}
	if len(party) < m.MinParty {
		return model.Reject(model.ErrPartyTooSmall, fmt.Sprintf("need at least %d", m.MinParty))
	}
	if len(party) > m.MaxParty {
		return model.Reject(model.ErrPartyTooLarge, fmt.Sprintf("at most %d", m.MaxParty))
	}
	seen := map[string]bool{}
	for _, id := range party {
		if seen[id] {
			return model.Reject(model.ErrBadRequest, "agent listed twice: "+id)
		}
		seen[id] = true
		if !w.guild.OnRoster(id) {
			return model.Reject(model.ErrNotOnRoster, "not on roster: "+id)
		}
		a := w.agents[id]
		if a == nil || !a.Available() {
			return model.Reject(model.ErrAgentUnavailable, "unavailable: "+id)
		}
	}

	if err := m.Transition(model.StatusInProgress); err != nil {
		return model.Reject(model.ErrMissionUnavailable, err.Error())
	}
	m.Party = append([]string(nil), party...)
	m.AcceptedWeek = w.cal.Week
	dur := m.DurationWeeks
	if dur < 1 {
		dur = 1
	}
	m.DueWeek = w.cal.Week + uint64(dur) - 1
	for _, id := range party {
		w.agents[id].OnMission = m.ID
	}
	return model.Ok(m.ID)
}

// CommitMission resolves an in-progress mission now instead of waiting
// for its due week.
func (w *World) CommitMission(missionID string) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	m := w.missions[missionID]
	if m == nil {
		return model.Reject(model.ErrNotFound, "no such mission")
	}
	if m.Status != model.StatusInProgress {
		return model.Reject(model.ErrNotInProgress, "mission is "+m.Status.String())
	}
	w.resolveMission(m, w.opStream())
	return model.Ok(m.ID)
}

func (w *World) TakeLoan(principal, weeks int) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	if principal <= 0 || weeks <= 0 {
		return model.Reject(model.ErrBadRequest, "principal and duration must be positive")
	}
	if len(w.guild.Loans) >= w.tun.Economy.MaxActiveLoans {
		return model.Reject(model.ErrTooManyLoans, fmt.Sprintf("limit is %d active loans", w.tun.Economy.MaxActiveLoans))
	}
	loan, err := economy.NewLoan(w.ids.New(ids.PrefixLoan), principal, w.tun.Economy.LoanInterestRate, w.cal.Week, weeks)
	if err != nil {
		return model.Reject(model.ErrBadRequest, err.Error())
	}
	w.guild.Loans = append(w.guild.Loans, loan)
	w.guild.Post(w.cal.Week, principal, model.TxLoanDisbursement, fmt.Sprintf("loan over %d weeks", weeks), &economy.Link{Kind: "loan", ID: loan.ID})
	return model.Ok(loan.ID)
}

// HireStaff signs a staff member for a catalog role. The first week's
// salary is due at signing.
func (w *World) HireStaff(role string) model.OpResult {
	if r, stop := w.guardDismissed(); stop {
		return r
	}
	def, ok := w.cats.Staff.ByRole[role]
	if !ok {
		return model.Reject(model.ErrBadRequest, "unknown staff role "+role)
	}
	if w.guild.Finances.Treasury < def.Salary {
		return model.Reject(model.ErrInsufficientFunds, fmt.Sprintf("signing costs %d", def.Salary))
	}
	s, _ := w.gen.Staff(role, w.cal.Week, w.opStream())
	w.guild.Staff = append(w.guild.Staff, s)
	w.guild.Post(w.cal.Week, -s.Salary, model.TxHiringFee, s.Role+" "+s.Name, &economy.Link{Kind: "staff", ID: s.ID})
	return model.Ok(s.ID)
}

// Apply dispatches a queued command to its operation.
func (w *World) Apply(cmd Command) model.OpResult {
	switch cmd.Type {
	case CmdHire:
		return w.Hire(cmd.ID)
	case CmdDismiss:
		return w.Dismiss(cmd.ID)
	case CmdUpgradeFacility:
		kind, err := model.ParseFacility(cmd.Facility)
		if err != nil {
			return model.Reject(model.ErrBadRequest, err.Error())
		}
		return w.UpgradeFacility(kind)
	case CmdAcceptMission:
		return w.AcceptMission(cmd.ID, cmd.Party)
	case CmdCommitMission:
		return w.CommitMission(cmd.ID)
	case CmdTakeLoan:
		return w.TakeLoan(cmd.Principal, cmd.Weeks)
	case CmdHireStaff:
		return w.HireStaff(cmd.Role)
	default:
		return model.Reject(model.ErrBadRequest, "unknown command type "+cmd.Type)
	}
}
