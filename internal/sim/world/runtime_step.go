package world

import (
	"fmt"

	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
)

// StepWeek advances one calendar week:
//
//  1. apply queued commands in order
//  2. resolve in-progress missions that are due
//  3. weekly recovery
//  4. wages, staff salaries, maintenance and tavern income; facility decay
//  5. loan payments
//  6. council confidence and its consequences
//  7. month and season bookkeeping, then the calendar moves on
//  8. board refresh every RefreshEveryWeeks weeks and at season end
//
// Once the leadership is dismissed the world is frozen: every command is
// rejected and the calendar no longer moves.
func (w *World) StepWeek(cmds []Command) WeekReport {
	week := w.cal.Week
	w.events = nil
	w.resolved = nil
	w.tally = economy.WeekTally{}
	w.released = map[string]bool{}
	seqBefore := uint64(w.guild.Ledger.Len())

	rep := WeekReport{Week: week}
	for _, cmd := range cmds {
		r := w.Apply(cmd)
		rep.Commands = append(rep.Commands, CommandResult{Command: cmd, Result: r})
		w.emit(model.Event{Type: model.EventCommandResult, Ref: r.Ref, Code: r.Code, Message: cmd.Type})
	}
	if w.guild.Council.Dismissed {
		rep.Dismissed = true
		return w.finishWeek(rep, cmds, seqBefore)
	}

	src := w.stream(saltResolve)
	for _, m := range w.dueMissions(week) {
		w.resolveMission(m, src)
	}

	w.tickRecovery()
	w.tickUpkeep()
	w.tickLoans()

	if w.guild.Finances.Treasury < 0 {
		w.tally.TreasuryNegative = true
		w.emit(model.Event{Type: model.EventTreasuryNegative, Amount: w.guild.Finances.Treasury})
	}
	w.tally.NetPositive = w.guild.Ledger.WeekNet(week) > 0

	monthEnd := w.cal.EndsMonth()
	seasonEnd := monthEnd && w.cal.Month == model.MonthsPerSeason
	w.tickCouncil(monthEnd)

	if monthEnd {
		rep.MonthEnded = true
		w.emit(model.Event{Type: model.EventMonthEnd, Amount: w.guild.Finances.Treasury, Message: fmt.Sprintf("month %d", w.cal.Month)})
	}
	if seasonEnd {
		rep.SeasonEnded = true
		rep.EndedSeason = w.cal.Season
		net := w.guild.Finances.SeasonIncome - w.guild.Finances.SeasonExpenses
		w.emit(model.Event{Type: model.EventSeasonEnd, Amount: net, Message: fmt.Sprintf("season %d", w.cal.Season)})
		w.guild.ResetSeason(w.tun.Economy.SeasonBudget)
	}

	if week%uint64(w.tun.Board.RefreshEveryWeeks) == 0 || seasonEnd {
		rep.Refreshed = w.refreshBoard(week)
	}
	w.unlockMissions()

	rep.Dismissed = w.guild.Council.Dismissed
	w.cal.Advance()
	return w.finishWeek(rep, cmds, seqBefore)
}

// StepWeeks runs n empty weeks and returns the last report.
func (w *World) StepWeeks(n int) WeekReport {
	var rep WeekReport
	for i := 0; i < n; i++ {
		rep = w.StepWeek(nil)
	}
	return rep
}

func (w *World) finishWeek(rep WeekReport, cmds []Command, seqBefore uint64) WeekReport {
	for _, tx := range w.guild.Ledger.Since(seqBefore) {
		if tx.Amount > 0 {
			rep.Income += tx.Amount
		} else {
			rep.Expenses -= tx.Amount
		}
	}
	rep.Calendar = w.cal
	rep.Resolved = w.resolved
	rep.Events = w.events
	rep.Treasury = w.guild.Finances.Treasury
	rep.Confidence = w.guild.Council.Confidence
	rep.Band = w.guild.Council.Band()
	rep.Digest = w.StateDigest()
	w.lastReport = rep

	if w.weekLogger != nil {
		_ = w.weekLogger.WriteWeek(WeekLogEntry{Week: rep.Week, Commands: cmds, Digest: rep.Digest})
	}
	if w.snapshotSink != nil && !rep.Dismissed {
		every := uint64(w.tun.SnapshotEveryWeeks)
		switch {
		case rep.SeasonEnded:
			// Season archives depend on this one; block rather than drop it.
			w.snapshotSink <- w.ExportSnapshot()
		case every > 0 && rep.Week%every == 0:
			select {
			case w.snapshotSink <- w.ExportSnapshot():
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}
	return rep
}

// tickRecovery clears fatigue and ticks injuries down for everyone not
// deployed and not released this week. An infirmary rated 4+ or a healer
// adds a recovery week.
func (w *World) tickRecovery() {
	weeks := 1
	if w.guild.EffectiveRating(model.FacilityInfirmary) >= 4 || w.hasStaff("healer") {
		weeks++
	}
	for _, id := range w.guild.Roster {
		a := w.agents[id]
		if a == nil || a.Deceased() || a.OnMission != "" || w.released[id] {
			continue
		}
		hurt := len(a.Injuries) > 0
		n := 1
		if hurt {
			n = weeks
		}
		if a.Recover(n) && hurt {
			w.emit(model.Event{Type: model.EventAgentRecovered, AgentID: a.ID, Message: a.Name})
		}
	}
}

func (w *World) tickUpkeep() {
	week := w.cal.Week
	econ := w.tun.Economy
	if wages := w.wageBill(); wages > 0 {
		w.guild.Post(week, -wages, model.TxWages, fmt.Sprintf("%d agents", len(w.guild.Roster)), nil)
	}
	if salaries := w.guild.StaffSalaries(); salaries > 0 {
		w.guild.Post(week, -salaries, model.TxStaffSalaries, fmt.Sprintf("%d staff", len(w.guild.Staff)), nil)
	}
	if upkeep := w.guild.MaintenanceBill(econ.UpkeepPerRating); upkeep > 0 {
		w.guild.Post(week, -upkeep, model.TxMaintenance, "facilities", nil)
	}
	if income := w.guild.EffectiveRating(model.FacilityTavern) * econ.TavernIncomePerRating; income > 0 {
		w.guild.Post(week, income, model.TxTavernIncome, "tavern", &economy.Link{Kind: "facility", ID: model.FacilityTavern.String()})
	}
	for i := range w.guild.Facilities {
		w.guild.Facilities[i].Decay(econ.FacilityDecayPerWeek)
	}
}

// tickLoans pays every loan taken before this week and drops the ones
// that are repaid.
func (w *World) tickLoans() {
	week := w.cal.Week
	kept := w.guild.Loans[:0]
	for _, l := range w.guild.Loans {
		if l.StartWeek >= week {
			kept = append(kept, l)
			continue
		}
		paid, repaid := l.Amortize()
		if paid > 0 {
			w.guild.Post(week, -paid, model.TxLoanPayment, "loan payment", &economy.Link{Kind: "loan", ID: l.ID})
		}
		if repaid {
			w.emit(model.Event{Type: model.EventLoanRepaid, Ref: l.ID, Amount: l.TotalOwed()})
			continue
		}
		kept = append(kept, l)
	}
	w.guild.Loans = kept
}
