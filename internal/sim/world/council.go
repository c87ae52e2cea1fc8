package world

import (
	"fmt"

	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
)

// tickCouncil applies the week's confidence delta and the consequences of
// the resulting band. monthEnd is true when this week closes a month.
func (w *World) tickCouncil(monthEnd bool) {
	c := &w.guild.Council
	week := w.cal.Week
	band := c.ApplyDelta(w.tally.Delta())

	if c.Ultimatum != nil {
		switch {
		case c.UltimatumMet():
			w.emit(model.Event{Type: model.EventUltimatumMet, Amount: c.Confidence})
			c.Ultimatum = nil
		case c.UltimatumExpired(week):
			c.Dismissed = true
			w.emit(model.Event{Type: model.EventDismissed, Amount: c.Confidence, Message: "the council has lost patience"})
			return
		}
	}

	switch band {
	case model.BandSecure:
		if monthEnd && w.tun.Economy.PatronGrant > 0 {
			grant := w.tun.Economy.PatronGrant
			w.guild.Post(week, grant, model.TxPatronGrant, "patron grant", &economy.Link{Kind: "council"})
			w.guild.Finances.SeasonBudget += grant
			w.emit(model.Event{Type: model.EventPatronGrant, Amount: grant})
		}
	case model.BandStable:
	case model.BandConcerning:
		w.emit(model.Event{Type: model.EventCouncilWarning, Amount: c.Confidence, Message: "the patrons are concerned"})
	case model.BandCritical, model.BandFailing:
		if c.Ultimatum == nil {
			u := c.Issue(week, w.tun.Council.UltimatumWeeks, w.tun.Council.UltimatumRequired)
			w.emit(model.Event{Type: model.EventUltimatumIssued, Amount: u.Required, Message: fmt.Sprintf("reach %d confidence by week %d", u.Required, u.DeadlineWeek)})
		}
	}
}
