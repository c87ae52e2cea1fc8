package world

import (
	"fmt"
	"sort"

	"guildsim.dev/internal/sim/dice"
	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/loot"
	"guildsim.dev/internal/sim/mission"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/progression"
)

// dueMissions returns in-progress missions due by week, oldest
// acceptance first.
func (w *World) dueMissions(week uint64) []*model.Mission {
	var out []*model.Mission
	for _, m := range w.missions {
		if m.Status == model.StatusInProgress && m.DueWeek <= week {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AcceptedWeek != out[j].AcceptedWeek {
			return out[i].AcceptedWeek < out[j].AcceptedWeek
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (w *World) party(m *model.Mission) []model.Agent {
	out := make([]model.Agent, 0, len(m.Party))
	for _, id := range m.Party {
		if a := w.agents[id]; a != nil {
			out = append(out, a.Clone())
		}
	}
	return out
}

// resolveMission concludes m and applies every side effect: reward income,
// career stats, injuries and deaths, experience, loot into the vault, and
// the party's release.
func (w *World) resolveMission(m *model.Mission, src dice.Source) {
	week := w.cal.Week
	party := w.party(m)
	res := mission.Resolve(*m, party, w.tun.Settings(), w.cats, src)
	res.Loot = loot.Generate(*m, res.Outcome, w.cats, w.ids, src)
	res.ResolvedWeek = week
	if err := m.Conclude(res); err != nil {
		// Only reachable with a corrupted status; leave the mission alone.
		return
	}
	w.tally.AddOutcome(res.Outcome)

	link := &economy.Link{Kind: "mission", ID: m.ID}
	if res.Gold > 0 {
		w.guild.Post(week, res.Gold, model.TxMissionReward, m.Name, link)
	}
	w.guild.Vault = append(w.guild.Vault, res.Loot...)

	share := 0
	if len(party) > 0 {
		share = res.Gold / len(party)
	}
	perf := map[string]float64{}
	for _, p := range res.Performance {
		perf[p.AgentID] = p.Rating
	}

	for _, id := range m.Party {
		a := w.agents[id]
		if a == nil {
			continue
		}
		a.OnMission = ""
		a.Stats.MissionsAttempted++
		switch {
		case res.Outcome.IsSuccess():
			a.Stats.MissionsCompleted++
		default:
			a.Stats.MissionsFailed++
		}
		if res.Outcome == model.OutcomePerfectVictory {
			a.Stats.PerfectVictories++
		}
		a.Stats.GoldEarned += share
		if r, ok := perf[id]; ok {
			a.Stats.PerformanceSum += r
			a.Stats.PerformanceCount++
		}
	}

	for _, hit := range res.Injuries {
		a := w.agents[hit.AgentID]
		if a == nil {
			continue
		}
		if a.Wound(hit.Injury) {
			a.DiedWeek = week
			w.guild.RemoveFromRoster(a.ID)
			w.tally.Deaths++
			w.emit(model.Event{Type: model.EventAgentDied, Ref: m.ID, AgentID: a.ID, Message: fmt.Sprintf("%s fell on %s", a.Name, m.Name)})
			continue
		}
		w.emit(model.Event{Type: model.EventAgentInjured, Ref: m.ID, AgentID: a.ID, Message: fmt.Sprintf("%s %s", hit.Injury.Severity, hit.Injury.Type)})
	}

	for _, id := range m.Party {
		a := w.agents[id]
		if a == nil || a.Deceased() {
			continue
		}
		if up := progression.AwardExperience(res.Experience, a, w.cats, src); up != nil {
			w.emit(model.Event{Type: model.EventLevelUp, Ref: m.ID, AgentID: a.ID, Amount: up.NewWage, Message: fmt.Sprintf("%s -> %s", up.From, up.To)})
		}
		if a.Condition == model.ConditionHealthy {
			a.Condition = model.ConditionFatigued
		}
		w.released[a.ID] = true
	}

	lootValue := loot.TotalValue(res.Loot)
	w.resolved = append(w.resolved, ResolvedMission{
		MissionID:  m.ID,
		Name:       m.Name,
		Outcome:    res.Outcome,
		Gold:       res.Gold,
		Experience: res.Experience,
		Party:      append([]string(nil), m.Party...),
		Deaths:     append([]string(nil), res.Deaths...),
		LootValue:  lootValue,
		LootCount:  len(res.Loot),
	})
	w.emit(model.Event{Type: model.EventMissionResolved, Ref: m.ID, Amount: res.Gold, Message: res.Outcome.String()})
	if len(res.Loot) > 0 {
		w.emit(model.Event{Type: model.EventLootFound, Ref: m.ID, Amount: lootValue, Message: fmt.Sprintf("%d items", len(res.Loot))})
	}
}
