package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
)

func newTestWorld(t *testing.T, seed int64) *World {
	t.Helper()
	return newTestWorldWith(t, seed, tuning.Defaults())
}

func newTestWorldWith(t *testing.T, seed int64, tun tuning.Tuning) *World {
	t.Helper()
	w, err := New(WorldConfig{ID: "test", Seed: seed, Tuning: tun}, catalogs.MustDefault())
	require.NoError(t, err)
	return w
}

// postMission puts a hand-built low-stakes mission on the board.
func postMission(w *World, id string, duration int) *model.Mission {
	m := &model.Mission{
		ID:               id,
		Name:             "Clear the Cellar",
		Type:             model.MissionCombat,
		Stakes:           model.StakesLow,
		RecommendedLevel: model.LevelApprentice,
		Status:           model.StatusAvailable,
		MinParty:         1,
		MaxParty:         3,
		BaseGold:         100,
		BaseExperience:   50,
		DurationWeeks:    duration,
		PostedWeek:       w.cal.Week,
	}
	w.missions[id] = m
	return m
}

// autoCommands staffs the first available mission it can with available
// roster members. Two worlds in the same state produce the same commands.
func autoCommands(w *World) []Command {
	var free []string
	for _, a := range w.Roster() {
		if a.Available() {
			free = append(free, a.ID)
		}
	}
	for _, m := range w.Missions(model.StatusAvailable) {
		if len(free) < m.MinParty {
			continue
		}
		n := m.MaxParty
		if n > len(free) {
			n = len(free)
		}
		return []Command{{Type: CmdAcceptMission, ID: m.ID, Party: free[:n]}}
	}
	return nil
}

func countCategory(w *World, cat model.TxCategory) (n, sum int) {
	for _, tx := range w.guild.Ledger.Transactions() {
		if tx.Category == cat {
			n++
			sum += tx.Amount
		}
	}
	return n, sum
}

func hasEvent(rep WeekReport, typ string) bool {
	for _, e := range rep.Events {
		if e.Type == typ {
			return true
		}
	}
	return false
}
