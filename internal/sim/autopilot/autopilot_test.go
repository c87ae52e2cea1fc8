package autopilot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildsim.dev/internal/sim/catalogs"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/world"
)

func newWorld(t *testing.T, seed int64) *world.World {
	t.Helper()
	w, err := world.New(world.WorldConfig{ID: "autopilot", Seed: seed}, catalogs.MustDefault())
	require.NoError(t, err)
	return w
}

func countType(cmds []world.Command, typ string) int {
	n := 0
	for _, c := range cmds {
		if c.Type == typ {
			n++
		}
	}
	return n
}

func TestPlan_IsDeterministic(t *testing.T) {
	w := newWorld(t, 3)
	p := Default()
	assert.Equal(t, p.Plan(w), p.Plan(w))
}

func TestPlan_AcceptsWhenOddsAllow(t *testing.T) {
	w := newWorld(t, 4)
	p := Default()
	p.MinSuccess = 0
	cmds := p.Plan(w)
	require.Positive(t, countType(cmds, world.CmdAcceptMission))

	seen := map[string]bool{}
	for _, c := range cmds {
		if c.Type != world.CmdAcceptMission {
			continue
		}
		for _, id := range c.Party {
			assert.False(t, seen[id], "agent %s sent twice", id)
			seen[id] = true
		}
	}
}

func TestPlan_RefusesHopelessOdds(t *testing.T) {
	w := newWorld(t, 5)
	p := Default()
	p.MinSuccess = 0.99
	assert.Zero(t, countType(p.Plan(w), world.CmdAcceptMission))
}

func TestPlan_CommandsAreAccepted(t *testing.T) {
	w := newWorld(t, 6)
	p := Default()
	for i := 0; i < 40 && !w.Dismissed(); i++ {
		rep := w.StepWeek(p.Plan(w))
		for _, c := range rep.Commands {
			require.True(t, c.Result.OK, "week %d: %s rejected with %s (%s)", rep.Week, c.Command.Type, c.Result.Code, c.Result.Message)
		}
	}
}

func TestPlan_TakesLoanWhenBroke(t *testing.T) {
	w := newWorld(t, 7)
	w.Guild().Finances.Treasury = 50
	cmds := Default().Plan(w)
	require.NotEmpty(t, cmds)
	assert.Equal(t, world.CmdTakeLoan, cmds[0].Type)
	assert.Zero(t, countType(cmds, world.CmdHire))
	assert.Zero(t, countType(cmds, world.CmdUpgradeFacility))
}

func TestPlan_DismissedGuildDoesNothing(t *testing.T) {
	w := newWorld(t, 8)
	w.Guild().Council.Dismissed = true
	assert.Empty(t, Default().Plan(w))
}

func TestPlan_UpgradesTavernBeforeRecurringCosts(t *testing.T) {
	w := newWorld(t, 9)
	require.Negative(t, w.FinancialSummary().ProjectedNet)

	cmds := Default().Plan(w)
	assert.Zero(t, countType(cmds, world.CmdHire))
	assert.Zero(t, countType(cmds, world.CmdHireStaff))
	require.Equal(t, 1, countType(cmds, world.CmdUpgradeFacility))
	for _, c := range cmds {
		if c.Type == world.CmdUpgradeFacility {
			assert.Equal(t, model.FacilityTavern.String(), c.Facility)
		}
	}
}

func TestPlan_KeepsTreasuryFloor(t *testing.T) {
	w := newWorld(t, 10)
	p := Default()
	w.Guild().Finances.Treasury = p.Floor + 100
	cmds := p.Plan(w)
	assert.Zero(t, countType(cmds, world.CmdUpgradeFacility))
	assert.Zero(t, countType(cmds, world.CmdHireStaff))
}

func TestDefaultPolicy_SurvivesFirstSeason(t *testing.T) {
	p := Default()
	for _, seed := range []int64{1, 2, 3, 4} {
		w := newWorld(t, seed)
		var rep world.WeekReport
		for !w.Dismissed() && w.CurrentWeek() <= 48 {
			rep = w.StepWeek(p.Plan(w))
		}
		require.False(t, w.Dismissed(), "seed %d dismissed at week %d (treasury %d)", seed, rep.Week, rep.Treasury)
		assert.True(t, rep.SeasonEnded, "seed %d", seed)
		assert.Equal(t, uint64(49), w.CurrentWeek(), "seed %d", seed)
	}
}
