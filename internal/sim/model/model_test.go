package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_SetClamps(t *testing.T) {
	var attrs Attributes
	for _, a := range AllAttributes() {
		attrs.Set(a, 999)
		assert.Equal(t, AttrMax, attrs.Get(a), a.String())
		attrs.Set(a, -50)
		assert.Equal(t, AttrMin, attrs.Get(a), a.String())
	}
	attrs.Set(AttrStrength, 19)
	attrs.Add(AttrStrength, 5)
	assert.Equal(t, 20, attrs.Get(AttrStrength))
}

func TestAttributes_ZeroValueReadsInRange(t *testing.T) {
	var attrs Attributes
	assert.Equal(t, AttrMin, attrs.Get(AttrLore))
	assert.InDelta(t, 1.0, attrs.Average(), 1e-9)
}

func TestAttributes_CountAndNames(t *testing.T) {
	require.Equal(t, 60, int(AttributeCount))
	require.Len(t, attributeNames, int(AttributeCount))
	seen := map[string]bool{}
	for _, n := range attributeNames {
		require.False(t, seen[n], "duplicate attribute %q", n)
		seen[n] = true
	}
}

func TestAttributes_JSONUsesNames(t *testing.T) {
	attrs := NewAttributes(10)
	attrs.Set(AttrDualWielding, 17)
	b, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"dual_wielding":17`)

	var back Attributes
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, attrs, back)

	require.Error(t, json.Unmarshal([]byte(`{"flying":3}`), &back))
}

func TestTags_RoundTripAsStrings(t *testing.T) {
	type doc struct {
		Race    Race         `json:"race"`
		Class   Class        `json:"class"`
		Level   Level        `json:"level"`
		Type    MissionType  `json:"type"`
		Stakes  Stakes       `json:"stakes"`
		Outcome Outcome      `json:"outcome"`
		Tier    LootTier     `json:"tier"`
		Fac     FacilityKind `json:"fac"`
	}
	in := doc{RaceHalfling, ClassPaladin, LevelGrandmaster, MissionMonsterHunt, StakesCritical, OutcomePartialSuccess, TierHoard, FacilityTrainingGrounds}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"race":"halfling","class":"paladin","level":"grandmaster","type":"monster_hunt","stakes":"critical","outcome":"partial_success","tier":"hoard","fac":"training_grounds"}`, string(b))

	var out doc
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	_, err = ParseStakes("extreme")
	assert.Error(t, err)
}

func TestLevel_TablesAreMonotonic(t *testing.T) {
	levels := AllLevels()
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Power(), levels[i-1].Power())
		assert.Greater(t, levels[i].BaseWage(), levels[i-1].BaseWage())
	}
	assert.InDelta(t, 0.6, LevelApprentice.Power(), 1e-9)
	assert.InDelta(t, 5.5, LevelLegendary.Power(), 1e-9)
	_, ok := LevelLegendary.Threshold()
	assert.False(t, ok)
	_, ok = LevelLegendary.Next()
	assert.False(t, ok)
}

func TestSeverity_WeightsSumTo100(t *testing.T) {
	sum := 0
	for _, s := range AllSeverities() {
		sum += s.Weight()
	}
	assert.Equal(t, 100, sum)
}

func TestMission_LifecycleAndResult(t *testing.T) {
	m := Mission{ID: "m1", Status: StatusLocked}
	require.True(t, m.Consistent())

	require.Error(t, m.Transition(StatusInProgress))
	require.NoError(t, m.Transition(StatusAvailable))
	require.NoError(t, m.Transition(StatusInProgress))
	require.Error(t, m.Transition(StatusCompleted), "terminal states are entered via Conclude")

	require.NoError(t, m.Conclude(MissionResult{Outcome: OutcomePartialSuccess}))
	assert.Equal(t, StatusPartialSuccess, m.Status)
	assert.True(t, m.Consistent())

	require.Error(t, m.Conclude(MissionResult{Outcome: OutcomeSuccess}), "result is written once")
	assert.Equal(t, OutcomePartialSuccess, m.Result.Outcome)
}

func TestOutcome_StatusMapping(t *testing.T) {
	assert.Equal(t, StatusCompleted, OutcomePerfectVictory.Status())
	assert.Equal(t, StatusCompleted, OutcomeSuccess.Status())
	assert.Equal(t, StatusPartialSuccess, OutcomePartialSuccess.Status())
	assert.Equal(t, StatusFailed, OutcomeFailure.Status())
	assert.Equal(t, StatusFailed, OutcomeCatastrophicFailure.Status())
	assert.True(t, OutcomePartialSuccess.IsSuccess())
	assert.False(t, OutcomeFailure.IsSuccess())
}

func TestAgent_WoundAndRecover(t *testing.T) {
	a := Agent{ID: "a1", Condition: ConditionHealthy}
	died := a.Wound(Injury{Type: InjuryFracture, Severity: SeverityModerate})
	require.False(t, died)
	assert.Equal(t, ConditionInjured, a.Condition)
	assert.Equal(t, 3, a.Injuries[0].WeeksRemaining)
	assert.False(t, a.Available())

	assert.False(t, a.Recover(2))
	assert.True(t, a.Recover(1))
	assert.Equal(t, ConditionHealthy, a.Condition)
	assert.Empty(t, a.Injuries)

	a.Wound(Injury{Type: InjuryCurse, Severity: SeverityMinor})
	assert.Equal(t, ConditionCursed, a.Condition)
	assert.True(t, a.Available())

	require.True(t, a.Wound(Injury{Type: InjuryWound, Severity: SeverityMortal}))
	assert.True(t, a.Deceased())
	assert.False(t, a.Recover(10))
	assert.Equal(t, 3, a.Stats.InjuriesSustained)
}

func TestReject_SanitizesUnknownCodes(t *testing.T) {
	r := Reject("E_WHATEVER", "")
	assert.Equal(t, ErrInternal, r.Code)
	assert.False(t, r.OK)
	assert.Equal(t, ErrRosterFull, Reject(ErrRosterFull, "full").Code)
}

func TestCalendar_Advance(t *testing.T) {
	c := NewCalendar()
	require.True(t, c.Valid())
	months, seasons := 0, 0
	for i := 0; i < 48; i++ {
		m, s := c.Advance()
		if m {
			months++
		}
		if s {
			seasons++
			assert.Equal(t, uint64(49), c.Week)
		}
		require.True(t, c.Valid(), c.String())
	}
	assert.Equal(t, 12, months)
	assert.Equal(t, 1, seasons)
	assert.Equal(t, 2, c.Season)
	assert.Equal(t, 1, c.Month)
	assert.Equal(t, 1, c.WeekOfMonth)
}
