package economy

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildsim.dev/internal/sim/model"
)

func TestLedger_NetEqualsIncomeMinusExpenses(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	l := NewLedger()
	cats := model.AllTxCategories()
	for i := 0; i < 500; i++ {
		amount := rng.Intn(2001) - 1000
		l.Record(uint64(i/10), amount, cats[rng.Intn(len(cats))], "", nil)
		require.Equal(t, l.TotalIncome()-l.TotalExpenses(), l.NetBalance())
	}
	sum := 0
	for _, v := range l.ByCategory() {
		sum += v
	}
	assert.Equal(t, l.NetBalance(), sum)
	assert.Equal(t, 500, l.Len())
}

func TestLedger_TransactionsIsACopy(t *testing.T) {
	l := NewLedger()
	l.Record(1, 100, model.TxTavernIncome, "tavern", &Link{Kind: "facility", ID: "tavern"})
	txs := l.Transactions()
	txs[0].Amount = -999
	txs[0].Link.ID = "mutated"
	assert.Equal(t, 100, l.Transactions()[0].Amount)
	assert.Equal(t, 100, l.NetBalance())
}

func TestLedger_ForWeekAndSince(t *testing.T) {
	l := NewLedger()
	l.Record(1, 10, model.TxTavernIncome, "", nil)
	l.Record(2, -4, model.TxWages, "", nil)
	l.Record(2, -3, model.TxMaintenance, "", nil)
	assert.Len(t, l.ForWeek(2), 2)
	assert.Equal(t, -7, l.WeekNet(2))
	since := l.Since(1)
	require.Len(t, since, 2)
	assert.Equal(t, uint64(2), since[0].Seq)
	assert.Nil(t, l.Since(3))
}

func TestLedger_JSONRoundTripAndValidation(t *testing.T) {
	l := NewLedger()
	l.Record(1, 10, model.TxPatronGrant, "grant", nil)
	l.Record(3, -5, model.TxLoanPayment, "", &Link{Kind: "loan", ID: "loan_x"})
	b, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"category":"loan_payment"`)

	var back Ledger
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, l.Transactions(), back.Transactions())

	require.Error(t, json.Unmarshal([]byte(`[{"seq":2,"week":1,"amount":1,"category":"wages"}]`), &back))
}

func TestLoan_TerminatesInCeilSteps(t *testing.T) {
	cases := []struct {
		principal int
		rate      float64
		weeks     int
	}{
		{1000, 0.1, 10}, {1000, 0.1, 7}, {999, 0.15, 13}, {1, 0, 5}, {5000, 0.25, 52}, {333, 0.1, 1},
	}
	for _, c := range cases {
		l, err := NewLoan("loan_1", c.principal, c.rate, 0, c.weeks)
		require.NoError(t, err)
		owed := l.TotalOwed()
		want := (owed + l.WeeklyPayment - 1) / l.WeeklyPayment
		assert.Equal(t, want, l.PaymentsRemaining())

		steps, paidTotal := 0, 0
		prev := l.RemainingBalance
		for !l.Repaid() {
			paid, _ := l.Amortize()
			require.Greater(t, paid, 0)
			require.Less(t, l.RemainingBalance, prev, "balance only decreases")
			prev = l.RemainingBalance
			paidTotal += paid
			steps++
			require.LessOrEqual(t, steps, want)
		}
		assert.Equal(t, want, steps, "principal=%d rate=%v weeks=%d", c.principal, c.rate, c.weeks)
		assert.Equal(t, owed, paidTotal)
		assert.LessOrEqual(t, steps, c.weeks)
	}
}

func TestLoan_Arithmetic(t *testing.T) {
	assert.Equal(t, 1100, TotalOwed(1000, 0.1))
	assert.Equal(t, 1149, TotalOwed(999, 0.15))
	l, err := NewLoan("loan_1", 1000, 0.1, 4, 8)
	require.NoError(t, err)
	assert.Equal(t, 138, l.WeeklyPayment)

	_, err = NewLoan("x", 0, 0.1, 0, 4)
	assert.ErrorIs(t, err, ErrBadPrincipal)
	_, err = NewLoan("x", 100, 0.1, 0, 0)
	assert.ErrorIs(t, err, ErrBadDuration)
	_, err = NewLoan("x", 100, -1, 0, 4)
	assert.ErrorIs(t, err, ErrBadRate)
}

func TestBand_Thresholds(t *testing.T) {
	cases := map[int]model.ConfidenceBand{
		0: model.BandFailing, 19: model.BandFailing, 20: model.BandCritical, 39: model.BandCritical,
		40: model.BandConcerning, 59: model.BandConcerning, 60: model.BandStable, 79: model.BandStable,
		80: model.BandSecure, 100: model.BandSecure,
	}
	for v, want := range cases {
		assert.Equal(t, want, Band(v), "confidence %d", v)
	}
}

func TestCouncil_ApplyDeltaClamps(t *testing.T) {
	c := Council{Confidence: 95}
	assert.Equal(t, model.BandSecure, c.ApplyDelta(20))
	assert.Equal(t, 100, c.Confidence)
	assert.Equal(t, model.BandFailing, c.ApplyDelta(-500))
	assert.Equal(t, 0, c.Confidence)
}

func TestCouncil_Ultimatum(t *testing.T) {
	c := Council{Confidence: 30}
	u := c.Issue(10, 8, 40)
	assert.Equal(t, uint64(18), u.DeadlineWeek)
	assert.False(t, c.UltimatumMet())
	assert.False(t, c.UltimatumExpired(17))
	assert.True(t, c.UltimatumExpired(18))
	c.ApplyDelta(10)
	assert.True(t, c.UltimatumMet())
	assert.False(t, c.UltimatumExpired(30))
}

func TestWeekTally_Delta(t *testing.T) {
	var w WeekTally
	w.AddOutcome(model.OutcomePerfectVictory)
	w.AddOutcome(model.OutcomeCatastrophicFailure)
	w.Deaths = 1
	w.NetPositive = true
	assert.Equal(t, 5-8-2+1, w.Delta())
}

func TestFacility_EffectiveRatingAndUpgrade(t *testing.T) {
	assert.Equal(t, 5, EffectiveRating(5, 100))
	assert.Equal(t, 5, EffectiveRating(5, 76))
	assert.Equal(t, 4, EffectiveRating(5, 75))
	assert.Equal(t, 1, EffectiveRating(2, 0))
	assert.Equal(t, 1, EffectiveRating(1, 0))

	f := Facility{Kind: model.FacilityTavern, Rating: 6, Condition: 40}
	require.True(t, f.Upgrade())
	assert.Equal(t, 7, f.Rating)
	assert.Equal(t, 100, f.Condition)
	assert.False(t, f.Upgrade())
	f.Decay(150)
	assert.Equal(t, 0, f.Condition)

	assert.Equal(t, 500, UpgradeCost(1, 250))
	assert.Equal(t, 6, RosterCapacity(1))
}

func TestGuild_PostKeepsTreasuryInStepWithLedger(t *testing.T) {
	g := NewGuild("gld_1", "Test", 100, 5000, 65, nil)
	g.Post(1, -250, model.TxWages, "wages", nil)
	g.Post(1, 40, model.TxTavernIncome, "tavern", nil)
	assert.Equal(t, -110, g.Finances.Treasury, "treasury is not clamped")
	assert.Equal(t, g.Finances.StartingTreasury+g.Ledger.NetBalance(), g.Finances.Treasury)
	assert.Equal(t, 40, g.Finances.SeasonIncome)
	assert.Equal(t, 250, g.Finances.SeasonExpenses)

	g.ResetSeason(6000)
	assert.Zero(t, g.Finances.SeasonIncome)
	assert.Equal(t, 6000, g.Finances.SeasonBudget)
}

func TestGuild_Roster(t *testing.T) {
	g := NewGuild("gld_1", "Test", 0, 0, 65, nil)
	assert.Equal(t, 6, g.RosterCapacity())
	g.AddToRoster("a")
	g.AddToRoster("a")
	g.AddToRoster("b")
	assert.Equal(t, []string{"a", "b"}, g.Roster)
	assert.True(t, g.RemoveFromRoster("a"))
	assert.False(t, g.RemoveFromRoster("a"))

	g.Facility(model.FacilityBarracks).Rating = 3
	assert.Equal(t, 10, g.RosterCapacity())
	g.Facility(model.FacilityBarracks).Condition = 50
	assert.Equal(t, 6, g.RosterCapacity())
}
