package economy

import "guildsim.dev/internal/sim/model"

const (
	MinConfidence = 0
	MaxConfidence = 100
)

type Patron struct {
	Name      string `json:"name"`
	Influence int    `json:"influence"`
}

type Ultimatum struct {
	IssuedWeek   uint64 `json:"issued_week"`
	DeadlineWeek uint64 `json:"deadline_week"`
	Required     int    `json:"required"`
}

// Council is the patron body. It owns only the confidence scalar and its
// ultimatum record; the world decides what each band means for the guild.
type Council struct {
	Patrons    []Patron   `json:"patrons"`
	Confidence int        `json:"confidence"`
	Ultimatum  *Ultimatum `json:"ultimatum,omitempty"`
	Dismissed  bool       `json:"dismissed,omitempty"`
}

// Band maps confidence onto the five bands.
func Band(confidence int) model.ConfidenceBand {
	switch {
	case confidence >= 80:
		return model.BandSecure
	case confidence >= 60:
		return model.BandStable
	case confidence >= 40:
		return model.BandConcerning
	case confidence >= 20:
		return model.BandCritical
	default:
		return model.BandFailing
	}
}

func (c *Council) Band() model.ConfidenceBand { return Band(c.Confidence) }

// ApplyDelta moves confidence, clamped to [0,100], and returns the new band.
func (c *Council) ApplyDelta(delta int) model.ConfidenceBand {
	v := c.Confidence + delta
	if v < MinConfidence {
		v = MinConfidence
	}
	if v > MaxConfidence {
		v = MaxConfidence
	}
	c.Confidence = v
	return Band(v)
}

// WeekTally counts what the council reacts to in one week.
type WeekTally struct {
	Perfect          int
	Successes        int
	Partials         int
	Failures         int
	Catastrophes     int
	Deaths           int
	TreasuryNegative bool
	NetPositive      bool
}

func (t *WeekTally) AddOutcome(o model.Outcome) {
	switch o {
	case model.OutcomePerfectVictory:
		t.Perfect++
	case model.OutcomeSuccess:
		t.Successes++
	case model.OutcomePartialSuccess:
		t.Partials++
	case model.OutcomeFailure:
		t.Failures++
	case model.OutcomeCatastrophicFailure:
		t.Catastrophes++
	}
}

// Delta converts a week's tally into a confidence change.
func (t WeekTally) Delta() int {
	d := 5*t.Perfect + 3*t.Successes + 1*t.Partials - 4*t.Failures - 8*t.Catastrophes - 2*t.Deaths
	if t.TreasuryNegative {
		d -= 5
	}
	if t.NetPositive {
		d++
	}
	return d
}

func (c *Council) Issue(week uint64, weeks, required int) Ultimatum {
	u := Ultimatum{IssuedWeek: week, DeadlineWeek: week + uint64(weeks), Required: required}
	c.Ultimatum = &u
	return u
}

// UltimatumMet reports whether an active ultimatum's bar is cleared.
func (c *Council) UltimatumMet() bool {
	return c.Ultimatum != nil && c.Confidence >= c.Ultimatum.Required
}

// UltimatumExpired reports an unmet ultimatum past its deadline.
func (c *Council) UltimatumExpired(week uint64) bool {
	return c.Ultimatum != nil && !c.UltimatumMet() && week >= c.Ultimatum.DeadlineWeek
}
