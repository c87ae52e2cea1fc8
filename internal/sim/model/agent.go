package model

type Injury struct {
	Type           InjuryType `json:"type"`
	Severity       Severity   `json:"severity"`
	WeeksRemaining int        `json:"weeks_remaining"`
}

// Stats are cumulative career counters. They only grow.
type Stats struct {
	MissionsAttempted int     `json:"missions_attempted"`
	MissionsCompleted int     `json:"missions_completed"`
	MissionsFailed    int     `json:"missions_failed"`
	PerfectVictories  int     `json:"perfect_victories"`
	InjuriesSustained int     `json:"injuries_sustained"`
	GoldEarned        int     `json:"gold_earned"`
	ExperienceEarned  int     `json:"experience_earned"`
	PerformanceSum    float64 `json:"performance_sum"`
	PerformanceCount  int     `json:"performance_count"`
}

func (s Stats) AveragePerformance() float64 {
	if s.PerformanceCount == 0 {
		return 0
	}
	return s.PerformanceSum / float64(s.PerformanceCount)
}

// Agent is an adventurer. Records are never removed; a deceased agent stays
// for history.
type Agent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Race  Race   `json:"race"`
	Class Class  `json:"class"`
	Level Level  `json:"level"`

	Attributes Attributes `json:"attributes"`
	Condition  Condition  `json:"condition"`
	Injuries   []Injury   `json:"injuries,omitempty"`
	Stats      Stats      `json:"stats"`

	Wage               int `json:"wage"`
	Experience         int `json:"experience"`
	LifetimeExperience int `json:"lifetime_experience"`

	// OnMission holds the mission ID while the agent is deployed.
	OnMission string `json:"on_mission,omitempty"`
	HiredWeek uint64 `json:"hired_week,omitempty"`
	DiedWeek  uint64 `json:"died_week,omitempty"`
}

func (a *Agent) FitForDuty() bool { return a.Condition == ConditionHealthy }

func (a *Agent) Deceased() bool { return a.Condition == ConditionDeceased }

// Available reports whether the agent may join a new party.
func (a *Agent) Available() bool {
	return a.OnMission == "" && a.Condition != ConditionDeceased && a.Condition != ConditionInjured
}

// Wound applies an injury. Mortal injuries kill and return true.
func (a *Agent) Wound(inj Injury) (died bool) {
	if a.Deceased() {
		return false
	}
	a.Stats.InjuriesSustained++
	if inj.Severity == SeverityMortal {
		a.Condition = ConditionDeceased
		a.Injuries = nil
		return true
	}
	if inj.WeeksRemaining <= 0 {
		inj.WeeksRemaining = inj.Severity.RecoveryWeeks()
	}
	a.Injuries = append(a.Injuries, inj)
	a.Condition = conditionFromInjuries(a.Injuries)
	return false
}

// Recover ticks injury timers down by weeks. Fatigue always clears. It
// reports whether the agent became healthy during this call.
func (a *Agent) Recover(weeks int) (healed bool) {
	if a.Deceased() {
		return false
	}
	before := a.Condition
	if weeks > 0 && len(a.Injuries) > 0 {
		kept := a.Injuries[:0]
		for _, inj := range a.Injuries {
			inj.WeeksRemaining -= weeks
			if inj.WeeksRemaining > 0 {
				kept = append(kept, inj)
			}
		}
		if len(kept) == 0 {
			a.Injuries = nil
		} else {
			a.Injuries = kept
		}
	}
	a.Condition = conditionFromInjuries(a.Injuries)
	return before != ConditionHealthy && a.Condition == ConditionHealthy
}

func conditionFromInjuries(injuries []Injury) Condition {
	if len(injuries) == 0 {
		return ConditionHealthy
	}
	for _, inj := range injuries {
		if inj.Type != InjuryCurse {
			return ConditionInjured
		}
	}
	return ConditionCursed
}

func (a *Agent) Clone() Agent {
	out := *a
	if a.Injuries != nil {
		out.Injuries = append([]Injury(nil), a.Injuries...)
	}
	return out
}
