package model

import "fmt"

// Mission is one posting on the board.
type Mission struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Type             MissionType   `json:"type"`
	Stakes           Stakes        `json:"stakes"`
	RecommendedLevel Level         `json:"recommended_level"`
	Status           MissionStatus `json:"status"`

	MinParty int `json:"min_party"`
	MaxParty int `json:"max_party"`

	BaseGold       int `json:"base_gold"`
	BaseExperience int `json:"base_experience"`
	DurationWeeks  int `json:"duration_weeks"`

	PostedWeek   uint64 `json:"posted_week"`
	AcceptedWeek uint64 `json:"accepted_week,omitempty"`
	DueWeek      uint64 `json:"due_week,omitempty"`

	Party  []string       `json:"party,omitempty"`
	Result *MissionResult `json:"result,omitempty"`
}

// AgentInjury ties an injury roll to the party member it hit.
type AgentInjury struct {
	AgentID string `json:"agent_id"`
	Injury  Injury `json:"injury"`
}

type AgentPerformance struct {
	AgentID string  `json:"agent_id"`
	Rating  float64 `json:"rating"`
}

// MissionResult is written exactly once, when the mission concludes.
type MissionResult struct {
	Outcome            Outcome            `json:"outcome"`
	SuccessProbability float64            `json:"success_probability"`
	Roll               float64            `json:"roll"`
	PartyPower         float64            `json:"party_power"`
	Difficulty         float64            `json:"difficulty"`
	Gold               int                `json:"gold"`
	Experience         int                `json:"experience"`
	Injuries           []AgentInjury      `json:"injuries,omitempty"`
	Deaths             []string           `json:"deaths,omitempty"`
	Performance        []AgentPerformance `json:"performance,omitempty"`
	Loot               []Item             `json:"loot,omitempty"`
	ResolvedWeek       uint64             `json:"resolved_week"`
}

// Transition moves the mission along its lifecycle. Concluding states are
// reachable only through Conclude.
func (m *Mission) Transition(to MissionStatus) error {
	if to.Concluded() {
		return fmt.Errorf("mission %s: use Conclude to enter %s", m.ID, to)
	}
	if !CanTransition(m.Status, to) {
		return fmt.Errorf("mission %s: illegal transition %s -> %s", m.ID, m.Status, to)
	}
	m.Status = to
	return nil
}

// Conclude records the result and moves the mission into the matching
// terminal status.
func (m *Mission) Conclude(r MissionResult) error {
	if m.Result != nil {
		return fmt.Errorf("mission %s: already concluded", m.ID)
	}
	to := r.Outcome.Status()
	if !CanTransition(m.Status, to) {
		return fmt.Errorf("mission %s: illegal transition %s -> %s", m.ID, m.Status, to)
	}
	m.Status = to
	m.Result = &r
	return nil
}

// Consistent checks the result/status pairing.
func (m *Mission) Consistent() bool {
	return (m.Result != nil) == m.Status.Concluded()
}

func (m *Mission) HasMember(agentID string) bool {
	for _, id := range m.Party {
		if id == agentID {
			return true
		}
	}
	return false
}

func (m *Mission) Clone() Mission {
	out := *m
	if m.Party != nil {
		out.Party = append([]string(nil), m.Party...)
	}
	if m.Result != nil {
		r := *m.Result
		r.Injuries = append([]AgentInjury(nil), m.Result.Injuries...)
		r.Deaths = append([]string(nil), m.Result.Deaths...)
		r.Performance = append([]AgentPerformance(nil), m.Result.Performance...)
		r.Loot = append([]Item(nil), m.Result.Loot...)
		out.Result = &r
	}
	return out
}
