package model

type MissionType int

const (
	MissionCombat MissionType = iota
	MissionMonsterHunt
	MissionEscort
	MissionDefense
	MissionExploration
	MissionRetrieval
	MissionInvestigation
	MissionDiplomacy
)

var missionTypeNames = []string{
	"combat", "monster_hunt", "escort", "defense",
	"exploration", "retrieval", "investigation", "diplomacy",
}

func AllMissionTypes() []MissionType {
	return []MissionType{
		MissionCombat, MissionMonsterHunt, MissionEscort, MissionDefense,
		MissionExploration, MissionRetrieval, MissionInvestigation, MissionDiplomacy,
	}
}

func (t MissionType) String() string { return tagOf(missionTypeNames, int(t)) }
func (t MissionType) Valid() bool    { return validTag(missionTypeNames, int(t)) }

func (t MissionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *MissionType) UnmarshalText(b []byte) error {
	i, err := parseTag("mission type", missionTypeNames, string(b))
	if err != nil {
		return err
	}
	*t = MissionType(i)
	return nil
}

func ParseMissionType(s string) (MissionType, error) {
	var t MissionType
	err := t.UnmarshalText([]byte(s))
	return t, err
}

func (t MissionType) IsCombat() bool {
	switch t {
	case MissionCombat, MissionMonsterHunt, MissionEscort, MissionDefense:
		return true
	case MissionExploration, MissionRetrieval, MissionInvestigation, MissionDiplomacy:
		return false
	default:
		return false
	}
}

// Stakes is the ordered risk/reward tier of a mission.
type Stakes int

const (
	StakesLow Stakes = iota
	StakesMedium
	StakesHigh
	StakesCritical
)

var stakesNames = []string{"low", "medium", "high", "critical"}

func AllStakes() []Stakes { return []Stakes{StakesLow, StakesMedium, StakesHigh, StakesCritical} }

func (s Stakes) String() string { return tagOf(stakesNames, int(s)) }
func (s Stakes) Valid() bool    { return validTag(stakesNames, int(s)) }

func (s Stakes) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stakes) UnmarshalText(b []byte) error {
	i, err := parseTag("stakes", stakesNames, string(b))
	if err != nil {
		return err
	}
	*s = Stakes(i)
	return nil
}

func ParseStakes(s string) (Stakes, error) {
	var st Stakes
	err := st.UnmarshalText([]byte(s))
	return st, err
}

func (s Stakes) BaseDifficulty() float64 {
	switch s {
	case StakesLow:
		return 30
	case StakesMedium:
		return 50
	case StakesHigh:
		return 75
	case StakesCritical:
		return 100
	default:
		return 0
	}
}

func (s Stakes) RiskMultiplier() float64 {
	switch s {
	case StakesLow:
		return 0.1
	case StakesMedium:
		return 0.2
	case StakesHigh:
		return 0.3
	case StakesCritical:
		return 0.4
	default:
		return 0
	}
}

func (s Stakes) RewardMultiplier() float64 {
	switch s {
	case StakesLow:
		return 1.0
	case StakesMedium:
		return 1.5
	case StakesHigh:
		return 2.5
	case StakesCritical:
		return 4.0
	default:
		return 0
	}
}

// MissionStatus is the six-state mission lifecycle.
type MissionStatus int

const (
	StatusLocked MissionStatus = iota
	StatusAvailable
	StatusInProgress
	StatusCompleted
	StatusPartialSuccess
	StatusFailed
)

var missionStatusNames = []string{"locked", "available", "in_progress", "completed", "partial_success", "failed"}

func (s MissionStatus) String() string { return tagOf(missionStatusNames, int(s)) }
func (s MissionStatus) Valid() bool    { return validTag(missionStatusNames, int(s)) }

func (s MissionStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *MissionStatus) UnmarshalText(b []byte) error {
	i, err := parseTag("mission status", missionStatusNames, string(b))
	if err != nil {
		return err
	}
	*s = MissionStatus(i)
	return nil
}

// Concluded reports whether the status is one of the three terminal states.
func (s MissionStatus) Concluded() bool {
	switch s {
	case StatusCompleted, StatusPartialSuccess, StatusFailed:
		return true
	case StatusLocked, StatusAvailable, StatusInProgress:
		return false
	default:
		return false
	}
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to MissionStatus) bool {
	switch from {
	case StatusLocked:
		return to == StatusAvailable
	case StatusAvailable:
		return to == StatusInProgress
	case StatusInProgress:
		return to.Concluded()
	case StatusCompleted, StatusPartialSuccess, StatusFailed:
		return false
	default:
		return false
	}
}

// Outcome is ordered worst to best.
type Outcome int

const (
	OutcomeCatastrophicFailure Outcome = iota
	OutcomeFailure
	OutcomePartialSuccess
	OutcomeSuccess
	OutcomePerfectVictory
)

var outcomeNames = []string{"catastrophic_failure", "failure", "partial_success", "success", "perfect_victory"}

func AllOutcomes() []Outcome {
	return []Outcome{
		OutcomeCatastrophicFailure, OutcomeFailure, OutcomePartialSuccess, OutcomeSuccess, OutcomePerfectVictory,
	}
}

func (o Outcome) String() string { return tagOf(outcomeNames, int(o)) }
func (o Outcome) Valid() bool    { return validTag(outcomeNames, int(o)) }

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	i, err := parseTag("outcome", outcomeNames, string(b))
	if err != nil {
		return err
	}
	*o = Outcome(i)
	return nil
}

// IsSuccess covers partial success and better.
func (o Outcome) IsSuccess() bool { return o >= OutcomePartialSuccess && o <= OutcomePerfectVictory }

func (o Outcome) RewardMultiplier() float64 {
	switch o {
	case OutcomeCatastrophicFailure, OutcomeFailure:
		return 0
	case OutcomePartialSuccess:
		return 0.5
	case OutcomeSuccess:
		return 1.0
	case OutcomePerfectVictory:
		return 1.5
	default:
		return 0
	}
}

func (o Outcome) PerformanceBase() float64 {
	switch o {
	case OutcomeCatastrophicFailure:
		return 1
	case OutcomeFailure:
		return 3
	case OutcomePartialSuccess:
		return 5
	case OutcomeSuccess:
		return 7
	case OutcomePerfectVictory:
		return 9
	default:
		return 1
	}
}

// InjuryBase is the per-agent injury chance before stakes and difficulty.
func (o Outcome) InjuryBase() float64 {
	switch o {
	case OutcomePerfectVictory:
		return 0.02
	case OutcomeSuccess:
		return 0.05
	case OutcomePartialSuccess:
		return 0.15
	case OutcomeFailure:
		return 0.35
	case OutcomeCatastrophicFailure:
		return 0.60
	default:
		return 0
	}
}

// Status is the mission status an outcome concludes into.
func (o Outcome) Status() MissionStatus {
	switch o {
	case OutcomePerfectVictory, OutcomeSuccess:
		return StatusCompleted
	case OutcomePartialSuccess:
		return StatusPartialSuccess
	case OutcomeFailure, OutcomeCatastrophicFailure:
		return StatusFailed
	default:
		return StatusFailed
	}
}

// Difficulty is the single global balance setting.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
	DifficultyBrutal
)

var difficultyNames = []string{"easy", "normal", "hard", "brutal"}

func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyBrutal}
}

func (d Difficulty) String() string { return tagOf(difficultyNames, int(d)) }
func (d Difficulty) Valid() bool    { return validTag(difficultyNames, int(d)) }

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
	i, err := parseTag("difficulty", difficultyNames, string(b))
	if err != nil {
		return err
	}
	*d = Difficulty(i)
	return nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	var d Difficulty
	err := d.UnmarshalText([]byte(s))
	return d, err
}

// DifficultySettings are the multipliers a Difficulty resolves to.
type DifficultySettings struct {
	EnemyStrength float64 `json:"enemy_strength" yaml:"enemy_strength"`
	Reward        float64 `json:"reward" yaml:"reward"`
	InjuryRate    float64 `json:"injury_rate" yaml:"injury_rate"`
}

// Settings returns the built-in multipliers. Tuning files may override them.
func (d Difficulty) Settings() DifficultySettings {
	switch d {
	case DifficultyEasy:
		return DifficultySettings{EnemyStrength: 0.8, Reward: 1.25, InjuryRate: 0.5}
	case DifficultyNormal:
		return DifficultySettings{EnemyStrength: 1.0, Reward: 1.0, InjuryRate: 1.0}
	case DifficultyHard:
		return DifficultySettings{EnemyStrength: 1.25, Reward: 0.9, InjuryRate: 1.25}
	case DifficultyBrutal:
		return DifficultySettings{EnemyStrength: 1.5, Reward: 0.8, InjuryRate: 1.5}
	default:
		return DifficultySettings{EnemyStrength: 1.0, Reward: 1.0, InjuryRate: 1.0}
	}
}
