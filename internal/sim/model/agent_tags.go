package model

type Race int

const (
	RaceHuman Race = iota
	RaceElf
	RaceDwarf
	RaceHalfling
	RaceOrc
	RaceGnome
)

var raceNames = []string{"human", "elf", "dwarf", "halfling", "orc", "gnome"}

func AllRaces() []Race {
	return []Race{RaceHuman, RaceElf, RaceDwarf, RaceHalfling, RaceOrc, RaceGnome}
}

func (r Race) String() string { return tagOf(raceNames, int(r)) }
func (r Race) Valid() bool    { return validTag(raceNames, int(r)) }

func (r Race) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Race) UnmarshalText(b []byte) error {
	i, err := parseTag("race", raceNames, string(b))
	if err != nil {
		return err
	}
	*r = Race(i)
	return nil
}

func ParseRace(s string) (Race, error) {
	var r Race
	err := r.UnmarshalText([]byte(s))
	return r, err
}

type Class int

const (
	ClassWarrior Class = iota
	ClassRanger
	ClassMage
	ClassCleric
	ClassRogue
	ClassPaladin
	ClassBard
)

var classNames = []string{"warrior", "ranger", "mage", "cleric", "rogue", "paladin", "bard"}

func AllClasses() []Class {
	return []Class{ClassWarrior, ClassRanger, ClassMage, ClassCleric, ClassRogue, ClassPaladin, ClassBard}
}

func (c Class) String() string { return tagOf(classNames, int(c)) }
func (c Class) Valid() bool    { return validTag(classNames, int(c)) }

func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Class) UnmarshalText(b []byte) error {
	i, err := parseTag("class", classNames, string(b))
	if err != nil {
		return err
	}
	*c = Class(i)
	return nil
}

func ParseClass(s string) (Class, error) {
	var c Class
	err := c.UnmarshalText([]byte(s))
	return c, err
}

// Level is the ordered seven-rank progression ladder.
type Level int

const (
	LevelApprentice Level = iota
	LevelJourneyman
	LevelAdept
	LevelExpert
	LevelMaster
	LevelGrandmaster
	LevelLegendary
)

var levelNames = []string{"apprentice", "journeyman", "adept", "expert", "master", "grandmaster", "legendary"}

func AllLevels() []Level {
	return []Level{LevelApprentice, LevelJourneyman, LevelAdept, LevelExpert, LevelMaster, LevelGrandmaster, LevelLegendary}
}

func (l Level) String() string { return tagOf(levelNames, int(l)) }
func (l Level) Valid() bool    { return validTag(levelNames, int(l)) }

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	i, err := parseTag("level", levelNames, string(b))
	if err != nil {
		return err
	}
	*l = Level(i)
	return nil
}

func ParseLevel(s string) (Level, error) {
	var l Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// Power is the monotonic party-power coefficient for the rank.
func (l Level) Power() float64 {
	switch l {
	case LevelApprentice:
		return 0.6
	case LevelJourneyman:
		return 1.0
	case LevelAdept:
		return 1.5
	case LevelExpert:
		return 2.2
	case LevelMaster:
		return 3.0
	case LevelGrandmaster:
		return 4.0
	case LevelLegendary:
		return 5.5
	default:
		return 0
	}
}

// Threshold is the experience needed to leave this rank. The terminal rank
// reports ok=false.
func (l Level) Threshold() (xp int, ok bool) {
	switch l {
	case LevelApprentice:
		return 100, true
	case LevelJourneyman:
		return 250, true
	case LevelAdept:
		return 500, true
	case LevelExpert:
		return 900, true
	case LevelMaster:
		return 1500, true
	case LevelGrandmaster:
		return 2500, true
	case LevelLegendary:
		return 0, false
	default:
		return 0, false
	}
}

// BaseWage is the level component of the weekly wage formula.
func (l Level) BaseWage() int {
	switch l {
	case LevelApprentice:
		return 10
	case LevelJourneyman:
		return 18
	case LevelAdept:
		return 30
	case LevelExpert:
		return 45
	case LevelMaster:
		return 65
	case LevelGrandmaster:
		return 90
	case LevelLegendary:
		return 130
	default:
		return 0
	}
}

func (l Level) Next() (Level, bool) {
	if l >= LevelLegendary || l < LevelApprentice {
		return l, false
	}
	return l + 1, true
}

type Condition int

const (
	ConditionHealthy Condition = iota
	ConditionFatigued
	ConditionInjured
	ConditionCursed
	ConditionDeceased
)

var conditionNames = []string{"healthy", "fatigued", "injured", "cursed", "deceased"}

func (c Condition) String() string { return tagOf(conditionNames, int(c)) }
func (c Condition) Valid() bool    { return validTag(conditionNames, int(c)) }

func (c Condition) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Condition) UnmarshalText(b []byte) error {
	i, err := parseTag("condition", conditionNames, string(b))
	if err != nil {
		return err
	}
	*c = Condition(i)
	return nil
}

type InjuryType int

const (
	InjuryWound InjuryType = iota
	InjuryFracture
	InjuryBurn
	InjuryPoison
	InjuryCurse
)

var injuryTypeNames = []string{"wound", "fracture", "burn", "poison", "curse"}

func AllInjuryTypes() []InjuryType {
	return []InjuryType{InjuryWound, InjuryFracture, InjuryBurn, InjuryPoison, InjuryCurse}
}

func (t InjuryType) String() string { return tagOf(injuryTypeNames, int(t)) }
func (t InjuryType) Valid() bool    { return validTag(injuryTypeNames, int(t)) }

func (t InjuryType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *InjuryType) UnmarshalText(b []byte) error {
	i, err := parseTag("injury type", injuryTypeNames, string(b))
	if err != nil {
		return err
	}
	*t = InjuryType(i)
	return nil
}

// Severity is the four-step injury ladder. Mortal injuries kill.
type Severity int

const (
	SeverityMinor Severity = iota
	SeverityModerate
	SeveritySevere
	SeverityMortal
)

var severityNames = []string{"minor", "moderate", "severe", "mortal"}

func AllSeverities() []Severity {
	return []Severity{SeverityMinor, SeverityModerate, SeveritySevere, SeverityMortal}
}

func (s Severity) String() string { return tagOf(severityNames, int(s)) }
func (s Severity) Valid() bool    { return validTag(severityNames, int(s)) }

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	i, err := parseTag("severity", severityNames, string(b))
	if err != nil {
		return err
	}
	*s = Severity(i)
	return nil
}

// Weight is the selection weight on the severity ladder (sums to 100).
func (s Severity) Weight() int {
	switch s {
	case SeverityMinor:
		return 50
	case SeverityModerate:
		return 30
	case SeveritySevere:
		return 15
	case SeverityMortal:
		return 5
	default:
		return 0
	}
}

func (s Severity) RecoveryWeeks() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 3
	case SeveritySevere:
		return 6
	case SeverityMortal:
		return 0
	default:
		return 0
	}
}
