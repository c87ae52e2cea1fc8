package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"guildsim.dev/internal/sim/model"
)

type Tuning struct {
	Difficulty   model.Difficulty                    `yaml:"difficulty" json:"difficulty"`
	Difficulties map[string]model.DifficultySettings `yaml:"difficulties" json:"difficulties"`

	Economy Economy `yaml:"economy" json:"economy"`
	Board   Board   `yaml:"board" json:"board"`
	Council Council `yaml:"council" json:"council"`

	SnapshotEveryWeeks int `yaml:"snapshot_every_weeks" json:"snapshot_every_weeks"`
}

type Economy struct {
	StartingTreasury      int     `yaml:"starting_treasury" json:"starting_treasury"`
	SeasonBudget          int     `yaml:"season_budget" json:"season_budget"`
	UpkeepPerRating       int     `yaml:"upkeep_per_rating" json:"upkeep_per_rating"`
	TavernIncomePerRating int     `yaml:"tavern_income_per_rating" json:"tavern_income_per_rating"`
	FacilityDecayPerWeek  int     `yaml:"facility_decay_per_week" json:"facility_decay_per_week"`
	UpgradeCostPerRating  int     `yaml:"upgrade_cost_per_rating" json:"upgrade_cost_per_rating"`
	HiringFeeWages        int     `yaml:"hiring_fee_wages" json:"hiring_fee_wages"`
	MaxActiveLoans        int     `yaml:"max_active_loans" json:"max_active_loans"`
	LoanInterestRate      float64 `yaml:"loan_interest_rate" json:"loan_interest_rate"`
	PatronGrant           int     `yaml:"patron_grant" json:"patron_grant"`
}

type Board struct {
	TargetSize      int `yaml:"target_size" json:"target_size"`
	RetainAvailable int `yaml:"retain_available" json:"retain_available"`
	// RetainLocked caps the locked postings a refresh keeps; older ones expire.
	RetainLocked      int `yaml:"retain_locked" json:"retain_locked"`
	RefreshEveryWeeks int `yaml:"refresh_every_weeks" json:"refresh_every_weeks"`
	RecruitPool       int `yaml:"recruit_pool" json:"recruit_pool"`
}

type Council struct {
	StartingConfidence int `yaml:"starting_confidence" json:"starting_confidence"`
	UltimatumWeeks     int `yaml:"ultimatum_weeks" json:"ultimatum_weeks"`
	UltimatumRequired  int `yaml:"ultimatum_required" json:"ultimatum_required"`
}

func Defaults() Tuning {
	t := Tuning{
		Difficulty:   model.DifficultyNormal,
		Difficulties: map[string]model.DifficultySettings{},
		Economy: Economy{
			StartingTreasury:      2000,
			SeasonBudget:          5000,
			UpkeepPerRating:       5,
			TavernIncomePerRating: 80,
			FacilityDecayPerWeek:  1,
			UpgradeCostPerRating:  250,
			HiringFeeWages:        2,
			MaxActiveLoans:        3,
			LoanInterestRate:      0.1,
			PatronGrant:           500,
		},
		Board: Board{
			TargetSize:        8,
			RetainAvailable:   4,
			RetainLocked:      2,
			RefreshEveryWeeks: 4,
			RecruitPool:       4,
		},
		Council: Council{
			StartingConfidence: 65,
			UltimatumWeeks:     8,
			UltimatumRequired:  40,
		},
		SnapshotEveryWeeks: 4,
	}
	for _, d := range model.AllDifficulties() {
		t.Difficulties[d.String()] = d.Settings()
	}
	return t
}

// Load reads a tuning file. Values the file leaves out keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.fill()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// fill restores defaults for difficulty rows a file replaced with zeros.
func (t *Tuning) fill() {
	if t.Difficulties == nil {
		t.Difficulties = map[string]model.DifficultySettings{}
	}
	for _, d := range model.AllDifficulties() {
		s, ok := t.Difficulties[d.String()]
		def := d.Settings()
		if !ok {
			t.Difficulties[d.String()] = def
			continue
		}
		if s.EnemyStrength == 0 {
			s.EnemyStrength = def.EnemyStrength
		}
		if s.Reward == 0 {
			s.Reward = def.Reward
		}
		if s.InjuryRate == 0 {
			s.InjuryRate = def.InjuryRate
		}
		t.Difficulties[d.String()] = s
	}
}

func (t Tuning) Validate() error {
	if !t.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %d", t.Difficulty)
	}
	for name := range t.Difficulties {
		if _, err := model.ParseDifficulty(name); err != nil {
			return fmt.Errorf("difficulties: %w", err)
		}
	}
	for name, s := range t.Difficulties {
		if s.EnemyStrength <= 0 || s.Reward < 0 || s.InjuryRate < 0 {
			return fmt.Errorf("difficulties.%s: multipliers must be positive", name)
		}
	}
	if t.Economy.MaxActiveLoans < 0 {
		return fmt.Errorf("economy.max_active_loans must be >= 0")
	}
	if t.Economy.LoanInterestRate < 0 {
		return fmt.Errorf("economy.loan_interest_rate must be >= 0")
	}
	if t.Board.TargetSize <= 0 || t.Board.RetainAvailable < 0 || t.Board.RetainAvailable > t.Board.TargetSize {
		return fmt.Errorf("board: need 0 <= retain_available <= target_size and target_size > 0")
	}
	if t.Board.RetainLocked < 0 || t.Board.RetainAvailable+t.Board.RetainLocked >= t.Board.TargetSize {
		return fmt.Errorf("board: retain_available + retain_locked must leave room for new postings")
	}
	if t.Board.RefreshEveryWeeks <= 0 {
		return fmt.Errorf("board.refresh_every_weeks must be > 0")
	}
	if t.Council.StartingConfidence < 0 || t.Council.StartingConfidence > 100 {
		return fmt.Errorf("council.starting_confidence must be in [0,100]")
	}
	if t.Council.UltimatumWeeks <= 0 {
		return fmt.Errorf("council.ultimatum_weeks must be > 0")
	}
	return nil
}

// Settings resolves the active difficulty's multipliers.
func (t Tuning) Settings() model.DifficultySettings {
	return t.SettingsFor(t.Difficulty)
}

func (t Tuning) SettingsFor(d model.Difficulty) model.DifficultySettings {
	if s, ok := t.Difficulties[d.String()]; ok {
		return s
	}
	return d.Settings()
}
