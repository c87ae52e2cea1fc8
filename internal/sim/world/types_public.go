package world

import "guildsim.dev/internal/sim/model"

// Command types accepted by StepWeek.
const (
	CmdHire            = "HIRE"
	CmdDismiss         = "DISMISS"
	CmdUpgradeFacility = "UPGRADE_FACILITY"
	CmdAcceptMission   = "ACCEPT_MISSION"
	CmdCommitMission   = "COMMIT_MISSION"
	CmdTakeLoan        = "TAKE_LOAN"
	CmdHireStaff       = "HIRE_STAFF"
)

// Command is one queued caller operation. Only the fields its Type needs
// are read.
type Command struct {
	Type string `json:"type"`

	// ID is the recruit, agent or mission the command targets.
	ID       string   `json:"id,omitempty"`
	Party    []string `json:"party,omitempty"`
	Facility string   `json:"facility,omitempty"`
	Role     string   `json:"role,omitempty"`

	Principal int `json:"principal,omitempty"`
	Weeks     int `json:"weeks,omitempty"`
}

type CommandResult struct {
	Command Command        `json:"command"`
	Result  model.OpResult `json:"result"`
}

type WeekLogger interface {
	WriteWeek(entry WeekLogEntry) error
}

// WeekLogEntry is everything needed to replay one week from the
// previous state: the commands in order and the digest they led to.
type WeekLogEntry struct {
	Week     uint64    `json:"week"`
	Commands []Command `json:"commands,omitempty"`
	Digest   string    `json:"digest"`
}

type ResolvedMission struct {
	MissionID  string        `json:"mission_id"`
	Name       string        `json:"name"`
	Outcome    model.Outcome `json:"outcome"`
	Gold       int           `json:"gold"`
	Experience int           `json:"experience"`
	Party      []string      `json:"party"`
	Deaths     []string      `json:"deaths,omitempty"`
	LootValue  int           `json:"loot_value,omitempty"`
	LootCount  int           `json:"loot_count,omitempty"`
}

// WeekReport summarises one StepWeek call.
type WeekReport struct {
	Week     uint64         `json:"week"`
	Calendar model.Calendar `json:"calendar"`

	Commands []CommandResult   `json:"commands,omitempty"`
	Resolved []ResolvedMission `json:"resolved,omitempty"`
	Events   []model.Event     `json:"events,omitempty"`

	Income     int                  `json:"income"`
	Expenses   int                  `json:"expenses"`
	Treasury   int                  `json:"treasury"`
	Confidence int                  `json:"confidence"`
	Band       model.ConfidenceBand `json:"band"`

	MonthEnded  bool `json:"month_ended,omitempty"`
	SeasonEnded bool `json:"season_ended,omitempty"`
	// EndedSeason is the season that closed this week, if any.
	EndedSeason int  `json:"ended_season,omitempty"`
	Refreshed   bool `json:"board_refreshed,omitempty"`
	Dismissed   bool `json:"dismissed,omitempty"`

	Digest string `json:"digest"`
}

// FinancialSummary is the presentation view of the books.
type FinancialSummary struct {
	Treasury       int `json:"treasury"`
	SeasonBudget   int `json:"season_budget"`
	SeasonIncome   int `json:"season_income"`
	SeasonExpenses int `json:"season_expenses"`

	WageBill      int `json:"wage_bill"`
	StaffSalaries int `json:"staff_salaries"`
	Maintenance   int `json:"maintenance"`
	TavernIncome  int `json:"tavern_income"`
	LoanPayments  int `json:"loan_payments"`
	ProjectedNet  int `json:"projected_net"`

	Debt        int `json:"debt"`
	ActiveLoans int `json:"active_loans"`

	TotalIncome   int                      `json:"total_income"`
	TotalExpenses int                      `json:"total_expenses"`
	NetBalance    int                      `json:"net_balance"`
	ByCategory    map[model.TxCategory]int `json:"by_category"`

	Confidence int                  `json:"confidence"`
	Band       model.ConfidenceBand `json:"band"`
	Ultimatum  bool                 `json:"ultimatum,omitempty"`
}
