package model

// Event types emitted into the weekly report.
const (
	EventCommandResult    = "COMMAND_RESULT"
	EventMissionResolved  = "MISSION_RESOLVED"
	EventLevelUp          = "LEVEL_UP"
	EventAgentInjured     = "AGENT_INJURED"
	EventAgentDied        = "AGENT_DIED"
	EventAgentRecovered   = "AGENT_RECOVERED"
	EventLootFound        = "LOOT_FOUND"
	EventLoanRepaid       = "LOAN_REPAID"
	EventTreasuryNegative = "TREASURY_NEGATIVE"
	EventPatronGrant      = "PATRON_GRANT"
	EventCouncilWarning   = "COUNCIL_WARNING"
	EventUltimatumIssued  = "ULTIMATUM_ISSUED"
	EventUltimatumMet     = "ULTIMATUM_MET"
	EventDismissed        = "LEADERSHIP_DISMISSED"
	EventMonthEnd         = "MONTH_END"
	EventSeasonEnd        = "SEASON_END"
	EventBoardRefreshed   = "BOARD_REFRESHED"
	EventMissionUnlocked  = "MISSION_UNLOCKED"
	EventMissionExpired   = "MISSION_EXPIRED"
)

// Event is one line of the weekly narrative. The core never logs; it
// reports.
type Event struct {
	Week    uint64 `json:"week"`
	Type    string `json:"type"`
	Ref     string `json:"ref,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	Code    string `json:"code,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Message string `json:"message,omitempty"`
}
