package model

const (
	ErrBadRequest        = "E_BAD_REQUEST"
	ErrNotFound          = "E_NOT_FOUND"
	ErrInternal          = "E_INTERNAL"
	ErrInsufficientFunds = "E_INSUFFICIENT_FUNDS"
	ErrTooManyLoans      = "E_TOO_MANY_LOANS"
	ErrDismissed         = "E_DISMISSED"

	// Roster.
	ErrRosterFull       = "E_ROSTER_FULL"
	ErrNotOnRoster      = "E_NOT_ON_ROSTER"
	ErrAgentOnMission   = "E_AGENT_ON_MISSION"
	ErrAgentUnavailable = "E_AGENT_UNAVAILABLE"

	// Facilities.
	ErrFacilityMaxed = "E_FACILITY_MAXED"

	// Missions.
	ErrMissionUnavailable = "E_MISSION_UNAVAILABLE"
	ErrPartyTooSmall      = "E_PARTY_TOO_SMALL"
	ErrPartyTooLarge      = "E_PARTY_TOO_LARGE"
	ErrNotInProgress      = "E_NOT_IN_PROGRESS"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:         {},
	ErrNotFound:           {},
	ErrInternal:           {},
	ErrInsufficientFunds:  {},
	ErrTooManyLoans:       {},
	ErrDismissed:          {},
	ErrRosterFull:         {},
	ErrNotOnRoster:        {},
	ErrAgentOnMission:     {},
	ErrAgentUnavailable:   {},
	ErrFacilityMaxed:      {},
	ErrMissionUnavailable: {},
	ErrPartyTooSmall:      {},
	ErrPartyTooLarge:      {},
	ErrNotInProgress:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// OpResult is the outcome of a caller-facing operation. Rejections carry a
// stable Code; nothing is mutated when OK is false.
type OpResult struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	// Ref is the ID of the entity the operation created, if any.
	Ref string `json:"ref,omitempty"`
}

func Ok(ref string) OpResult { return OpResult{OK: true, Ref: ref} }

// Reject builds a failed result. Unknown codes are reported as E_INTERNAL.
func Reject(code, message string) OpResult {
	if !IsKnownCode(code) || code == "" {
		code = ErrInternal
		if message == "" {
			message = "unknown error code"
		}
	}
	return OpResult{OK: false, Code: code, Message: message}
}
