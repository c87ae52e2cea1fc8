package observerproto

import (
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/world"
)

// Version is the observer protocol version.
const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeWeek      = "WEEK"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Events includes the week's event list in each WEEK message.
	Events bool `json:"events"`
	// EventTypes narrows Events to these types when non-empty.
	EventTypes []string `json:"event_types,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string         `json:"protocol_version"`
	GuildID         string         `json:"guild_id"`
	GuildName       string         `json:"guild_name"`
	Seed            int64          `json:"seed"`
	Difficulty      string         `json:"difficulty"`
	Calendar        model.Calendar `json:"calendar"`
	Dismissed       bool           `json:"dismissed,omitempty"`
}

// Server -> Client. Sent after every simulated week.
type WeekMsg struct {
	Type            string                 `json:"type"`
	ProtocolVersion string                 `json:"protocol_version"`
	Report          world.WeekReport       `json:"report"`
	Summary         world.FinancialSummary `json:"summary"`
	Roster          []RosterEntry          `json:"roster"`
}

type RosterEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Level     model.Level     `json:"level"`
	Class     model.Class     `json:"class"`
	Condition model.Condition `json:"condition"`
	OnMission string          `json:"on_mission,omitempty"`
	Wage      int             `json:"wage"`
}

func RosterOf(agents []model.Agent) []RosterEntry {
	out := make([]RosterEntry, 0, len(agents))
	for _, a := range agents {
		out = append(out, RosterEntry{
			ID:        a.ID,
			Name:      a.Name,
			Level:     a.Level,
			Class:     a.Class,
			Condition: a.Condition,
			OnMission: a.OnMission,
			Wage:      a.Wage,
		})
	}
	return out
}
