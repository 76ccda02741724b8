package types

// ClientMessage is the flat inbound frame. Type selects the command;
// the other fields are populated per type and omitted otherwise.
type ClientMessage struct {
	Type string `json:"type"`

	// player:join
	Name     string `json:"name,omitempty"`
	TeamName string `json:"teamName,omitempty"`

	// team:setCircle
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Normalized bool    `json:"normalized,omitempty"`

	// admin:setTurn / admin:adjustPoints
	TeamID string `json:"teamId,omitempty"`
	Delta  int    `json:"delta,omitempty"`

	// admin:startRound / admin:newRound
	ImageURL string        `json:"imageUrl,omitempty"`
	Duration int           `json:"duration,omitempty"`
	Radius   float64       `json:"radius,omitempty"`
	Question string        `json:"question,omitempty"`
	Target   *TargetCoords `json:"target,omitempty"`

	// admin:revealArea
	AutoNext bool `json:"autoNext,omitempty"`
	DelayMs  int  `json:"delayMs,omitempty"`
}

type TargetCoords struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Normalized bool    `json:"normalized,omitempty"`
}

// ServerMessage is the outbound envelope: the event name plus its
// event-specific payload.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
