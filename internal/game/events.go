package game

// Scope decides which connections receive an event. The private scopes
// are a hard contract: a teammate preview must never reach another
// team's players, and admin events must never reach players.
type Scope int

const (
	ScopeBroadcast Scope = iota
	ScopeAdmins
	ScopeSender
	ScopeTeammates
)

// Outbound event names, mirrored by the client.
const (
	EvtState              = "state"
	EvtTurnUpdate         = "turn:update"
	EvtPlayerAccepted     = "player:accepted"
	EvtToast              = "toast"
	EvtRoundConfig        = "round:config"
	EvtRoundTick          = "round:tick"
	EvtRoundDark          = "round:dark"
	EvtRevealTeamCircles  = "round:revealTeamCircles"
	EvtClearTeamCircles   = "round:clearTeamCircles"
	EvtRevealArea         = "round:revealArea"
	EvtShowFull           = "round:showFull"
	EvtRequestNext        = "admin:requestNext"
	EvtHistory            = "admin:history"
	EvtTeamCircleSet      = "admin:teamCircleSet"
	EvtTeamLocked         = "admin:teamLocked"
	EvtTeamUnlocked       = "admin:teamUnlocked"
	EvtAutoBonus          = "score:autoBonus"
	EvtCirclePreview      = "team:circlePreview"
)

// Event is one outbound notification produced by Apply. TeamID is only
// meaningful for ScopeTeammates.
type Event struct {
	Scope   Scope
	TeamID  string
	Type    string
	Payload any
}

func broadcast(typ string, payload any) Event {
	return Event{Scope: ScopeBroadcast, Type: typ, Payload: payload}
}

func toAdmins(typ string, payload any) Event {
	return Event{Scope: ScopeAdmins, Type: typ, Payload: payload}
}

func toSender(typ string, payload any) Event {
	return Event{Scope: ScopeSender, Type: typ, Payload: payload}
}

type StatePayload struct {
	Teams      []Team   `json:"teams"`
	Players    []Player `json:"players"`
	TurnTeamID string   `json:"turnTeamId"`
}

type TurnPayload struct {
	TeamID string `json:"teamId"`
}

type AcceptedPayload struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	TeamID     string `json:"teamId"`
	TeamName   string `json:"teamName"`
	ColorIndex int    `json:"colorIndex"`
	TurnTeamID string `json:"turnTeamId"`
}

type ToastPayload struct {
	Message string `json:"message"`
}

type RoundConfigPayload struct {
	ImageURL   string `json:"imageUrl"`
	Question   string `json:"question"`
	Duration   int    `json:"duration"`
	Normalized bool   `json:"isNormalized"`
}

type TickPayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type RevealCirclesPayload struct {
	Reveal      bool              `json:"reveal"`
	TeamCircles map[string]Circle `json:"teamCircles,omitempty"`
}

type RevealAreaPayload struct {
	Target     Target  `json:"target"`
	Radius     float64 `json:"radius"`
	Normalized bool    `json:"isNormalized"`
}

type TeamPayload struct {
	TeamID string `json:"teamId"`
}

type AutoBonusPayload struct {
	TeamID string `json:"teamId"`
	Delta  int    `json:"delta"`
}

type CirclePreviewPayload struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Normalized bool    `json:"normalized"`
}

// ShowFullEvent and RequestNextEvent exist for the room's delayed
// auto-next timers, which emit outside an Apply call.
func ShowFullEvent() Event {
	return broadcast(EvtShowFull, struct{}{})
}

func RequestNextEvent() Event {
	return toAdmins(EvtRequestNext, struct{}{})
}

// stateEvent builds the full shared-state broadcast. Teams are ordered
// by name and players by name then ID so snapshots are deterministic.
func (s *Session) stateEvent() Event {
	teams := make([]Team, 0, len(s.Teams))
	for _, id := range s.orderedTeamIDs() {
		teams = append(teams, *s.Teams[id])
	}
	players := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, *p)
	}
	sortPlayers(players)
	return broadcast(EvtState, StatePayload{
		Teams:      teams,
		Players:    players,
		TurnTeamID: s.TurnTeamID,
	})
}

func (s *Session) historyEvent() Event {
	h := s.History
	if h == nil {
		h = []HistoryEntry{}
	}
	return toAdmins(EvtHistory, h)
}

func (s *Session) roundConfigEvent(scope Scope) Event {
	r := s.Round
	return Event{Scope: scope, Type: EvtRoundConfig, Payload: RoundConfigPayload{
		ImageURL:   r.ImageURL,
		Question:   r.Question,
		Duration:   r.Duration,
		Normalized: r.Normalized,
	}}
}
