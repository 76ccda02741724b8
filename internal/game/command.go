package game

type CommandType string

const (
	CmdJoin          CommandType = "Join"
	CmdPlayerHello   CommandType = "PlayerHello"
	CmdAdminHello    CommandType = "AdminHello"
	CmdSetCircle     CommandType = "SetCircle"
	CmdConfirm       CommandType = "Confirm"
	CmdUnconfirm     CommandType = "Unconfirm"
	CmdSetTurn       CommandType = "SetTurn"
	CmdNextTurn      CommandType = "NextTurn"
	CmdPrevTurn      CommandType = "PrevTurn"
	CmdStartRound    CommandType = "StartRound"
	CmdNewRound      CommandType = "NewRound"
	CmdRevealCircles CommandType = "RevealCircles"
	CmdHideCircles   CommandType = "HideCircles"
	CmdClearCircles  CommandType = "ClearCircles"
	CmdRevealArea    CommandType = "RevealArea"
	CmdShowFull      CommandType = "ShowFull"
	CmdAdjustPoints  CommandType = "AdjustPoints"
	CmdDisconnect    CommandType = "Disconnect"
)

// Command is one tagged inbound action. ActorID is the connection
// identity of the sender; the remaining fields are per-type payload.
type Command struct {
	Type    CommandType
	ActorID string

	// Join
	Name     string
	TeamName string

	// SetCircle
	X          float64
	Y          float64
	Normalized bool

	// SetTurn / AdjustPoints
	TeamID string
	Delta  int

	// StartRound / NewRound
	Round RoundConfig

	// RevealArea
	AutoNext bool
	DelayMs  int
}
