package game

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var ErrTeamsFull = errors.New("all team slots are taken")
var ErrTeamFull = errors.New("team is full")
var ErrNotJoined = errors.New("join a team first")
var ErrNotYourTurn = errors.New("not your turn")
var ErrNoRound = errors.New("no active round")
var ErrNoCircle = errors.New("no circle placed yet")
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	MaxTeams       = 4
	MaxTeamPlayers = 2
	AutoBonus      = 5
)

// Display colors assigned round-robin at team creation.
var ColorPalette = [MaxTeams]string{"#e6194b", "#3cb44b", "#4363d8", "#f58231"}

type Team struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	ColorIndex int    `json:"colorIndex"`
}

type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}

// Session is the process-wide game aggregate. It is owned by a single
// room actor; none of its methods are safe for concurrent use.
type Session struct {
	Teams      map[string]*Team   // teamID -> team
	Players    map[string]*Player // connection ID -> player
	Round      *Round
	History    []HistoryEntry
	TurnTeamID string

	created int    // teams ever created, drives color assignment
	nextGen uint64 // round generation counter
}

func NewSession() *Session {
	return &Session{
		Teams:   make(map[string]*Team),
		Players: make(map[string]*Player),
	}
}

// getOrCreateTeam looks a team up by name (case-insensitive) and creates
// it if the team cap allows. The first team ever created becomes the
// current turn team.
func (s *Session) getOrCreateTeam(name string) (*Team, error) {
	for _, t := range s.Teams {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	if len(s.Teams) >= MaxTeams {
		return nil, ErrTeamsFull
	}
	t := &Team{
		ID:         uuid.New().String(),
		Name:       name,
		ColorIndex: s.created % MaxTeams,
	}
	s.created++
	s.Teams[t.ID] = t
	if s.TurnTeamID == "" && len(s.Teams) == 1 {
		s.TurnTeamID = t.ID
	}
	return t, nil
}

func (s *Session) registerPlayer(team *Team, playerID, name string) (*Player, error) {
	if s.connectedCount(team.ID) >= MaxTeamPlayers {
		return nil, ErrTeamFull
	}
	p := &Player{ID: playerID, Name: name, TeamID: team.ID, TeamName: team.Name}
	s.Players[playerID] = p
	return p, nil
}

// unregisterPlayer drops the player on disconnect. The team stays, its
// score included, even when its last player leaves.
func (s *Session) unregisterPlayer(playerID string) bool {
	if _, ok := s.Players[playerID]; !ok {
		return false
	}
	delete(s.Players, playerID)
	return true
}

func (s *Session) connectedCount(teamID string) int {
	n := 0
	for _, p := range s.Players {
		if p.TeamID == teamID {
			n++
		}
	}
	return n
}

// Teammates returns the connected players of a team, minus one excluded
// player ID. Used for the private circle preview relay.
func (s *Session) Teammates(teamID, exceptID string) []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.TeamID == teamID && p.ID != exceptID {
			out = append(out, p)
		}
	}
	return out
}

func sortPlayers(ps []Player) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID < ps[j].ID
	})
}

// orderedTeamIDs sorts team IDs by team name, case-sensitive, so the
// turn cycle is deterministic regardless of creation order.
func (s *Session) orderedTeamIDs() []string {
	ids := make([]string, 0, len(s.Teams))
	for id := range s.Teams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.Teams[ids[i]].Name < s.Teams[ids[j]].Name
	})
	return ids
}
