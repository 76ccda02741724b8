package game

// setTurn points the turn at a known team. Unknown IDs are a no-op, so
// a stale admin click cannot wedge the sequencer.
func (s *Session) setTurn(teamID string) bool {
	if _, ok := s.Teams[teamID]; !ok {
		return false
	}
	s.TurnTeamID = teamID
	return true
}

// advanceTurn moves the turn by step over the name-ordered team cycle,
// wrapping at both ends. With no turn set it lands on the first team.
func (s *Session) advanceTurn(step int) bool {
	ids := s.orderedTeamIDs()
	if len(ids) == 0 {
		return false
	}
	idx := -1
	for i, id := range ids {
		if id == s.TurnTeamID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.TurnTeamID = ids[0]
		return true
	}
	n := len(ids)
	s.TurnTeamID = ids[((idx+step)%n+n)%n]
	return true
}

// checkTurn is the gate for every round-mutating player action: the
// actor's team must hold the turn, unless no turn is set at all (the
// permissive fallback).
func (s *Session) checkTurn(p *Player) error {
	if s.TurnTeamID != "" && p.TeamID != s.TurnTeamID {
		return ErrNotYourTurn
	}
	return nil
}
