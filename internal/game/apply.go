package game

// Apply validates one command against the session, mutates it, and
// returns the outbound events in emission order. A non-nil error means
// the session is unchanged; the caller surfaces it to the sender as a
// toast. Silent no-ops (confirming an already-locked team, placing a
// circle while locked) return neither events nor an error.
func Apply(s *Session, cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdJoin:
		return s.applyJoin(cmd)
	case CmdPlayerHello:
		return s.applyPlayerHello()
	case CmdAdminHello:
		return s.applyAdminHello()
	case CmdSetCircle:
		return s.applySetCircle(cmd)
	case CmdConfirm:
		return s.applyConfirm(cmd)
	case CmdUnconfirm:
		return s.applyUnconfirm(cmd)
	case CmdSetTurn:
		if !s.setTurn(cmd.TeamID) {
			return nil, nil
		}
		return []Event{broadcast(EvtTurnUpdate, TurnPayload{TeamID: s.TurnTeamID}), s.stateEvent()}, nil
	case CmdNextTurn:
		if !s.advanceTurn(1) {
			return nil, nil
		}
		return []Event{broadcast(EvtTurnUpdate, TurnPayload{TeamID: s.TurnTeamID}), s.stateEvent()}, nil
	case CmdPrevTurn:
		if !s.advanceTurn(-1) {
			return nil, nil
		}
		return []Event{broadcast(EvtTurnUpdate, TurnPayload{TeamID: s.TurnTeamID}), s.stateEvent()}, nil
	case CmdStartRound, CmdNewRound:
		return s.applyStartRound(cmd.Round)
	case CmdRevealCircles:
		return s.applyRevealCircles(true)
	case CmdHideCircles:
		return s.applyRevealCircles(false)
	case CmdClearCircles:
		return s.applyClearCircles()
	case CmdRevealArea:
		return s.applyRevealArea()
	case CmdShowFull:
		return []Event{ShowFullEvent()}, nil
	case CmdAdjustPoints:
		t, ok := s.Teams[cmd.TeamID]
		if !ok {
			return nil, nil
		}
		t.Points += cmd.Delta
		return []Event{s.stateEvent()}, nil
	case CmdDisconnect:
		if !s.unregisterPlayer(cmd.ActorID) {
			return nil, nil
		}
		return []Event{s.stateEvent()}, nil
	default:
		return nil, ErrUnsupportedCommand
	}
}

func (s *Session) applyJoin(cmd Command) ([]Event, error) {
	turnWasSet := s.TurnTeamID != ""
	team, err := s.getOrCreateTeam(cmd.TeamName)
	if err != nil {
		return nil, err
	}
	player, err := s.registerPlayer(team, cmd.ActorID, cmd.Name)
	if err != nil {
		return nil, err
	}
	events := []Event{
		toSender(EvtPlayerAccepted, AcceptedPayload{
			PlayerID:   player.ID,
			Name:       player.Name,
			TeamID:     team.ID,
			TeamName:   team.Name,
			ColorIndex: team.ColorIndex,
			TurnTeamID: s.TurnTeamID,
		}),
	}
	if !turnWasSet && s.TurnTeamID != "" {
		events = append(events, broadcast(EvtTurnUpdate, TurnPayload{TeamID: s.TurnTeamID}))
	}
	return append(events, s.stateEvent()), nil
}

// applyPlayerHello resyncs a (re)connecting player view: shared state
// plus whatever the live round already told everyone else.
func (s *Session) applyPlayerHello() ([]Event, error) {
	events := []Event{{Scope: ScopeSender, Type: EvtState, Payload: s.stateEvent().Payload}}
	if s.Round != nil {
		events = append(events, s.roundConfigEvent(ScopeSender))
		if s.Round.Phase == PhaseCountdown {
			// The config only carries the full duration; without the
			// current remainder the client restarts its countdown.
			events = append(events, toSender(EvtRoundTick, TickPayload{SecondsRemaining: s.Round.Remaining}))
		} else {
			events = append(events, toSender(EvtRoundDark, struct{}{}))
		}
		if s.Round.RevealClicks {
			events = append(events, toSender(EvtRevealTeamCircles, RevealCirclesPayload{
				Reveal:      true,
				TeamCircles: s.Round.copyCircles(),
			}))
		}
	}
	return events, nil
}

func (s *Session) applyAdminHello() ([]Event, error) {
	events := []Event{
		{Scope: ScopeSender, Type: EvtState, Payload: s.stateEvent().Payload},
		{Scope: ScopeSender, Type: EvtHistory, Payload: s.historyEvent().Payload},
	}
	if s.Round != nil {
		events = append(events, s.roundConfigEvent(ScopeSender))
	}
	return events, nil
}

func (s *Session) applySetCircle(cmd Command) ([]Event, error) {
	p, ok := s.Players[cmd.ActorID]
	if !ok {
		return nil, ErrNotJoined
	}
	r := s.Round
	if r == nil {
		return nil, ErrNoRound
	}
	if err := s.checkTurn(p); err != nil {
		return nil, err
	}
	if r.TeamLocked[p.TeamID] {
		return nil, nil
	}
	c := Circle{X: cmd.X, Y: cmd.Y, Normalized: cmd.Normalized}
	r.TeamCircles[p.TeamID] = c
	// Teammate gets the coordinates, the admin only the fact. The admin
	// view must not see guesses before an explicit reveal.
	return []Event{
		{Scope: ScopeTeammates, TeamID: p.TeamID, Type: EvtCirclePreview, Payload: CirclePreviewPayload(c)},
		toAdmins(EvtTeamCircleSet, TeamPayload{TeamID: p.TeamID}),
	}, nil
}

func (s *Session) applyConfirm(cmd Command) ([]Event, error) {
	p, ok := s.Players[cmd.ActorID]
	if !ok {
		return nil, ErrNotJoined
	}
	r := s.Round
	if r == nil {
		return nil, ErrNoRound
	}
	if err := s.checkTurn(p); err != nil {
		return nil, err
	}
	if r.TeamLocked[p.TeamID] {
		return nil, nil
	}
	c, ok := r.TeamCircles[p.TeamID]
	if !ok {
		return nil, ErrNoCircle
	}
	r.TeamLocked[p.TeamID] = true
	events := []Event{toAdmins(EvtTeamLocked, TeamPayload{TeamID: p.TeamID})}
	if !r.Normalized && !c.Normalized && isHit(c, r.Target, r.Radius) {
		s.Teams[p.TeamID].Points += AutoBonus
		events = append(events,
			broadcast(EvtAutoBonus, AutoBonusPayload{TeamID: p.TeamID, Delta: AutoBonus}),
			s.stateEvent(),
		)
	}
	return events, nil
}

func (s *Session) applyUnconfirm(cmd Command) ([]Event, error) {
	p, ok := s.Players[cmd.ActorID]
	if !ok {
		return nil, ErrNotJoined
	}
	r := s.Round
	if r == nil {
		return nil, ErrNoRound
	}
	if err := s.checkTurn(p); err != nil {
		return nil, err
	}
	if !r.TeamLocked[p.TeamID] {
		return nil, nil
	}
	// An auto-bonus already granted on confirm stays granted.
	delete(r.TeamLocked, p.TeamID)
	return []Event{toAdmins(EvtTeamUnlocked, TeamPayload{TeamID: p.TeamID})}, nil
}

// applyStartRound closes any live round into history (no winners, no
// hit evaluation) and initializes a fresh one in countdown.
func (s *Session) applyStartRound(cfg RoundConfig) ([]Event, error) {
	var events []Event
	if s.snapshotRound(nil) {
		events = append(events, s.historyEvent())
	}
	s.newRound(cfg)
	return append(events, s.roundConfigEvent(ScopeBroadcast)), nil
}

func (s *Session) applyRevealCircles(reveal bool) ([]Event, error) {
	r := s.Round
	if r == nil {
		return nil, ErrNoRound
	}
	r.RevealClicks = reveal
	payload := RevealCirclesPayload{Reveal: reveal}
	if reveal {
		payload.TeamCircles = r.copyCircles()
	}
	return []Event{broadcast(EvtRevealTeamCircles, payload)}, nil
}

func (s *Session) applyClearCircles() ([]Event, error) {
	r := s.Round
	if r == nil {
		return nil, ErrNoRound
	}
	r.TeamCircles = make(map[string]Circle)
	r.TeamLocked = make(map[string]bool)
	r.RevealClicks = false
	return []Event{broadcast(EvtClearTeamCircles, struct{}{})}, nil
}

// applyRevealArea is the scoring-terminal action of a round: it shows
// everyone the target, records the winner set, and appends history.
func (s *Session) applyRevealArea() ([]Event, error) {
	r := s.Round
	if r == nil {
		return nil, ErrNoRound
	}
	r.Phase = PhaseReveal
	winners := s.ComputeWinners()
	events := []Event{broadcast(EvtRevealArea, RevealAreaPayload{
		Target:     r.Target,
		Radius:     r.Radius,
		Normalized: r.Normalized,
	})}
	if s.snapshotRound(winners) {
		events = append(events, s.historyEvent())
	}
	return events, nil
}
