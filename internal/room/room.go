package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Flasche999/Bilder-Quiz-2/internal/game"
	"github.com/Flasche999/Bilder-Quiz-2/pkg/types"
)

// Stats is implemented by the monitor package; defined here so the room
// does not depend on prometheus directly and tests can pass nil.
type Stats interface {
	SetClients(n int)
	IncCommands()
	ObserveCommand(d time.Duration)
}

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	ClientID string
	Cmd      game.Command
}

func (FromClient) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// tick and delayed are posted by the round's timer goroutines. Both
// carry the round generation they were armed for; the loop drops any
// fire whose generation no longer matches the live round.
type tick struct{ gen uint64 }

func (tick) isRoomMsg() {}

type delayed struct {
	gen   uint64
	event game.Event
}

func (delayed) isRoomMsg() {}

// GetView reflects internal state for tests without data races.
type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type View struct {
	NumClients  int
	TurnTeamID  string
	Teams       []game.Team
	Players     []game.Player
	RoundActive bool
	Phase       game.Phase
	Remaining   int
	History     []game.HistoryEntry
}

type client struct {
	id    string
	out   chan types.ServerMessage
	admin bool
}

// Room is the single-writer actor that owns the game session. All
// mutation happens on the loop goroutine; connections talk to it
// through the inbox and receive events on their outbox channels.
type Room struct {
	inbox   chan Msg
	clients map[string]*client
	session *game.Session
	log     *zap.SugaredLogger
	stats   Stats

	ctx    context.Context
	cancel context.CancelFunc

	// Timers of the live round. Superseding the round cancels them
	// all; the generation check in tick/delayed covers fires already
	// in flight. The countdown ticker has its own child cancel so the
	// countdown ending does not kill pending post-reveal broadcasts.
	roundCtx    context.Context
	roundCancel context.CancelFunc
	cdCancel    context.CancelFunc
}

func NewRoom(parent context.Context, log *zap.SugaredLogger, stats Stats) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		clients: make(map[string]*client),
		session: game.NewSession(),
		log:     log,
		stats:   stats,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = &client{id: msg.ClientID, out: msg.Outbox}
				r.setClientGauge()

			case Leave:
				if c, ok := r.clients[msg.ClientID]; ok {
					close(c.out)
					delete(r.clients, msg.ClientID)
				}
				r.setClientGauge()
				// The player record goes with the connection; the team
				// and its points stay.
				events, _ := game.Apply(r.session, game.Command{Type: game.CmdDisconnect, ActorID: msg.ClientID})
				r.route(msg.ClientID, events)

			case FromClient:
				r.handleCommand(msg)

			case tick:
				events, cont := r.session.Tick(msg.gen)
				r.route("", events)
				// Only a fire from the live round's own ticker may stop
				// it. A stale fire already in the inbox when the round
				// was replaced must not touch the replacement's timers.
				live := r.session.Round != nil && r.session.Round.Gen == msg.gen
				if live && !cont && r.cdCancel != nil {
					r.cdCancel()
				}

			case delayed:
				if r.session.Round != nil && r.session.Round.Gen == msg.gen {
					r.route("", []game.Event{msg.event})
				}

			case GetView:
				msg.Reply <- r.view()

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleCommand(msg FromClient) {
	c := r.clients[msg.ClientID]
	if c == nil {
		return
	}
	if msg.Cmd.Type == game.CmdAdminHello {
		c.admin = true
	}

	start := time.Now()
	events, err := game.Apply(r.session, msg.Cmd)
	if r.stats != nil {
		r.stats.IncCommands()
		r.stats.ObserveCommand(time.Since(start))
	}
	if err != nil {
		r.log.Debugw("command rejected", "client", msg.ClientID, "cmd", msg.Cmd.Type, "reason", err)
		r.route(msg.ClientID, []game.Event{{
			Scope:   game.ScopeSender,
			Type:    game.EvtToast,
			Payload: game.ToastPayload{Message: err.Error()},
		}})
		return
	}
	r.route(msg.ClientID, events)

	switch msg.Cmd.Type {
	case game.CmdStartRound, game.CmdNewRound:
		r.armCountdown()
	case game.CmdRevealArea:
		if msg.Cmd.AutoNext {
			r.armAutoNext(msg.Cmd.DelayMs)
		}
	}
}

// armCountdown replaces the previous round's timers with a one-second
// ticker feeding tick messages back into the inbox.
func (r *Room) armCountdown() {
	if r.roundCancel != nil {
		r.roundCancel()
	}
	r.roundCtx, r.roundCancel = context.WithCancel(r.ctx)
	ctx, cdCancel := context.WithCancel(r.roundCtx)
	r.cdCancel = cdCancel
	gen := r.session.Round.Gen

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case r.inbox <- tick{gen: gen}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Post-reveal auto-advance: show the full image, then ask the admin app
// to move to the next item. The show-full delay is capped, the advance
// request floored plus a fixed buffer so the full image stays visible.
const (
	maxShowFullDelay = 5 * time.Second
	minAdvanceDelay  = 1500 * time.Millisecond
	advanceBuffer    = 2 * time.Second
)

func (r *Room) armAutoNext(delayMs int) {
	if r.session.Round == nil || r.roundCtx == nil {
		return
	}
	delay := time.Duration(delayMs) * time.Millisecond
	showFull := min(delay, maxShowFullDelay)
	advance := max(delay, minAdvanceDelay) + advanceBuffer
	gen := r.session.Round.Gen
	r.schedule(r.roundCtx, showFull, delayed{gen: gen, event: game.ShowFullEvent()})
	r.schedule(r.roundCtx, advance, delayed{gen: gen, event: game.RequestNextEvent()})
}

func (r *Room) schedule(ctx context.Context, d time.Duration, msg delayed) {
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			select {
			case r.inbox <- msg:
			case <-ctx.Done():
			}
		}
	}()
}

// route delivers events to their scope. Slow clients are dropped;
// their Leave arrives from the ws layer once the writer notices.
func (r *Room) route(senderID string, events []game.Event) {
	for _, e := range events {
		msg := types.ServerMessage{Type: e.Type, Payload: e.Payload}
		switch e.Scope {
		case game.ScopeBroadcast:
			for _, c := range r.clients {
				r.send(c, msg)
			}
		case game.ScopeAdmins:
			for _, c := range r.clients {
				if c.admin {
					r.send(c, msg)
				}
			}
		case game.ScopeSender:
			if c, ok := r.clients[senderID]; ok {
				r.send(c, msg)
			}
		case game.ScopeTeammates:
			for _, p := range r.session.Teammates(e.TeamID, senderID) {
				if c, ok := r.clients[p.ID]; ok {
					r.send(c, msg)
				}
			}
		}
	}
}

func (r *Room) send(c *client, msg types.ServerMessage) {
	select {
	case c.out <- msg:
	default:
		r.log.Warnw("dropping slow client", "client", c.id)
		close(c.out)
		delete(r.clients, c.id)
		r.setClientGauge()
	}
}

func (r *Room) setClientGauge() {
	if r.stats != nil {
		r.stats.SetClients(len(r.clients))
	}
}

func (r *Room) view() View {
	v := View{
		NumClients: len(r.clients),
		TurnTeamID: r.session.TurnTeamID,
		History:    append([]game.HistoryEntry(nil), r.session.History...),
	}
	for _, t := range r.session.Teams {
		v.Teams = append(v.Teams, *t)
	}
	for _, p := range r.session.Players {
		v.Players = append(v.Players, *p)
	}
	if rd := r.session.Round; rd != nil {
		v.RoundActive = true
		v.Phase = rd.Phase
		v.Remaining = rd.Remaining
	}
	return v
}

func (r *Room) shutdown() {
	if r.roundCancel != nil {
		r.roundCancel()
	}
	for id, c := range r.clients {
		close(c.out)
		delete(r.clients, id)
	}
	r.cancel()
}
