package room

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Flasche999/Bilder-Quiz-2/internal/game"
	"github.com/Flasche999/Bilder-Quiz-2/pkg/types"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRoom(ctx, zap.NewNop().Sugar(), nil)
}

// recvType scans the outbox until a message of the wanted type arrives,
// with a deadline so tests never hang.
func recvType(t *testing.T, ch <-chan types.ServerMessage, typ string, within time.Duration) types.ServerMessage {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				t.Fatalf("outbox closed while waiting for %q", typ)
			}
			if m.Type == typ {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", typ)
		}
	}
}

func expectNoType(t *testing.T, ch <-chan types.ServerMessage, typ string, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return
			}
			if m.Type == typ {
				t.Fatalf("expected no %q within %v, got %+v", typ, within, m)
			}
		case <-deadline:
			return
		}
	}
}

func recvView(t *testing.T, r *Room) View {
	t.Helper()
	reply := make(chan View, 1)
	r.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{}
	}
}

func connect(t *testing.T, r *Room, id string) chan types.ServerMessage {
	t.Helper()
	out := make(chan types.ServerMessage, 64)
	r.Inbox() <- Join{ClientID: id, Outbox: out}
	return out
}

func joinTeam(t *testing.T, r *Room, id, name, team string) {
	t.Helper()
	r.Inbox() <- FromClient{ClientID: id, Cmd: game.Command{
		Type: game.CmdJoin, ActorID: id, Name: name, TeamName: team,
	}}
}

func startRound(r *Room, adminID string, cfg game.RoundConfig) {
	r.Inbox() <- FromClient{ClientID: adminID, Cmd: game.Command{
		Type: game.CmdStartRound, ActorID: adminID, Round: cfg,
	}}
}

func pixelConfig(duration int) game.RoundConfig {
	return game.RoundConfig{
		ImageURL:  "/uploads/test.png",
		Question:  "Wo?",
		Duration:  duration,
		Radius:    45,
		HasTarget: true,
		Target:    game.Target{X: 100, Y: 100},
	}
}

func TestRoom_Join_ReceivesAcceptedAndState(t *testing.T) {
	r := newTestRoom(t)
	out := connect(t, r, "c1")
	joinTeam(t, r, "c1", "Anna", "Alpha")

	recvType(t, out, game.EvtPlayerAccepted, time.Second)
	msg := recvType(t, out, game.EvtState, time.Second)

	state := msg.Payload.(game.StatePayload)
	if len(state.Teams) != 1 || state.Teams[0].Name != "Alpha" {
		t.Fatalf("bad state payload: %+v", state)
	}
	if state.TurnTeamID != state.Teams[0].ID {
		t.Fatalf("first team must hold the turn")
	}
}

func TestRoom_TurnViolation_ToastsSenderOnly(t *testing.T) {
	r := newTestRoom(t)
	alpha := connect(t, r, "a1")
	beta := connect(t, r, "b1")
	joinTeam(t, r, "a1", "Anna", "Alpha")
	joinTeam(t, r, "b1", "Ben", "Beta")
	startRound(r, "a1", pixelConfig(30))

	r.Inbox() <- FromClient{ClientID: "b1", Cmd: game.Command{
		Type: game.CmdSetCircle, ActorID: "b1", X: 10, Y: 10,
	}}

	toast := recvType(t, beta, game.EvtToast, time.Second)
	if toast.Payload.(game.ToastPayload).Message == "" {
		t.Fatal("empty toast")
	}
	expectNoType(t, alpha, game.EvtToast, 200*time.Millisecond)

	v := recvView(t, r)
	if v.Phase != game.PhaseCountdown {
		t.Fatalf("round state must be untouched, got %v", v.Phase)
	}
}

func TestRoom_CirclePreview_PrivateRouting(t *testing.T) {
	r := newTestRoom(t)
	admin := connect(t, r, "adm")
	r.Inbox() <- FromClient{ClientID: "adm", Cmd: game.Command{Type: game.CmdAdminHello, ActorID: "adm"}}

	anna := connect(t, r, "a1")
	mia := connect(t, r, "a2")
	ben := connect(t, r, "b1")
	joinTeam(t, r, "a1", "Anna", "Alpha")
	joinTeam(t, r, "a2", "Mia", "Alpha")
	joinTeam(t, r, "b1", "Ben", "Beta")
	startRound(r, "adm", pixelConfig(30))

	r.Inbox() <- FromClient{ClientID: "a1", Cmd: game.Command{
		Type: game.CmdSetCircle, ActorID: "a1", X: 42, Y: 7,
	}}

	// Teammate sees the coordinates.
	preview := recvType(t, mia, game.EvtCirclePreview, time.Second)
	if p := preview.Payload.(game.CirclePreviewPayload); p.X != 42 || p.Y != 7 {
		t.Fatalf("bad preview: %+v", p)
	}
	// The admin learns only that a circle was set.
	set := recvType(t, admin, game.EvtTeamCircleSet, time.Second)
	if _, ok := set.Payload.(game.TeamPayload); !ok {
		t.Fatalf("admin notification leaks payload: %#v", set.Payload)
	}

	// Nobody else sees the guess.
	expectNoType(t, ben, game.EvtCirclePreview, 200*time.Millisecond)
	expectNoType(t, anna, game.EvtCirclePreview, 50*time.Millisecond)
	expectNoType(t, admin, game.EvtCirclePreview, 50*time.Millisecond)
	expectNoType(t, ben, game.EvtTeamCircleSet, 50*time.Millisecond)
}

func TestRoom_CountdownTicksDownToDark(t *testing.T) {
	r := newTestRoom(t)
	out := connect(t, r, "c1")
	joinTeam(t, r, "c1", "Anna", "Alpha")
	startRound(r, "c1", pixelConfig(3))

	recvType(t, out, game.EvtRoundConfig, time.Second)

	first := recvType(t, out, game.EvtRoundTick, 1500*time.Millisecond)
	if p := first.Payload.(game.TickPayload); p.SecondsRemaining != 2 {
		t.Fatalf("want 2 seconds remaining, got %d", p.SecondsRemaining)
	}
	recvType(t, out, game.EvtRoundDark, 3*time.Second)

	v := recvView(t, r)
	if v.Phase != game.PhaseDark {
		t.Fatalf("want dark phase, got %v", v.Phase)
	}
}

func TestRoom_NewRoundCancelsOldCountdown(t *testing.T) {
	r := newTestRoom(t)
	out := connect(t, r, "c1")
	joinTeam(t, r, "c1", "Anna", "Alpha")

	startRound(r, "c1", pixelConfig(3))
	// Replace immediately; the 3s countdown must never reach dark.
	startRound(r, "c1", pixelConfig(10))

	tick := recvType(t, out, game.EvtRoundTick, 1500*time.Millisecond)
	if p := tick.Payload.(game.TickPayload); p.SecondsRemaining != 9 {
		t.Fatalf("tick belongs to the old round: remaining=%d", p.SecondsRemaining)
	}
	expectNoType(t, out, game.EvtRoundDark, 2500*time.Millisecond)

	v := recvView(t, r)
	if v.Phase != game.PhaseCountdown {
		t.Fatalf("new round must still be counting, got %v", v.Phase)
	}
	if len(v.History) != 1 || len(v.History[0].Winners) != 0 {
		t.Fatalf("superseded round must be in history with no winners: %+v", v.History)
	}
}

func TestRoom_InFlightStaleTickLeavesNewCountdownRunning(t *testing.T) {
	r := newTestRoom(t)
	out := connect(t, r, "c1")
	joinTeam(t, r, "c1", "Anna", "Alpha")

	startRound(r, "c1", pixelConfig(30))
	startRound(r, "c1", pixelConfig(3))
	// A fire from the first round's ticker can already sit in the
	// inbox when the replacement is processed. It must be dropped
	// without stopping the new round's ticker.
	r.Inbox() <- tick{gen: 1}

	first := recvType(t, out, game.EvtRoundTick, 1500*time.Millisecond)
	if p := first.Payload.(game.TickPayload); p.SecondsRemaining != 2 {
		t.Fatalf("want 2 seconds remaining, got %d", p.SecondsRemaining)
	}
	recvType(t, out, game.EvtRoundDark, 3*time.Second)

	v := recvView(t, r)
	if v.Phase != game.PhaseDark {
		t.Fatalf("want dark phase, got %v", v.Phase)
	}
}

func TestRoom_RevealAreaAutoNext_DelayedBroadcasts(t *testing.T) {
	r := newTestRoom(t)
	admin := connect(t, r, "adm")
	r.Inbox() <- FromClient{ClientID: "adm", Cmd: game.Command{Type: game.CmdAdminHello, ActorID: "adm"}}
	player := connect(t, r, "p1")
	joinTeam(t, r, "p1", "Anna", "Alpha")

	startRound(r, "adm", pixelConfig(30))
	r.Inbox() <- FromClient{ClientID: "adm", Cmd: game.Command{
		Type: game.CmdRevealArea, ActorID: "adm", AutoNext: true, DelayMs: 100,
	}}

	recvType(t, player, game.EvtRevealArea, time.Second)
	// Show-full is min(100ms, 5s) away.
	recvType(t, player, game.EvtShowFull, time.Second)
	// Advance request is max(100ms, 1.5s) + 2s away and admin-only.
	expectNoType(t, player, game.EvtRequestNext, 100*time.Millisecond)
	recvType(t, admin, game.EvtRequestNext, 5*time.Second)
}

func TestRoom_AutoNextCancelledByNewRound(t *testing.T) {
	r := newTestRoom(t)
	admin := connect(t, r, "adm")
	r.Inbox() <- FromClient{ClientID: "adm", Cmd: game.Command{Type: game.CmdAdminHello, ActorID: "adm"}}

	startRound(r, "adm", pixelConfig(30))
	r.Inbox() <- FromClient{ClientID: "adm", Cmd: game.Command{
		Type: game.CmdRevealArea, ActorID: "adm", AutoNext: true, DelayMs: 2000,
	}}
	recvType(t, admin, game.EvtRevealArea, time.Second)

	// Supersede before either delayed broadcast fires.
	startRound(r, "adm", pixelConfig(30))

	expectNoType(t, admin, game.EvtShowFull, 2500*time.Millisecond)
	expectNoType(t, admin, game.EvtRequestNext, 2*time.Second)
}

func TestRoom_Leave_RemovesPlayerKeepsTeam(t *testing.T) {
	r := newTestRoom(t)
	out := connect(t, r, "c1")
	watcher := connect(t, r, "w1")
	joinTeam(t, r, "c1", "Anna", "Alpha")
	recvType(t, out, game.EvtPlayerAccepted, time.Second)

	r.Inbox() <- Leave{ClientID: "c1"}

	state := recvType(t, watcher, game.EvtState, time.Second)
	for {
		p := state.Payload.(game.StatePayload)
		if len(p.Players) == 0 {
			if len(p.Teams) != 1 {
				t.Fatalf("team must survive its last player: %+v", p)
			}
			break
		}
		state = recvType(t, watcher, game.EvtState, time.Second)
	}

	v := recvView(t, r)
	if v.NumClients != 1 || len(v.Players) != 0 || len(v.Teams) != 1 {
		t.Fatalf("bad view after leave: %+v", v)
	}
}

func TestRoom_SlowClientIsDropped(t *testing.T) {
	r := newTestRoom(t)
	// Unbuffered outbox that nobody reads.
	out := make(chan types.ServerMessage)
	r.Inbox() <- Join{ClientID: "slow", Outbox: out}
	joinTeam(t, r, "slow", "Anna", "Alpha")

	v := recvView(t, r)
	if v.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped, NumClients=%d", v.NumClients)
	}
}

func TestRoom_AdminHello_ReceivesHistory(t *testing.T) {
	r := newTestRoom(t)
	admin := connect(t, r, "adm")
	r.Inbox() <- FromClient{ClientID: "adm", Cmd: game.Command{Type: game.CmdAdminHello, ActorID: "adm"}}

	recvType(t, admin, game.EvtState, time.Second)
	msg := recvType(t, admin, game.EvtHistory, time.Second)
	if h := msg.Payload.([]game.HistoryEntry); len(h) != 0 {
		t.Fatalf("fresh session has empty history, got %d", len(h))
	}
}
