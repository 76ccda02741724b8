package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Flasche999/Bilder-Quiz-2/internal/game"
	"github.com/Flasche999/Bilder-Quiz-2/internal/room"
	"github.com/Flasche999/Bilder-Quiz-2/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
)

// Handler bridges one websocket connection to the room actor: inbound
// frames become commands on the inbox, outbox events are written back.
func Handler(rm *room.Room, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 16)
		clientID := randID(8)
		log.Infow("client connected", "client", clientID)

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() {
			log.Infow("client disconnected", "client", clientID)
			rm.Inbox() <- room.Leave{ClientID: clientID}
		}()

		// Writer goroutine: drains the outbox until the room closes it.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}
			if cm.Type == "ping" {
				continue
			}

			cmd, ok := toCommand(clientID, cm)
			if !ok {
				writeError(r.Context(), conn, "unknown type")
				continue
			}
			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{
		Type:    game.EvtToast,
		Payload: game.ToastPayload{Message: msg},
	})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func toCommand(clientID string, m types.ClientMessage) (game.Command, bool) {
	cmd := game.Command{ActorID: clientID}
	switch m.Type {
	case "player:join":
		cmd.Type = game.CmdJoin
		cmd.Name = m.Name
		cmd.TeamName = m.TeamName
	case "player:hello":
		cmd.Type = game.CmdPlayerHello
	case "admin:hello":
		cmd.Type = game.CmdAdminHello
	case "team:setCircle":
		cmd.Type = game.CmdSetCircle
		cmd.X, cmd.Y, cmd.Normalized = m.X, m.Y, m.Normalized
	case "team:confirm":
		cmd.Type = game.CmdConfirm
	case "team:unconfirm":
		cmd.Type = game.CmdUnconfirm
	case "admin:setTurn":
		cmd.Type = game.CmdSetTurn
		cmd.TeamID = m.TeamID
	case "admin:nextTurn":
		cmd.Type = game.CmdNextTurn
	case "admin:prevTurn":
		cmd.Type = game.CmdPrevTurn
	case "admin:startRound", "admin:newRound":
		if m.Type == "admin:newRound" {
			cmd.Type = game.CmdNewRound
		} else {
			cmd.Type = game.CmdStartRound
		}
		cmd.Round = game.RoundConfig{
			ImageURL: m.ImageURL,
			Question: m.Question,
			Duration: m.Duration,
			Radius:   m.Radius,
		}
		if m.Target != nil {
			cmd.Round.HasTarget = true
			cmd.Round.Target = game.Target{X: m.Target.X, Y: m.Target.Y}
			cmd.Round.Normalized = m.Target.Normalized
		}
	case "admin:revealTeamCircles":
		cmd.Type = game.CmdRevealCircles
	case "admin:hideTeamCircles":
		cmd.Type = game.CmdHideCircles
	case "admin:clearTeamCircles":
		cmd.Type = game.CmdClearCircles
	case "admin:revealArea":
		cmd.Type = game.CmdRevealArea
		cmd.AutoNext = m.AutoNext
		cmd.DelayMs = m.DelayMs
	case "admin:showFull":
		cmd.Type = game.CmdShowFull
	case "admin:adjustPoints":
		cmd.Type = game.CmdAdjustPoints
		cmd.TeamID = m.TeamID
		cmd.Delta = m.Delta
	default:
		return game.Command{}, false
	}
	return cmd, true
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
