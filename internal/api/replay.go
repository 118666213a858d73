package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"battlesim/internal/combat"
	"battlesim/internal/config"
	"battlesim/internal/util"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

const (
	FrameInit   = "init"
	FrameEvent  = "event"
	FrameResult = "result"
	FrameError  = "error"
)

// Frame is one replay message. Type selects which fields are set.
type Frame struct {
	Type             string                             `json:"type"`
	BattleID         string                             `json:"battle_id,omitempty"`
	Seed             int64                              `json:"seed,omitempty"`
	InitialPositions map[combat.Side][]combat.Placement `json:"initial_positions,omitempty"`
	Event            *combat.Event                      `json:"event,omitempty"`
	Result           *ReplayResult                      `json:"result,omitempty"`
	Error            string                             `json:"error,omitempty"`
}

type ReplayResult struct {
	Winner            combat.Side `json:"winner,omitempty"`
	Rounds            int         `json:"rounds"`
	AttackerRemaining int         `json:"attacker_remaining"`
	DefenderRemaining int         `json:"defender_remaining"`
}

// Replay handles GET /api/battles/replay. The client sends one scenario
// message (JSON or YAML) and receives the battle frame by frame.
func (h *Handler) Replay(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		h.log.Debug("replay client left before sending a scenario", zap.Error(err))
		return
	}
	sc, err := config.ParseScenario(msg)
	var in combat.Input
	if err == nil {
		in, err = sc.BattleInput()
	}
	if err != nil {
		h.send(conn, Frame{Type: FrameError, Error: err.Error()})
		h.closeConn(conn, websocket.CloseInvalidFramePayloadData, "invalid scenario")
		return
	}

	id := BattleID(sc)
	out := combat.Simulate(in, util.New(sc.Seed), combat.WithLogger(h.log.With(zap.String("battle", id))))

	if !h.send(conn, Frame{Type: FrameInit, BattleID: id, Seed: sc.Seed, InitialPositions: out.InitialPositions}) {
		return
	}
	for i := range out.Events {
		if !h.send(conn, Frame{Type: FrameEvent, Event: &out.Events[i]}) {
			return
		}
	}
	if !h.send(conn, Frame{Type: FrameResult, BattleID: id, Result: &ReplayResult{
		Winner:            out.Winner,
		Rounds:            out.Rounds,
		AttackerRemaining: out.AttackerRemaining,
		DefenderRemaining: out.DefenderRemaining,
	}}) {
		return
	}
	h.closeConn(conn, websocket.CloseNormalClosure, "")
}

func (h *Handler) send(conn *websocket.Conn, f Frame) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		h.log.Debug("replay send failed", zap.String("frame", f.Type), zap.Error(err))
		return false
	}
	return true
}

func (h *Handler) closeConn(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
