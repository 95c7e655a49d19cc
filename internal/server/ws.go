package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/ir"
)

const writeWait = 5 * time.Second

// Server to client message types.
const (
	MsgScene   = "scene"
	MsgOutcome = "outcome"
	MsgFail    = "fail"
	MsgSuccess = "success"
	MsgSfx     = "sfx"
)

// clientMessage is one gesture from the browser.
type clientMessage struct {
	Type engine.EventType `json:"type"`
	Item string           `json:"item,omitempty"`
	Zone string           `json:"zone,omitempty"`
	X    float64          `json:"x,omitempty"`
	Y    float64          `json:"y,omitempty"`
}

// serverMessage is one push to the browser. Only the fields of its type
// are set.
type serverMessage struct {
	Type     string                `json:"type"`
	Scene    *engine.SceneSnapshot `json:"scene,omitempty"`
	Item     string                `json:"item,omitempty"`
	Zone     string                `json:"zone,omitempty"`
	Outcome  ir.Outcome            `json:"outcome,omitempty"`
	Pipeline ir.Pipeline           `json:"pipeline,omitempty"`
	Sound    string                `json:"sound,omitempty"`
}

// wsSession pushes engine activity to one connection. All of its methods
// run on the engine loop goroutine.
type wsSession struct {
	conn    *websocket.Conn
	session *engine.Session
	outbox  []serverMessage
	cancel  context.CancelFunc
	server  *Server
}

// PlayClick queues the placement click for the client to play.
func (w *wsSession) PlayClick() error {
	w.outbox = append(w.outbox, serverMessage{Type: MsgSfx, Sound: "click"})
	return nil
}

// observe flushes one applied event: resolved attempts first, then hook
// and sound messages, then the new scene.
func (w *wsSession) observe(step engine.Step) {
	for _, a := range step.Attempts {
		w.send(serverMessage{
			Type:     MsgOutcome,
			Item:     a.ItemID,
			Zone:     a.ZoneID,
			Outcome:  a.Outcome,
			Pipeline: a.Pipeline,
		})
	}
	for _, m := range w.outbox {
		w.send(m)
	}
	w.outbox = w.outbox[:0]
	w.sendScene()
}

func (w *wsSession) sendScene() {
	snap := w.session.Snapshot()
	w.send(serverMessage{Type: MsgScene, Scene: &snap})
}

func (w *wsSession) send(m serverMessage) {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteJSON(m); err != nil {
		w.server.logger.Warn("websocket write failed", "session_id", w.session.ID(), "type", m.Type, "error", err)
		w.cancel()
	}
}

// handleSession upgrades to a websocket and plays one sortable task.
//
// Query: category and task pick the task; w and h give the mount size.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	catID, taskID := q.Get("category"), q.Get("task")
	if catID == "" || taskID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "category and task are required"})
		return
	}
	mount, err := parseMount(q.Get("w"), q.Get("h"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	task, err := s.store.ReadTask(r.Context(), catID, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "unknown task " + catID + "/" + taskID})
		return
	}
	if err != nil {
		s.logger.Error("read task", "category", catID, "task", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "failed to read task"})
		return
	}
	if task.Puzzle == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp{Error: "template " + task.Template + " is not sortable"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.play(r.Context(), conn, mount, task)
}

func parseMount(ws, hs string) (engine.Mount, error) {
	var m engine.Mount
	if ws == "" && hs == "" {
		return m, nil
	}
	var err error
	if m.Width, err = strconv.ParseFloat(ws, 64); err != nil {
		return m, errors.New("w must be a number")
	}
	if m.Height, err = strconv.ParseFloat(hs, 64); err != nil {
		return m, errors.New("h must be a number")
	}
	return m, nil
}

// play runs one session until the client disconnects.
func (s *Server) play(parent context.Context, conn *websocket.Conn, mount engine.Mount, task ir.Task) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	ws := &wsSession{conn: conn, cancel: cancel, server: s}
	ws.session = engine.NewSession(mount, *task.Puzzle, engine.Hooks{
		OnFail:    func() { ws.outbox = append(ws.outbox, serverMessage{Type: MsgFail}) },
		OnSuccess: func() { ws.outbox = append(ws.outbox, serverMessage{Type: MsgSuccess}) },
	},
		engine.WithSessionID(s.ids.Generate()),
		engine.WithCompletionDelay(s.delay),
		engine.WithSound(ws),
		engine.WithLogger(s.logger),
	)
	log := s.logger.With("session_id", ws.session.ID(), "category", task.CategoryID, "task", task.ID)

	hash, err := ir.PuzzleHash(*task.Puzzle)
	if err != nil {
		log.Error("hash puzzle", "error", err)
		return
	}
	rec := ir.SessionRecord{
		ID:         ws.session.ID(),
		CategoryID: task.CategoryID,
		TaskID:     task.ID,
		PuzzleHash: hash,
		Puzzle:     *task.Puzzle,
		ItemCount:  ws.session.ItemCount(),
	}
	if err := s.store.WriteSession(ctx, rec); err != nil {
		log.Error("write session", "error", err)
		return
	}

	eng := engine.New(ws.session,
		engine.WithRecorder(s.store),
		engine.WithObserver(ws.observe),
	)

	// The loop is not running yet, so this write has no competitor.
	ws.sendScene()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	log.Info("session started")

	s.readGestures(ctx, conn, eng, log)

	eng.Stop()
	<-done
	log.Info("session ended", "placed", ws.session.PlacedCount(), "complete", ws.session.Complete())
}

// readGestures enqueues client messages until the connection closes or
// ctx is cancelled.
func (s *Server) readGestures(ctx context.Context, conn *websocket.Conn, eng *engine.Engine, log *slog.Logger) {
	go func() {
		<-ctx.Done()
		// Unblock ReadMessage when a write failure cancelled the session.
		_ = conn.SetReadDeadline(time.Now())
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug("discarding malformed message", "error", err)
			continue
		}
		ev := engine.Event{Type: msg.Type, ItemID: msg.Item, ZoneID: msg.Zone, X: msg.X, Y: msg.Y}
		if !eng.Enqueue(ev) {
			return
		}
	}
}
