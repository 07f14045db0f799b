package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"wonders/internal/engine"
	"wonders/internal/protocol"
	"wonders/internal/store"
	"wonders/internal/table"
)

const (
	storeTimeout = 5 * time.Second

	// DefaultIdleTimeout is how long a table with no connections is kept.
	DefaultIdleTimeout = 30 * time.Minute
)

// Hub manages WebSocket connections and snapshot traffic for one table.
// Only the Run goroutine changes the client set.
type Hub struct {
	mu         sync.Mutex
	tableID    string
	table      *table.Table
	store      store.Provider
	eval       *engine.Evaluator
	log        *zap.Logger
	epoch      uint64
	clients    map[*Client]string // client -> player it acts for
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	stopOnce   sync.Once

	idleTimeout time.Duration
	onIdle      func(tableID string)
}

func NewHub(t *table.Table, provider store.Provider, eval *engine.Evaluator, log *zap.Logger) *Hub {
	return &Hub{
		tableID:     t.ID,
		table:       t,
		store:       provider,
		eval:        eval,
		log:         log.With(zap.String("table", t.ID)),
		clients:     make(map[*Client]string),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		incoming:    make(chan IncomingMessage, 256),
		quit:        make(chan struct{}),
		idleTimeout: DefaultIdleTimeout,
	}
}

// Run serves the table until Stop is called or the table has had no
// connection for the idle timeout. On exit every client is closed.
func (h *Hub) Run() {
	idle := time.NewTimer(h.idleTimeout)
	defer func() {
		idle.Stop()
		h.Stop()
		h.closeAll()
	}()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = client.id
			h.mu.Unlock()
			idle.Stop()
			h.log.Debug("client connected", zap.String("client", client.id))
			h.sendTableUpdate()

		case client := <-h.unregister:
			h.mu.Lock()
			player, ok := h.clients[client]
			delete(h.clients, client)
			empty := len(h.clients) == 0
			h.mu.Unlock()
			if !ok {
				continue
			}
			client.close()
			if empty {
				idle.Reset(h.idleTimeout)
			}
			if !h.table.Started() && player != "" {
				h.table.Leave(player)
				h.sendTableUpdate()
			}

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-idle.C:
			h.log.Info("table idle, closing")
			if h.onIdle != nil {
				h.onIdle(h.tableID)
			}
			return

		case <-h.quit:
			return
		}
	}
}

// Stop ends the Run loop. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
		delete(h.clients, client)
	}
}

// attach hands a new connection to the hub. It reports false once the hub
// has stopped.
func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// submit queues a message from c, or reports false once the hub has stopped.
func (h *Hub) submit(msg IncomingMessage) bool {
	select {
	case h.incoming <- msg:
		return true
	case <-h.quit:
		return false
	}
}

// leave detaches c. It returns at once when the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// player returns the player c acts for and whether c is still connected.
func (h *Hub) player(c *Client) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.clients[c]
	return id, ok
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	if _, ok := h.player(msg.Client); !ok {
		h.log.Debug("message from departed client dropped",
			zap.String("client", msg.Client.id), zap.String("type", msg.Envelope.Type))
		return
	}
	switch msg.Envelope.Type {
	case protocol.MsgJoin:
		h.handleJoin(msg)
	case protocol.MsgReady:
		h.handleReady(msg)
	case protocol.MsgStart:
		h.handleStart(msg)
	case protocol.MsgSnapshot:
		h.handleSnapshot(msg)
	case protocol.MsgHand:
		h.handleHand(msg)
	case protocol.MsgEvaluate:
		h.handleEvaluate(msg)
	default:
		h.sendError(msg.Client, "unknown message type "+msg.Envelope.Type)
	}
}

func (h *Hub) handleJoin(msg IncomingMessage) {
	var join protocol.JoinMsg
	if err := msg.Envelope.Decode(&join); err != nil {
		h.sendError(msg.Client, "invalid join message")
		return
	}
	player, _ := h.player(msg.Client)
	if join.PlayerID != "" {
		player = join.PlayerID
	}
	if player == "" {
		h.sendError(msg.Client, "join needs a player id")
		return
	}
	if err := h.table.JoinWith(player, join.Name, join.Wonder); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.mu.Lock()
	h.clients[msg.Client] = player
	h.mu.Unlock()
	h.sendTableUpdate()
}

func (h *Hub) handleReady(msg IncomingMessage) {
	var ready protocol.ReadyMsg
	if err := msg.Envelope.Decode(&ready); err != nil {
		h.sendError(msg.Client, "invalid ready message")
		return
	}
	player, _ := h.player(msg.Client)
	if !h.table.Seated(player) {
		h.sendError(msg.Client, "join the table first")
		return
	}
	h.table.SetReady(player, ready.Ready)
	h.sendTableUpdate()
}

// handleStart seats the table and publishes the opening snapshot.
func (h *Hub) handleStart(msg IncomingMessage) {
	snap, err := h.table.Start()
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	if err := h.save(snap); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.log.Info("table started", zap.Int("seats", len(snap.Seats)))
	h.sendTableUpdate()
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgSnapshotAccepted, protocol.SnapshotAccepted{Epoch: snap.Epoch}))
}

// handleSnapshot stores a newer table state published by the turn manager.
func (h *Hub) handleSnapshot(msg IncomingMessage) {
	var sm protocol.SnapshotMsg
	if err := msg.Envelope.Decode(&sm); err != nil {
		h.sendError(msg.Client, "invalid snapshot message")
		return
	}
	snap, err := sm.Resolve()
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	if err := h.save(snap); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgSnapshotAccepted, protocol.SnapshotAccepted{Epoch: snap.Epoch}))
}

func (h *Hub) handleHand(msg IncomingMessage) {
	var hm protocol.HandMsg
	if err := msg.Envelope.Decode(&hm); err != nil {
		h.sendError(msg.Client, "invalid hand message")
		return
	}
	hand, err := handCards(hm.Cards, hm.Names)
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.evaluate(msg.Client, hm.PlayerID, hm.Epoch, hand)
}

func (h *Hub) handleEvaluate(msg IncomingMessage) {
	var em protocol.EvaluateMsg
	if err := msg.Envelope.Decode(&em); err != nil {
		h.sendError(msg.Client, "invalid evaluate message")
		return
	}
	var (
		inline []engine.Card
		names  []string
	)
	switch {
	case em.Card != nil:
		inline = []engine.Card{*em.Card}
	case em.Name != "":
		names = []string{em.Name}
	default:
		h.sendError(msg.Client, "evaluate needs a card or a name")
		return
	}
	hand, err := handCards(inline, names)
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.evaluate(msg.Client, em.PlayerID, em.Epoch, hand)
}

// evaluate answers a hand or evaluate request against the latest snapshot.
// The request must name the epoch it was computed for.
func (h *Hub) evaluate(client *Client, playerID string, epoch uint64, hand []*engine.Card) {
	if playerID == "" {
		playerID, _ = h.player(client)
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	snap, err := h.store.Latest(ctx, h.tableID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}
	if snap.Epoch != epoch {
		h.sendError(client, store.ErrStaleEpoch.Error())
		return
	}
	results, err := h.eval.EvaluateHand(hand, snap, playerID)
	if err != nil {
		h.log.Warn("evaluation failed", zap.String("player", playerID), zap.Uint64("epoch", epoch), zap.Error(err))
		h.sendError(client, err.Error())
		return
	}
	client.SendEnvelope(protocol.MustEnvelope(protocol.MsgEvaluation, protocol.EvaluationMsg{
		PlayerID: playerID,
		Epoch:    snap.Epoch,
		Results:  results,
	}))
}

func (h *Hub) save(snap *engine.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := h.store.Save(ctx, h.tableID, snap); err != nil {
		if !errors.Is(err, store.ErrStaleEpoch) {
			h.log.Error("save snapshot", zap.Uint64("epoch", snap.Epoch), zap.Error(err))
		}
		return err
	}
	h.epoch = snap.Epoch
	return nil
}

func (h *Hub) sendTableUpdate() {
	seats := h.table.Seats()
	players := make([]protocol.TablePlayer, len(seats))
	for i, s := range seats {
		players[i] = protocol.TablePlayer{ID: s.ID, Name: s.Name, Wonder: s.Wonder, Ready: s.Ready}
	}
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgTableUpdate, protocol.TableUpdate{
		TableID: h.tableID,
		Players: players,
		Started: h.table.Started(),
		Epoch:   h.epoch,
	}))
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("broadcast marshal", zap.String("type", env.Type), zap.Error(err))
		return
	}
	for client, player := range h.clients {
		if !client.deliver(data) {
			h.log.Warn("client buffer full", zap.String("player", player))
		}
	}
}

func (h *Hub) sendError(client *Client, message string) {
	client.SendEnvelope(protocol.ErrorEnvelope(message))
}
