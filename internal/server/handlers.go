package server

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wonders/internal/cards"
	"wonders/internal/engine"
	"wonders/internal/protocol"
	qr "wonders/internal/qrcode"
	"wonders/internal/store"
	"wonders/internal/table"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	mu          sync.Mutex
	tables      *table.Manager
	hubs        map[string]*Hub
	store       store.Provider
	eval        *engine.Evaluator
	log         *zap.Logger
	publicURL   string
	idleTimeout time.Duration
}

func NewHandlers(provider store.Provider, eval *engine.Evaluator, cfg Config, log *zap.Logger) *Handlers {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Handlers{
		tables:      table.NewManager(),
		hubs:        make(map[string]*Hub),
		store:       provider,
		eval:        eval,
		log:         log,
		publicURL:   cfg.PublicURL,
		idleTimeout: idle,
	}
}

func (h *Handlers) hub(id string) *Hub {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hubs[id]
}

// removeTable forgets a table whose hub has gone idle.
func (h *Handlers) removeTable(id string) {
	h.mu.Lock()
	delete(h.hubs, id)
	h.mu.Unlock()
	h.tables.Remove(id)
	h.log.Info("table removed", zap.String("table", id))
}

// Close stops every table hub.
func (h *Handlers) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, hub := range h.hubs {
		hub.Stop()
		delete(h.hubs, id)
	}
}

func (h *Handlers) baseURL(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	return "http://" + c.Request.Host
}

// CreateTable opens a new table and starts its hub.
func (h *Handlers) CreateTable(c *gin.Context) {
	id := h.tables.Create()
	hub := NewHub(h.tables.Get(id), h.store, h.eval, h.log)
	hub.idleTimeout = h.idleTimeout
	hub.onIdle = h.removeTable

	h.mu.Lock()
	h.hubs[id] = hub
	h.mu.Unlock()
	go hub.Run()

	h.log.Info("table created", zap.String("table", id))
	c.JSON(http.StatusCreated, gin.H{
		"table_id": id,
		"join_url": qr.JoinURL(h.baseURL(c), id),
	})
}

// TableQR renders the join link of a table as a PNG.
func (h *Handlers) TableQR(c *gin.Context) {
	id := c.Param("id")
	if h.tables.Get(id) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := qr.JoinLink(h.baseURL(c), id, size)
	if err != nil {
		h.log.Error("qr generation", zap.String("table", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QR generation failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// TableSnapshot returns the latest stored snapshot of a table.
func (h *Handlers) TableSnapshot(c *gin.Context) {
	snap, err := h.store.Latest(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		h.log.Error("load snapshot", zap.String("table", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, snap)
	}
}

// ListCards lists the catalogue, optionally one age, or suggests names for q.
func (h *Handlers) ListCards(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": cards.Suggest(q, 5)})
		return
	}
	if raw := c.Query("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil || age < 1 || age > 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "age must be 1, 2 or 3"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cards": cards.Age(age)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards.All()})
}

// GetCard returns one catalogue card.
func (h *Handlers) GetCard(c *gin.Context) {
	name := c.Param("name")
	card, ok := cards.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":       unknownCard(name).Error(),
			"suggestions": cards.Suggest(name, 3),
		})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Evaluate runs a stateless evaluation against the snapshot in the body.
func (h *Handlers) Evaluate(c *gin.Context) {
	var req protocol.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing player_id"})
		return
	}
	snap, err := req.Resolve()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	hand, err := handCards(req.Cards, req.Names)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := h.eval.EvaluateHand(hand, snap, req.PlayerID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, protocol.EvaluateResponse{
		PlayerID: req.PlayerID,
		Epoch:    snap.Epoch,
		Results:  results,
	})
}

// HandleWS upgrades a table connection.
func (h *Handlers) HandleWS(c *gin.Context) {
	tableID := c.Query("table")
	playerID := c.Query("player")
	if tableID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing table parameter"})
		return
	}
	hub := h.hub(tableID)
	if hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade", zap.String("table", tableID), zap.Error(err))
		return
	}

	client := NewClient(hub, conn, playerID)
	if !hub.attach(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "table closed"), time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// PlayerID returns a new player ID.
func (h *Handlers) PlayerID(c *gin.Context) {
	c.String(http.StatusOK, uuid.NewString())
}
