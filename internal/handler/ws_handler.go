package handler

import (
	"net/http"
	"time"

	"github.com/cinematalkiez/blackhole/internal/gate"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler upgrades home screens to the live catalogue feed
type WSHandler struct {
	hub      *ws.Hub
	browser  BrowserStorage
	now      func() time.Time
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewWSHandler creates the feed handler. Cross-origin upgrades are accepted
// only from origins.
func NewWSHandler(hub *ws.Hub, browser BrowserStorage, now func() time.Time, origins []string, log *zap.Logger) *WSHandler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:     hub,
		browser: browser,
		now:     now,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed[origin] {
					return true
				}
				// same host
				return origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// CatalogFeed godoc
// @Summary Live catalogue feed
// @Description WebSocket delivering movie_published events. Requires a valid local token in the storage cookie.
// @Tags Catalog
// @Success 101
// @Failure 401 {object} model.ErrorResponse
// @Router /ws/catalog [get]
func (h *WSHandler) CatalogFeed(c *gin.Context) {
	store := h.browser.load(c)
	if !gate.LocalValid(store, h.now()) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Valid token required"})
		return
	}
	deviceID, _ := store.Get(gate.KeyUserID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, deviceID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
