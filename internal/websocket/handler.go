package websocket

import (
	"net/http"
	"slices"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	"github.com/askwhyharsh/geohunt/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	store    store.Store
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler serves watch subscriptions. Browser origins must be in
// allowedOrigins; clients that send no Origin header are accepted.
func NewHandler(hub *Hub, st store.Store, allowedOrigins []string, log logger.Logger) *Handler {
	return &Handler{
		hub:    hub,
		store:  st,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// GET /coordinates/:role/watch
func (h *Handler) HandleWatch(c *gin.Context) {
	r, err := role.Parse(c.Param("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
			"code":    "INVALID_ROLE",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := NewClient(h.hub, conn, r, h.logger)

	// Send what we already have so watchers do not wait for the next write.
	rec, err := h.store.Get(c.Request.Context(), r)
	if err != nil {
		h.logger.Warn("Failed to load current record", "role", r.String(), "error", err)
	} else if rec != nil {
		client.prime(NewCoordinatesMessage(r, *rec))
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.ctx.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
