package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Доступ уже ограничен API-ключом
		return true
	},
}

// parseEventFilter читает необязательный фильтр по инциденту из query-параметра
func parseEventFilter(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("incident_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// @Summary Stream dispatch events over SSE
// @Description Server-sent event stream of incident and ambulance updates. Optionally filtered by incident. Requires API key.
// @Tags Events
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Param incident_id query string false "Only events for this incident"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} map[string]string "Invalid incident_id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /events/stream [get]
func (h *Handler) streamEvents(c *gin.Context) {
	filter, ok := parseEventFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident_id"})
		return
	}

	sub := h.bus.Subscribe(filter)
	defer sub.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-sub.C:
			if !open {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// @Summary Stream dispatch events over WebSocket
// @Description WebSocket stream of incident and ambulance updates. Optionally filtered by incident. Requires API key.
// @Tags Events
// @Security ApiKeyAuth
// @Param incident_id query string false "Only events for this incident"
// @Success 101 {string} string "switching protocols"
// @Failure 400 {object} map[string]string "Invalid incident_id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /events/ws [get]
func (h *Handler) streamEventsWS(c *gin.Context) {
	log := h.logger.WithField("method", "streamEventsWS")

	filter, ok := parseEventFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident_id"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade connection")
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe(filter)
	defer sub.Close()

	// Читатель нужен только для обнаружения закрытия со стороны клиента
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, open := <-sub.C:
			if !open {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Debug("Failed to write event to websocket")
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}
