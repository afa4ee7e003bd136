package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/infrastructure/events"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// EventsHandler streams committed changes to kitchen displays and registers
type EventsHandler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewEventsHandler creates a websocket handler. Browser upgrades must come
// from the serving host or one of allowedOrigins.
func NewEventsHandler(bus *events.Bus, log *logger.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     OriginChecker(allowedOrigins),
		},
		log: log.Component("events-ws"),
	}
}

// OriginChecker accepts requests without an Origin header (native kitchen
// displays), same-host origins, and origins listed in allowed. "*" allows any.
func OriginChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
				return true
			}
		}
		return false
	}
}

// ParseEventTypes splits a comma separated ?types= value. Empty means all.
func ParseEventTypes(raw string) []event.Type {
	var types []event.Type
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			types = append(types, event.Type(part))
		}
	}
	return types
}

// Stream upgrades the connection and forwards events until either side closes
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe(0, ParseEventTypes(c.Query("types"))...)
	defer sub.Close()

	entry := h.log.WithField("remote", c.ClientIP())
	if id := GetSubjectID(c); id != nil {
		entry = entry.WithField("subject_id", *id)
	}
	entry.Info("event stream opened")

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			entry.Info("event stream closed by client")
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				entry.WithError(err).Debug("event write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed
func (h *EventsHandler) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
