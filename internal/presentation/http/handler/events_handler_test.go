package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/infrastructure/events"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventTypes(t *testing.T) {
	assert.Nil(t, ParseEventTypes(""))
	assert.Equal(t,
		[]event.Type{event.KitchenStatusChanged, event.StockAdjusted},
		ParseEventTypes(" kitchen-status-changed, ,stock-adjusted"),
	)
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"http://register.local"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://api.local/api/v1/events/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, check(req("")))
	assert.True(t, check(req("http://api.local")))
	assert.True(t, check(req("http://register.local")))
	assert.False(t, check(req("http://evil.example")))
	assert.True(t, OriginChecker([]string{"*"})(req("http://evil.example")))
}

func TestEventsHandler_RejectsForeignOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := events.NewBus(8, logger.NewNop())

	r := gin.New()
	r.GET("/ws", NewEventsHandler(bus, logger.NewNop(), []string{"http://kds.local"}).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, bus.Subscribers())

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://kds.local"}})
	require.NoError(t, err)
	conn.Close()
}

func TestEventsHandler_StreamsFilteredEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := events.NewBus(8, logger.NewNop())

	r := gin.New()
	r.GET("/ws", NewEventsHandler(bus, logger.NewNop(), []string{"http://kds.local"}).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?types=stock-adjusted"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	at := time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)
	bus.Publish(event.Event{Type: event.KitchenStatusChanged, OccurredAt: at})
	bus.Publish(event.Event{Type: event.StockAdjusted, OccurredAt: at, Payload: event.StockAdjustedPayload{Delta: -2, Reason: event.ReasonSale}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type    string `json:"type"`
		Payload struct {
			Delta  int    `json:"delta"`
			Reason string `json:"reason"`
		} `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "stock-adjusted", got.Type)
	assert.Equal(t, -2, got.Payload.Delta)
	assert.Equal(t, "sale", got.Payload.Reason)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
