// Package push delivers workspace events to websocket subscribers.
package push

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Hub holds the open subscriptions of every client. A client may hold
// several, one per connected device tab.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
	log  zerolog.Logger
}

// subscriber is one open push connection. send is never closed; done marks
// the end of the subscription.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), log: log}
}

// Deliver writes event to every subscription of its client. A subscriber
// whose buffer is full is disconnected.
func (h *Hub) Deliver(event domain.Event) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[event.ClientID]))
	for s := range h.subs[event.ClientID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("client_id", event.ClientID).Msg("encode push event")
		return
	}
	for _, s := range targets {
		if s.closed() {
			continue
		}
		select {
		case s.send <- msg:
		default:
			metrics.EventsDroppedTotal.WithLabelValues("subscriber_slow").Inc()
			h.log.Warn().Str("client_id", event.ClientID).Msg("push subscriber too slow, disconnecting")
			h.remove(event.ClientID, s)
		}
	}
}

// Serve runs a subscription until the connection drops. It owns conn.
func (h *Hub) Serve(clientID string, conn *websocket.Conn) {
	s := newSubscriber(conn)
	h.add(clientID, s)
	go h.writePump(s)
	h.readPump(clientID, s)
}

// Subscribers returns the number of open subscriptions of a client.
func (h *Hub) Subscribers(clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[clientID])
}

// CloseClient disconnects every subscription of a client.
func (h *Hub) CloseClient(clientID string) {
	h.mu.Lock()
	subs := h.subs[clientID]
	delete(h.subs, clientID)
	h.mu.Unlock()
	for s := range subs {
		metrics.PushSubscribers.Dec()
		s.close()
	}
}

func (h *Hub) add(clientID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[clientID] == nil {
		h.subs[clientID] = make(map[*subscriber]struct{})
	}
	h.subs[clientID][s] = struct{}{}
	metrics.PushSubscribers.Inc()
}

func (h *Hub) remove(clientID string, s *subscriber) {
	h.mu.Lock()
	set := h.subs[clientID]
	_, ok := set[s]
	if ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, clientID)
		}
	}
	h.mu.Unlock()
	if ok {
		metrics.PushSubscribers.Dec()
		s.close()
	}
}

// readPump only serves control frames; clients have nothing to say on the push channel.
func (h *Hub) readPump(clientID string, s *subscriber) {
	defer func() {
		h.remove(clientID, s)
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.log.Debug().Err(err).Str("client_id", clientID).Msg("push connection closed")
			}
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
