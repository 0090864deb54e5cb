/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"trokazz-server/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens before the upgrade; the token already scopes the channel.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type userMessage struct {
	userId  string
	payload []byte
}

// Hub fans notifications out to each user's open websocket subscriptions.
// Delivery is best-effort: the notification row is the source of truth and
// offline clients catch up through the list endpoint.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	clients    map[string]map[*Client]bool

	stopChan chan struct{}
	doneChan chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userMessage, 64),
		clients:    make(map[string]map[*Client]bool),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start launches the hub loop.
func (h *Hub) Start() {
	go h.run()
	zap.L().Info("Notification hub started")
}

// Stop gracefully shuts down the hub and closes all client connections.
func (h *Hub) Stop() {
	zap.L().Info("Stopping notification hub")
	close(h.stopChan)
	<-h.doneChan
	zap.L().Info("Notification hub stopped")
}

func (h *Hub) run() {
	defer close(h.doneChan)

	for {
		select {
		case client := <-h.register:
			if h.clients[client.userId] == nil {
				h.clients[client.userId] = make(map[*Client]bool)
			}
			h.clients[client.userId][client] = true
			zap.L().Debug("Realtime subscription opened", zap.String("user_id", client.userId))

		case client := <-h.unregister:
			if conns, ok := h.clients[client.userId]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.userId)
				}
				zap.L().Debug("Realtime subscription closed", zap.String("user_id", client.userId))
			}

		case msg := <-h.broadcast:
			for client := range h.clients[msg.userId] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop the connection, not the loop.
					delete(h.clients[msg.userId], client)
					close(client.send)
				}
			}

		case <-h.stopChan:
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			return
		}
	}
}

// Publish delivers a notification to every open subscription for the user.
func (h *Hub) Publish(userId string, notification models.Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		zap.L().Error("Failed to encode notification", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- userMessage{userId: userId, payload: payload}:
	case <-h.stopChan:
	}
}

// Client is one websocket subscription for one user.
type Client struct {
	hub    *Hub
	userId string
	conn   *websocket.Conn
	send   chan []byte
}

// ServeWS upgrades the request and starts the read/write pumps for an
// authenticated user.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userId string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    h,
		userId: userId,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	select {
	case h.register <- client:
	case <-h.stopChan:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// detach removes the client from the hub. The run loop may already be gone,
// so never park on the unregister send after Stop.
func (c *Client) detach() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.stopChan:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.detach()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Clients only receive; any read error means the peer is gone.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("Websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
