package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionHandler receives connection lifecycle callbacks. OnMessage is
// called from the connection's read loop, one message at a time.
type ConnectionHandler interface {
	OnConnect(conn *Connection)
	OnMessage(conn *Connection, message []byte)
	OnDisconnect(conn *Connection)
}

// ConnectionManager manages the WebSocket connections of the room
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	handler  ConnectionHandler

	broadcastCh chan []byte
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	pingMu   sync.Mutex
	lastPing time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
	SendBufferSize   int
	BroadcastBacklog int
	CheckOrigin      func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   4096,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		SendBufferSize:   256,
		BroadcastBacklog: 1000,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// OriginChecker allows requests without an Origin header and requests whose
// Origin is listed. A "*" entry allows everything.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = 256
	}
	if config.BroadcastBacklog <= 0 {
		config.BroadcastBacklog = 1000
	}
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan []byte, config.BroadcastBacklog),
	}
}

// SetHandler installs the lifecycle handler. It must be called before the
// first connection is upgraded.
func (cm *ConnectionManager) SetHandler(handler ConnectionHandler) {
	cm.handler = handler
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	now := time.Now()
	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: now,
		lastPing:    now,
	}

	cm.registerConnection(connection)
	if cm.handler != nil {
		cm.handler.OnConnect(connection)
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection from the manager. Only the first
// call for a connection notifies the handler.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	if _, exists := cm.connections[conn]; !exists {
		cm.mu.Unlock()
		return
	}
	delete(cm.connections, conn)
	close(conn.Send)
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Msg("connection unregistered")

	if cm.handler != nil {
		cm.handler.OnDisconnect(conn)
	}
}

// Broadcast queues an envelope for every connection. When the backlog is
// full the envelope is dropped.
func (cm *ConnectionManager) Broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(env.Type)).Msg("failed to marshal event for broadcast")
		return
	}

	select {
	case cm.broadcastCh <- data:
	default:
		log.Warn().Str("event_type", string(env.Type)).Msg("broadcast channel full, dropping message")
	}
}

// SendTo delivers an envelope to a single connection. It reports false when
// the connection is gone or its buffer is full.
func (cm *ConnectionManager) SendTo(conn *Connection, env Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(env.Type)).Msg("failed to marshal event")
		return false
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.connections[conn] {
		return false
	}
	select {
	case conn.Send <- data:
		return true
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Str("event_type", string(env.Type)).
			Msg("connection send buffer full, dropping message")
		return false
	}
}

func (cm *ConnectionManager) handleBroadcast(message []byte) {
	var slow []*Connection

	// Sends happen under the read lock so a concurrent unregister cannot
	// close a Send channel mid-broadcast.
	cm.mu.RLock()
	for conn := range cm.connections {
		select {
		case conn.Send <- message:
		default:
			slow = append(slow, conn)
		}
	}
	total := len(cm.connections)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Int("connections", total).
		Int("dropped", len(slow)).
		Msg("event broadcasted")
}

// ConnectionStats summarizes active connections
type ConnectionStats struct {
	TotalConnections int        `json:"total_connections"`
	OldestConnection *time.Time `json:"oldest_connection,omitempty"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{TotalConnections: len(cm.connections)}
	for conn := range cm.connections {
		if stats.OldestConnection == nil || conn.ConnectedAt.Before(*stats.OldestConnection) {
			connectedAt := conn.ConnectedAt
			stats.OldestConnection = &connectedAt
		}
	}
	return stats
}

// LastPing returns when the connection last answered or was sent a ping
func (c *Connection) LastPing() time.Time {
	c.pingMu.Lock()
	defer c.pingMu.Unlock()
	return c.lastPing
}

func (c *Connection) touchPing() {
	c.pingMu.Lock()
	c.lastPing = time.Now()
	c.pingMu.Unlock()
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.touchPing()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.touchPing()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if c.Manager.handler != nil {
			c.Manager.handler.OnMessage(c, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
