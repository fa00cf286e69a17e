package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
	"github.com/satriahrh/lansia/internal/playback"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	defaultFrameDuration = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HubConfig holds the readback streaming settings
// Optional fields with defaults:
// - PlaybackTimeout: upper bound of one readback session (default: playback controller default)
// - MaxTextChars: rune limit of readback text (default: no limit)
// - FrameDuration: audio carried by one binary frame, also the pacing interval (default: 100ms)
type HubConfig struct {
	PlaybackTimeout time.Duration
	MaxTextChars    int
	FrameDuration   time.Duration
}

// Hub maintains the set of active clients, one per device.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	synthesizer     repositories.SpeechSynthesizer
	validator       *MessageValidator
	playbackTimeout time.Duration
	frameDuration   time.Duration

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(synthesizer repositories.SpeechSynthesizer, config HubConfig, logger *zap.Logger) *Hub {
	frameDuration := config.FrameDuration
	if frameDuration <= 0 {
		frameDuration = defaultFrameDuration
	}

	return &Hub{
		clients:         make(map[string]*Client),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		done:            make(chan struct{}),
		synthesizer:     synthesizer,
		validator:       NewMessageValidator(config.MaxTextChars),
		playbackTimeout: config.PlaybackTimeout,
		frameDuration:   frameDuration,
		logger:          logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if previous, ok := h.clients[client.deviceID]; ok {
				h.logger.Info("Replacing existing connection", zap.String("deviceID", client.deviceID))
				previous.closeSend()
			}
			h.clients[client.deviceID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("deviceID", client.deviceID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.deviceID]; ok && current == client {
				delete(h.clients, client.deviceID)
			}
			h.mu.Unlock()
			client.closeSend()
			h.logger.Info("Client unregistered", zap.String("deviceID", client.deviceID))

		case <-ctx.Done():
			h.mu.Lock()
			for deviceID, client := range h.clients {
				client.closeSend()
				delete(h.clients, deviceID)
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected devices
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Guards send against writes after close.
	sendMu sync.Mutex
	closed bool

	// Device ID for this client
	deviceID string

	// Lives as long as the connection; parent of every readback session.
	ctx    context.Context
	cancel context.CancelFunc

	controller *playback.Controller

	logger *zap.Logger
}

// HandleWebSocketWithAuth handles websocket requests with pre-authenticated device ID
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, deviceID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(hub, conn, deviceID, logger.With(zap.String("deviceID", deviceID)))

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

func newClient(hub *Hub, conn *websocket.Conn, deviceID string, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan WriteData, 256),
		deviceID: deviceID,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}

	sink := &streamSink{client: client, frameDuration: hub.frameDuration}
	client.controller = playback.NewController(hub.synthesizer, sink, playback.Config{
		Timeout:      hub.playbackTimeout,
		OnSessionEnd: client.onSessionEnd,
	}, logger)

	return client
}

// enqueue hands a message to the write pump. It reports false once the
// connection is closing.
func (c *Client) enqueue(data WriteData) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Client) sendJSON(v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return false
	}
	return c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

// closeSend stops the client's sessions and closes its outbound channel once
func (c *Client) closeSend() {
	c.cancel()

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump pumps messages from the websocket connection to the client.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.controller.Stop()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
			c.closeSend()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		default:
			c.logger.Warn("Ignoring non-text message", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the client to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage processes incoming messages from the device
func (c *Client) processMessage(message []byte) {
	msg, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCodeInvalidMessage, err.Error()))
		return
	}

	switch m := msg.(type) {
	case *ReadbackRequestMessage:
		if !c.controller.RequestPlayback(c.ctx, m.Text) {
			c.logger.Info("Readback request dropped while speaking")
		}
	case *PingMessage:
		c.sendJSON(CreatePongMessage(m.Data))
	}
}

// onSessionEnd tells the device how a readback session ended
func (c *Client) onSessionEnd(session *entities.PlaybackSession) {
	if session.Err == nil {
		c.sendJSON(CreateSpeakingEndMessage(session.ID))
		return
	}
	c.sendJSON(CreateSpeakingErrorMessage(session.ID, errorCode(session.Err), session.Err.Error()))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.Is(err, entities.ErrTransport):
		return ErrorCodeTransport
	case errors.Is(err, entities.ErrEmptyAudio):
		return ErrorCodeEmptyAudio
	case errors.Is(err, entities.ErrDecode):
		return ErrorCodeDecode
	}
	return ErrorCodePlayback
}
