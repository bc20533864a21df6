package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum document size accepted from the peer
	maxMessageSize = maxDocumentBytes
)

// createUpgrader creates a WebSocket upgrader with origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// PreviewClient is one open preview socket. Every text message it receives is
// a full document; the reply is that document's rendered view. Broadcasts
// arrive on send, which the manager owns and may close; replies is written
// only by the reader.
type PreviewClient struct {
	id      string
	conn    *websocket.Conn
	send    chan ports.UpdateEvent
	replies chan ports.UpdateEvent
	manager *ConnectionManager
	render  func(text string) (entities.DocumentView, error)
	logger  zerolog.Logger
	closed  func()
}

// handlePreviewSocket upgrades the request into a preview socket
func (s *Server) handlePreviewSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &PreviewClient{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan ports.UpdateEvent, 64),
		replies: make(chan ports.UpdateEvent, 8),
		manager: s.connMgr,
		render:  s.renderPreview,
		logger:  s.logger,
	}

	// Queue the greeting before the writer starts so it is always first
	client.replies <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		Timestamp: time.Now(),
		Data:      map[string]string{"id": client.id},
	}

	client.manager.RegisterConnection(&Connection{ID: client.id, Send: client.send})
	s.monitor.RecordSocket(1)
	client.closed = func() { s.monitor.RecordSocket(-1) }

	go client.writePump()
	go client.readPump()
}

// readPump renders every received document and queues the result
func (c *PreviewClient) readPump() {
	defer func() {
		c.manager.Unregister(c.id)
		_ = c.conn.Close()
		if c.closed != nil {
			c.closed()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Str("client", c.id).Msg("websocket connection error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		event := ports.UpdateEvent{Type: ports.EventTypePreview, Timestamp: time.Now()}
		view, err := c.render(string(message))
		if err != nil {
			c.logger.Error().Err(err).Str("client", c.id).Msg("preview render failed")
			event.Type = ports.EventTypeError
			event.Data = map[string]string{"message": "Preview failed"}
		} else {
			event.Data = view
		}

		// A slow reader loses intermediate previews, never the connection
		select {
		case c.replies <- event:
		default:
			c.logger.Debug().Str("client", c.id).Msg("preview dropped, client busy")
		}
	}
}

// writePump pumps messages to the WebSocket connection
func (c *PreviewClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The manager dropped this client
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case event := <-c.replies:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
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

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (same-origin requests and non-browser clients)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn().Str("origin", origin).Err(err).Msg("websocket connection rejected: invalid origin URL")
		return false
	}

	if s.config.IsDevelopment() {
		return isDevelopmentOrigin(originURL)
	}

	return s.isProductionOrigin(originURL)
}

// isDevelopmentOrigin allows localhost and private network addresses
func isDevelopmentOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()

	switch hostname {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return true
	}

	return strings.HasPrefix(hostname, "192.168.") ||
		strings.HasPrefix(hostname, "10.") ||
		isPrivateClassB(hostname)
}

// isProductionOrigin validates against the configured CORS origins
func (s *Server) isProductionOrigin(originURL *url.URL) bool {
	for _, allowedOrigin := range s.config.GetCORSOrigins() {
		if originURL.String() == allowedOrigin {
			return true
		}

		// Wildcard subdomains (*.example.com)
		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := strings.TrimPrefix(allowedOrigin, "*")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.logger.Warn().
		Str("origin", originURL.String()).
		Strs("allowed_origins", s.config.GetCORSOrigins()).
		Msg("websocket connection rejected: origin not in whitelist")
	return false
}

// isPrivateClassB checks for 172.16.0.0 to 172.31.255.255 range
func isPrivateClassB(hostname string) bool {
	if !strings.HasPrefix(hostname, "172.") {
		return false
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31":
		return true
	default:
		return false
	}
}
