package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"suimail/backend/internal/domain"
)

// MessageType 定义WebSocket消息类型
type MessageType string

const (
	MessageTypeNewMessage MessageType = "new_message"
	MessageTypePing       MessageType = "ping"
	MessageTypePong       MessageType = "pong"
	MessageTypeError      MessageType = "error"
)

// Envelope 定义WebSocket消息结构
type Envelope struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

// upgraderFactory 创建带有 Origin 验证的 WebSocket 升级器
func upgraderFactory(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			for _, origin := range allowedOrigins {
				if origin == "*" {
					return true
				}
			}

			requestOrigin := r.Header.Get("Origin")
			if requestOrigin == "" {
				return true
			}

			for _, origin := range allowedOrigins {
				if requestOrigin == origin {
					return true
				}
			}

			return false
		},
	}
}

// Client 代表一个WebSocket客户端连接
type Client struct {
	wallet string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

// Hub 管理全部客户端连接，按钱包地址分发新消息通知
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{} // wallet -> clients
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub 创建连接中心
func NewHub(allowedOrigins []string, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		upgrader: upgraderFactory(allowedOrigins),
		log:      log,
	}
}

// ServeWS 升级连接并注册客户端
//
// 路由必须挂在 JWT 中间件之后：钱包地址取自上下文。
func (h *Hub) ServeWS(c *gin.Context) {
	wallet := c.GetString("wallet")
	if wallet == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		wallet: wallet,
		conn:   conn,
		send:   make(chan []byte, 16),
		hub:    h,
	}

	h.register(client)

	go client.writePump()
	go client.readPump()
}

// NotifyNewMessage 把新消息推送给接收方的全部在线连接
func (h *Hub) NotifyNewMessage(receiverWallet string, view *domain.MessageView) {
	data, err := json.Marshal(view)
	if err != nil {
		h.log.Warn("failed to marshal message view", zap.Error(err))
		return
	}

	envelope, err := json.Marshal(Envelope{
		Type:      MessageTypeNewMessage,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[receiverWallet] {
		select {
		case client.send <- envelope:
		default:
			// 发送缓冲已满的慢客户端直接丢弃该条
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.wallet] == nil {
		h.clients[client.wallet] = make(map[*Client]struct{})
	}
	h.clients[client.wallet][client] = struct{}{}

	h.log.Debug("websocket client connected", zap.String("wallet", client.wallet))
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.clients[client.wallet]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.wallet)
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}

		if envelope.Type == MessageTypePing {
			pong, _ := json.Marshal(Envelope{
				Type:      MessageTypePong,
				Timestamp: time.Now().UTC(),
			})
			select {
			case c.send <- pong:
			default:
			}
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
