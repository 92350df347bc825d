package websocket

import (
	"sync"

	"go.uber.org/zap"
)

// Hub WebSocket 연결 관리 및 룸 단위 브로드캐스트
type Hub struct {
	// 연결별 클라이언트 저장 (connectionID -> *Client)
	clients map[string]*Client

	// 룸 멤버십 (roomID -> connectionID 집합)
	rooms map[string]map[string]bool

	mu sync.RWMutex

	// 브로드캐스트 채널
	broadcast chan *Message

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	handler MessageHandler
	logger  *zap.Logger
}

// Message WebSocket 메시지
type Message struct {
	ConnectionID string      `json:"-"` // 수신자 (빈 문자열이면 RoomID 기준 브로드캐스트)
	RoomID       string      `json:"-"` // 대상 룸
	ExcludeID    string      `json:"-"` // 브로드캐스트에서 제외할 연결
	Type         string      `json:"type"`
	Payload      interface{} `json:"payload,omitempty"`
}

// MessageHandler 클라이언트 메시지 및 연결 종료 처리
type MessageHandler interface {
	HandleMessage(client *Client, msgType string, payload []byte)
	HandleDisconnect(client *Client)
}

// NewHub Hub 생성
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// SetHandler 메시지 핸들러 등록 (Run 호출 전에 설정)
func (h *Hub) SetHandler(handler MessageHandler) {
	h.handler = handler
}

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 클라이언트 등록
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.connectionID] = client
	h.logger.Info("WebSocket client registered",
		zap.String("connectionId", client.connectionID),
		zap.Int("totalClients", len(h.clients)))
}

// unregisterClient 클라이언트 해제 및 룸 멤버십 정리
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, exists := h.clients[client.connectionID]; !exists {
		h.mu.Unlock()
		return
	}

	delete(h.clients, client.connectionID)
	for roomID, members := range h.rooms {
		if members[client.connectionID] {
			delete(members, client.connectionID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("WebSocket client unregistered",
		zap.String("connectionId", client.connectionID),
		zap.Int("totalClients", total))

	if h.handler != nil {
		h.handler.HandleDisconnect(client)
	}
}

// broadcastMessage 메시지 전달 (특정 연결 또는 룸 전체)
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if message.ConnectionID != "" {
		if client, exists := h.clients[message.ConnectionID]; exists {
			h.trySend(client, message)
		}
		return
	}

	if members, exists := h.rooms[message.RoomID]; exists {
		for connID := range members {
			if connID == message.ExcludeID {
				continue
			}
			if client, ok := h.clients[connID]; ok {
				h.trySend(client, message)
			}
		}
	}
}

func (h *Hub) trySend(client *Client, message *Message) {
	select {
	case client.send <- message:
	default:
		// 채널이 가득 찬 경우 연결 해제
		h.logger.Warn("Client send channel full, unregistering",
			zap.String("connectionId", client.connectionID))
		go func(c *Client) {
			h.unregister <- c
		}(client)
	}
}

// JoinRoom 연결을 룸에 추가
func (h *Hub) JoinRoom(roomID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][connectionID] = true
}

// LeaveRoom 연결을 룸에서 제거
func (h *Hub) LeaveRoom(roomID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, exists := h.rooms[roomID]; exists {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToConnection 특정 연결에게 메시지 전송
func (h *Hub) SendToConnection(connectionID string, msgType string, payload interface{}) {
	h.broadcast <- &Message{
		ConnectionID: connectionID,
		Type:         msgType,
		Payload:      payload,
	}
}

// BroadcastToRoom 룸의 모든 연결에게 메시지 전송
func (h *Hub) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	h.broadcast <- &Message{
		RoomID:  roomID,
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastToRoomExcept 한 연결을 제외한 룸 전체에게 메시지 전송
func (h *Hub) BroadcastToRoomExcept(roomID, excludeID string, msgType string, payload interface{}) {
	h.broadcast <- &Message{
		RoomID:    roomID,
		ExcludeID: excludeID,
		Type:      msgType,
		Payload:   payload,
	}
}
