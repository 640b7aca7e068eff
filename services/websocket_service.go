package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"notelock/broker"
	"notelock/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

type WebSocketServiceInterface interface {
	Start(natsURL string)
	Stop()
	HandleConnection(c *gin.Context)
}

// wsClient is one live connection belonging to an authenticated user.
type wsClient struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// noteEventEnvelope is the dispatcher's published payload shape.
type noteEventEnvelope struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	Entity    string          `json:"entity"`
	ActorID   string          `json:"actor_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// WebSocketService pushes note events to the owning user's connected
// clients so the calendar UI refreshes live. Events carry identifiers only;
// clients re-fetch decrypted content over the REST API.
type WebSocketService struct {
	clients      map[uuid.UUID]map[*wsClient]bool
	clientsMutex sync.RWMutex
	upgrader     websocket.Upgrader
	consumer     *broker.Consumer
	stopChan     chan struct{}
	isRunning    bool
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients: make(map[uuid.UUID]map[*wsClient]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		stopChan: make(chan struct{}),
	}
}

func (s *WebSocketService) Start(natsURL string) {
	if s.isRunning {
		return
	}

	consumer, err := broker.InitConsumer(natsURL, []string{broker.NoteSubject}, "websocket-fanout")
	if err != nil {
		log.Printf("Warning: websocket service has no broker connection: %v", err)
		return
	}
	s.consumer = consumer
	s.isRunning = true

	go s.forwardEvents(consumer.GetMessageChannel())
}

func (s *WebSocketService) Stop() {
	if !s.isRunning {
		return
	}
	s.isRunning = false
	close(s.stopChan)
	if s.consumer != nil {
		s.consumer.Close()
	}
}

func (s *WebSocketService) forwardEvents(messages chan *nats.Msg) {
	for {
		select {
		case <-s.stopChan:
			return
		case msg := <-messages:
			var envelope noteEventEnvelope
			if err := json.Unmarshal(msg.Data, &envelope); err != nil {
				log.Printf("Dropping malformed broker message on %s: %v", msg.Subject, err)
				continue
			}

			ownerID, err := uuid.Parse(envelope.ActorID)
			if err != nil {
				continue
			}
			s.sendToUser(ownerID, msg.Data)
		}
	}
}

func (s *WebSocketService) sendToUser(userID uuid.UUID, payload []byte) {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	for client := range s.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop the message rather than block the fanout.
		}
	}
}

// HandleConnection upgrades an authenticated request. The principal comes
// from the auth middleware, never from the request body.
func (s *WebSocketService) HandleConnection(c *gin.Context) {
	principalValue, exists := c.Get("principalID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	principal, ok := principalValue.(models.PrincipalID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid principal in context"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := &wsClient{
		userID: principal.UUID(),
		conn:   conn,
		send:   make(chan []byte, 16),
	}
	s.register(client)

	go s.writePump(client)
	go s.readPump(client)
}

func (s *WebSocketService) register(client *wsClient) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	if s.clients[client.userID] == nil {
		s.clients[client.userID] = make(map[*wsClient]bool)
	}
	s.clients[client.userID][client] = true
}

func (s *WebSocketService) unregister(client *wsClient) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	if clients, ok := s.clients[client.userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(s.clients, client.userID)
			}
		}
	}
}

func (s *WebSocketService) writePump(client *wsClient) {
	defer client.conn.Close()
	for payload := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (s *WebSocketService) readPump(client *wsClient) {
	defer func() {
		s.unregister(client)
		client.conn.Close()
	}()
	// Clients don't send application messages; the read loop only serves to
	// detect disconnects.
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var WebSocketServiceInstance WebSocketServiceInterface
