package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/petcare-reservation/utils"
)

// Event types
const (
	EventReservationCreated        = "reservation_created"
	EventReservationUpdated        = "reservation_updated"
	EventReservationDeleted        = "reservation_deleted"
	EventReservationServiceCreated = "reservation_service_created"
	EventReservationServiceUpdated = "reservation_service_updated"
	EventReservationServiceDeleted = "reservation_service_deleted"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is dropped.
	sendBuffer = 64
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher receives lifecycle events after the change is committed.
type Publisher interface {
	Publish(msg Message)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Message) {}

type client struct {
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}

// Hub fans events out to every connected websocket client.
// Each client has its own writer, so Publish never waits on the network.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register adds a connection and starts its writer. userID is zero for anonymous clients.
func (h *Hub) Register(conn *websocket.Conn, userID uint) {
	cl := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[conn] = cl
	h.mu.Unlock()

	go cl.writePump()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(conn)
}

// remove must be called with h.mu held. Closing send stops the writer, which closes the connection.
func (h *Hub) remove(conn *websocket.Conn) {
	if cl, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(cl.send)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues msg for every client. A client whose queue is full is dropped.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event %s: %v", msg.Event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			utils.ErrorLogger.Printf("Dropping slow event client (user %d)", cl.userID)
			h.remove(conn)
		}
	}
	utils.InfoLogger.Debugf("Event %s queued for %d clients", msg.Event, len(h.clients))
}

func (cl *client) writePump() {
	defer cl.conn.Close()
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Event write failed: %v", err)
			// the reader sees the closed connection and unregisters
			return
		}
	}
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
