package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans out two kinds of events: material text-extraction progress (keyed
// by material id) and grade-ready notifications (keyed by student id).
type Hub struct {
	Materials map[string]map[*websocket.Conn]*Client
	Students  map[string]map[*websocket.Conn]*Client
	Mutex     sync.RWMutex
}

var H = Hub{
	Materials: make(map[string]map[*websocket.Conn]*Client),
	Students:  make(map[string]map[*websocket.Conn]*Client),
}

type MaterialStatusUpdate struct {
	MaterialID string  `json:"material_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Error      string  `json:"error,omitempty"`
}

type GradeNotification struct {
	GradeID string `json:"grade_id"`
	Status  string `json:"status"`
	Letter  string `json:"grade_letter"`
}

func (h *Hub) RegisterMaterial(materialID string, conn *websocket.Conn) {
	h.register(h.Materials, materialID, conn)
}

func (h *Hub) UnregisterMaterial(materialID string, conn *websocket.Conn) {
	h.unregister(h.Materials, materialID, conn)
}

func (h *Hub) RegisterStudent(studentID string, conn *websocket.Conn) {
	h.register(h.Students, studentID, conn)
}

func (h *Hub) UnregisterStudent(studentID string, conn *websocket.Conn) {
	h.unregister(h.Students, studentID, conn)
}

func (h *Hub) BroadcastMaterial(materialID, status string, progress float64, errMsg string) {
	data, err := json.Marshal(MaterialStatusUpdate{
		MaterialID: materialID,
		Status:     status,
		Progress:   progress,
		Error:      errMsg,
	})
	if err != nil {
		return
	}
	h.broadcast(h.Materials, materialID, data)
}

func (h *Hub) BroadcastGrade(studentID, gradeID, status, letter string) {
	data, err := json.Marshal(GradeNotification{
		GradeID: gradeID,
		Status:  status,
		Letter:  letter,
	})
	if err != nil {
		return
	}
	h.broadcast(h.Students, studentID, data)
}

func (h *Hub) register(group map[string]map[*websocket.Conn]*Client, key string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := group[key]; !ok {
		group[key] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	group[key][conn] = client

	go writePump(client)
}

func (h *Hub) unregister(group map[string]map[*websocket.Conn]*Client, key string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := group[key]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(group, key)
		}
	}
}

func (h *Hub) broadcast(group map[string]map[*websocket.Conn]*Client, key string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := group[key]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// Slow consumer, drop the update.
			}
		}
	}
}

func writePump(client *Client) {
	for data := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
