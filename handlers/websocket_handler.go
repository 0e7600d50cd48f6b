package handlers

import (
	"log"
	"net/http"

	"github.com/dojofed/tournament-core/brackets"
	"github.com/dojofed/tournament-core/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs — GET /ws/events/{eventID}: подписка зрителя на канал мероприятия.
// Канал широковещательный, без истории: после переподключения клиент
// обязан перечитать полное состояние сеток по HTTP.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection for event %d: %v", eventID, err)
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		return
	}

	client := brackets.NewClient(h.hub, conn, services.EventRoom(eventID))
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
