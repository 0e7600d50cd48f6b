package services

import (
	"fmt"

	"github.com/dojofed/tournament-core/brackets"
)

// Broadcaster — порт публикации live-обновлений. Реализуется websocket-хабом;
// контракт fire-and-forget: без подтверждений, без гарантий доставки.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// EventRoom — имя комнаты зрителей мероприятия.
func EventRoom(eventID int) string {
	return fmt.Sprintf("event_%d", eventID)
}

type MatchStartedPayload struct {
	MatchID      int     `json:"match_id"`
	BracketID    int     `json:"bracket_id"`
	RoundLabel   string  `json:"round_label"`
	Fighter1Name *string `json:"fighter1_name,omitempty"`
	Fighter2Name *string `json:"fighter2_name,omitempty"`
}

type BracketRefreshPayload struct {
	BracketID int `json:"bracket_id"`
}

type GenerationProgressPayload struct {
	Phase    string `json:"phase"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

func publish(b Broadcaster, eventID int, messageType string, payload interface{}) {
	if b == nil {
		return
	}
	room := EventRoom(eventID)
	b.BroadcastToRoom(room, brackets.Message{
		Type:    messageType,
		Payload: payload,
		RoomID:  room,
	})
}
