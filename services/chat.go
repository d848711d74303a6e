package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsBot     bool      `json:"is_bot"`
}

// ChatService is the canned support assistant.
type ChatService struct {
	now func() time.Time
}

func NewChatService() *ChatService {
	return &ChatService{now: time.Now}
}

func (s *ChatService) Reply(text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Sender:    "AI Assistant",
		Text:      cannedReply(text),
		Timestamp: s.now().UTC(),
		IsBot:     true,
	}
}

func cannedReply(text string) string {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	has := func(keywords ...string) bool {
		for _, w := range words {
			for _, k := range keywords {
				if w == k {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("hello", "hi", "hey"):
		return "Hello! How can I help you with your order today?"
	case has("status", "order", "orders"):
		return "You can check your order status in the Orders tab. Is there anything else?"
	case has("menu", "food"):
		return "We have a great selection of restaurants! Browse them on the homepage."
	case has("help"):
		return "I'm here to assist! You can ask about orders, menus, or account settings."
	default:
		return fmt.Sprintf("I processed: %q. How else can I assist?", text)
	}
}
