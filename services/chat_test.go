package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCannedReply(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hi there", "Hello! How can I help you with your order today?"},
		{"where is my ORDER?", "You can check your order status in the Orders tab. Is there anything else?"},
		{"what food do you have", "We have a great selection of restaurants! Browse them on the homepage."},
		{"help", "I'm here to assist! You can ask about orders, menus, or account settings."},
		{"this is hideous", `I processed: "this is hideous". How else can I assist?`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cannedReply(tt.in))
		})
	}
}

func TestChatReply(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	svc := NewChatService()
	svc.now = func() time.Time { return at }

	msg := svc.Reply("hello")
	assert.True(t, msg.IsBot)
	assert.Equal(t, "AI Assistant", msg.Sender)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, at, msg.Timestamp)
	assert.NotEqual(t, msg.ID, svc.Reply("hello").ID)
}
