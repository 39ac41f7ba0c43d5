package model

import (
	"context"
	"time"
)

// Turn is one finished exchange stored in conversation history.
type Turn struct {
	Query     string            `json:"query"`
	Response  *ResponseDocument `json:"response"`
	Outcome   string            `json:"outcome"`
	CreatedAt time.Time         `json:"created_at"`
}

type ConversationRepository interface {
	// AppendTurn adds a finished turn to the conversation history
	AppendTurn(ctx context.Context, conversationID string, turn Turn) error

	// LoadHistory retrieves up to limit of the most recent turns, oldest first
	LoadHistory(ctx context.Context, conversationID string, limit int) (*ConversationHistory, error)

	// ClearHistory removes all stored turns for a conversation
	ClearHistory(ctx context.Context, conversationID string) error

	// GetTurnCount returns the number of stored turns
	GetTurnCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string `json:"conversation_id"`
	Turns          []Turn `json:"turns"`
}
