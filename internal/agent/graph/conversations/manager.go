package conversations

import (
	"context"
	"strings"
	"time"

	"github.com/pokedex-genai/server/internal/agent/model"
)

// Manager records finished turns. Turns never read history back; the
// stored list exists for clients and operators.
type Manager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
	now              func() time.Time
}

func NewManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *Manager {
	return &Manager{
		conversationRepo: conversationRepo,
		maxTurns:         config.MaxTurns,
		now:              time.Now,
	}
}

// Record stores one turn. Anonymous turns (empty conversation id) are not kept.
func (m *Manager) Record(ctx context.Context, conversationID, query string, doc *model.ResponseDocument, outcome string) error {
	if strings.TrimSpace(conversationID) == "" {
		return nil
	}
	return m.conversationRepo.AppendTurn(ctx, conversationID, model.Turn{
		Query:     query,
		Response:  doc,
		Outcome:   outcome,
		CreatedAt: m.now().UTC(),
	})
}

// History returns the most recent turns, oldest first.
func (m *Manager) History(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	return m.conversationRepo.LoadHistory(ctx, conversationID, m.maxTurns)
}

// Clear drops a conversation's stored turns.
func (m *Manager) Clear(ctx context.Context, conversationID string) error {
	return m.conversationRepo.ClearHistory(ctx, conversationID)
}
