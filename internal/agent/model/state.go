package model

import "time"

// QueryInput is the public input of one turn.
type QueryInput struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Query          string `json:"user_query"`
}

// OrchestrationState accumulates everything a branch procedure produced for
// one turn. Only the router mutates it; the assembler treats it as read-only.
type OrchestrationState struct {
	Query  string    `json:"query"`
	Intent IntentTag `json:"intent"`

	NLPAnswer    string          `json:"nlp_answer,omitempty"`
	Primary      *RecordSet      `json:"primary,omitempty"`
	Secondary    *RecordSet      `json:"secondary,omitempty"`
	Tertiary     *RecordSet      `json:"tertiary,omitempty"`
	Descriptions *DescriptionSet `json:"descriptions,omitempty"`

	Error    bool `json:"error"`
	NoIntent bool `json:"no_intent"`
	// Failure is the reason Error was set, for logs and metrics.
	Failure string `json:"failure,omitempty"`
}

func NewOrchestrationState(query string, tag IntentTag) *OrchestrationState {
	return &OrchestrationState{Query: query, Intent: tag}
}

// Fail marks the turn failed with the given reason.
func (s *OrchestrationState) Fail(reason string) {
	s.Error = true
	s.Failure = reason
}

// Outcome is a short label for metrics.
func (s *OrchestrationState) Outcome() string {
	switch {
	case s.Error:
		return "error"
	case s.NoIntent:
		return "no_intent"
	default:
		return "ok"
	}
}

// TurnTrace is the graph-local bookkeeping of one turn.
type TurnTrace struct {
	ConversationID string
	StartedAt      time.Time
	Route          Route
	State          *OrchestrationState
}
