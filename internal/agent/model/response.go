package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SpriteMap maps entity names to their ordered image references.
type SpriteMap = orderedmap.OrderedMap[string, []string]

func NewSpriteMap() *SpriteMap {
	return orderedmap.New[string, []string]()
}

// ResponseDocument is the uniform output contract rendered by every client.
// Body and Sprites are either both nil or both set with matching order.
type ResponseDocument struct {
	Header          string          `json:"header"`
	Body            []string        `json:"body"`
	Sprites         *SpriteMap      `json:"sprites"`
	IntentType      IntentType      `json:"intent_type"`
	IntentStructure IntentStructure `json:"intent_structure"`
}

// HasBody reports whether the document carries structured content.
func (d *ResponseDocument) HasBody() bool {
	return d != nil && d.Body != nil && d.Sprites != nil
}
