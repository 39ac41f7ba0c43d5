package model

import (
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NoAnswer is the textual sentinel a QA answer carries when nothing relevant was found.
const NoAnswer = "None"

var nonAlpha = regexp.MustCompile(`[^a-zA-Z\s]`)

// NormalizeAnswer strips non-alphabetic characters and surrounding whitespace.
func NormalizeAnswer(s string) string {
	return strings.TrimSpace(nonAlpha.ReplaceAllString(s, ""))
}

// IsNoAnswer reports whether s is the sentinel once normalised.
func IsNoAnswer(s string) bool {
	return NormalizeAnswer(s) == NoAnswer
}

// Passage is one retrieved context chunk.
type Passage struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// RetrievalResult is the output of one semantic QA call.
type RetrievalResult struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Context  []Passage `json:"context"`
}

// NoAnswerResult builds a result carrying the sentinel.
func NoAnswerResult(question string) RetrievalResult {
	return RetrievalResult{Question: question, Answer: NoAnswer}
}

// DescriptionSet maps entity names to their description answers in insertion order.
type DescriptionSet struct {
	m *orderedmap.OrderedMap[string, RetrievalResult]
}

func NewDescriptionSet() *DescriptionSet {
	return &DescriptionSet{m: orderedmap.New[string, RetrievalResult]()}
}

func (s *DescriptionSet) Put(name string, r RetrievalResult) {
	s.m.Set(name, r)
}

func (s *DescriptionSet) Get(name string) (RetrievalResult, bool) {
	if s == nil {
		return RetrievalResult{}, false
	}
	return s.m.Get(name)
}

func (s *DescriptionSet) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

func (s *DescriptionSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}
