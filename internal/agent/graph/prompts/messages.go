package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_messages.yml
var defaultMessagesYAML []byte

// Messages holds the fixed user-facing texts and query templates.
type Messages struct {
	AlertNoAnswer       string   `yaml:"alert_no_answer"`
	BaseLLMAnswer       string   `yaml:"base_llm_answer"`
	InitialResponses    []string `yaml:"initial_responses"`
	RecordTemplate      string   `yaml:"record_template"`
	DescriptionQuery    string   `yaml:"description_query"`
	DefenseQuery        string   `yaml:"defense_query"`
	DefenseInstructions string   `yaml:"defense_instructions"`
}

// ParseMessages decodes a messages document and checks the required keys.
func ParseMessages(data []byte) (*Messages, error) {
	var m Messages
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse default messages: %w", err)
	}
	switch {
	case strings.TrimSpace(m.AlertNoAnswer) == "":
		return nil, fmt.Errorf("default messages: alert_no_answer is empty")
	case len(m.InitialResponses) == 0:
		return nil, fmt.Errorf("default messages: initial_responses is empty")
	case strings.TrimSpace(m.RecordTemplate) == "":
		return nil, fmt.Errorf("default messages: record_template is empty")
	case !strings.Contains(m.DescriptionQuery, "{pokemon_name}"):
		return nil, fmt.Errorf("default messages: description_query lacks {pokemon_name}")
	case !strings.Contains(m.DefenseQuery, "{pokemon_name}"):
		return nil, fmt.Errorf("default messages: defense_query lacks {pokemon_name}")
	}
	m.AlertNoAnswer = strings.TrimSpace(m.AlertNoAnswer)
	m.DescriptionQuery = strings.TrimSpace(m.DescriptionQuery)
	m.DefenseQuery = strings.TrimSpace(m.DefenseQuery)
	return &m, nil
}

// DefaultMessages returns the embedded messages. It panics if the embedded
// document is invalid, which is a build defect.
func DefaultMessages() *Messages {
	m, err := ParseMessages(defaultMessagesYAML)
	if err != nil {
		panic(err)
	}
	return m
}

// DescriptionFor formats the per-entity description query.
func (m *Messages) DescriptionFor(name string) string {
	return strings.ReplaceAll(m.DescriptionQuery, "{pokemon_name}", name)
}
