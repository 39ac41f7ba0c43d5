package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Tuple delimiters shared with the parsers.
const (
	TupleDelim    = "<||>"
	RecordDelim   = "##"
	CompleteDelim = "<|COMPLETE|>"
)

var (
	//go:embed template/intent_prompt.txt
	intentSystemPrompt string
	//go:embed template/entity_prompt.txt
	entitySystemPrompt string
	//go:embed template/qa_prompt.txt
	qaPrompt string
	//go:embed template/generic_prompt.txt
	genericSystemPrompt string
)

func delimiters() map[string]any {
	return map[string]any{
		"TD": TupleDelim,
		"RD": RecordDelim,
		"CD": CompleteDelim,
	}
}

// render formats the messages through the eino prompt component so prompt
// callbacks observe every rendered template.
func render(ctx context.Context, name string, vars map[string]any, msgs ...schema.MessagesTemplate) ([]*schema.Message, error) {
	out, err := prompt.FromMessages(schema.GoTemplate, msgs...).Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return out, nil
}

// RenderIntent builds the intent classification messages for one user input.
func RenderIntent(ctx context.Context, input string) ([]*schema.Message, error) {
	vars := delimiters()
	vars["input"] = input
	return render(ctx, "intent", vars,
		schema.SystemMessage(intentSystemPrompt),
		schema.UserMessage("{{.input}}"),
	)
}

// RenderEntity builds the entity extraction messages for a piece of text.
func RenderEntity(ctx context.Context, text string) ([]*schema.Message, error) {
	vars := delimiters()
	vars["input"] = text
	return render(ctx, "entity", vars,
		schema.SystemMessage(entitySystemPrompt),
		schema.UserMessage("{{.input}}"),
	)
}

// RenderQA builds the retrieval QA message from the joined context passages.
func RenderQA(ctx context.Context, question, contextText string) ([]*schema.Message, error) {
	return render(ctx, "qa", map[string]any{
		"question": question,
		"context":  contextText,
	}, schema.UserMessage(qaPrompt))
}

// RenderGeneric builds the open-domain answer messages.
func RenderGeneric(ctx context.Context, input string) ([]*schema.Message, error) {
	return render(ctx, "generic", map[string]any{"input": input},
		schema.SystemMessage(genericSystemPrompt),
		schema.UserMessage("{{.input}}"),
	)
}
