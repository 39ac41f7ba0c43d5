// Package nlu implements the language capabilities of a turn on top of
// chat models: intent tagging, entity extraction and open-domain answers.
package nlu

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Generator is the subset of an eino chat model the capabilities need.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

func generate(ctx context.Context, g Generator, msgs []*schema.Message) (string, error) {
	out, err := g.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("model returned no message")
	}
	return strings.TrimSpace(out.Content), nil
}
