package router

import (
	"context"
	"fmt"

	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// EntityNames fetches records then descriptions for the names in the text.
func (r *Router) EntityNames(ctx context.Context, s *model.OrchestrationState) error {
	entities, err := r.extract(ctx, s.Query)
	if err != nil {
		return err
	}
	s.Primary = r.fetchRecords(ctx, entities.Names())
	s.Descriptions = r.describe(ctx, entities.Names())
	return nil
}

// Question answers the text directly and fetches records for the names in it.
func (r *Router) Question(ctx context.Context, s *model.OrchestrationState) error {
	s.NLPAnswer = r.ask(ctx, s.Query).Answer

	entities, err := r.extract(ctx, s.Query)
	if err != nil {
		return err
	}
	s.Primary = r.fetchRecords(ctx, entities.Names())
	return nil
}

// Description identifies the entities from the QA answer, not the text.
func (r *Router) Description(ctx context.Context, s *model.OrchestrationState) error {
	res := r.ask(ctx, s.Query)
	if model.IsNoAnswer(res.Answer) || res.Answer == "" {
		return ErrNoAnswer
	}
	s.NLPAnswer = res.Answer

	entities, err := r.extract(ctx, res.Answer)
	if err != nil {
		return err
	}
	s.Primary = r.fetchRecords(ctx, entities.Names())
	return nil
}

// Defense suggests one counter per opponent into the secondary set.
func (r *Router) Defense(ctx context.Context, s *model.OrchestrationState) error {
	candidates, err := r.counter(ctx, s)
	if err != nil {
		return err
	}
	s.Secondary = candidates
	return nil
}

// Squad runs the defense derivation into the tertiary set.
func (r *Router) Squad(ctx context.Context, s *model.OrchestrationState) error {
	candidates, err := r.counter(ctx, s)
	if err != nil {
		return err
	}
	s.Tertiary = candidates
	return nil
}

// NoIntent answers from general knowledge. No structured data is fetched.
func (r *Router) NoIntent(ctx context.Context, s *model.OrchestrationState) error {
	s.NoIntent = true
	answer, err := r.caps.Generic.Answer(ctx, s.Query)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenericAnswer, err)
	}
	s.NLPAnswer = answer
	return nil
}

func (r *Router) counter(ctx context.Context, s *model.OrchestrationState) (*model.RecordSet, error) {
	opponents, err := r.extract(ctx, s.Query)
	if err != nil {
		return nil, err
	}
	s.Primary = r.fetchRecords(ctx, opponents.Names())

	suggestions := r.refiner.Suggest(ctx, opponents.Names(), s.Primary)
	names := make([]string, 0, len(suggestions))
	for _, sg := range suggestions {
		names = append(names, sg.Candidate)
	}
	logx.Info().
		Strs("opponents", opponents.Names()).
		Strs("candidates", names).
		Msg("counter candidates derived")
	return r.fetchRecords(ctx, model.NewEntityList(names...).Names()), nil
}

// extract treats an extractor failure as an empty result.
func (r *Router) extract(ctx context.Context, text string) (model.EntityList, error) {
	entities, err := r.caps.Extractor.Extract(ctx, text)
	if err != nil {
		logx.Warn().Err(err).Msg("entity extraction failed")
		return model.EntityList{}, ErrEmptyExtraction
	}
	if entities.Empty() {
		return model.EntityList{}, ErrEmptyExtraction
	}
	return entities, nil
}

// ask treats a QA failure as the sentinel answer.
func (r *Router) ask(ctx context.Context, query string) model.RetrievalResult {
	res, err := r.caps.QA.Ask(ctx, query)
	if err != nil {
		logx.Warn().Err(err).Msg("semantic qa failed")
		return model.NoAnswerResult(query)
	}
	return res
}
