// Package refiner derives defense recommendation queries from an opponent's
// damage relations and narrows them when the first answer comes back empty.
package refiner

import (
	"context"
	"fmt"
	"strings"

	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/observe"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

type clause struct {
	key      model.RelationKey
	template string
}

// clauses are appended in this order whatever keys are present.
var clauses = []clause{
	{model.DoubleDamageFrom, "Could be a %s type."},
	{model.DoubleDamageTo, "Must NOT be a %s type."},
	{model.HalfDamageTo, "Could be a %s type."},
	{model.HalfDamageFrom, "Must NOT be a %s type."},
	{model.NoDamageTo, "Could be a %s type."},
	{model.NoDamageFrom, "Must NOT be a %s type."},
}

// priorityKeys form the reduced constraint set of the single retry: the
// strongest favorable and the strongest unfavorable direction.
var priorityKeys = []model.RelationKey{model.DoubleDamageFrom, model.NoDamageTo}

// MaxAttempts bounds the QA calls per opponent.
const MaxAttempts = 2

// Templates are the fixed texts a query is built from. Base must contain
// {pokemon_name}.
type Templates struct {
	Base         string
	Instructions string
}

// Suggestion is the outcome for one opponent.
type Suggestion struct {
	Opponent  string `json:"opponent"`
	Candidate string `json:"candidate"`
	Attempts  int    `json:"attempts"`
}

type Refiner struct {
	qa      model.SemanticQA
	tpl     Templates
	metrics *observe.Metrics
}

func New(qa model.SemanticQA, tpl Templates, metrics *observe.Metrics) *Refiner {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Refiner{qa: qa, tpl: tpl, metrics: metrics}
}

// Deduplicate collapses category values repeated across relation keys,
// keeping the first key in model.RelationKeys order. It is idempotent.
func Deduplicate(rel model.Relations) model.Relations {
	out := make(model.Relations, len(rel))
	seen := make(map[string]struct{}, len(rel))
	for _, key := range model.RelationKeys {
		v, ok := rel[key]
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out[key] = v
	}
	return out
}

// Reduce keeps only the priority keys of the raw relation map.
func Reduce(rel model.Relations) model.Relations {
	out := make(model.Relations, len(priorityKeys))
	for _, key := range priorityKeys {
		if v, ok := rel[key]; ok {
			out[key] = v
		}
	}
	return out
}

// BuildQuery renders the constraint query for one opponent: base text, the
// applicable clauses in fixed order, the closing instructions, then the
// exclusion of names already accepted in this pass.
func (t Templates) BuildQuery(opponent string, rel model.Relations, accepted []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(t.Base))
	for _, c := range clauses {
		if v, ok := rel[c.key]; ok {
			b.WriteString("\n")
			fmt.Fprintf(&b, c.template, v)
		}
	}
	if instr := strings.TrimSpace(t.Instructions); instr != "" {
		b.WriteString("\n")
		b.WriteString(instr)
	}
	if len(accepted) > 0 {
		b.WriteString("\nThe Pokémon must NOT be ")
		b.WriteString(strings.Join(accepted, ", or "))
		b.WriteString(".")
	}
	return strings.NewReplacer("{pokemon_name}", strings.ToUpper(opponent)).Replace(b.String())
}

// Suggest runs one derivation pass over the opponents in order. Opponents
// without a record are skipped. The result holds only opponents that ended
// with a usable candidate; no two share one.
func (r *Refiner) Suggest(ctx context.Context, opponents []string, records *model.RecordSet) []Suggestion {
	accepted := make([]string, 0, len(opponents))
	out := make([]Suggestion, 0, len(opponents))

	for _, opponent := range opponents {
		rec, ok := records.Get(opponent)
		if !ok {
			logx.Warn().Str("pokemon", opponent).Msg("refiner: no record for opponent, skipping")
			continue
		}

		attempts := 1
		answer := r.ask(ctx, r.tpl.BuildQuery(opponent, Deduplicate(rec.Relations), accepted))
		if !usable(answer, accepted) {
			r.metrics.RecordRefinerRetry(ctx)
			attempts++
			answer = r.ask(ctx, r.tpl.BuildQuery(opponent, Reduce(rec.Relations), accepted))
		}

		accepted = append(accepted, answer)
		if !usable(answer, accepted[:len(accepted)-1]) {
			r.metrics.RecordRefinerDrop(ctx)
			logx.Info().Str("pokemon", opponent).Int("attempts", attempts).Msg("refiner: no candidate found")
			continue
		}
		out = append(out, Suggestion{Opponent: opponent, Candidate: answer, Attempts: attempts})
	}
	return out
}

// ask returns the normalized answer. QA failures count as no answer.
func (r *Refiner) ask(ctx context.Context, query string) string {
	res, err := r.qa.Ask(ctx, query)
	if err != nil {
		logx.Warn().Err(err).Msg("refiner: semantic qa failed")
		return model.NoAnswer
	}
	return model.NormalizeAnswer(res.Answer)
}

func usable(answer string, accepted []string) bool {
	if answer == "" || answer == model.NoAnswer {
		return false
	}
	for _, a := range accepted {
		if strings.EqualFold(a, answer) {
			return false
		}
	}
	return true
}
