package parsers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

const (
	recDelim = "##"
	tupDelim = "<||>"
	endDelim = "<|COMPLETE|>"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxRecords    = 200       // maximum number of records to process
	maxTupleLen   = 4 * 1024  // 4KB per tuple
	maxErrSnippet = 200       // limit error snippet size
)

// ErrNoIntentTuple is returned when the classifier output holds no intent record.
var ErrNoIntentTuple = errors.New("no intent tuple in model output")

type rawTuple struct {
	Type  string
	Parts []string
}

func parseRawTuple(s string) (*rawTuple, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tuple")
	}
	// enforce a sane upper bound per record
	if len(s) > maxTupleLen {
		return nil, fmt.Errorf("tuple too large")
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("invalid tuple parens")
	}
	// remove the outermost parens only
	inner := s[1 : len(s)-1]
	parts := strings.SplitN(inner, tupDelim, 4)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid tuple parts")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return &rawTuple{Type: strings.ToLower(parts[0]), Parts: parts}, nil
}

// records trims, caps and honors the completion delimiter, then splits the
// content into candidate tuples.
func records(component, content string) []string {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", component).
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if idx := strings.Index(content, endDelim); idx >= 0 {
		content = content[:idx]
	}
	content = stripFences(content)

	out := make([]string, 0, 4)
	for _, rec := range strings.Split(content, recDelim) {
		if len(out) >= maxRecords {
			logx.Warn().
				Str("component", component).
				Int("max_records", maxRecords).
				Msg("record processing capped")
			break
		}
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// stripFences removes a surrounding markdown code fence if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func recoverParser(component string, err *error) {
	if r := recover(); r != nil {
		logx.Error().Str("component", component).Msgf("panic recovered: %v", r)
		*err = errx.New(fmt.Errorf("%s panic", component), http.StatusInternalServerError, errx.SystemErrorMessage)
	}
}

// ParseIntent reads the first (intent<||>TYPE<||>STRUCTURE) record.
func ParseIntent(content string) (tag model.IntentTag, err error) {
	defer recoverParser("intent_parser", &err)

	for _, rec := range records("intent_parser", content) {
		rt, rerr := parseRawTuple(rec)
		if rerr != nil {
			logx.Debug().Str("component", "intent_parser").Str("record", safeSnippet(rec)).Err(rerr).Msg("bad record")
			continue
		}
		if rt.Type != "intent" {
			continue
		}
		tag.Type = model.ParseIntentType(rt.Parts[1])
		tag.Structure = model.StructureNone
		if len(rt.Parts) >= 3 {
			tag.Structure = model.ParseIntentStructure(rt.Parts[2])
		}
		return tag, nil
	}
	return model.IntentTag{}, ErrNoIntentTuple
}

// ParseEntities reads every (entity<||>NAME) record. Output without any
// entity record is an empty list, not an error.
func ParseEntities(content string) (list model.EntityList, err error) {
	defer recoverParser("entity_parser", &err)

	names := make([]string, 0, 4)
	for _, rec := range records("entity_parser", content) {
		rt, rerr := parseRawTuple(rec)
		if rerr != nil {
			logx.Debug().Str("component", "entity_parser").Str("record", safeSnippet(rec)).Err(rerr).Msg("bad record")
			continue
		}
		if rt.Type != "entity" {
			continue
		}
		name := rt.Parts[1]
		if !utf8.ValidString(name) || name == "" {
			continue
		}
		names = append(names, name)
	}
	return model.NewEntityList(names...), nil
}

// --- helpers ---

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
