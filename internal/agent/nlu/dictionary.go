package nlu

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"

	"github.com/pokedex-genai/server/internal/agent/model"
)

// NameLister lists every known entity name.
type NameLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// DictionaryExtractor finds known names in text with a single Aho-Corasick
// automaton. Matches must sit on word boundaries; overlapping matches keep
// the longest.
type DictionaryExtractor struct {
	ac       *ahocorasick.Automaton
	patterns []string
	display  []string
}

// NewDictionaryExtractor compiles the automaton from raw names such as
// "mr-mime". Each name also matches with its hyphens read as spaces.
func NewDictionaryExtractor(names []string) (*DictionaryExtractor, error) {
	d := &DictionaryExtractor{}
	seen := make(map[string]struct{}, len(names)*2)
	add := func(pattern, display string) {
		if pattern == "" {
			return
		}
		if _, ok := seen[pattern]; ok {
			return
		}
		seen[pattern] = struct{}{}
		d.patterns = append(d.patterns, pattern)
		d.display = append(d.display, display)
	}
	for _, n := range names {
		key := canonicalize(n)
		display := displayName(key)
		add(key, display)
		add(strings.ReplaceAll(key, "-", " "), display)
	}
	if len(d.patterns) == 0 {
		return nil, fmt.Errorf("dictionary extractor: no names")
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(d.patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("dictionary extractor: %w", err)
	}
	d.ac = automaton
	return d, nil
}

// LoadDictionaryExtractor builds the extractor from a name source.
func LoadDictionaryExtractor(ctx context.Context, src NameLister) (*DictionaryExtractor, error) {
	names, err := src.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return NewDictionaryExtractor(names)
}

func (d *DictionaryExtractor) Extract(_ context.Context, text string) (model.EntityList, error) {
	haystack := canonicalize(text)
	matches := d.ac.FindAllOverlapping([]byte(haystack))

	kept := make([]span, 0, len(matches))
	for _, m := range matches {
		if !onBoundary(haystack, m.Start, m.End) {
			continue
		}
		s := span{m.Start, m.End, m.PatternID}
		i := overlapping(kept, s.start, s.end)
		switch {
		case i < 0:
			kept = append(kept, s)
		case s.end-s.start > kept[i].end-kept[i].start:
			kept[i] = s
		}
	}

	slices.SortFunc(kept, func(a, b span) int { return a.start - b.start })
	names := make([]string, 0, len(kept))
	for _, k := range kept {
		names = append(names, d.display[k.id])
	}
	return model.NewEntityList(names...), nil
}

type span struct{ start, end, id int }

func overlapping(spans []span, start, end int) int {
	for i, k := range spans {
		if start < k.end && k.start < end {
			return i
		}
	}
	return -1
}

func onBoundary(s string, start, end int) bool {
	if start > 0 && s[start-1] != ' ' {
		return false
	}
	if end < len(s) && s[end] != ' ' {
		return false
	}
	return true
}

// canonicalize lowercases and collapses everything but letters, digits,
// hyphens and apostrophes into single spaces.
func canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '’':
			r = '\''
		case r == '.':
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// displayName turns "mr-mime" into "Mr-Mime".
func displayName(key string) string {
	out := []rune(key)
	upper := true
	for i, r := range out {
		if upper && unicode.IsLetter(r) {
			out[i] = unicode.ToUpper(r)
		}
		upper = r == '-' || r == ' '
	}
	return string(out)
}
