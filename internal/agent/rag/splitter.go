package rag

import (
	"strings"
	"unicode/utf8"
)

// Default chunking of source documents, in characters.
const (
	DefaultChunkSize    = 1100
	DefaultChunkOverlap = 200
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text on the coarsest separator that keeps pieces under
// ChunkSize, recursing into finer separators for pieces that do not fit,
// then merges neighbours back up to ChunkSize with ChunkOverlap of carry.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separators:   defaultSeparators,
	}
}

// Split returns the non-empty chunks of text.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var finer []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			finer = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, fitting []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runes(p) < s.ChunkSize {
			fitting = append(fitting, p)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting, sep)...)
			fitting = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, p)
		} else {
			chunks = append(chunks, s.split(p, finer)...)
		}
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting, sep)...)
	}
	return chunks
}

func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := runes(sep)
	var (
		chunks  []string
		current []string
		total   int
	)
	joined := func(n int) int {
		if n > 0 {
			return sepLen
		}
		return 0
	}

	for _, p := range pieces {
		l := runes(p)
		if total+l+joined(len(current)) > s.ChunkSize && len(current) > 0 {
			if c := strings.TrimSpace(strings.Join(current, sep)); c != "" {
				chunks = append(chunks, c)
			}
			for total > s.ChunkOverlap || (total > 0 && total+l+joined(len(current)) > s.ChunkSize) {
				total -= runes(current[0]) + joined(len(current)-1)
				current = current[1:]
			}
		}
		current = append(current, p)
		total += l + joined(len(current)-1)
	}
	if c := strings.TrimSpace(strings.Join(current, sep)); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

func runes(s string) int { return utf8.RuneCountInString(s) }
