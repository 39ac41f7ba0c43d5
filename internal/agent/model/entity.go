package model

import "strings"

// Entity is a single named subject recognised in text.
type Entity struct {
	Name string `json:"name"`
}

// EntityList holds the entities of one extraction call, unique by name.
type EntityList struct {
	Entities []Entity `json:"name_list"`
}

// NewEntityList builds a list from raw names, dropping blanks and
// case-insensitive duplicates while keeping the first spelling seen.
func NewEntityList(names ...string) EntityList {
	seen := make(map[string]struct{}, len(names))
	out := make([]Entity, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Entity{Name: n})
	}
	return EntityList{Entities: out}
}

// Names returns the entity names in extraction order.
func (l EntityList) Names() []string {
	names := make([]string, len(l.Entities))
	for i, e := range l.Entities {
		names[i] = e.Name
	}
	return names
}

func (l EntityList) Len() int {
	return len(l.Entities)
}

func (l EntityList) Empty() bool {
	return len(l.Entities) == 0
}
