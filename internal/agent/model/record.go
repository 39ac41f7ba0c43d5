package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Stats is the fixed six-key base stat set.
type Stats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special-attack"`
	SpecialDefense int `json:"special-defense"`
	Speed          int `json:"speed"`
}

// Sprites holds image references in the order the data source lists them.
type Sprites struct {
	BackDefault      string `json:"back_default,omitempty"`
	BackFemale       string `json:"back_female,omitempty"`
	BackShiny        string `json:"back_shiny,omitempty"`
	BackShinyFemale  string `json:"back_shiny_female,omitempty"`
	FrontDefault     string `json:"front_default,omitempty"`
	FrontFemale      string `json:"front_female,omitempty"`
	FrontShiny       string `json:"front_shiny,omitempty"`
	FrontShinyFemale string `json:"front_shiny_female,omitempty"`
}

// URLs returns the non-empty image references in source order.
func (s Sprites) URLs() []string {
	all := []string{
		s.BackDefault, s.BackFemale, s.BackShiny, s.BackShinyFemale,
		s.FrontDefault, s.FrontFemale, s.FrontShiny, s.FrontShinyFemale,
	}
	out := make([]string, 0, len(all))
	for _, u := range all {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// RelationKey is one of the six directional damage relations.
type RelationKey string

const (
	DoubleDamageFrom RelationKey = "double_damage_from"
	DoubleDamageTo   RelationKey = "double_damage_to"
	HalfDamageFrom   RelationKey = "half_damage_from"
	HalfDamageTo     RelationKey = "half_damage_to"
	NoDamageFrom     RelationKey = "no_damage_from"
	NoDamageTo       RelationKey = "no_damage_to"
)

// RelationKeys lists the relations in the order the data source reports them.
// Deduplication keeps the first key in this order.
var RelationKeys = []RelationKey{
	DoubleDamageFrom,
	DoubleDamageTo,
	HalfDamageFrom,
	HalfDamageTo,
	NoDamageFrom,
	NoDamageTo,
}

// Relations maps a damage relation to a representative category (type) name.
type Relations map[RelationKey]string

// StructuredRecord is the canonical attribute bag for one entity.
type StructuredRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Stats     Stats     `json:"stats"`
	Height    int       `json:"height"` // decimetres
	Weight    int       `json:"weight"` // hectograms
	Types     []string  `json:"types"`
	Abilities []string  `json:"abilities"`
	Sprites   Sprites   `json:"sprites"`
	Relations Relations `json:"damage_relations"`
}

// RecordSet keeps structured records keyed by entity name in insertion order.
type RecordSet struct {
	m *orderedmap.OrderedMap[string, StructuredRecord]
}

func NewRecordSet() *RecordSet {
	return &RecordSet{m: orderedmap.New[string, StructuredRecord]()}
}

func (s *RecordSet) Put(name string, r StructuredRecord) {
	s.m.Set(name, r)
}

func (s *RecordSet) Get(name string) (StructuredRecord, bool) {
	if s == nil {
		return StructuredRecord{}, false
	}
	return s.m.Get(name)
}

func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// Each visits records in insertion order.
func (s *RecordSet) Each(fn func(name string, r StructuredRecord)) {
	if s == nil {
		return
	}
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// Names returns the keys in insertion order.
func (s *RecordSet) Names() []string {
	names := make([]string, 0, s.Len())
	s.Each(func(name string, _ StructuredRecord) {
		names = append(names, name)
	})
	return names
}

func (s *RecordSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}
