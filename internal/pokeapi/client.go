// Package pokeapi fetches structured records from the public PokeAPI.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// ErrNotFound is returned when the API has no resource with the given name.
var ErrNotFound = errors.New("pokeapi: not found")

const maxBodyBytes = 4 << 20

// Client is a small read-only PokeAPI client.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg model.PokeAPIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type namedResource struct {
	Name string `json:"name"`
}

type pokemonResponse struct {
	ID     int `json:"id"`
	Height int `json:"height"`
	Weight int `json:"weight"`
	Stats  []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Types []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability namedResource `json:"ability"`
	} `json:"abilities"`
	Sprites model.Sprites `json:"sprites"`
}

type typeResponse struct {
	DamageRelations map[string][]namedResource `json:"damage_relations"`
}

type listResponse struct {
	Results []namedResource `json:"results"`
}

// Fetch builds the structured record for one pokemon. A failed type lookup
// leaves the damage relations empty.
func (c *Client) Fetch(ctx context.Context, name string) (model.StructuredRecord, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return model.StructuredRecord{}, fmt.Errorf("pokeapi: empty name")
	}

	var p pokemonResponse
	if err := c.get(ctx, "/pokemon/"+url.PathEscape(key), &p); err != nil {
		return model.StructuredRecord{}, fmt.Errorf("pokemon %q: %w", key, err)
	}

	rec := model.StructuredRecord{
		ID:        p.ID,
		Name:      key,
		Height:    p.Height,
		Weight:    p.Weight,
		Sprites:   p.Sprites,
		Relations: model.Relations{},
	}
	for _, s := range p.Stats {
		setStat(&rec.Stats, s.Stat.Name, s.BaseStat)
	}
	for _, t := range p.Types {
		rec.Types = append(rec.Types, t.Type.Name)
	}
	for _, a := range p.Abilities {
		rec.Abilities = append(rec.Abilities, a.Ability.Name)
	}

	if len(rec.Types) > 0 {
		rel, err := c.relations(ctx, rec.Types[0])
		if err != nil {
			logx.Info().Err(err).Str("pokemon", key).Msg("no damage relations were extracted")
		} else {
			rec.Relations = rel
		}
	}
	return rec, nil
}

// relations keeps the first category of every non-empty relation.
func (c *Client) relations(ctx context.Context, typeName string) (model.Relations, error) {
	var t typeResponse
	if err := c.get(ctx, "/type/"+url.PathEscape(typeName), &t); err != nil {
		return nil, fmt.Errorf("type %q: %w", typeName, err)
	}
	rel := model.Relations{}
	for _, key := range model.RelationKeys {
		if v := t.DamageRelations[string(key)]; len(v) > 0 {
			rel[key] = v[0].Name
		}
	}
	return rel, nil
}

// ListNames returns every pokemon name the API knows.
func (c *Client) ListNames(ctx context.Context) ([]string, error) {
	var l listResponse
	if err := c.get(ctx, "/pokemon?limit=100000&offset=0", &l); err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}
	names := make([]string, 0, len(l.Results))
	for _, r := range l.Results {
		names = append(names, r.Name)
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("pokeapi: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("pokeapi: decode: %w", err)
	}
	return nil
}

func setStat(s *model.Stats, name string, v int) {
	switch name {
	case "hp":
		s.HP = v
	case "attack":
		s.Attack = v
	case "defense":
		s.Defense = v
	case "special-attack":
		s.SpecialAttack = v
	case "special-defense":
		s.SpecialDefense = v
	case "speed":
		s.Speed = v
	}
}
