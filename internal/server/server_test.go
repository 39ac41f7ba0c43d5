package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
	"github.com/pokedex-genai/server/internal/observe"
)

type fakeRunner struct {
	doc      *model.ResponseDocument
	err      error
	got      model.QueryInput
	deadline bool
}

func (f *fakeRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.ResponseDocument, error) {
	f.got = in
	_, f.deadline = ctx.Deadline()
	return f.doc, f.err
}

type fakeHistory struct {
	turns   map[string][]model.Turn
	cleared []string
	err     error
}

func (f *fakeHistory) History(_ context.Context, id string) (*model.ConversationHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.ConversationHistory{ConversationID: id, Turns: f.turns[id]}, nil
}

func (f *fakeHistory) Clear(_ context.Context, id string) error {
	f.cleared = append(f.cleared, id)
	return f.err
}

func newServer(t *testing.T, runner *fakeRunner, history History) http.Handler {
	t.Helper()
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader())))
	require.NoError(t, err)
	return New(runner, history, model.ServerConfig{TurnTimeout: time.Minute}, m).Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIntentQuery(t *testing.T) {
	sprites := model.NewSpriteMap()
	sprites.Set("Pikachu", []string{"https://img/25.png"})
	runner := &fakeRunner{doc: &model.ResponseDocument{
		Header:          "Here you go!",
		Body:            []string{"Pikachu (#25)"},
		Sprites:         sprites,
		IntentType:      model.IntentInformationRequest,
		IntentStructure: model.StructureEntityNameList,
	}}
	h := newServer(t, runner, nil)

	rec := do(h, http.MethodPost, "/intent_query/", `{"user_query":"pikachu","conversation_id":"c1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, model.QueryInput{ConversationID: "c1", Query: "pikachu"}, runner.got)
	assert.True(t, runner.deadline)

	var body struct {
		Response struct {
			Header          string              `json:"header"`
			Body            []string            `json:"body"`
			Sprites         map[string][]string `json:"sprites"`
			IntentType      string              `json:"intent_type"`
			IntentStructure string              `json:"intent_structure"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Here you go!", body.Response.Header)
	assert.Equal(t, []string{"https://img/25.png"}, body.Response.Sprites["Pikachu"])
	assert.Equal(t, "entity_name_list", body.Response.IntentStructure)
}

func TestIntentQueryNullFields(t *testing.T) {
	runner := &fakeRunner{doc: &model.ResponseDocument{Header: "Sorry", IntentType: model.IntentNone, IntentStructure: model.StructureNone}}
	rec := do(newServer(t, runner, nil), http.MethodPost, "/intent_query/", `{"user_query":"??"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body":null`)
	assert.Contains(t, rec.Body.String(), `"sprites":null`)
}

func TestIntentQueryBadRequests(t *testing.T) {
	h := newServer(t, &fakeRunner{}, nil)
	for _, body := range []string{``, `{`, `{"user_query":"  "}`, `{"conversation_id":"x"}`} {
		rec := do(h, http.MethodPost, "/intent_query/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), `"error"`, body)
	}
}

func TestIntentQueryRunnerError(t *testing.T) {
	h := newServer(t, &fakeRunner{err: errors.New("boom")}, nil)
	rec := do(h, http.MethodPost, "/intent_query/", `{"user_query":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestIntentQueryMethodNotAllowed(t *testing.T) {
	rec := do(newServer(t, &fakeRunner{}, nil), http.MethodGet, "/intent_query/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConversationRoutes(t *testing.T) {
	hist := &fakeHistory{turns: map[string][]model.Turn{"c1": {{Query: "hello", Outcome: "no_intent"}}}}
	h := newServer(t, &fakeRunner{}, hist)

	rec := do(h, http.MethodGet, "/conversations/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.ConversationHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "hello", got.Turns[0].Query)

	rec = do(h, http.MethodDelete, "/conversations/c1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"c1"}, hist.cleared)
}

func TestConversationStoreDown(t *testing.T) {
	hist := &fakeHistory{err: errx.New(errors.New("dial"), http.StatusBadGateway, errx.RedisErrorMessage)}
	rec := do(newServer(t, &fakeRunner{}, hist), http.MethodGet, "/conversations/c1", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"redis operation failed"}`, rec.Body.String())
}

func TestConversationRoutesDisabledWithoutHistory(t *testing.T) {
	rec := do(newServer(t, &fakeRunner{}, nil), http.MethodGet, "/conversations/c1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newServer(t, &fakeRunner{}, nil)
	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
