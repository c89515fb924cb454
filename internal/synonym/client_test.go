package synonym

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(endpoint string, retries, threshold int) *Client {
	return New(Config{
		Endpoint:         endpoint,
		Language:         "fr",
		Timeout:          time.Second,
		MaxRetries:       retries,
		FailureThreshold: threshold,
		ResetTimeout:     time.Minute,
	}, nil)
}

func TestRelatedTerms(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(`{"head":{"vars":["label"]},"results":{"bindings":[
			{"label":{"type":"literal","xml:lang":"fr","value":"château fort"}},
			{"label":{"type":"literal","xml:lang":"fr","value":"forteresse"}},
			{"label":{"type":"literal","xml:lang":"fr","value":"forteresse"}}
		]}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 0, 5)
	terms, err := c.RelatedTerms(context.Background(), " château ")
	require.NoError(t, err)
	assert.Equal(t, []string{"château fort", "forteresse"}, terms)
	assert.Contains(t, gotQuery, `rdfs:label "château"@fr`)
	assert.Contains(t, gotQuery, `langMatches(lang(?label), "FR")`)
}

func TestRelatedTermsEmptyPhrase(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", 0, 5)
	terms, err := c.RelatedTerms(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestLiteralEscaping(t *testing.T) {
	assert.Equal(t, `"a\"b\\c"@fr`, literal(`a"b\c`, "fr"))
	assert.Equal(t, `"FR"`, literal("FR", ""))
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3, 5)
	_, err := c.RelatedTerms(context.Background(), "chat")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExpanderUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results":{"bindings":[{"label":{"type":"literal","value":"minou"}}]}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 1, 5)
	terms, err := c.RelatedTerms(context.Background(), "chat")
	require.NoError(t, err)
	assert.Equal(t, []string{"minou"}, terms)
	assert.EqualValues(t, 2, calls.Load())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 0, 2)
	for range 2 {
		_, err := c.RelatedTerms(context.Background(), "chat")
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := c.RelatedTerms(context.Background(), "chat")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.EqualValues(t, 2, calls.Load())
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("query"), "ASK") {
			_, _ = w.Write([]byte(`{"head":{},"boolean":true}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL, 0, 5).Ping(context.Background()))
}
