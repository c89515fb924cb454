// Package synonym expands query phrases with related labels fetched from a
// SPARQL endpoint.
package synonym

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/resilience"
)

const (
	breakerName = "sparql"

	askQuery = "ASK WHERE { ?s ?p ?o }"

	labelQuery = `PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT DISTINCT ?label WHERE {
  ?res rdfs:label %[1]s .
  ?res rdfs:label ?label .
  FILTER (?label != %[1]s)
  FILTER langMatches(lang(?label), %[2]s)
}`

	maxResponseBytes = 1 << 20
)

// Config controls the endpoint, language tag and fault handling.
type Config struct {
	Endpoint         string
	Language         string
	Timeout          time.Duration
	MaxRetries       int
	FailureThreshold int
	ResetTimeout     time.Duration
}

// Client implements parser.Expander against a SPARQL endpoint. Calls go
// through a circuit breaker and are retried on transient failures.
type Client struct {
	endpoint string
	language string
	http     *http.Client
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(cfg Config, m *metrics.Metrics) *Client {
	if cfg.Language == "" {
		cfg.Language = "fr"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		language: cfg.Language,
		http:     &http.Client{Timeout: cfg.Timeout},
		retry: resilience.RetryConfig{
			MaxAttempts:  cfg.MaxRetries + 1,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(breakerName, resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			ResetTimeout:     cfg.ResetTimeout,
			OnStateChange: func(name string, _, to resilience.State) {
				m.SetBreakerState(name, int(to))
			},
		}),
		metrics: m,
		logger:  slog.Default().With("component", "synonym-client", "endpoint", cfg.Endpoint),
	}
}

type sparqlResponse struct {
	Boolean *bool `json:"boolean"`
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// RelatedTerms returns the labels sharing a resource with phrase in the
// configured language, excluding phrase itself.
func (c *Client) RelatedTerms(ctx context.Context, phrase string) ([]string, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, nil
	}
	query := fmt.Sprintf(labelQuery, literal(phrase, c.language), literal(strings.ToUpper(c.language), ""))

	resp, err := c.execute(ctx, query)
	if err != nil {
		c.metrics.SynonymRequest("error")
		return nil, err
	}
	c.metrics.SynonymRequest("ok")

	seen := make(map[string]struct{})
	var labels []string
	for _, row := range resp.Results.Bindings {
		label, ok := row["label"]
		if !ok || label.Value == "" {
			continue
		}
		if _, dup := seen[label.Value]; dup {
			continue
		}
		seen[label.Value] = struct{}{}
		labels = append(labels, label.Value)
	}
	c.logger.Debug("synonyms fetched", "phrase", phrase, "count", len(labels))
	return labels, nil
}

// Ping asks the endpoint whether it holds any triple.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.execute(ctx, askQuery)
	if err != nil {
		return err
	}
	if resp.Boolean == nil || !*resp.Boolean {
		return fmt.Errorf("sparql endpoint returned no data: %w", apperrors.ErrExpanderUnavailable)
	}
	return nil
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *Client) execute(ctx context.Context, query string) (*sparqlResponse, error) {
	var out *sparqlResponse
	err := c.breaker.Execute(func() error {
		return resilience.Retry(ctx, "sparql-query", c.retry, func() error {
			resp, err := c.do(ctx, query)
			if err != nil {
				return err
			}
			out = resp
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w: %w", c.endpoint, apperrors.ErrExpanderUnavailable, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, query string) (*sparqlResponse, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("parsing endpoint: %w", err))
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", res.StatusCode)
		if res.StatusCode >= 400 && res.StatusCode < 500 {
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}

	var out sparqlResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, resilience.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return &out, nil
}

// literal renders s as a SPARQL string literal with an optional language tag.
func literal(s, lang string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	out := `"` + r.Replace(s) + `"`
	if lang != "" {
		out += "@" + lang
	}
	return out
}
