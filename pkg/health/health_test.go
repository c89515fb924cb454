package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("connection refused") }

func TestRunWorstStatusWins(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"all up", map[string]Check{"store": PingCheck(ok, true)}, StatusUp},
		{"cache degraded", map[string]Check{"store": PingCheck(ok, true), "cache": PingCheck(fail, false)}, StatusDegraded},
		{"store down", map[string]Check{"store": PingCheck(fail, true), "cache": PingCheck(fail, false)}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Components, len(tt.checks))
		})
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("store", PingCheck(fail, true))

	rec := httptest.NewRecorder()
	c.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "connection refused", report.Components["store"].Message)
}
