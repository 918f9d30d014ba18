package nutrition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smoothie-order/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/fruit/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/api/fruit/"):]
		switch key {
		case "Apple", "dragon fruit":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"` + key + `","nutritions":{"sugar":10.3,"calories":52}}`))
		case "boom":
			w.WriteHeader(http.StatusInternalServerError)
		case "slow":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		case "html":
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not found"}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	c := NewClient(config.NutritionConfig{BaseURL: baseURL + "/api/", Timeout: timeout})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientFetch(t *testing.T) {
	srv := newTestAPI(t)
	c := newTestClient(t, srv.URL, time.Second)
	ctx := context.Background()

	r := c.Fetch(ctx, "Apple")
	require.Equal(t, OutcomeSuccess, r.Outcome)
	assert.JSONEq(t, `{"name":"Apple","nutritions":{"sugar":10.3,"calories":52}}`, string(r.Payload))

	r = c.Fetch(ctx, "dragon fruit")
	assert.Equal(t, OutcomeSuccess, r.Outcome, "lookup key must be path escaped")

	r = c.Fetch(ctx, "unobtainium")
	assert.Equal(t, OutcomeNotFound, r.Outcome)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)

	r = c.Fetch(ctx, "boom")
	assert.Equal(t, OutcomeFailure, r.Outcome)
	assert.Equal(t, http.StatusInternalServerError, r.StatusCode)
	assert.Contains(t, r.Message, "500")

	r = c.Fetch(ctx, "html")
	assert.Equal(t, OutcomeFailure, r.Outcome)
	assert.Contains(t, r.Message, "invalid JSON")
}

func TestClientFetchTimeout(t *testing.T) {
	srv := newTestAPI(t)
	c := newTestClient(t, srv.URL, 100*time.Millisecond)

	start := time.Now()
	r := c.Fetch(context.Background(), "slow")
	assert.Equal(t, OutcomeFailure, r.Outcome)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClientFetchTransportError(t *testing.T) {
	srv := newTestAPI(t)
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, time.Second)
	r := c.Fetch(context.Background(), "Apple")
	assert.Equal(t, OutcomeFailure, r.Outcome)
	assert.Contains(t, r.Message, "request failed")
}
