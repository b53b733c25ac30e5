package request_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amonks/albumengine/refresh"
	"github.com/amonks/albumengine/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func get(t *testing.T, status int, body string) *resty.Response {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := resty.New()
	t.Cleanup(func() { c.Close() })
	resp, err := c.R().SetDoNotParseResponse(true).Get(srv.URL + "/search")
	require.NoError(t, err)
	t.Cleanup(func() { resp.RawResponse.Body.Close() })
	return resp
}

func TestOK(t *testing.T) {
	assert.NoError(t, request.Error(get(t, http.StatusOK, "{}")))
}

func TestTooManyRequests(t *testing.T) {
	err := request.Error(get(t, http.StatusTooManyRequests, ""))
	assert.ErrorIs(t, err, refresh.ErrRateLimited)
	assert.ErrorIs(t, err, request.ErrFetch)
}

func TestOtherStatus(t *testing.T) {
	err := request.Error(get(t, http.StatusServiceUnavailable, "  down for maintenance\n"))
	assert.NotErrorIs(t, err, refresh.ErrRateLimited)
	assert.ErrorIs(t, err, request.ErrFetch)

	var status *request.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusServiceUnavailable, status.StatusCode)
	assert.Equal(t, "down for maintenance", status.Body)
	assert.True(t, strings.HasSuffix(status.URL, "/search"))
}

func TestBodyIsTruncated(t *testing.T) {
	err := request.Error(get(t, http.StatusBadGateway, strings.Repeat("x", 4096)))
	var status *request.StatusError
	require.ErrorAs(t, err, &status)
	assert.Len(t, status.Body, 512)
}
