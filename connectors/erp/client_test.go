package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labor-stats/connectors/config"
)

func testConfig(url, token string) *config.Config {
	cfg := &config.Config{}
	cfg.API.URL = url
	cfg.API.Token = token
	cfg.API.Method = "report.get_labor_cost"
	cfg.API.TimeoutSeconds = 5
	return cfg
}

func TestFetchRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/report.get_labor_cost", r.URL.Path)
		assert.Equal(t, "token secreto", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": {"success": true, "data": [{"iss": "ISS-1", "ot": "OT-1"}, {"iss": "ISS-2"}]}}`))
	}))
	defer srv.Close()

	rows, err := New(testConfig(srv.URL, "secreto")).FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ISS-1", rows[0]["iss"])
}

func TestFetchRowsErrorStatusWithData(t *testing.T) {
	// Some server versions attach the rows even on an error status; the
	// client must use them instead of failing the refresh.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": {"success": false, "data": [{"iss": "ISS-1"}]}}`))
	}))
	defer srv.Close()

	rows, err := New(testConfig(srv.URL, "secreto")).FetchRows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFetchRowsErrorStatusNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL, "secreto")).FetchRows(context.Background())
	assert.Error(t, err)
}

func TestFetchRowsBadEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "sin datos"}`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL, "secreto")).FetchRows(context.Background())
	assert.Error(t, err)
}

func TestFetchRowsNoToken(t *testing.T) {
	client := New(testConfig("http://localhost:0", ""))
	assert.False(t, client.HasToken())
	_, err := client.FetchRows(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}
