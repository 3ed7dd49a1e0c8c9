package nominatim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealens/arealens/internal/geocode/nominatim"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

func newClient(url string) *nominatim.Client {
	return nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    url,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_CountryCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "3", r.URL.Query().Get("zoom"))
		assert.Contains(t, r.URL.Query().Get("lat"), "46.000")
		assert.NotEmpty(t, r.UserAgent())

		_, _ = w.Write([]byte(`{"display_name":"France","address":{"country":"France","country_code":"fr"}}`))
	}))
	defer server.Close()

	code, err := newClient(server.URL).CountryCode(context.Background(), 46, 2)
	require.NoError(t, err)
	assert.Equal(t, "FR", code)
}

func TestClient_CountryCode_Ocean(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CountryCode(context.Background(), 0, -30)
	assert.ErrorIs(t, err, provider.ErrEmptyResult)
}

func TestClient_CountryCode_MissingCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":"Somewhere","address":{}}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CountryCode(context.Background(), 10, 10)
	assert.ErrorIs(t, err, provider.ErrEmptyResult)
}

func TestClient_CountryCode_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newClient(server.URL).CountryCode(context.Background(), 10, 10)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}
