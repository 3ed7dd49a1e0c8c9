package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealens/arealens/internal/elevation"
	"github.com/arealens/arealens/internal/elevation/openmeteo"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

func newClient(url string) *openmeteo.Client {
	return openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    url,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_GetElevation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "47.376900", r.URL.Query().Get("latitude"))
		assert.Equal(t, "8.541700", r.URL.Query().Get("longitude"))
		_, _ = w.Write([]byte(`{"elevation":[408.0]}`))
	}))
	defer server.Close()

	client := newClient(server.URL)
	res, err := client.GetElevation(context.Background(), geometry.Point{Lat: 47.3769, Lon: 8.5417}, "")
	require.NoError(t, err)

	assert.Equal(t, 408.0, *res.CenterElevationMeters)
	assert.Equal(t, elevation.UnitMeters, res.Unit)
	assert.Equal(t, openmeteo.ProviderName, client.Name())
}

func TestClient_GetElevation_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty", status: http.StatusOK, body: `{"elevation":[]}`, wantErr: provider.ErrEmptyResult},
		{name: "null", status: http.StatusOK, body: `{"elevation":[null]}`, wantErr: provider.ErrEmptyResult},
		{name: "api error", status: http.StatusOK, body: `{"error":true,"reason":"Latitude must be in range"}`, wantErr: provider.ErrUnavailable},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: provider.ErrUnavailable},
		{name: "wrong shape", status: http.StatusOK, body: `{"elevation":"high"}`, wantErr: provider.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL).GetElevation(context.Background(), geometry.Point{Lat: 1, Lon: 1}, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
