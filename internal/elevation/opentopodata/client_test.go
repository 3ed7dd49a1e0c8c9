package opentopodata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealens/arealens/internal/elevation/opentopodata"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

func newClient(url string) *opentopodata.Client {
	return opentopodata.NewClient(opentopodata.ClientConfig{
		BaseURL:    url,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_GetElevation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/srtm90m", r.URL.Path)
		assert.Equal(t, "27.988100,86.925000", r.URL.Query().Get("locations"))
		_, _ = w.Write([]byte(`{"results":[{"dataset":"srtm90m","elevation":8752.0,"location":{"lat":27.9881,"lng":86.925}}],"status":"OK"}`))
	}))
	defer server.Close()

	res, err := newClient(server.URL).GetElevation(context.Background(), geometry.Point{Lat: 27.9881, Lon: 86.925}, "")
	require.NoError(t, err)
	assert.Equal(t, 8752.0, *res.CenterElevationMeters)
}

func TestClient_GetElevation_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "no coverage", status: http.StatusOK, body: `{"results":[{"dataset":"srtm90m","elevation":null}],"status":"OK"}`, wantErr: provider.ErrEmptyResult},
		{name: "no results", status: http.StatusOK, body: `{"results":[],"status":"OK"}`, wantErr: provider.ErrMalformed},
		{name: "invalid request", status: http.StatusBadRequest, body: `{"error":"Invalid locations","status":"INVALID_REQUEST"}`, wantErr: provider.ErrUnavailable},
		{name: "server status", status: http.StatusOK, body: `{"error":"busy","status":"SERVER_ERROR"}`, wantErr: provider.ErrUnavailable},
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
