package openmeteo_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/weather"
	"github.com/arealens/arealens/internal/weather/openmeteo"
)

func newClient(url string) *openmeteo.Client {
	return openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    url,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
		Logger:     zerolog.Nop(),
	})
}

func currentBody(code int) string {
	return fmt.Sprintf(`{"current":{"time":"2024-06-01T12:00","temperature_2m":21.4,"relative_humidity_2m":55,`+
		`"wind_speed_10m":3.2,"surface_pressure":1012.5,"cloud_cover":40,"weather_code":%d}}`, code)
}

func TestClient_GetCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		assert.Contains(t, q.Get("current"), "weather_code")
		_, _ = w.Write([]byte(currentBody(63)))
	}))
	defer server.Close()

	client := newClient(server.URL)
	res, err := client.GetCurrentWeather(context.Background(), geometry.Point{Lat: 48.1, Lon: 11.6}, "")
	require.NoError(t, err)
	require.NoError(t, res.Validate())

	assert.Equal(t, 21.4, res.TemperatureC)
	assert.Equal(t, 55.0, res.HumidityPercent)
	assert.Equal(t, 3.2, res.WindSpeedMs)
	assert.Equal(t, 1012.5, res.PressureHpa)
	assert.Equal(t, 40.0, res.CloudsPercent)
	assert.Equal(t, weather.ConditionRain, res.Condition)
	assert.Equal(t, "moderate rain", res.Description)
	assert.False(t, client.RequiresCredential())
}

func TestClient_GetCurrentWeather_Codes(t *testing.T) {
	tests := []struct {
		code      int
		condition weather.Condition
	}{
		{0, weather.ConditionClear},
		{3, weather.ConditionClouds},
		{45, weather.ConditionFog},
		{55, weather.ConditionDrizzle},
		{75, weather.ConditionSnow},
		{81, weather.ConditionRain},
		{99, weather.ConditionThunderstorm},
		{42, weather.ConditionUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(currentBody(tt.code)))
			}))
			defer server.Close()

			res, err := newClient(server.URL).GetCurrentWeather(context.Background(), geometry.Point{}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.condition, res.Condition)
		})
	}
}

func TestClient_GetCurrentWeather_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "missing current", status: http.StatusOK, body: `{}`, wantErr: provider.ErrMalformed},
		{name: "missing field", status: http.StatusOK, body: `{"current":{"temperature_2m":1}}`, wantErr: provider.ErrMalformed},
		{name: "api error", status: http.StatusOK, body: `{"error":true,"reason":"bad"}`, wantErr: provider.ErrUnavailable},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":true,"reason":"bad"}`, wantErr: provider.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL).GetCurrentWeather(context.Background(), geometry.Point{}, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
