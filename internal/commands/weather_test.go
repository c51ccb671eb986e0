// ABOUTME: Tests for the WEATHER command against a stub OpenWeatherMap server.
// ABOUTME: Covers unconfigured, success, and error-status paths.

package commands

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/mesh-gateway/internal/config"
)

func newWeatherCmd(url string) *weatherCmd {
	return &weatherCmd{
		cfg:    config.WeatherConfig{APIKey: "key", Location: "Toronto", Units: "metric"},
		client: http.DefaultClient,
		logger: testLogger(),
		apiURL: url,
	}
}

func TestWeather_NotConfigured(t *testing.T) {
	cmd := &weatherCmd{cfg: config.WeatherConfig{}, client: http.DefaultClient, logger: testLogger()}
	rsp := &fakeResponder{}

	require.NoError(t, cmd.Execute(newFakeGateway(), rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "not configured")
}

func TestWeather_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Toronto", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{
			"name": "Toronto",
			"dt": 1700000000,
			"main": {"temp": 21.4, "feels_like": 20.1, "humidity": 55, "pressure": 1013},
			"weather": [{"description": "scattered clouds"}],
			"wind": {"speed": 4.2, "deg": 270},
			"sys": {"sunrise": 1699960000, "sunset": 1699996000}
		}`))
	}))
	defer srv.Close()

	rsp := &fakeResponder{}
	require.NoError(t, newWeatherCmd(srv.URL).Execute(newFakeGateway(), rsp, "alice", nil))

	out := rsp.joined()
	assert.Contains(t, out, "--- Weather for Toronto")
	assert.Contains(t, out, "Conditions: Scattered clouds")
	assert.Contains(t, out, "Temperature: 21.4°C (Feels like: 20.1°C)")
	assert.Contains(t, out, "Humidity: 55% | Pressure: 1013 hPa")
	assert.Contains(t, out, "Wind: 4.2m/s (270°)")
}

func TestWeather_BadAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	rsp := &fakeResponder{}
	require.NoError(t, newWeatherCmd(srv.URL).Execute(newFakeGateway(), rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "Invalid weather API key")
}

func TestWeather_LocationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rsp := &fakeResponder{}
	require.NoError(t, newWeatherCmd(srv.URL).Execute(newFakeGateway(), rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "not found")
}

func TestWeather_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	rsp := &fakeResponder{}
	require.NoError(t, newWeatherCmd(srv.URL).Execute(newFakeGateway(), rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "unexpected data format")
}

func TestWeather_ImperialUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Austin","main":{"temp":75.0,"feels_like":78.0,"humidity":40,"pressure":1015},"weather":[{"description":"clear sky"}],"wind":{"speed":8.0,"deg":180},"sys":{}}`))
	}))
	defer srv.Close()

	cmd := newWeatherCmd(srv.URL)
	cmd.cfg.Units = "imperial"
	rsp := &fakeResponder{}
	require.NoError(t, cmd.Execute(newFakeGateway(), rsp, "alice", nil))

	out := rsp.joined()
	assert.Contains(t, out, "75.0°F")
	assert.Contains(t, out, "8.0mph")
}
