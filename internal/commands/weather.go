// ABOUTME: WEATHER command backed by the OpenWeatherMap current-conditions API.
// ABOUTME: Disabled with a notice when no API key or location is configured.

package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode"

	"github.com/2389/mesh-gateway/internal/config"
)

const weatherAPIURL = "https://api.openweathermap.org/data/2.5/weather"

type weatherCmd struct {
	cfg    config.WeatherConfig
	client *http.Client
	logger *slog.Logger
	apiURL string
}

// owmResponse covers the subset of the OpenWeatherMap payload we render.
type owmResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

func (c *weatherCmd) Name() string { return "WEATHER" }
func (c *weatherCmd) Help() string {
	return "WEATHER - Shows current weather conditions (OpenWeatherMap)"
}

func (c *weatherCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if c.cfg.APIKey == "" || c.cfg.Location == "" {
		rsp.Notice("Weather command is not configured (API key or location missing).")
		c.logger.Warn("weather command executed but not configured")
		return nil
	}

	rsp.Notice(fmt.Sprintf("Fetching weather for %s...", c.cfg.Location))

	params := url.Values{}
	params.Set("q", c.cfg.Location)
	params.Set("appid", c.cfg.APIKey)
	params.Set("units", c.cfg.Units)

	resp, err := c.client.Get(c.apiURL + "?" + params.Encode())
	if err != nil {
		c.logger.Error("weather request failed", "error", err)
		rsp.Notice("Error fetching weather data: Network or connection issue.")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("weather API error", "status", resp.StatusCode)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			rsp.Notice("Error: Invalid weather API key.")
		case http.StatusNotFound:
			rsp.Notice(fmt.Sprintf("Error: Weather location '%s' not found.", c.cfg.Location))
		case http.StatusTooManyRequests:
			rsp.Notice("Error: Weather API rate limit exceeded.")
		default:
			rsp.Notice(fmt.Sprintf("Error: Weather API returned status code %d.", resp.StatusCode))
		}
		return nil
	}

	var data owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Error("weather response decode failed", "error", err)
		rsp.Notice("Error: Received unexpected data format from weather API.")
		return nil
	}
	if len(data.Weather) == 0 {
		rsp.Notice("Error: Received unexpected data format from weather API.")
		return nil
	}

	unitSuffix := "°C"
	speedSuffix := "m/s"
	if c.cfg.Units == "imperial" {
		unitSuffix = "°F"
		speedSuffix = "mph"
	}

	name := data.Name
	if name == "" {
		name = c.cfg.Location
	}
	reportTime := "N/A"
	if data.Dt > 0 {
		reportTime = time.Unix(data.Dt, 0).Format("15:04:05 MST")
	}

	rsp.Notice(fmt.Sprintf("--- Weather for %s (as of %s) ---", name, reportTime))
	rsp.Notice("Conditions: " + capitalize(data.Weather[0].Description))
	rsp.Notice(fmt.Sprintf("Temperature: %.1f%s (Feels like: %.1f%s)",
		data.Main.Temp, unitSuffix, data.Main.FeelsLike, unitSuffix))
	rsp.Notice(fmt.Sprintf("Humidity: %d%% | Pressure: %d hPa", data.Main.Humidity, data.Main.Pressure))
	rsp.Notice(fmt.Sprintf("Wind: %.1f%s (%d°)", data.Wind.Speed, speedSuffix, data.Wind.Deg))
	rsp.Notice(fmt.Sprintf("Sunrise: %s | Sunset: %s",
		formatClock(data.Sys.Sunrise), formatClock(data.Sys.Sunset)))
	rsp.Notice("--- End of Weather ---")
	return nil
}

func formatClock(ts int64) string {
	if ts == 0 {
		return "N/A"
	}
	return time.Unix(ts, 0).Format("15:04")
}

func capitalize(s string) string {
	if s == "" {
		return "N/A"
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
