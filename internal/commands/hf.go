// ABOUTME: HFCONDITIONS command backed by the NOAA SWPC 3-day forecast feed.
// ABOUTME: Renders solar flux, Kp index, and the R/G/S scale forecasts.

package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const hfUserAgent = "mesh-gateway/1.0"

type hfCmd struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// swpcEntry is one forecast record from the SWPC summary product.
type swpcEntry struct {
	IssueDatetime string   `json:"issue_datetime"`
	KpIndex       *float64 `json:"kp_index"`
	SolarFlux     *float64 `json:"10cm_flux"`
	RadioBlackout string   `json:"radio_blackout"`
	GeomagStorm   string   `json:"geomagnetic_storm"`
	SolarRadStorm string   `json:"solar_radiation_storm"`
}

func (c *hfCmd) Name() string { return "HFCONDITIONS" }
func (c *hfCmd) Help() string {
	return "HFCONDITIONS - Shows current Solar/HF propagation indicators (NOAA SWPC)"
}

func (c *hfCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if c.url == "" {
		rsp.Notice("HF Conditions command is not configured (data source URL missing).")
		c.logger.Warn("hfconditions command executed but not configured")
		return nil
	}

	rsp.Notice("Fetching HF conditions from NOAA SWPC...")

	req, err := http.NewRequest(http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("building SWPC request: %w", err)
	}
	req.Header.Set("User-Agent", hfUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("swpc request failed", "error", err)
		rsp.Notice("Error fetching HF conditions data: Network or connection issue.")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("swpc API error", "status", resp.StatusCode)
		rsp.Notice(fmt.Sprintf("Error: NOAA SWPC returned status code %d.", resp.StatusCode))
		return nil
	}

	var entries []swpcEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		c.logger.Error("swpc response decode failed", "error", err)
		rsp.Notice("Error: Received invalid data format from SWPC.")
		return nil
	}

	latest := latestEntry(entries)
	if latest == nil {
		rsp.Notice("Error: Could not parse relevant data from SWPC response.")
		return nil
	}

	issued := latest.IssueDatetime
	if t, ok := parseIssueTime(issued); ok {
		issued = t.UTC().Format("2006-01-02 15:04 Z")
	}

	rsp.Notice(fmt.Sprintf("--- HF Conditions (Source: NOAA SWPC @ %s) ---", issued))
	if latest.SolarFlux != nil {
		rsp.Notice(fmt.Sprintf("Solar Flux (10.7cm): %.0f", *latest.SolarFlux))
	} else {
		rsp.Notice("Solar Flux (10.7cm): N/A")
	}
	if latest.KpIndex != nil {
		kp := int(*latest.KpIndex)
		rsp.Notice(fmt.Sprintf("Planetary K-Index (Kp): %.1f", *latest.KpIndex))
		rsp.Notice(fmt.Sprintf("Geomagnetic Activity: %s (Kp=%d)", kpDescription(kp), kp))
	} else {
		rsp.Notice("Planetary K-Index (Kp): N/A")
	}

	rsp.Notice("--- Forecasts (Next ~24hrs) ---")
	if latest.RadioBlackout != "" {
		rsp.Notice("Radio Blackout (R): " + latest.RadioBlackout)
	}
	if latest.GeomagStorm != "" {
		rsp.Notice("Geomagnetic Storm (G): " + latest.GeomagStorm)
	}
	if latest.SolarRadStorm != "" {
		rsp.Notice("Solar Radiation Storm (S): " + latest.SolarRadStorm)
	}
	rsp.Notice("--- End of HF Conditions ---")
	return nil
}

// parseIssueTime accepts the RFC3339 and space-separated forms SWPC emits.
func parseIssueTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05.000", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// latestEntry picks the record with the newest parseable issue time.
func latestEntry(entries []swpcEntry) *swpcEntry {
	var best *swpcEntry
	var bestTime time.Time
	for i := range entries {
		t, ok := parseIssueTime(entries[i].IssueDatetime)
		if !ok {
			continue
		}
		if best == nil || t.After(bestTime) {
			best = &entries[i]
			bestTime = t
		}
	}
	return best
}

func kpDescription(kp int) string {
	switch {
	case kp <= 1:
		return "Inactive"
	case kp == 2:
		return "Quiet"
	case kp == 3:
		return "Unsettled"
	case kp == 4:
		return "Active"
	case kp == 5:
		return "Minor Storm"
	case kp == 6:
		return "Major Storm"
	default:
		return "Severe/Extreme Storm"
	}
}
