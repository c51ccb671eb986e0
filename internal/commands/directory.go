// ABOUTME: Node-directory commands: NODES, INFO, LOCATION.
// ABOUTME: Read-only views over the mesh backend's node table snapshots.

package commands

import (
	"fmt"
	"sort"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05"

type nodesCmd struct{}

func (c *nodesCmd) Name() string { return "NODES" }
func (c *nodesCmd) Help() string { return "NODES - Lists known nodes on the mesh" }

func (c *nodesCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	rsp.Notice("--- Mesh Nodes ---")
	nodes := gw.Nodes()
	if len(nodes) == 0 {
		rsp.Notice("No nodes currently known to the gateway.")
		rsp.Notice("--- End of Node List ---")
		return nil
	}

	// Most recently heard first
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].LastHeard.After(nodes[j].LastHeard)
	})

	for _, n := range nodes {
		lastHeard := "Never"
		if !n.LastHeard.IsZero() {
			lastHeard = n.LastHeard.Format(timeLayout)
		}
		rsp.Notice(fmt.Sprintf("Num: %d | ID: %s | Name: %s (%s) | SNR: %.1f | LastHeard: %s",
			n.Num, n.ID, n.LongName, n.ShortName, n.SNR, lastHeard))
	}
	rsp.Notice("--- End of Node List ---")
	return nil
}

type infoCmd struct{}

func (c *infoCmd) Name() string { return "INFO" }
func (c *infoCmd) Help() string { return "INFO <node_id|shortname> - Shows detailed info for a node" }

func (c *infoCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	if len(args) == 0 {
		rsp.Notice("Usage: " + c.Help())
		return nil
	}

	spec := args[0]
	node, ok := gw.ResolveNode(spec)
	if !ok {
		rsp.Notice(fmt.Sprintf("Error: Could not find node matching '%s'.", spec))
		return nil
	}

	rsp.Notice(fmt.Sprintf("--- Info for Node %s (%s) ---", spec, node.ID))
	rsp.Notice(fmt.Sprintf("  id: %s", node.ID))
	rsp.Notice(fmt.Sprintf("  num: %d", node.Num))
	rsp.Notice(fmt.Sprintf("  shortName: %s", node.ShortName))
	rsp.Notice(fmt.Sprintf("  longName: %s", node.LongName))
	if !node.LastHeard.IsZero() {
		rsp.Notice(fmt.Sprintf("  lastHeard: %s", node.LastHeard.Format(timeLayout)))
	}
	rsp.Notice(fmt.Sprintf("  snr: %.1f", node.SNR))
	rsp.Notice(fmt.Sprintf("  rssi: %d", node.RSSI))
	if p := node.Position; p != nil {
		posTime := "N/A"
		if !p.Time.IsZero() {
			posTime = p.Time.Format(timeLayout)
		}
		rsp.Notice(fmt.Sprintf("  position: Lat %.5f, Lon %.5f, Alt %dm (Time: %s)",
			p.Latitude, p.Longitude, p.Altitude, posTime))
	}
	if m := node.Metrics; m != nil {
		rsp.Notice(fmt.Sprintf("  metrics: Batt %d%%, Volt %.2fV, AirUtil %.1f%%, Uptime %ds",
			m.BatteryLevel, m.Voltage, m.AirUtilTx, m.UptimeSeconds))
	}
	rsp.Notice("--- End of Info ---")
	return nil
}

type locationCmd struct{}

func (c *locationCmd) Name() string { return "LOCATION" }
func (c *locationCmd) Help() string {
	return "LOCATION - Shows the gateway node's GPS location (if available)"
}

func (c *locationCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	rsp.Notice("--- Gateway Location ---")

	self, ok := gw.ResolveNode(gw.OwnIdentity().ID)
	if !ok || self.Position == nil {
		rsp.Notice("Location data not available or incomplete for the gateway node.")
		rsp.Notice("(Node needs a GPS fix and position sharing enabled).")
		rsp.Notice("--- End of Location ---")
		return nil
	}

	p := self.Position
	rsp.Notice(fmt.Sprintf("Latitude: %.5f, Longitude: %.5f", p.Latitude, p.Longitude))
	rsp.Notice(fmt.Sprintf("Altitude: %d m", p.Altitude))
	if !p.Time.IsZero() {
		rsp.Notice(fmt.Sprintf("Position Time: %s", p.Time.Format(timeLayout)))
	}
	// Trim trailing zeros so the link stays short
	lat := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.5f", p.Latitude), "0"), ".")
	lon := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.5f", p.Longitude), "0"), ".")
	rsp.Notice(fmt.Sprintf("Map Link (approx): https://www.google.com/maps?q=%s,%s", lat, lon))
	rsp.Notice("--- End of Location ---")
	return nil
}
