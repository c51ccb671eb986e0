// ABOUTME: Gateway-introspection commands: HELP, TIME, STATS.
// ABOUTME: These never touch the mesh transport.

package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// helpLineLen is roughly how much fits on one chat line before clients wrap.
const helpLineLen = 400

type helpCmd struct{}

func (c *helpCmd) Name() string { return "HELP" }
func (c *helpCmd) Help() string {
	return "HELP [command] - Shows available commands or help for a specific command"
}

func (c *helpCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	cmds := gw.Commands()

	if len(args) > 0 {
		want := strings.ToUpper(args[0])
		for _, cmd := range cmds {
			if cmd.Name() == want {
				rsp.Notice(fmt.Sprintf("Help for %s: %s", want, cmd.Help()))
				return nil
			}
		}
		rsp.Notice(fmt.Sprintf("Unknown command: '%s'. Type HELP for a list.", args[0]))
		return nil
	}

	rsp.Notice("*** Available Commands (Type HELP <command> for details):")
	if len(cmds) == 0 {
		rsp.Notice("(No commands seem to be registered)")
		return nil
	}

	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.Name())
	}
	sort.Strings(names)

	var line string
	for _, name := range names {
		switch {
		case line == "":
			line = name
		case len(line)+len(name)+2 < helpLineLen:
			line += ", " + name
		default:
			rsp.Notice(line)
			line = name
		}
	}
	if line != "" {
		rsp.Notice(line)
	}
	return nil
}

type timeCmd struct{}

func (c *timeCmd) Name() string { return "TIME" }
func (c *timeCmd) Help() string { return "TIME - Shows the current server date and time" }

func (c *timeCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	rsp.Notice("Server time: " + time.Now().Format("2006-01-02 15:04:05 MST"))
	return nil
}

type statsCmd struct{}

func (c *statsCmd) Name() string { return "STATS" }
func (c *statsCmd) Help() string { return "STATS - Shows basic mesh and gateway statistics" }

func (c *statsCmd) Execute(gw Gateway, rsp Responder, issuer string, args []string) error {
	rsp.Notice("--- Gateway & Mesh Statistics ---")
	rsp.Notice(fmt.Sprintf("Known Nodes: %d", len(gw.Nodes())))

	id := gw.OwnIdentity()
	rsp.Notice(fmt.Sprintf("Gateway Node ID: %s (Num: %d)", id.ID, id.Num))

	uptime := time.Since(gw.StartTime()).Truncate(time.Second)
	rsp.Notice(fmt.Sprintf("Gateway Uptime: %s", uptime))

	rsp.Notice(fmt.Sprintf("Connected IRC Clients: %d", gw.ClientCount()))
	rsp.Notice("--- End of Stats ---")
	return nil
}
