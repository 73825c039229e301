package publish

import (
	"sort"
	"strings"

	"github.com/friendo-bot/friendo/kernel/model"
)

const (
	topicNotRunning = "The Minecraft server is not currently running."
	topicNoPlayers  = "No players currently online."
	topicPlayers    = "Players online: "
)

// Render produces the display topic for a status. Player names arrive from
// the probe in no guaranteed order, so they are sorted here to keep the
// rendering deterministic.
func Render(status model.ServiceStatus) string {
	if status.Kind != model.StatusOnline {
		return topicNotRunning
	}
	if len(status.Players) == 0 {
		return topicNoPlayers
	}

	names := make([]string, len(status.Players))
	copy(names, status.Players)
	sort.Strings(names)
	return topicPlayers + strings.Join(names, ", ")
}
