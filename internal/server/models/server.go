package models

import "time"

// Game server instance statuses.
const (
	StatusOnline     = "online"
	StatusOffline    = "offline"
	StatusRestarting = "restarting"
)

// ServerInstance is a managed game server record. Status transitions here are
// bookkeeping only; actual process control belongs to the host agent.
type ServerInstance struct {
	ID             string
	Name           string
	GameType       string
	Port           int
	MaxPlayers     int
	CurrentPlayers int
	Status         string
	InstallPath    string
	UserID         string
	CreatedAt      time.Time
}

// SystemResources is a point-in-time host utilization snapshot shown on the
// dashboard. Values are derived from tracked instance state, not probed from
// the host.
type SystemResources struct {
	CPUPercent    float64
	MemoryPercent float64
	MemoryUsedGB  float64
	MemoryTotalGB float64
	DiskPercent   float64
	DiskUsedGB    float64
	DiskTotalGB   float64
}
