package streamserver

// Status is the JSON payload for GET /status (spec.md §6).
type Status struct {
	FPS           float64 `json:"fps"`
	Obstacles     int     `json:"obstacles"`
	Danger        string  `json:"danger"`
	Action        string  `json:"action"`
	State         string  `json:"state"`
	Paused        bool    `json:"paused"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatusProvider supplies the current Status snapshot. The orchestrator
// implements this by reading its own mutex-guarded state (spec.md §5:
// "status snapshot for /status (mutex)").
type StatusProvider interface {
	Status() Status
}
