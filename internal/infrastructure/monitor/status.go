package monitor

import "time"

// Check is the state of one dependency. Disabled dependencies are not
// configured in this deployment and never count as failures.
type Check struct {
	Enabled bool `json:"enabled"`
	Up      bool `json:"up"`
}

func (c Check) ok() bool {
	return !c.Enabled || c.Up
}

type Status struct {
	Store        Check     `json:"store"`
	StoreBackend string    `json:"store_backend"`
	PostgreSQL   Check     `json:"postgresql"`
	Outbox       Check     `json:"outbox"`
	OutboxSize   int       `json:"outbox_size"`
	PushGateway  Check     `json:"push_gateway"`
	LastCheck    time.Time `json:"last_check"`
}

// Healthy reports whether the dependencies sessions rely on are reachable.
// The outbox and push gateway are best effort and do not affect it.
func (s Status) Healthy() bool {
	return s.Store.ok() && s.PostgreSQL.ok()
}
