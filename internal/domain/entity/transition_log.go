package entity

import "time"

// TransitionLogEntry is the append-only audit trail of a state transition.
// Entries are created once per successful transition and never mutated or
// deleted.
type TransitionLogEntry struct {
	ID          int64     `json:"id"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	FromState   string    `json:"from_state"`
	ToState     string    `json:"to_state"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	PerformedAt time.Time `json:"performed_at"`
}

// User is the acting party as supplied by the identity collaborator
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
