// Package queue defines message payloads exchanged over the message broker.
package queue

// MatchEventsQueue is the durable queue carrying every match lifecycle event.
const MatchEventsQueue = "match.events"

// Match event types.
const (
	MatchCreated = "match.created"
	MatchUpdated = "match.updated"
	MatchDeleted = "match.deleted"
	MatchExpired = "match.expired"
)

// MatchEvent is published whenever a match is created, edited, deleted or
// pruned by the expiry sweep.  It carries enough of the record for
// downstream consumers to log or notify players without reading the store.
type MatchEvent struct {
	Type           string   `json:"type"`
	MatchID        int64    `json:"match_id"`
	Name           string   `json:"name"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	PostalCode     string   `json:"postal_code"`
	VenueName      string   `json:"venue_name"`
	OrganizerEmail string   `json:"organizer_email"`
	Roster         []string `json:"roster"`
	ActorEmail     string   `json:"actor_email,omitempty"` // empty for sweeps
	RentCost       string   `json:"rent_cost"`
	PerPersonCost  string   `json:"per_person_cost"`
	OccurredAt     string   `json:"occurred_at"`
}
