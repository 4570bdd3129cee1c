// Package queue defines the registration activity messages exchanged
// over the message broker, their publisher and the background consumer.
package queue

const (
	// ConfirmedQueue receives a message for every successful
	// registration.
	ConfirmedQueue = "registration.confirmed"
	// CancelledQueue receives a message for every successful
	// cancellation.
	CancelledQueue = "registration.cancelled"
)

// RegistrationActivity is published when a user registers for or
// cancels out of an event. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type RegistrationActivity struct {
	EventID    uint64 `json:"event_id"`
	EventTitle string `json:"event_title"`
	EventDate  string `json:"event_date"`
	Location   string `json:"location"`
	UserID     uint64 `json:"user_id"`
	OccurredAt string `json:"occurred_at"`
}
