package model

import "time"

// Event represents a row in the `events` table. Date is the scheduled
// instant of the event and is stored in UTC. Registered users live in
// the event_registrations join table, not on this struct; listing
// queries attach them as Registrants when requested.
type Event struct {
	ID          uint64       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Location    string       `json:"location"`
	Organizer   string       `json:"organizer"`
	Registrants []Registrant `json:"registered_users,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Registrant is the public slice of a registered user exposed on event
// detail and admin listings.
type Registrant struct {
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
