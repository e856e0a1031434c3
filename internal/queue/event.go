// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// BookingCreatedEvent is published when a booking is successfully
// created.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type BookingCreatedEvent struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	Building  string `json:"building"`
	Purpose   string `json:"purpose"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
	CreatedAt string `json:"created_at"`
}
