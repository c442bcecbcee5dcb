package model

import "time"

// Notification represents a single entry in a user's notification feed.
type Notification struct {
	// ID is the server-assigned identifier. It is roughly monotonic but
	// not guaranteed strictly increasing across channels.
	ID string `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Channel names the push channel this notification arrived on
	// (e.g. "user.42"). Used to route push events to the right feed.
	Channel string `json:"channel"`

	// Read is the server's view of whether the notification has been
	// seen. The local acknowledged-ID cache wins once it says read.
	Read bool `json:"is_read"`

	// CreatedAt is when the server created the notification.
	CreatedAt time.Time `json:"created_at"`
}

// FeedID returns the identity used for feed de-duplication.
func (n Notification) FeedID() string { return n.ID }

// FeedCreatedAt returns the timestamp used for feed ordering.
func (n Notification) FeedCreatedAt() time.Time { return n.CreatedAt }

// FeedRead returns the server-claimed read flag.
func (n Notification) FeedRead() bool { return n.Read }
