package model

import "time"

// Review states for a seller profile application.
const (
	ProfileStatusPending  = "pending"
	ProfileStatusApproved = "approved"
	ProfileStatusRejected = "rejected"
)

// ProfileRecord is one row in the seller-profile review table. A push
// update for an existing ID overwrites the payload wholesale; only the
// ID carries identity.
type ProfileRecord struct {
	// ID is the primary key of the profile application.
	ID string `json:"id"`

	// SellerName is the display name of the applying seller.
	SellerName string `json:"seller_name"`

	// GundamName is the model kit the seller wants to auction.
	GundamName string `json:"gundam_name"`

	// StartingPrice is the proposed opening bid, in the platform's
	// smallest currency unit.
	StartingPrice int64 `json:"starting_price"`

	// Status is one of the ProfileStatus constants.
	Status string `json:"status"`

	// SubmittedAt is when the application was filed.
	SubmittedAt time.Time `json:"submitted_at"`
}

// FeedID returns the identity used for feed de-duplication.
func (p ProfileRecord) FeedID() string { return p.ID }

// FeedCreatedAt returns the timestamp used for feed ordering.
func (p ProfileRecord) FeedCreatedAt() time.Time { return p.SubmittedAt }

// FeedRead reports true so review rows never count toward an unread
// badge; read tracking only applies to notification feeds.
func (p ProfileRecord) FeedRead() bool { return true }
