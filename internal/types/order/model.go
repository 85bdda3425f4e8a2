package order

import (
	"time"

	"github.com/antonminaichev/foodflow/internal/types/donation"
)

type OrderStatus string

const (
	StatusClaimed   OrderStatus = "claimed"
	StatusInTransit OrderStatus = "in-transit"
	StatusDelivered OrderStatus = "delivered"
	StatusConfirmed OrderStatus = "confirmed"
)

// Previous returns the only status an order may move to s from.
func (s OrderStatus) Previous() (OrderStatus, bool) {
	switch s {
	case StatusInTransit:
		return StatusClaimed, true
	case StatusDelivered:
		return StatusInTransit, true
	case StatusConfirmed:
		return StatusDelivered, true
	}
	return "", false
}

type Order struct {
	ID          string      `db:"id" json:"id"`
	DonationID  string      `db:"donation_id" json:"donationId"`
	ReceiverID  string      `db:"receiver_id" json:"receiverId"`
	VolunteerID *string     `db:"volunteer_id" json:"volunteerId,omitempty"`
	Status      OrderStatus `db:"status" json:"status"`
	ClaimedAt   time.Time   `db:"claimed_at" json:"claimedAt"`
	DeliveredAt *time.Time  `db:"delivered_at" json:"deliveredAt,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// View is an order with its donation embedded, as returned by listings.
type View struct {
	Order
	Donation *donation.Donation `json:"donation,omitempty"`
}
