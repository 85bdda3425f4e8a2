package notification

import "time"

const (
	TypeInfo     = "info"
	TypeDonation = "donation"
)

type Notification struct {
	ID                  string    `db:"id" json:"id"`
	UserID              string    `db:"user_id" json:"user"`
	Message             string    `db:"message" json:"message"`
	Type                string    `db:"type" json:"type"`
	IsRead              bool      `db:"is_read" json:"isRead"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	TargetDonationID    *string   `db:"target_donation_id" json:"targetDonationId,omitempty"`
	TargetDonationTitle *string   `db:"target_donation_title" json:"targetDonationTitle,omitempty"`
	TargetDonationImage *string   `db:"target_donation_image" json:"targetDonationImage,omitempty"`
}
