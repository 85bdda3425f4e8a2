package donation

import (
	"math"
	"time"

	"github.com/antonminaichev/foodflow/internal/util/geo"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusClaimed   Status = "claimed"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusClaimed, StatusInTransit, StatusDelivered, StatusConfirmed, StatusExpired:
		return true
	}
	return false
}

// Rating is a single rater's score, 1 to 5.
type Rating struct {
	RaterID string `json:"userId"`
	Value   int    `json:"value"`
}

type Donation struct {
	ID          string     `json:"id"`
	DonorID     string     `json:"donorId"`
	Description string     `json:"description"`
	Quantity    string     `json:"quantity"`
	Location    geo.Point  `json:"location"`
	Image       string     `json:"image"`
	Status      Status     `json:"status"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	ClaimedBy   *string    `json:"claimedBy,omitempty"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	Ratings     []Rating   `json:"ratings"`
}

func (d *Donation) RatingBy(userID string) (int, bool) {
	for _, r := range d.Ratings {
		if r.RaterID == userID {
			return r.Value, true
		}
	}
	return 0, false
}

// AverageRating is rounded to one decimal; nil when nobody rated.
func (d *Donation) AverageRating() *float64 {
	return Average(d.Ratings)
}

func Average(ratings []Rating) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	avg := math.Round(float64(sum)/float64(len(ratings))*10) / 10
	return &avg
}

// Transition is a conditional status change: it applies only while the
// stored status still equals From.
type Transition struct {
	DonationID  string
	From        Status
	To          Status
	ClaimedBy   *string
	ClaimedAt   *time.Time
	ConfirmedAt *time.Time
	// OpenAt, when set, additionally requires expires_at > OpenAt.
	OpenAt *time.Time
}

// Edit holds the donor-editable fields; nil fields are left untouched.
type Edit struct {
	Description *string
	Quantity    *string
	Image       *string
	ExpiresAt   *time.Time
}

func (e Edit) Empty() bool {
	return e.Description == nil && e.Quantity == nil && e.Image == nil && e.ExpiresAt == nil
}
