package donation

import (
	"context"
	"time"

	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

type DonationRepository interface {
	CreateDonation(ctx context.Context, d *donation.Donation) error
	FindDonationByID(ctx context.Context, id string) (*donation.Donation, error)
	ListDonationsByStatus(ctx context.Context, status donation.Status) ([]donation.Donation, error)
	ListDonationsByDonor(ctx context.Context, donorID string, statuses ...donation.Status) ([]donation.Donation, error)
	TransitionDonation(ctx context.Context, t donation.Transition) error
	EditDonation(ctx context.Context, id, donorID string, e donation.Edit) error
	AddDonationRating(ctx context.Context, id string, r donation.Rating) error
	DeleteDonation(ctx context.Context, id, donorID string) error
	DeleteStaleDonations(ctx context.Context, now time.Time) (int64, error)
}

type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}

// OrderFinder looks up the order opened when the donation was claimed.
type OrderFinder interface {
	FindOrderByDonation(ctx context.Context, donationID string) (*order.Order, error)
}

type Notifier interface {
	NotifyNearby(ctx context.Context, d *donation.Donation) (int, error)
}
