package order

import (
	"context"
	"time"

	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

type OrderRepository interface {
	ClaimDonation(ctx context.Context, t donation.Transition, o *order.Order) error
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	FindOrderByDonation(ctx context.Context, donationID string) (*order.Order, error)
	ListOrdersByReceiver(ctx context.Context, receiverID string) ([]order.Order, error)
	ListOrdersByVolunteer(ctx context.Context, volunteerID string) ([]order.Order, error)
	ListAvailableOrders(ctx context.Context) ([]order.Order, error)
	AssignVolunteer(ctx context.Context, orderID, volunteerID string) error
	AdvanceOrder(ctx context.Context, orderID string, from, to order.OrderStatus, at time.Time) error
	MarkOrderDelivered(ctx context.Context, orderID string, at time.Time) error
	ConfirmOrder(ctx context.Context, orderID, donationID string, at time.Time) (bool, error)
}

type DonationReader interface {
	FindDonationByID(ctx context.Context, id string) (*donation.Donation, error)
	FindDonationsByIDs(ctx context.Context, ids []string) ([]donation.Donation, error)
}

type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}
