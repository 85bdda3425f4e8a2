package storage

import (
	"context"
	"errors"
	"time"

	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/feedback"
	"github.com/antonminaichev/foodflow/internal/types/notification"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional update matched no record.
	ErrConflict = errors.New("precondition failed")
	// ErrDuplicate is returned on a unique key violation.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository отвечает за операции над пользователями.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	FindUserByID(ctx context.Context, id string) (*user.User, error)
	UpdateUser(ctx context.Context, id string, upd user.Update) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsersByRole(ctx context.Context, role user.Role) ([]user.User, error)
}

// DonationRepository отвечает за пожертвования и их оценки.
type DonationRepository interface {
	CreateDonation(ctx context.Context, d *donation.Donation) error
	FindDonationByID(ctx context.Context, id string) (*donation.Donation, error)
	FindDonationsByIDs(ctx context.Context, ids []string) ([]donation.Donation, error)
	ListDonationsByStatus(ctx context.Context, status donation.Status) ([]donation.Donation, error)
	ListDonationsByDonor(ctx context.Context, donorID string, statuses ...donation.Status) ([]donation.Donation, error)
	TransitionDonation(ctx context.Context, t donation.Transition) error
	EditDonation(ctx context.Context, id, donorID string, e donation.Edit) error
	AddDonationRating(ctx context.Context, id string, r donation.Rating) error
	DeleteDonation(ctx context.Context, id, donorID string) error
	ExpirePendingDonations(ctx context.Context, now time.Time) (int64, error)
	DeleteStaleDonations(ctx context.Context, now time.Time) (int64, error)
}

// OrderRepository отвечает за заказы на доставку.
type OrderRepository interface {
	// ClaimDonation applies the claim transition and inserts o in one unit.
	ClaimDonation(ctx context.Context, t donation.Transition, o *order.Order) error
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	FindOrderByDonation(ctx context.Context, donationID string) (*order.Order, error)
	ListOrdersByReceiver(ctx context.Context, receiverID string) ([]order.Order, error)
	ListOrdersByVolunteer(ctx context.Context, volunteerID string) ([]order.Order, error)
	ListAvailableOrders(ctx context.Context) ([]order.Order, error)
	AssignVolunteer(ctx context.Context, orderID, volunteerID string) error
	AdvanceOrder(ctx context.Context, orderID string, from, to order.OrderStatus, at time.Time) error
	MarkOrderDelivered(ctx context.Context, orderID string, at time.Time) error
	// ConfirmOrder moves the order delivered->confirmed and its donation
	// claimed->confirmed in one unit. The bool reports whether the donation
	// moved; a donation that is no longer claimed does not fail the call.
	ConfirmOrder(ctx context.Context, orderID, donationID string, at time.Time) (bool, error)
}

// NotificationRepository хранит уведомления пользователей.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *notification.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*notification.Notification, error)
	DeleteNotification(ctx context.Context, id, userID string) error
}

// FeedbackRepository хранит отзывы.
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, f *feedback.Feedback) error
	ListFeedbackByTarget(ctx context.Context, targetID string) ([]feedback.Feedback, error)
}

// Storage объединяет все репозитории.
type Storage interface {
	UserRepository
	DonationRepository
	OrderRepository
	NotificationRepository
	FeedbackRepository

	// Для управления соединением
	Ping(ctx context.Context) error
	Close() error
}
