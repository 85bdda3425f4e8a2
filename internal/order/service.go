package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	donationsvc "github.com/antonminaichev/foodflow/internal/donation"
	"github.com/antonminaichev/foodflow/internal/metrics"
	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/types/user"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

var (
	ErrDonationNotFound           = errors.New("donation not found")
	ErrDonationUnavailable        = errors.New("donation is not available for claim")
	ErrOrderNotFound              = errors.New("order not found")
	ErrNotAvailableForDelivery    = errors.New("this donation is not available for delivery")
	ErrInvalidStatus              = errors.New("invalid status update")
	ErrInvalidTransition          = errors.New("order cannot move to this status from its current status")
	ErrForbidden                  = errors.New("not allowed to update this order")
	ErrNotFoundOrAlreadyDelivered = errors.New("order not found or already delivered")
	ErrPartyNotFound              = errors.New("donor or receiver not found")
)

type Service struct {
	repo      OrderRepository
	donations DonationReader
	users     UserFinder
	log       *zap.Logger
	now       func() time.Time
}

func NewService(repo OrderRepository, donations DonationReader, users UserFinder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, donations: donations, users: users, log: log, now: time.Now}
}

// Create claims the donation for receiverID and opens its order in one write.
func (s *Service) Create(ctx context.Context, donationID, receiverID string) (*order.Order, error) {
	d, err := s.donations.FindDonationByID(ctx, donationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t, err := donationsvc.Claim(d, receiverID, now)
	if err != nil {
		return nil, ErrDonationUnavailable
	}
	o := &order.Order{
		ID:         uuid.NewString(),
		DonationID: d.ID,
		ReceiverID: receiverID,
		Status:     order.StatusClaimed,
		ClaimedAt:  now,
		CreatedAt:  now,
	}
	if err := s.repo.ClaimDonation(ctx, t, o); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrDonationUnavailable
		}
		return nil, err
	}
	metrics.DonationTransitionsTotal.WithLabelValues(string(donation.StatusClaimed)).Inc()
	metrics.OrderTransitionsTotal.WithLabelValues(string(order.StatusClaimed)).Inc()
	return o, nil
}

func (s *Service) get(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.repo.FindOrderByID(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *Service) ClaimDelivery(ctx context.Context, orderID, volunteerID string) error {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	return s.assign(ctx, o, volunteerID)
}

// ClaimDeliveryForDonation is ClaimDelivery addressed by the donation id.
func (s *Service) ClaimDeliveryForDonation(ctx context.Context, donationID, volunteerID string) error {
	o, err := s.repo.FindOrderByDonation(ctx, donationID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return s.assign(ctx, o, volunteerID)
}

func (s *Service) assign(ctx context.Context, o *order.Order, volunteerID string) error {
	if o.Status != order.StatusClaimed || o.VolunteerID != nil {
		return ErrNotAvailableForDelivery
	}
	if err := s.repo.AssignVolunteer(ctx, o.ID, volunteerID); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return ErrNotAvailableForDelivery
		}
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(order.StatusInTransit)).Inc()
	return nil
}

// UpdateStatus moves the order one step forward on behalf of actor. Only a
// volunteer may take an order in-transit.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status order.OrderStatus, actor string, role user.Role) error {
	prev, ok := status.Previous()
	if !ok {
		return ErrInvalidStatus
	}
	o, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != prev {
		return ErrInvalidTransition
	}

	now := s.now().UTC()
	switch status {
	case order.StatusInTransit:
		if role != user.RoleVolunteer {
			return ErrForbidden
		}
		return s.assign(ctx, o, actor)
	case order.StatusDelivered:
		if o.VolunteerID == nil || *o.VolunteerID != actor {
			return ErrForbidden
		}
		err = s.repo.AdvanceOrder(ctx, o.ID, prev, status, now)
	case order.StatusConfirmed:
		if o.ReceiverID != actor {
			return ErrForbidden
		}
		var cascaded bool
		cascaded, err = s.repo.ConfirmOrder(ctx, o.ID, o.DonationID, now)
		if err == nil && !cascaded {
			s.log.Debug("order confirmed without donation cascade",
				zap.String("order", o.ID),
				zap.String("donation", o.DonationID),
			)
		}
	}
	if errors.Is(err, storage.ErrConflict) {
		return ErrInvalidTransition
	}
	if err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(status)).Inc()
	return nil
}

// MarkDelivered has no actor check; it only refuses orders past delivery.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) error {
	err := s.repo.MarkOrderDelivered(ctx, orderID, s.now().UTC())
	if errors.Is(err, storage.ErrConflict) {
		return ErrNotFoundOrAlreadyDelivered
	}
	if err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(order.StatusDelivered)).Inc()
	return nil
}

func (s *Service) ListForReceiver(ctx context.Context, receiverID string) ([]order.View, error) {
	orders, err := s.repo.ListOrdersByReceiver(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	return s.withDonations(ctx, orders)
}

func (s *Service) ListAvailable(ctx context.Context) ([]order.View, error) {
	orders, err := s.repo.ListAvailableOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.withDonations(ctx, orders)
}

func (s *Service) ListAssigned(ctx context.Context, volunteerID string) ([]order.View, error) {
	orders, err := s.repo.ListOrdersByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	return s.withDonations(ctx, orders)
}

func (s *Service) withDonations(ctx context.Context, orders []order.Order) ([]order.View, error) {
	out := make([]order.View, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.DonationID)
	}
	ds, err := s.donations.FindDonationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*donation.Donation, len(ds))
	for i := range ds {
		byID[ds[i].ID] = &ds[i]
	}
	for _, o := range orders {
		out = append(out, order.View{Order: o, Donation: byID[o.DonationID]})
	}
	return out, nil
}

type Locations struct {
	DonorLocation    *geo.Point `json:"donorLocation"`
	ReceiverLocation *geo.Point `json:"receiverLocation"`
}

type Parties struct {
	Donor    user.Public `json:"donor"`
	Receiver user.Public `json:"receiver"`
}

func (s *Service) parties(ctx context.Context, orderID string) (*donation.Donation, *user.User, *user.User, error) {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := s.donations.FindDonationByID(ctx, o.DonationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}
	donor, err := s.users.FindUserByID(ctx, d.DonorID)
	if err != nil {
		return nil, nil, nil, partyErr(err)
	}
	receiver, err := s.users.FindUserByID(ctx, o.ReceiverID)
	if err != nil {
		return nil, nil, nil, partyErr(err)
	}
	return d, donor, receiver, nil
}

func partyErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPartyNotFound
	}
	return err
}

// Locations falls back to the pickup point when the donor has no location.
func (s *Service) Locations(ctx context.Context, orderID string) (*Locations, error) {
	d, donor, receiver, err := s.parties(ctx, orderID)
	if err != nil {
		return nil, err
	}
	loc := &Locations{DonorLocation: donor.Location, ReceiverLocation: receiver.Location}
	if loc.DonorLocation == nil {
		pickup := d.Location
		loc.DonorLocation = &pickup
	}
	return loc, nil
}

func (s *Service) Parties(ctx context.Context, orderID string) (*Parties, error) {
	_, donor, receiver, err := s.parties(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Parties{Donor: donor.Public(), Receiver: receiver.Public()}, nil
}
