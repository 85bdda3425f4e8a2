package donation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/antonminaichev/foodflow/internal/metrics"
	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/util/geo"
	"github.com/antonminaichev/foodflow/internal/util/timeutil"
)

const recentDonationsLimit = 5

var (
	ErrDonationNotFound = errors.New("donation not found")
	ErrDonorNotFound    = errors.New("donor not found")
	ErrMissingFields    = errors.New("missing fields")
	ErrInvalidExpiry    = errors.New("invalid expiresAt format")
	ErrInvalidLocation  = errors.New("invalid location")
)

type Service struct {
	repo     DonationRepository
	users    UserFinder
	orders   OrderFinder
	notifier Notifier
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

// NewService wires the donation operations. loc is used for timestamps that
// carry no offset.
func NewService(repo DonationRepository, users UserFinder, orders OrderFinder, notifier Notifier, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, users: users, orders: orders, notifier: notifier, loc: loc, log: log, now: time.Now}
}

type CreateInput struct {
	Description string
	Quantity    string
	Location    geo.Point
	Image       string
	ExpiresAt   string
}

// Create stores a pending donation and notifies nearby receivers. A failed
// fan-out does not fail the call since the donation is already stored.
func (s *Service) Create(ctx context.Context, donorID string, in CreateInput) (*donation.Donation, int, error) {
	if strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Quantity) == "" {
		return nil, 0, ErrMissingFields
	}
	if err := in.Location.Validate(); err != nil {
		return nil, 0, ErrInvalidLocation
	}
	expiresAt, err := timeutil.Parse(in.ExpiresAt, s.loc)
	if err != nil {
		return nil, 0, ErrInvalidExpiry
	}

	d := &donation.Donation{
		ID:          uuid.NewString(),
		DonorID:     donorID,
		Description: in.Description,
		Quantity:    in.Quantity,
		Location:    in.Location,
		Image:       in.Image,
		Status:      donation.StatusPending,
		ExpiresAt:   expiresAt,
		CreatedAt:   s.now().UTC(),
		Ratings:     []donation.Rating{},
	}
	if err := s.repo.CreateDonation(ctx, d); err != nil {
		return nil, 0, err
	}
	metrics.DonationsCreatedTotal.Inc()

	var notified int
	if s.notifier != nil {
		notified, err = s.notifier.NotifyNearby(ctx, d)
		if err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("notify_nearby").Inc()
			s.log.Error("notify nearby receivers", zap.String("donation", d.ID), zap.Error(err))
		}
	}
	return d, notified, nil
}

func (s *Service) Get(ctx context.Context, id string) (*donation.Donation, error) {
	d, err := s.repo.FindDonationByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDonationNotFound
	}
	return d, err
}

func (s *Service) ListPending(ctx context.Context) ([]donation.Donation, error) {
	return s.repo.ListDonationsByStatus(ctx, donation.StatusPending)
}

func (s *Service) ListMine(ctx context.Context, donorID string) ([]donation.Donation, error) {
	return s.repo.ListDonationsByDonor(ctx, donorID)
}

func (s *Service) ListDonorCompleted(ctx context.Context, donorID string) ([]donation.Donation, error) {
	return s.repo.ListDonationsByDonor(ctx, donorID, donation.StatusConfirmed)
}

func (s *Service) ListDonorDelivered(ctx context.Context, donorID string) ([]donation.Donation, error) {
	return s.repo.ListDonationsByDonor(ctx, donorID, donation.StatusDelivered)
}

// Confirm lets the claimant close out a claimed donation once its order has
// been delivered.
func (s *Service) Confirm(ctx context.Context, id, actor string) error {
	d, err := s.repo.FindDonationByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotClaimant
	}
	if err != nil {
		return err
	}
	t, err := Confirm(d, actor, s.now().UTC())
	if err != nil {
		return err
	}
	o, err := s.orders.FindOrderByDonation(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrInvalidState
	}
	if err != nil {
		return err
	}
	if o.Status != order.StatusDelivered {
		return ErrInvalidState
	}
	if err := s.repo.TransitionDonation(ctx, t); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return ErrInvalidState
		}
		return err
	}
	metrics.DonationTransitionsTotal.WithLabelValues(string(t.To)).Inc()
	return nil
}

func (s *Service) Rate(ctx context.Context, id, actor string, value int) error {
	if value < 1 || value > 5 {
		return ErrInvalidRating
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	r, err := Rate(d, actor, value)
	if err != nil {
		return err
	}
	switch err := s.repo.AddDonationRating(ctx, id, r); {
	case errors.Is(err, storage.ErrDuplicate):
		return ErrAlreadyRated
	case errors.Is(err, storage.ErrNotFound):
		return ErrDonationNotFound
	default:
		return err
	}
}

// MyRating returns the caller's rating, nil when they have not rated.
func (s *Service) MyRating(ctx context.Context, id, actor string) (*int, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := d.RatingBy(actor); ok {
		return &v, nil
	}
	return nil, nil
}

type EditInput struct {
	Description *string
	Quantity    *string
	Image       *string
	ExpiresAt   *string
}

func (s *Service) Edit(ctx context.Context, id, actor string, in EditInput) error {
	d, err := s.repo.FindDonationByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotOwner
	}
	if err != nil {
		return err
	}
	if err := CheckOwner(d, actor); err != nil {
		return err
	}

	e := donation.Edit{Description: in.Description, Quantity: in.Quantity, Image: in.Image}
	if in.ExpiresAt != nil {
		t, err := timeutil.Parse(*in.ExpiresAt, s.loc)
		if err != nil {
			return ErrInvalidExpiry
		}
		e.ExpiresAt = &t
	}
	if e.Empty() {
		return nil
	}
	if err := s.repo.EditDonation(ctx, id, actor, e); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotOwner
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id, actor string) error {
	err := s.repo.DeleteDonation(ctx, id, actor)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotOwner
	}
	return err
}

// DeleteExpired removes unclaimed donations whose deadline has passed.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteStaleDonations(ctx, s.now().UTC())
}

type DonorSummary struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
}

type RecentDonation struct {
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	AverageRating *float64 `json:"averageRating"`
}

type DonorProfile struct {
	Donor           DonorSummary     `json:"donor"`
	AverageRating   *float64         `json:"averageRating"`
	RecentDonations []RecentDonation `json:"recentDonations"`
}

// DonorProfile aggregates ratings over the donor's confirmed donations.
func (s *Service) DonorProfile(ctx context.Context, donorID string) (*DonorProfile, error) {
	u, err := s.users.FindUserByID(ctx, donorID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDonorNotFound
	}
	if err != nil {
		return nil, err
	}
	done, err := s.repo.ListDonationsByDonor(ctx, donorID, donation.StatusConfirmed)
	if err != nil {
		return nil, err
	}

	var all []donation.Rating
	recent := make([]RecentDonation, 0, recentDonationsLimit)
	for i := range done {
		all = append(all, done[i].Ratings...)
		if len(recent) < recentDonationsLimit {
			recent = append(recent, RecentDonation{
				Description:   done[i].Description,
				Image:         done[i].Image,
				AverageRating: done[i].AverageRating(),
			})
		}
	}
	return &DonorProfile{
		Donor:           DonorSummary{Name: u.Name, Email: u.Email, ProfilePic: u.ProfilePic},
		AverageRating:   donation.Average(all),
		RecentDonations: recent,
	}, nil
}
