// Package memory is an in-process Storage used when no database is configured
// and by the service tests. One mutex guards all collections, so every
// operation, including the two-record ones, is atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/feedback"
	"github.com/antonminaichev/foodflow/internal/types/notification"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	mu            sync.RWMutex
	users         map[string]*user.User
	donations     map[string]*donation.Donation
	orders        map[string]*order.Order
	notifications map[string]*notification.Notification
	feedback      []feedback.Feedback
}

func New() *Storage {
	return &Storage{
		users:         make(map[string]*user.User),
		donations:     make(map[string]*donation.Donation),
		orders:        make(map[string]*order.Order),
		notifications: make(map[string]*notification.Notification),
	}
}

func (s *Storage) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Storage) Close() error                   { return nil }

func newID() string { return uuid.NewString() }

// ---- users

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return storage.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Storage) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, upd user.Update) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.ProfilePic != nil {
		u.ProfilePic = *upd.ProfilePic
	}
	if upd.MobileNumber != nil {
		u.MobileNumber = *upd.MobileNumber
	}
	if upd.Location != nil {
		loc := *upd.Location
		u.Location = &loc
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	at := upd.UpdatedAt
	u.UpdatedAt = &at
	return copyUser(u), nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Storage) ListUsersByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []user.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- donations

func (s *Storage) CreateDonation(ctx context.Context, d *donation.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = newID()
	}
	s.donations[d.ID] = copyDonation(d)
	return nil
}

func (s *Storage) FindDonationByID(ctx context.Context, id string) (*donation.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyDonation(d), nil
}

func (s *Storage) FindDonationsByIDs(ctx context.Context, ids []string) ([]donation.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]donation.Donation, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.donations[id]; ok {
			out = append(out, *copyDonation(d))
		}
	}
	return out, nil
}

func (s *Storage) ListDonationsByStatus(ctx context.Context, status donation.Status) ([]donation.Donation, error) {
	return s.listDonations(func(d *donation.Donation) bool { return d.Status == status }), nil
}

func (s *Storage) ListDonationsByDonor(ctx context.Context, donorID string, statuses ...donation.Status) ([]donation.Donation, error) {
	return s.listDonations(func(d *donation.Donation) bool {
		if d.DonorID != donorID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, st := range statuses {
			if d.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (s *Storage) listDonations(match func(d *donation.Donation) bool) []donation.Donation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []donation.Donation
	for _, d := range s.donations {
		if match(d) {
			out = append(out, *copyDonation(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Storage) TransitionDonation(ctx context.Context, t donation.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyTransition(t)
}

// applyTransition must be called with mu held.
func (s *Storage) applyTransition(t donation.Transition) error {
	d, ok := s.donations[t.DonationID]
	if !ok || d.Status != t.From {
		return storage.ErrConflict
	}
	if t.OpenAt != nil && !d.ExpiresAt.After(*t.OpenAt) {
		return storage.ErrConflict
	}
	d.Status = t.To
	if t.ClaimedBy != nil {
		v := *t.ClaimedBy
		d.ClaimedBy = &v
	}
	if t.ClaimedAt != nil {
		v := *t.ClaimedAt
		d.ClaimedAt = &v
	}
	if t.ConfirmedAt != nil {
		v := *t.ConfirmedAt
		d.ConfirmedAt = &v
	}
	return nil
}

func (s *Storage) EditDonation(ctx context.Context, id, donorID string, e donation.Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.DonorID != donorID {
		return storage.ErrNotFound
	}
	if e.Description != nil {
		d.Description = *e.Description
	}
	if e.Quantity != nil {
		d.Quantity = *e.Quantity
	}
	if e.Image != nil {
		d.Image = *e.Image
	}
	if e.ExpiresAt != nil {
		d.ExpiresAt = *e.ExpiresAt
	}
	return nil
}

func (s *Storage) AddDonationRating(ctx context.Context, id string, r donation.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return storage.ErrNotFound
	}
	if _, rated := d.RatingBy(r.RaterID); rated {
		return storage.ErrDuplicate
	}
	d.Ratings = append(d.Ratings, r)
	return nil
}

func (s *Storage) DeleteDonation(ctx context.Context, id, donorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.DonorID != donorID {
		return storage.ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func (s *Storage) ExpirePendingDonations(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, d := range s.donations {
		if d.Status == donation.StatusPending && d.ExpiresAt.Before(now) {
			d.Status = donation.StatusExpired
			n++
		}
	}
	return n, nil
}

func (s *Storage) DeleteStaleDonations(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, d := range s.donations {
		if (d.Status == donation.StatusPending || d.Status == donation.StatusExpired) && d.ExpiresAt.Before(now) {
			delete(s.donations, id)
			n++
		}
	}
	return n, nil
}

// ---- orders

func (s *Storage) ClaimDonation(ctx context.Context, t donation.Transition, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.applyTransition(t); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = newID()
	}
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *Storage) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *Storage) FindOrderByDonation(ctx context.Context, donationID string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.DonationID == donationID {
			return copyOrder(o), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Storage) ListOrdersByReceiver(ctx context.Context, receiverID string) ([]order.Order, error) {
	return s.listOrders(func(o *order.Order) bool { return o.ReceiverID == receiverID }), nil
}

func (s *Storage) ListOrdersByVolunteer(ctx context.Context, volunteerID string) ([]order.Order, error) {
	return s.listOrders(func(o *order.Order) bool {
		return o.VolunteerID != nil && *o.VolunteerID == volunteerID
	}), nil
}

func (s *Storage) ListAvailableOrders(ctx context.Context) ([]order.Order, error) {
	return s.listOrders(func(o *order.Order) bool {
		return o.Status == order.StatusClaimed && o.VolunteerID == nil
	}), nil
}

func (s *Storage) listOrders(match func(o *order.Order) bool) []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []order.Order
	for _, o := range s.orders {
		if match(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Storage) AssignVolunteer(ctx context.Context, orderID, volunteerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != order.StatusClaimed || o.VolunteerID != nil {
		return storage.ErrConflict
	}
	v := volunteerID
	o.VolunteerID = &v
	o.Status = order.StatusInTransit
	return nil
}

func (s *Storage) AdvanceOrder(ctx context.Context, orderID string, from, to order.OrderStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != from {
		return storage.ErrConflict
	}
	o.Status = to
	if to == order.StatusDelivered {
		o.DeliveredAt = &at
	}
	return nil
}

func (s *Storage) MarkOrderDelivered(ctx context.Context, orderID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || (o.Status != order.StatusClaimed && o.Status != order.StatusInTransit) {
		return storage.ErrConflict
	}
	o.Status = order.StatusDelivered
	o.DeliveredAt = &at
	return nil
}

func (s *Storage) ConfirmOrder(ctx context.Context, orderID, donationID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != order.StatusDelivered {
		return false, storage.ErrConflict
	}
	o.Status = order.StatusConfirmed
	err := s.applyTransition(donation.Transition{
		DonationID:  donationID,
		From:        donation.StatusClaimed,
		To:          donation.StatusConfirmed,
		ConfirmedAt: &at,
	})
	return err == nil, nil
}

// ---- notifications

func (s *Storage) CreateNotification(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = newID()
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *Storage) ListNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notification.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID string) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, storage.ErrNotFound
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}

func (s *Storage) DeleteNotification(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// ---- feedback

func (s *Storage) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = newID()
	}
	s.feedback = append(s.feedback, *f)
	return nil
}

func (s *Storage) ListFeedbackByTarget(ctx context.Context, targetID string) ([]feedback.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []feedback.Feedback
	for _, f := range s.feedback {
		if f.TargetID == targetID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func copyUser(u *user.User) *user.User {
	cp := *u
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp
}

func copyDonation(d *donation.Donation) *donation.Donation {
	cp := *d
	cp.Ratings = make([]donation.Rating, len(d.Ratings))
	copy(cp.Ratings, d.Ratings)
	return &cp
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	return &cp
}
