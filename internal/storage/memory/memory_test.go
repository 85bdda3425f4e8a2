package memory

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/order"
	"github.com/antonminaichev/foodflow/internal/types/user"
)

func seedDonation(t *testing.T, s *Storage, status donation.Status, expiresAt time.Time) *donation.Donation {
	t.Helper()
	d := &donation.Donation{DonorID: "donor", Description: "bread", Status: status, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	require.NoError(t, s.CreateDonation(context.Background(), d))
	return d
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &user.User{Email: "a@b.c", Role: user.RoleDonor}))
	err := s.CreateUser(ctx, &user.User{Email: "A@B.C", Role: user.RoleDonor})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestTransitionDonation_Conditional(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	d := seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))

	by := "r1"
	claim := donation.Transition{DonationID: d.ID, From: donation.StatusPending, To: donation.StatusClaimed, ClaimedBy: &by, ClaimedAt: &now, OpenAt: &now}
	require.NoError(t, s.TransitionDonation(ctx, claim))
	assert.ErrorIs(t, s.TransitionDonation(ctx, claim), storage.ErrConflict)

	got, err := s.FindDonationByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusClaimed, got.Status)
	require.NotNil(t, got.ClaimedBy)
	assert.Equal(t, "r1", *got.ClaimedBy)
}

func TestTransitionDonation_DeadlineGuard(t *testing.T) {
	s := New()
	now := time.Now().UTC()
	d := seedDonation(t, s, donation.StatusPending, now.Add(-time.Minute))

	err := s.TransitionDonation(context.Background(), donation.Transition{
		DonationID: d.ID, From: donation.StatusPending, To: donation.StatusClaimed, OpenAt: &now,
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestClaimDonation_ConcurrentSingleWinner(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	d := seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			by := string(rune('a' + i))
			err := s.ClaimDonation(ctx,
				donation.Transition{DonationID: d.ID, From: donation.StatusPending, To: donation.StatusClaimed, ClaimedBy: &by, ClaimedAt: &now},
				&order.Order{DonationID: d.ID, ReceiverID: by, Status: order.StatusClaimed, ClaimedAt: now, CreatedAt: now},
			)
			if err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	all := s.listOrders(func(*order.Order) bool { return true })
	assert.Len(t, all, 1)
}

func TestAddDonationRating_Duplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := seedDonation(t, s, donation.StatusConfirmed, time.Now())

	require.NoError(t, s.AddDonationRating(ctx, d.ID, donation.Rating{RaterID: "r1", Value: 5}))
	assert.ErrorIs(t, s.AddDonationRating(ctx, d.ID, donation.Rating{RaterID: "r1", Value: 3}), storage.ErrDuplicate)
	assert.ErrorIs(t, s.AddDonationRating(ctx, "missing", donation.Rating{RaterID: "r1", Value: 3}), storage.ErrNotFound)
}

func TestExpirePendingDonations_Idempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	seedDonation(t, s, donation.StatusPending, now.Add(-time.Hour))
	seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))
	seedDonation(t, s, donation.StatusClaimed, now.Add(-time.Hour))

	n, err := s.ExpirePendingDonations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.ExpirePendingDonations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDeleteStaleDonations(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	seedDonation(t, s, donation.StatusPending, now.Add(-time.Hour))
	seedDonation(t, s, donation.StatusExpired, now.Add(-time.Hour))
	seedDonation(t, s, donation.StatusConfirmed, now.Add(-time.Hour))
	seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))

	n, err := s.DeleteStaleDonations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, s.donations, 2)
}

func TestOrderFlow(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	d := seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))
	by := "r1"
	o := &order.Order{DonationID: d.ID, ReceiverID: by, Status: order.StatusClaimed, ClaimedAt: now, CreatedAt: now}
	require.NoError(t, s.ClaimDonation(ctx,
		donation.Transition{DonationID: d.ID, From: donation.StatusPending, To: donation.StatusClaimed, ClaimedBy: &by, ClaimedAt: &now}, o))

	avail, err := s.ListAvailableOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, avail, 1)

	require.NoError(t, s.AssignVolunteer(ctx, o.ID, "v1"))
	assert.ErrorIs(t, s.AssignVolunteer(ctx, o.ID, "v2"), storage.ErrConflict)

	_, err = s.ConfirmOrder(ctx, o.ID, d.ID, now)
	assert.ErrorIs(t, err, storage.ErrConflict)
	require.NoError(t, s.AdvanceOrder(ctx, o.ID, order.StatusInTransit, order.StatusDelivered, now))
	assert.ErrorIs(t, s.MarkOrderDelivered(ctx, o.ID, now), storage.ErrConflict)
	cascaded, err := s.ConfirmOrder(ctx, o.ID, d.ID, now)
	require.NoError(t, err)
	assert.True(t, cascaded)

	got, err := s.FindDonationByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)
}

func TestConfirmOrder_DonationAlreadyConfirmed(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	d := seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))
	by := "r1"
	o := &order.Order{DonationID: d.ID, ReceiverID: by, Status: order.StatusClaimed, ClaimedAt: now, CreatedAt: now}
	require.NoError(t, s.ClaimDonation(ctx,
		donation.Transition{DonationID: d.ID, From: donation.StatusPending, To: donation.StatusClaimed, ClaimedBy: &by, ClaimedAt: &now}, o))
	require.NoError(t, s.TransitionDonation(ctx,
		donation.Transition{DonationID: d.ID, From: donation.StatusClaimed, To: donation.StatusConfirmed, ConfirmedAt: &now}))
	require.NoError(t, s.MarkOrderDelivered(ctx, o.ID, now))

	cascaded, err := s.ConfirmOrder(ctx, o.ID, d.ID, now)
	require.NoError(t, err)
	assert.False(t, cascaded)

	got, err := s.FindOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
}

func TestDeleteDonation_KeepsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	d := seedDonation(t, s, donation.StatusPending, now.Add(time.Hour))
	by := "r1"
	o := &order.Order{DonationID: d.ID, ReceiverID: by, Status: order.StatusClaimed, ClaimedAt: now, CreatedAt: now}
	require.NoError(t, s.ClaimDonation(ctx,
		donation.Transition{DonationID: d.ID, From: donation.StatusPending, To: donation.StatusClaimed, ClaimedBy: &by, ClaimedAt: &now}, o))

	require.NoError(t, s.DeleteDonation(ctx, d.ID, "donor"))
	_, err := s.FindOrderByID(ctx, o.ID)
	assert.NoError(t, err)
}

func TestFindDonation_EmptyRatingsNotNil(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := seedDonation(t, s, donation.StatusPending, time.Now().Add(time.Hour))

	got, err := s.FindDonationByID(ctx, d.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Ratings)
	assert.Empty(t, got.Ratings)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ratings":[]`)
}
