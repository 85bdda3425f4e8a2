package donation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonminaichev/foodflow/internal/types/donation"
)

func TestClaim(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  donation.Status
		expires time.Time
		wantErr error
	}{
		{"pending open", donation.StatusPending, now.Add(time.Hour), nil},
		{"pending past deadline", donation.StatusPending, now.Add(-time.Second), ErrNotAvailable},
		{"pending at deadline", donation.StatusPending, now, ErrNotAvailable},
		{"claimed", donation.StatusClaimed, now.Add(time.Hour), ErrNotAvailable},
		{"expired", donation.StatusExpired, now.Add(time.Hour), ErrNotAvailable},
		{"confirmed", donation.StatusConfirmed, now.Add(time.Hour), ErrNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &donation.Donation{ID: "d1", Status: tt.status, ExpiresAt: tt.expires}
			tr, err := Claim(d, "r1", now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, donation.StatusPending, tr.From)
			assert.Equal(t, donation.StatusClaimed, tr.To)
			assert.Equal(t, "r1", *tr.ClaimedBy)
			assert.Equal(t, now, *tr.ClaimedAt)
			require.NotNil(t, tr.OpenAt)
		})
	}
}

func TestConfirm(t *testing.T) {
	now := time.Now().UTC()
	claimant := "r1"

	d := &donation.Donation{ID: "d1", Status: donation.StatusClaimed, ClaimedBy: &claimant}
	_, err := Confirm(d, "someone-else", now)
	assert.ErrorIs(t, err, ErrNotClaimant)

	tr, err := Confirm(d, claimant, now)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusConfirmed, tr.To)
	assert.Equal(t, now, *tr.ConfirmedAt)

	d.Status = donation.StatusConfirmed
	_, err = Confirm(d, claimant, now)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Confirm(&donation.Donation{Status: donation.StatusPending}, claimant, now)
	assert.ErrorIs(t, err, ErrNotClaimant)
}

func TestRate(t *testing.T) {
	d := &donation.Donation{ID: "d1", DonorID: "donor", Ratings: []donation.Rating{{RaterID: "r2", Value: 3}}}

	_, err := Rate(d, "r1", 0)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = Rate(d, "r1", 6)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = Rate(d, "donor", 5)
	assert.ErrorIs(t, err, ErrOwnDonation)
	_, err = Rate(d, "r2", 5)
	assert.ErrorIs(t, err, ErrAlreadyRated)

	r, err := Rate(d, "r1", 4)
	require.NoError(t, err)
	assert.Equal(t, donation.Rating{RaterID: "r1", Value: 4}, r)
}

func TestCheckOwner(t *testing.T) {
	d := &donation.Donation{DonorID: "donor"}
	assert.NoError(t, CheckOwner(d, "donor"))
	assert.ErrorIs(t, CheckOwner(d, "other"), ErrNotOwner)
}
