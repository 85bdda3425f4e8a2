package donation

import (
	"errors"
	"time"

	"github.com/antonminaichev/foodflow/internal/types/donation"
)

var (
	ErrNotAvailable  = errors.New("donation not available")
	ErrNotClaimant   = errors.New("unauthorized or not claimed by you")
	ErrInvalidState  = errors.New("donation is not in a confirmable state")
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	ErrOwnDonation   = errors.New("donors cannot rate their own donation")
	ErrAlreadyRated  = errors.New("you have already rated this donation")
	ErrNotOwner      = errors.New("donation not found or unauthorized")
)

// Claim checks that d can be claimed by actor at now. The returned transition
// carries a deadline guard so the store re-checks expiry in the same update.
func Claim(d *donation.Donation, actor string, now time.Time) (donation.Transition, error) {
	if d.Status != donation.StatusPending || !d.ExpiresAt.After(now) {
		return donation.Transition{}, ErrNotAvailable
	}
	by := actor
	at := now
	return donation.Transition{
		DonationID: d.ID,
		From:       donation.StatusPending,
		To:         donation.StatusClaimed,
		ClaimedBy:  &by,
		ClaimedAt:  &at,
		OpenAt:     &at,
	}, nil
}

func Confirm(d *donation.Donation, actor string, now time.Time) (donation.Transition, error) {
	if d.ClaimedBy == nil || *d.ClaimedBy != actor {
		return donation.Transition{}, ErrNotClaimant
	}
	if d.Status != donation.StatusClaimed {
		return donation.Transition{}, ErrInvalidState
	}
	at := now
	return donation.Transition{
		DonationID:  d.ID,
		From:        donation.StatusClaimed,
		To:          donation.StatusConfirmed,
		ConfirmedAt: &at,
	}, nil
}

func Rate(d *donation.Donation, actor string, value int) (donation.Rating, error) {
	if value < 1 || value > 5 {
		return donation.Rating{}, ErrInvalidRating
	}
	if d.DonorID == actor {
		return donation.Rating{}, ErrOwnDonation
	}
	if _, rated := d.RatingBy(actor); rated {
		return donation.Rating{}, ErrAlreadyRated
	}
	return donation.Rating{RaterID: actor, Value: value}, nil
}

func CheckOwner(d *donation.Donation, actor string) error {
	if d.DonorID != actor {
		return ErrNotOwner
	}
	return nil
}
