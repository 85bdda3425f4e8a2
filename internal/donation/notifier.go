package donation

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antonminaichev/foodflow/internal/metrics"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/notification"
	"github.com/antonminaichev/foodflow/internal/types/user"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

const (
	DefaultRadiusKm = 20.0
	nearbyMessage   = "New food donation available near you!"
)

type ReceiverLister interface {
	ListUsersByRole(ctx context.Context, role user.Role) ([]user.User, error)
}

type NotificationSink interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

// ProximityNotifier tells receivers near a new donation about it.
type ProximityNotifier struct {
	receivers ReceiverLister
	sink      NotificationSink
	radiusKm  float64
	workers   int
	log       *zap.Logger
	now       func() time.Time
}

func NewProximityNotifier(receivers ReceiverLister, sink NotificationSink, radiusKm float64, workers int, log *zap.Logger) *ProximityNotifier {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProximityNotifier{
		receivers: receivers,
		sink:      sink,
		radiusKm:  radiusKm,
		workers:   workers,
		log:       log,
		now:       time.Now,
	}
}

// NotifyNearby returns how many notifications reached the sink. A failed
// dispatch is logged and skipped; only listing receivers can fail the call.
func (n *ProximityNotifier) NotifyNearby(ctx context.Context, d *donation.Donation) (int, error) {
	receivers, err := n.receivers.ListUsersByRole(ctx, user.RoleReceiver)
	if err != nil {
		return 0, fmt.Errorf("list receivers: %w", err)
	}

	var sent int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for i := range receivers {
		r := receivers[i]
		if r.Location == nil {
			continue
		}
		dist := geo.DistanceKm(d.Location, *r.Location)
		if dist > n.radiusKm {
			continue
		}
		g.Go(func() error {
			note := n.build(d, r.ID)
			if err := n.sink.Notify(gctx, note); err != nil {
				metrics.NotificationsFailedTotal.Inc()
				n.log.Warn("notify receiver failed",
					zap.String("receiver", r.ID),
					zap.String("donation", d.ID),
					zap.Error(err),
				)
				return nil
			}
			metrics.NotificationsDispatchedTotal.Inc()
			atomic.AddInt64(&sent, 1)
			return nil
		})
	}
	_ = g.Wait()

	n.log.Debug("nearby receivers notified",
		zap.String("donation", d.ID),
		zap.Int64("sent", sent),
	)
	return int(sent), nil
}

func (n *ProximityNotifier) build(d *donation.Donation, recipient string) *notification.Notification {
	id, title := d.ID, d.Description
	note := &notification.Notification{
		UserID:              recipient,
		Message:             nearbyMessage,
		Type:                notification.TypeDonation,
		CreatedAt:           n.now().UTC(),
		TargetDonationID:    &id,
		TargetDonationTitle: &title,
	}
	if d.Image != "" {
		img := d.Image
		note.TargetDonationImage = &img
	}
	return note
}
