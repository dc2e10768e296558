package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type NotificationKind string

const (
	NotifyBookingCreated   NotificationKind = "booking_created"
	NotifyBookingConfirmed NotificationKind = "booking_confirmed"
	NotifyBookingCompleted NotificationKind = "booking_completed"
	NotifyBookingCancelled NotificationKind = "booking_cancelled"
	NotifyBookingReminder  NotificationKind = "booking_reminder"
)

type Notification struct {
	Kind      NotificationKind `json:"kind"`
	BookingID string           `json:"booking_id"`
}

// Notifier is told about booking events. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Dispatcher hands a notification over for delivery, now or later.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// Deliverer sends a notification to its recipients.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

const deliveryTimeout = 30 * time.Second

// InlineDispatcher delivers in a background goroutine, without retries.
type InlineDispatcher struct {
	deliverer Deliverer
	log       *zap.Logger
}

func NewInlineDispatcher(d Deliverer, log *zap.Logger) *InlineDispatcher {
	return &InlineDispatcher{deliverer: d, log: log}
}

func (d *InlineDispatcher) Dispatch(_ context.Context, n Notification) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := d.deliverer.Deliver(ctx, n); err != nil {
			d.log.Warn("notification delivery failed",
				zap.String("kind", string(n.Kind)), zap.String("booking_id", n.BookingID), zap.Error(err))
		}
	}()
	return nil
}
