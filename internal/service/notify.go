package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/metrics"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a notification to the organization's members.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Dispatcher hands notifications to a Notifier without making the caller
// wait for delivery. Failures are logged and counted, never returned.
type Dispatcher struct {
	notifier Notifier
	logger   *logrus.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher that gives each delivery timeout to finish.
func NewDispatcher(notifier Notifier, logger *logrus.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger, timeout: timeout}
}

// Dispatch sends the notification on a separate goroutine.
func (d *Dispatcher) Dispatch(typ models.NotificationType, organizationID int64, payload map[string]any) {
	if d == nil || d.notifier == nil {
		return
	}

	n := models.Notification{
		ID:             uuid.NewString(),
		Type:           typ,
		OrganizationID: organizationID,
		Payload:        payload,
		CreatedAt:      time.Now(),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		entry := d.logger.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"type":            n.Type,
			"organization_id": n.OrganizationID,
		})

		if err := d.notifier.Notify(ctx, n); err != nil {
			metrics.Notifications.WithLabelValues(string(n.Type), "error").Inc()
			entry.WithError(err).Warn("Notification delivery failed")
			return
		}
		metrics.Notifications.WithLabelValues(string(n.Type), "sent").Inc()
		entry.Debug("Notification delivered")
	}()
}

// Wait blocks until every dispatched notification has finished.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

// LogNotifier only logs notifications. Used when no chat transport is configured.
type LogNotifier struct {
	Logger *logrus.Logger
}

// Notify implements Notifier
func (n LogNotifier) Notify(_ context.Context, notification models.Notification) error {
	n.Logger.WithFields(logrus.Fields{
		"notification_id": notification.ID,
		"type":            notification.Type,
		"organization_id": notification.OrganizationID,
		"payload":         notification.Payload,
	}).Info("Notification")
	return nil
}
