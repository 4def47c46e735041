package service

import (
	"context"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/sirupsen/logrus"
)

// StartStayReminderScheduler runs a background loop that announces confirmed
// stays starting tomorrow. It blocks until the context is cancelled, so it
// should be launched in a separate goroutine.
func (s *Service) StartStayReminderScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Stay reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stay reminder scheduler stopped")
			return
		case <-ticker.C:
			s.processStayReminders(ctx)
		}
	}
}

// processStayReminders dispatches one reminder per reservation and marks it
// so later ticks skip it. Delivery is best effort.
func (s *Service) processStayReminders(ctx context.Context) int {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tomorrow := daterange.Day(s.opts.Now()).AddDate(0, 0, 1)

	reservations, err := s.Reservations.ListStartingOn(ctx, tomorrow)
	if err != nil {
		s.logger.Errorf("Failed to get upcoming reservations: %v", err)
		return 0
	}

	sent := 0
	for _, r := range reservations {
		s.dispatcher.Dispatch(models.NotificationStayReminder, r.OrganizationID, reservationPayload(r))

		if err := s.Reservations.MarkReminderSent(ctx, r.ID, s.opts.Now()); err != nil {
			s.logger.WithFields(logrus.Fields{
				"organization_id": r.OrganizationID,
				"reservation_id":  r.ID,
			}).Errorf("Failed to mark reminder sent: %v", err)
			continue
		}
		sent++
	}

	return sent
}
