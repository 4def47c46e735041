package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/sirupsen/logrus"
)

// Notifier posts notifications to the Telegram chat linked to the organization
type Notifier struct {
	sender        Sender
	organizations repository.OrganizationRepository
	logger        *logrus.Logger
}

// NewNotifier creates a Notifier sending through sender
func NewNotifier(sender Sender, organizations repository.OrganizationRepository, logger *logrus.Logger) *Notifier {
	return &Notifier{sender: sender, organizations: organizations, logger: logger}
}

// Notify implements service.Notifier. Organizations without a linked chat
// are skipped.
func (n *Notifier) Notify(ctx context.Context, notification models.Notification) error {
	org, err := n.organizations.GetByID(ctx, notification.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to load organization: %w", err)
	}
	if org == nil || org.TelegramChatID == nil {
		n.logger.WithFields(logrus.Fields{
			"organization_id": notification.OrganizationID,
			"type":            notification.Type,
		}).Debug("No chat linked, skipping notification")
		return nil
	}

	return n.sender.SendMessage(*org.TelegramChatID, FormatNotification(notification))
}

// FormatNotification renders a notification as a Markdown chat message
func FormatNotification(n models.Notification) string {
	field := func(key string) string {
		v, ok := n.Payload[key]
		if !ok || v == nil {
			return ""
		}
		return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, fmt.Sprint(v))
	}
	stay := func() string {
		s := fmt.Sprintf("%s to %s", field("start_date"), field("end_date"))
		if p := field("property_name"); p != "" {
			s += " at " + p
		}
		return s
	}

	switch n.Type {
	case models.NotificationReservationConfirmed:
		return fmt.Sprintf("✅ *Reservation confirmed*\n%s: %s", field("family_group"), stay())
	case models.NotificationReservationUpdated:
		return fmt.Sprintf("✏️ *Reservation changed*\n%s: %s", field("family_group"), stay())
	case models.NotificationReservationCancelled:
		return fmt.Sprintf("🚫 *Reservation cancelled*\n%s: %s", field("family_group"), stay())
	case models.NotificationStayReminder:
		return fmt.Sprintf("🏡 *Arriving tomorrow*\n%s: %s", field("family_group"), stay())
	case models.NotificationBillingUpdated:
		return fmt.Sprintf("💵 *Billing updated* for %s\nSource: $%s\nRecipient: $%s",
			field("family_group"), field("source_total"), field("recipient_total"))
	case models.NotificationSplitPaymentCreated:
		return fmt.Sprintf("➗ *Cost split*\n%s shares the stay of %s and owes $%s",
			field("recipient_group"), field("source_group"), field("amount"))
	case models.NotificationSplitPaymentReceived:
		return fmt.Sprintf("💰 *Payment received* from %s: $%s\nRemaining: $%s",
			field("family_group"), field("amount"), field("balance"))
	}

	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, string(n.Type))
}
