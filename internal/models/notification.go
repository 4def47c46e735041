package models

import "time"

// NotificationType names the event being announced
type NotificationType string

const (
	NotificationReservationConfirmed NotificationType = "reservation_confirmed"
	NotificationReservationCancelled NotificationType = "reservation_cancelled"
	NotificationReservationUpdated   NotificationType = "reservation_updated"
	NotificationBillingUpdated       NotificationType = "billing_updated"
	NotificationSplitPaymentCreated  NotificationType = "split_payment_created"
	NotificationSplitPaymentReceived NotificationType = "split_payment_received"
	NotificationStayReminder         NotificationType = "stay_reminder"
)

// Notification is handed to the dispatcher; delivery is best effort
type Notification struct {
	ID             string           `json:"id"`
	Type           NotificationType `json:"type"`
	OrganizationID int64            `json:"organization_id"`
	Payload        map[string]any   `json:"payload"`
	CreatedAt      time.Time        `json:"created_at"`
}
