package domain

// NotificationType names the outbound event handed to the notification dispatcher.
type NotificationType string

const (
	NotifyMessageReceived NotificationType = "message_received"
	NotifySaleOffered     NotificationType = "sale_offered"
	NotifySaleConfirmed   NotificationType = "sale_confirmed"
	NotifyReviewReceived  NotificationType = "review_received"
	NotifyNewListing      NotificationType = "new_listing"
)

// Notification only carries the id of the record it is about; the receiving
// side loads what it needs.
type Notification struct {
	Type NotificationType `json:"type"`
	ID   string           `json:"id"`
}
