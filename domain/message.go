package domain

import "time"

type MessageType string

const (
	MessageText          MessageType = "text"
	MessageSaleOffer     MessageType = "sale_offer"
	MessageSaleConfirmed MessageType = "sale_confirmed"
)

const (
	SaleOfferContent     = "I'd like to buy this item. Can you confirm the sale?"
	SaleConfirmedContent = "Sale confirmed! Don't forget to leave a review."
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageSaleOffer, MessageSaleConfirmed:
		return true
	}
	return false
}

// IsSaleEvent reports whether the message moves the sale handshake.
func (t MessageType) IsSaleEvent() bool {
	return t == MessageSaleOffer || t == MessageSaleConfirmed
}

// Message represents an immutable chat entry.
// ID is assigned by the store and sorts in creation order.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	Type           MessageType
	CreatedAt      time.Time
}
