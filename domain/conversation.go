package domain

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleNone   Role = ""
)

// Conversation is a chat thread between exactly one buyer and one seller,
// optionally about a listing. Participants never change after creation.
type Conversation struct {
	ID        string
	BuyerID   string
	SellerID  string
	ListingID string
	CreatedAt time.Time
}

func (c Conversation) HasListing() bool {
	return c.ListingID != ""
}

// RoleOf returns the role played by userID in the conversation.
func (c Conversation) RoleOf(userID string) Role {
	switch userID {
	case "":
		return RoleNone
	case c.BuyerID:
		return RoleBuyer
	case c.SellerID:
		return RoleSeller
	}
	return RoleNone
}

func (c Conversation) IsParticipant(userID string) bool {
	return c.RoleOf(userID) != RoleNone
}

// Recipient returns the other participant of the conversation.
func (c Conversation) Recipient(senderID string) string {
	if senderID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}
